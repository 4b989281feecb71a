// Package domain contains the core domain models of the pod build cache.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph is the dependency graph of the modules of a project snapshot.
type Graph struct {
	modules        map[string]*Module
	dependents     map[string][]string
	executionOrder []string
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		modules:    make(map[string]*Module),
		dependents: make(map[string][]string),
	}
}

// AddModule adds a module to the graph.
// It returns an error if a module with the same name already exists.
func (g *Graph) AddModule(m *Module) error {
	if _, exists := g.modules[m.Name]; exists {
		return zerr.With(zerr.Wrap(ErrModuleAlreadyExists, "duplicate module"), "module", m.Name)
	}
	g.modules[m.Name] = m
	return nil
}

// Module returns the module with the given name.
func (g *Graph) Module(name string) (*Module, bool) {
	m, ok := g.modules[name]
	return m, ok
}

// Len returns the number of modules in the graph.
func (g *Graph) Len() int {
	return len(g.modules)
}

// Names returns all module names in sorted order.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.modules))
	for name := range g.modules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks for missing dependencies and cycles using a topological sort.
// It populates the execution order and the reverse edges if successful.
func (g *Graph) Validate() error {
	g.executionOrder = make([]string, 0, len(g.modules))
	g.dependents = make(map[string][]string, len(g.modules))
	visited := make(map[string]int) // 0: unvisited, 1: visiting, 2: visited
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		visited[name] = 1
		path = append(path, name)

		m, exists := g.modules[name]
		if !exists {
			return zerr.With(zerr.Wrap(ErrMissingDependency, "unknown module"), "dependency", name)
		}

		for _, dep := range m.Dependencies {
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[name] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, name)
		return nil
	}

	// Sorted iteration keeps the order stable across runs.
	for _, name := range g.Names() {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	for _, name := range g.executionOrder {
		for _, dep := range g.modules[name].Dependencies {
			g.dependents[dep] = append(g.dependents[dep], name)
		}
	}

	return nil
}

func (g *Graph) buildCycleError(path []string, dep string) error {
	start := slices.Index(path, dep)
	cycle := append(slices.Clone(path[start:]), dep)
	return zerr.With(zerr.Wrap(ErrCycleDetected, "module graph has a cycle"), "cycle", strings.Join(cycle, " -> "))
}

// Walk returns an iterator that yields modules dependencies first.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[*Module] {
	return func(yield func(*Module) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.modules[name]) {
				return
			}
		}
	}
}

// Dependents returns the names of all modules that transitively depend on
// any of the given modules. The given modules are not part of the result.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Dependents(names []string) []string {
	seen := make(map[string]bool, len(names))
	queue := slices.Clone(names)
	for _, name := range names {
		seen[name] = true
	}

	var out []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, parent := range g.dependents[name] {
			if seen[parent] {
				continue
			}
			seen[parent] = true
			out = append(out, parent)
			queue = append(queue, parent)
		}
	}
	slices.Sort(out)
	return out
}

// TransitiveDependencies returns all modules the named module depends on, directly or not.
func (g *Graph) TransitiveDependencies(name string) []string {
	seen := map[string]bool{name: true}
	var out []string
	var visit func(n string)
	visit = func(n string) {
		m, ok := g.modules[n]
		if !ok {
			return
		}
		for _, dep := range m.Dependencies {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			out = append(out, dep)
			visit(dep)
		}
	}
	visit(name)
	slices.Sort(out)
	return out
}
