package pipeline

import (
	"slices"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// Snapshot is the module view of a loaded project.
type Snapshot struct {
	// Graph holds every native target, including those that cannot be cached.
	Graph *domain.Graph
	// Modules are the targets with a source group and a cacheable product.
	Modules map[string]*domain.Module
}

// NewSnapshot derives modules and their graph from the project targets.
// Aggregate targets and edges pointing at them are ignored.
func NewSnapshot(project ports.Project) (*Snapshot, error) {
	targets := project.Targets()
	native := map[string]bool{}
	for _, t := range targets {
		if t.Kind == domain.TargetNative {
			native[t.Name] = true
		}
	}

	s := &Snapshot{Graph: domain.NewGraph(), Modules: map[string]*domain.Module{}}
	for _, t := range targets {
		if !native[t.Name] {
			continue
		}

		var deps []string
		for _, dep := range t.Dependencies {
			if native[dep] {
				deps = append(deps, dep)
			}
		}
		m := &domain.Module{
			Name:         t.Name,
			ProductName:  t.ProductName,
			ProductType:  t.ProductType,
			Dependencies: deps,
		}
		if group, ok := project.SourceGroup(t.Name); ok {
			m.SourceDir = group.Dir
			m.Local = group.Local
			if t.ProductType.IsCacheable() {
				s.Modules[t.Name] = m
			}
		}
		if err := s.Graph.AddModule(m); err != nil {
			return nil, err
		}
	}

	if err := s.Graph.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Select returns the sorted names of the modules taking part in a run:
// remote pods, included and focused modules, every local pod when a focus
// is set, without the excluded modules and everything depending on them.
func (s *Snapshot) Select(opts domain.CacheOptions) ([]string, error) {
	for _, list := range [][]string{opts.Include, opts.Focus, opts.Exclude} {
		for _, name := range list {
			if _, ok := s.Modules[name]; !ok {
				return nil, zerr.With(zerr.Wrap(domain.ErrUnknownModule, "not a cacheable module"), "module", name)
			}
		}
	}

	selected := map[string]bool{}
	for name, m := range s.Modules {
		if !m.Local || len(opts.Focus) > 0 {
			selected[name] = true
		}
	}
	for _, name := range slices.Concat(opts.Include, opts.Focus) {
		selected[name] = true
	}

	for _, name := range slices.Concat(opts.Exclude, s.Graph.Dependents(opts.Exclude)) {
		delete(selected, name)
	}

	names := make([]string, 0, len(selected))
	for name := range selected {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// List returns the modules of the given names in the same order.
func (s *Snapshot) List(names []string) []*domain.Module {
	out := make([]*domain.Module, 0, len(names))
	for _, name := range names {
		if m, ok := s.Modules[name]; ok {
			out = append(out, m)
		}
	}
	return out
}
