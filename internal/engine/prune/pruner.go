// Package prune replaces cached modules in the project graph by their
// bundles while keeping every remaining target resolvable.
package prune

import (
	"path/filepath"
	"slices"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// PatchedSetting marks a project whose graph has been rewritten.
const PatchedSetting = "BAKE_PATCHED"

// Pruner removes modules from a loaded project.
type Pruner struct {
	fs     ports.FileSystem
	logger ports.Logger
}

// New creates a Pruner.
func New(fs ports.FileSystem, logger ports.Logger) *Pruner {
	return &Pruner{fs: fs, logger: logger}
}

// Request describes one pruning pass.
type Request struct {
	Layout  domain.Layout
	Project ports.Project
	// Modules are the modules to replace by their bundles.
	Modules []string
	// Exclude lists modules that stay in the project even if requested.
	Exclude []string
	// Aggregate is the temporary build target removed with its scheme.
	Aggregate   string
	KeepSources bool
}

// Result reports what a pruning pass did.
type Result struct {
	// Pruned lists the removed modules, sorted.
	Pruned []string
	// Changed is set when the project file was rewritten.
	Changed bool
}

// IsPatched reports whether the project was rewritten by an earlier run.
func IsPatched(project ports.Project) bool {
	return project.BuildSetting(PatchedSetting) == "YES"
}

// Prune removes the requested modules from the project. Kept targets that
// depended on a pruned module are re-pointed to the nearest kept targets
// reachable through pruned ones. The project is saved only when it changed.
func (p *Pruner) Prune(req Request) (Result, error) {
	targets := req.Project.Targets()
	byName := make(map[string]domain.Target, len(targets))
	for _, t := range targets {
		byName[t.Name] = t
	}

	pruned := map[string]bool{}
	for _, name := range req.Modules {
		if _, ok := byName[name]; ok && !slices.Contains(req.Exclude, name) && name != req.Aggregate {
			pruned[name] = true
		}
	}

	var result Result
	// patched tracks module removals, changed also the aggregate cleanup.
	patched := false

	for _, t := range targets {
		if pruned[t.Name] || t.Name == req.Aggregate {
			continue
		}
		for _, dep := range t.Dependencies {
			if !pruned[dep] {
				continue
			}
			if req.Project.RemoveDependency(t.Name, dep) {
				patched = true
			}
			for _, next := range nearestKept(byName, pruned, dep) {
				if next == t.Name || slices.Contains(t.Dependencies, next) {
					continue
				}
				if err := req.Project.AddDependency(t.Name, next); err != nil {
					return result, err
				}
				p.logger.Debug("re-pointed " + t.Name + " from " + dep + " to " + next)
				patched = true
			}
		}
	}

	for name := range pruned {
		result.Pruned = append(result.Pruned, name)
	}
	slices.Sort(result.Pruned)

	if len(result.Pruned) > 0 {
		if !req.KeepSources && req.Project.RemoveSourceGroups(result.Pruned) {
			patched = true
		}

		products := make([]string, 0, len(result.Pruned))
		for _, name := range result.Pruned {
			t := byName[name]
			m := domain.Module{Name: name, ProductName: t.ProductName, ProductType: t.ProductType}
			products = append(products, m.ProductFile())
		}
		if req.Project.RemoveProducts(products) {
			patched = true
		}

		for _, name := range result.Pruned {
			if req.Project.RemoveTarget(name) {
				p.logger.Debug("pruned " + name)
				patched = true
			}
		}

		removed, err := req.Project.RemoveSchemes(result.Pruned)
		if err != nil {
			return result, err
		}
		patched = patched || removed
	}

	changed := patched
	if req.Aggregate != "" {
		if req.Project.RemoveTarget(req.Aggregate) {
			changed = true
		}
		removed, err := req.Project.RemoveSchemes([]string{req.Aggregate})
		if err != nil {
			return result, err
		}
		changed = changed || removed
	}

	if patched {
		req.Project.SetBuildSetting(PatchedSetting, "YES")
	}
	if changed {
		if err := req.Project.Save(); err != nil {
			return result, err
		}
		result.Changed = true
	}

	return result, p.removeIntermediates(req.Layout)
}

// nearestKept walks from a pruned module through pruned targets only and
// returns the first kept targets it reaches, sorted.
func nearestKept(targets map[string]domain.Target, pruned map[string]bool, from string) []string {
	var kept []string
	seen := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, dep := range targets[name].Dependencies {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			if pruned[dep] {
				queue = append(queue, dep)
			} else {
				kept = append(kept, dep)
			}
		}
	}
	slices.Sort(kept)
	return kept
}

// removeIntermediates deletes the per-configuration product directories of
// the build directory. Bundles live outside of it.
func (p *Pruner) removeIntermediates(layout domain.Layout) error {
	dirs, err := p.fs.Glob(filepath.Join(layout.BuildDir(), "*-*"))
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrProjectWriteFailed, err.Error()), "path", layout.BuildDir())
	}
	for _, dir := range dirs {
		if err := p.fs.RemoveAll(dir); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrProjectWriteFailed, err.Error()), "path", dir)
		}
	}
	return nil
}
