package xcodeproj

import (
	"path"
	"path/filepath"
	"slices"

	"go.trai.ch/bake/internal/core/domain"
)

// Navigator groups CocoaPods puts pod sources in.
const (
	PodsGroup            = "Pods"
	DevelopmentPodsGroup = "Development Pods"
)

type groupRef struct {
	id     string
	parent string
	local  bool
}

// findSourceGroup looks the pod group up below "Pods" and "Development Pods".
func (p *Project) findSourceGroup(name string) (groupRef, bool) {
	mainID := str(p.root(), "mainGroup")
	for _, containerID := range ids(p.object(mainID), "children") {
		container := p.object(containerID)
		label := displayName(container)
		if !isGroup(container) || (label != PodsGroup && label != DevelopmentPodsGroup) {
			continue
		}
		for _, childID := range ids(container, "children") {
			child := p.object(childID)
			if isGroup(child) && displayName(child) == name {
				return groupRef{id: childID, parent: containerID, local: label == DevelopmentPodsGroup}, true
			}
		}
	}
	return groupRef{}, false
}

// SourceGroup returns the navigator group holding the sources of a pod.
func (p *Project) SourceGroup(name string) (domain.SourceGroup, bool) {
	ref, ok := p.findSourceGroup(name)
	if !ok {
		return domain.SourceGroup{}, false
	}

	mainID := str(p.root(), "mainGroup")
	dir := p.Dir()
	for _, id := range []string{mainID, ref.parent, ref.id} {
		dir = resolvePath(dir, p.Dir(), p.object(id))
	}

	return domain.SourceGroup{Name: name, Dir: dir, Local: ref.local}, true
}

// resolvePath applies the path of o to parent according to its source tree.
func resolvePath(parent, projectDir string, o object) string {
	rel := str(o, "path")
	switch str(o, "sourceTree") {
	case "<absolute>":
		if rel != "" {
			return filepath.Clean(rel)
		}
		return parent
	case "SOURCE_ROOT":
		return filepath.Join(projectDir, filepath.FromSlash(rel))
	default:
		return filepath.Join(parent, filepath.FromSlash(rel))
	}
}

// RemoveSourceGroups removes the pods' source groups, their file references
// and every build file that references them.
func (p *Project) RemoveSourceGroups(names []string) bool {
	removed := map[string]bool{}
	for _, name := range names {
		ref, ok := p.findSourceGroup(name)
		if !ok {
			continue
		}
		p.collectTree(ref.id, removed)
		removeID(p.object(ref.parent), "children", ref.id)
	}
	if len(removed) == 0 {
		return false
	}

	for id := range removed {
		p.delete(id)
	}
	p.removeBuildFiles(removed)
	return true
}

func (p *Project) collectTree(id string, into map[string]bool) {
	into[id] = true
	o := p.object(id)
	if !isGroup(o) {
		return
	}
	for _, child := range ids(o, "children") {
		p.collectTree(child, into)
	}
}

// removeBuildFiles deletes build files pointing at one of refs and drops
// them from every build phase.
func (p *Project) removeBuildFiles(refs map[string]bool) bool {
	buildFiles := map[string]bool{}
	for id, raw := range p.objects {
		o, _ := raw.(map[string]any)
		if str(o, "isa") == isaBuildFile && refs[str(o, "fileRef")] {
			buildFiles[id] = true
		}
	}
	if len(buildFiles) == 0 {
		return false
	}

	for id := range buildFiles {
		p.delete(id)
	}
	for _, raw := range p.objects {
		o, _ := raw.(map[string]any)
		if !isBuildPhase(o) {
			continue
		}
		files := ids(o, "files")
		kept := slices.DeleteFunc(slices.Clone(files), func(id string) bool { return buildFiles[id] })
		if len(kept) != len(files) {
			setIDs(o, "files", kept)
		}
	}
	return true
}

// RemoveProducts removes product references with the given file names
// and the build files that link them.
func (p *Project) RemoveProducts(files []string) bool {
	groupID := str(p.root(), "productRefGroup")
	group := p.object(groupID)

	removed := map[string]bool{}
	for _, id := range ids(group, "children") {
		ref := p.object(id)
		if str(ref, "isa") != isaFileReference {
			continue
		}
		if slices.Contains(files, path.Base(str(ref, "path"))) {
			removed[id] = true
		}
	}
	if len(removed) == 0 {
		return false
	}

	setIDs(group, "children", slices.DeleteFunc(ids(group, "children"), func(id string) bool { return removed[id] }))
	for id := range removed {
		p.delete(id)
	}
	for _, targetID := range ids(p.root(), "targets") {
		target := p.object(targetID)
		if removed[str(target, "productReference")] {
			delete(target, "productReference")
		}
	}
	p.removeBuildFiles(removed)
	return true
}
