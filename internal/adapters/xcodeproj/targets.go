package xcodeproj

import (
	"path"
	"strings"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/zerr"
)

// Targets returns every target of the project in declaration order.
func (p *Project) Targets() []domain.Target {
	var targets []domain.Target
	for _, id := range ids(p.root(), "targets") {
		o := p.object(id)
		kind := domain.TargetKind(str(o, "isa"))
		if kind != domain.TargetNative && kind != domain.TargetAggregate {
			continue
		}

		var deps []string
		for _, depID := range ids(o, "dependencies") {
			if name := str(p.object(p.dependencyTarget(depID)), "name"); name != "" {
				deps = append(deps, name)
			}
		}

		targets = append(targets, domain.Target{
			Name:         str(o, "name"),
			Kind:         kind,
			ProductName:  p.productName(o),
			ProductType:  domain.ProductType(str(o, "productType")),
			Dependencies: deps,
		})
	}
	return targets
}

// productName returns the product file name without extension. Static
// libraries lose their "lib" prefix.
func (p *Project) productName(target object) string {
	ref := p.object(str(target, "productReference"))
	file := str(ref, "path")
	if file == "" {
		return str(target, "productName")
	}
	name := strings.TrimSuffix(path.Base(file), path.Ext(file))
	if domain.ProductType(str(target, "productType")) == domain.ProductStaticLibrary {
		name = strings.TrimPrefix(name, "lib")
	}
	return name
}

func (p *Project) targetID(name string) (string, bool) {
	for _, id := range ids(p.root(), "targets") {
		if str(p.object(id), "name") == name {
			return id, true
		}
	}
	return "", false
}

// dependencyTarget resolves the target id of a PBXTargetDependency.
func (p *Project) dependencyTarget(depID string) string {
	dep := p.object(depID)
	if id := str(dep, "target"); id != "" {
		return id
	}
	return str(p.object(str(dep, "targetProxy")), "remoteGlobalIDString")
}

func (p *Project) deleteDependency(depID string) {
	if proxy := str(p.object(depID), "targetProxy"); proxy != "" {
		p.delete(proxy)
	}
	p.delete(depID)
}

// RemoveTarget removes a target together with its build phases,
// configurations and every dependency pointing at it.
func (p *Project) RemoveTarget(name string) bool {
	id, ok := p.targetID(name)
	if !ok {
		return false
	}
	target := p.object(id)

	for _, phaseID := range ids(target, "buildPhases") {
		for _, fileID := range ids(p.object(phaseID), "files") {
			p.delete(fileID)
		}
		p.delete(phaseID)
	}

	listID := str(target, "buildConfigurationList")
	for _, cfgID := range ids(p.object(listID), "buildConfigurations") {
		p.delete(cfgID)
	}
	p.delete(listID)

	for _, depID := range ids(target, "dependencies") {
		p.deleteDependency(depID)
	}

	for _, otherID := range ids(p.root(), "targets") {
		other := p.object(otherID)
		for _, depID := range ids(other, "dependencies") {
			if p.dependencyTarget(depID) == id {
				removeID(other, "dependencies", depID)
				p.deleteDependency(depID)
			}
		}
	}

	if attrs, ok := p.root()["attributes"].(map[string]any); ok {
		if targetAttrs, ok := attrs["TargetAttributes"].(map[string]any); ok {
			delete(targetAttrs, id)
		}
	}

	removeID(p.root(), "targets", id)
	p.delete(id)
	return true
}

// RemoveDependency removes the dependency edge from -> to.
func (p *Project) RemoveDependency(from, to string) bool {
	fromID, ok := p.targetID(from)
	if !ok {
		return false
	}
	toID, ok := p.targetID(to)
	if !ok {
		return false
	}

	source := p.object(fromID)
	changed := false
	for _, depID := range ids(source, "dependencies") {
		if p.dependencyTarget(depID) == toID {
			removeID(source, "dependencies", depID)
			p.deleteDependency(depID)
			changed = true
		}
	}
	return changed
}

// AddDependency adds a dependency edge from -> to. Existing edges are kept as is.
func (p *Project) AddDependency(from, to string) error {
	fromID, ok := p.targetID(from)
	if !ok {
		return zerr.With(zerr.Wrap(domain.ErrTargetNotFound, "dependency source not found"), "target", from)
	}
	toID, ok := p.targetID(to)
	if !ok {
		return zerr.With(zerr.Wrap(domain.ErrTargetNotFound, "dependency target not found"), "target", to)
	}

	source := p.object(fromID)
	for _, depID := range ids(source, "dependencies") {
		if p.dependencyTarget(depID) == toID {
			return nil
		}
	}

	proxyID := p.add(object{
		"isa":                  isaContainerItemProxy,
		"containerPortal":      p.rootID,
		"proxyType":            "1",
		"remoteGlobalIDString": toID,
		"remoteInfo":           to,
	})
	depID := p.add(object{
		"isa":         isaTargetDependency,
		"name":        to,
		"target":      toID,
		"targetProxy": proxyID,
	})
	setIDs(source, "dependencies", append(ids(source, "dependencies"), depID))
	return nil
}

// AddAggregateTarget adds an aggregate target depending on the given targets.
// An existing target with the same name is replaced.
func (p *Project) AddAggregateTarget(name string, dependencies []string) error {
	p.RemoveTarget(name)

	var configIDs []string
	defaultConfig := domain.DefaultConfiguration
	for _, cfg := range p.configurations(str(p.root(), "buildConfigurationList")) {
		configIDs = append(configIDs, p.add(object{
			"isa":           isaBuildConfiguration,
			"buildSettings": map[string]any{"PRODUCT_NAME": "$(TARGET_NAME)"},
			"name":          str(cfg, "name"),
		}))
	}
	if list := p.object(str(p.root(), "buildConfigurationList")); str(list, "defaultConfigurationName") != "" {
		defaultConfig = str(list, "defaultConfigurationName")
	}

	listID := p.add(object{
		"isa":                           isaConfigurationList,
		"buildConfigurations":           toAny(configIDs),
		"defaultConfigurationIsVisible": "0",
		"defaultConfigurationName":      defaultConfig,
	})
	targetID := p.add(object{
		"isa":                    isaAggregateTarget,
		"buildConfigurationList": listID,
		"buildPhases":            []any{},
		"dependencies":           []any{},
		"name":                   name,
		"productName":            name,
	})
	root := p.root()
	setIDs(root, "targets", append(ids(root, "targets"), targetID))

	for _, dep := range dependencies {
		if err := p.AddDependency(name, dep); err != nil {
			return err
		}
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
