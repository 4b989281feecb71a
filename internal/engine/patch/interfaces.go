package patch

import (
	"regexp"
	"strings"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/zerr"
)

// InterfaceMarker ends every rewritten module interface.
const InterfaceMarker = "// bake: module qualifiers removed"

const modulePlaceholder = "__bake_module_reference__"

// extraQualifiers lists namespaces stripped together with a module's own.
var extraQualifiers = map[string][]string{
	"DataDomeAlamofire": {"DataDomeSDK"},
}

// InterfaceRequest describes the interface rewrite of pruned bundles.
type InterfaceRequest struct {
	Layout domain.Layout
	// Pattern selects the interface files inside a bundle.
	Pattern string
	Modules []*domain.Module
}

// PatchInterfaces removes module qualifiers from the module interface files
// of the pruned bundles. A type named like its module keeps its name.
// Rewritten files carry a marker and are left alone afterwards. It returns
// the rewritten files.
func (p *Patcher) PatchInterfaces(req InterfaceRequest) ([]string, error) {
	var patched []string
	for _, module := range req.Modules {
		bundle := req.Layout.BundlePath(module)
		if !p.fs.Exists(bundle) {
			continue
		}
		files, err := p.matchFiles(bundle, req.Pattern)
		if err != nil {
			return patched, err
		}

		for _, path := range files {
			data, err := p.fs.ReadFile(path)
			if err != nil {
				return patched, zerr.With(zerr.Wrap(domain.ErrPatchFailed, err.Error()), "path", path)
			}

			updated, changed := RewriteInterface(string(data), module.Name)
			if !changed {
				continue
			}
			if err := p.fs.WriteFile(path, []byte(updated)); err != nil {
				return patched, zerr.With(zerr.Wrap(domain.ErrPatchFailed, err.Error()), "path", path)
			}
			p.logger.Debug("patched " + path)
			patched = append(patched, path)
		}
	}
	return patched, nil
}

// RewriteInterface strips the qualifiers of module name from a module
// interface. It reports false when the content is already marked or has
// nothing to strip.
func RewriteInterface(content, name string) (string, bool) {
	if strings.Contains(content, InterfaceMarker) {
		return content, false
	}

	quoted := regexp.QuoteMeta(name)
	self := regexp.MustCompile(`\b` + quoted + `\.` + quoted + `\b`)
	updated := self.ReplaceAllLiteralString(content, modulePlaceholder)

	for _, qualifier := range append([]string{name}, extraQualifiers[name]...) {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(qualifier) + `\.`)
		updated = re.ReplaceAllLiteralString(updated, "")
	}
	updated = strings.ReplaceAll(updated, modulePlaceholder, name)

	if updated == content {
		return content, false
	}
	if !strings.HasSuffix(updated, "\n") {
		updated += "\n"
	}
	return updated + InterfaceMarker + "\n", true
}
