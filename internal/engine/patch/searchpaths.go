// Package patch rewrites textual project artifacts so the remaining build
// resolves pruned modules against their bundles.
package patch

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// PlatformVariable selects the bundle slice in rewritten search paths.
	PlatformVariable = "BAKE_XCFRAMEWORK_PLATFORM"

	buildDirVariable = "${PODS_CONFIGURATION_BUILD_DIR}"
	podsRootVariable = "${PODS_ROOT}"
	searchPathsKey   = "FRAMEWORK_SEARCH_PATHS"
	buildDirKey      = "CONFIGURATION_BUILD_DIR"
)

// Patcher rewrites xcconfig and module interface files.
type Patcher struct {
	fs     ports.FileSystem
	logger ports.Logger
}

// New creates a Patcher.
func New(fs ports.FileSystem, logger ports.Logger) *Patcher {
	return &Patcher{fs: fs, logger: logger}
}

// SearchPathRequest describes one search path rewrite.
type SearchPathRequest struct {
	// Dir is the Pods directory holding the generated support files.
	Dir string
	// Pattern selects the files to rewrite by slash separated path.
	Pattern string
	// Modules are the pruned modules.
	Modules []string
	// BundleDir is the directory holding the bundles.
	BundleDir string
	// Relative writes bundle paths relative to ${PODS_ROOT}.
	Relative bool
	// Archs are the requested architectures, used to name the slices.
	Archs []string
}

// BundleRoot returns the bundle directory as written into xcconfig files.
func (r SearchPathRequest) BundleRoot() string {
	bundleDir, err := filepath.Abs(r.BundleDir)
	if err != nil {
		bundleDir = r.BundleDir
	}
	if !r.Relative {
		return filepath.ToSlash(bundleDir)
	}
	podsDir, err := filepath.Abs(r.Dir)
	if err != nil {
		return filepath.ToSlash(bundleDir)
	}
	rel, err := filepath.Rel(podsDir, bundleDir)
	if err != nil {
		return filepath.ToSlash(bundleDir)
	}
	return podsRootVariable + "/" + filepath.ToSlash(rel)
}

// PatchSearchPaths replaces build directory references of the pruned
// modules by their bundle paths in every matching file, and keeps the
// platform definitions of each file that references a bundle in front of
// its framework search paths. Files are written only when they change. It
// returns the rewritten files.
func (p *Patcher) PatchSearchPaths(req SearchPathRequest) ([]string, error) {
	if len(req.Modules) == 0 {
		return nil, nil
	}
	files, err := p.matchFiles(req.Dir, req.Pattern)
	if err != nil {
		return nil, err
	}

	rewrite := newSearchPathRewriter(req)
	var patched []string
	for _, path := range files {
		data, err := p.fs.ReadFile(path)
		if err != nil {
			return patched, zerr.With(zerr.Wrap(domain.ErrPatchFailed, err.Error()), "path", path)
		}

		updated := rewrite.apply(string(data))
		if updated == string(data) {
			continue
		}
		if err := p.fs.WriteFile(path, []byte(updated)); err != nil {
			return patched, zerr.With(zerr.Wrap(domain.ErrPatchFailed, err.Error()), "path", path)
		}
		p.logger.Debug("patched " + path)
		patched = append(patched, path)
	}
	return patched, nil
}

func (p *Patcher) matchFiles(root, pattern string) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidPattern, err.Error()), "pattern", pattern)
	}

	var files []string
	seq, walkErr := p.fs.WalkFiles(root)
	for path := range seq {
		if re.MatchString(filepath.ToSlash(path)) {
			files = append(files, path)
		}
	}
	if err := walkErr(); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrPatchFailed, err.Error()), "path", root)
	}
	return files, nil
}

type searchPathRewriter struct {
	reference   *regexp.Regexp
	replacement string
	definitions []string
}

func newSearchPathRewriter(req SearchPathRequest) *searchPathRewriter {
	names := make([]string, 0, len(req.Modules))
	for _, name := range req.Modules {
		names = append(names, regexp.QuoteMeta(name))
	}
	slices.Sort(names)

	ref := regexp.QuoteMeta(buildDirVariable) + `/(` + strings.Join(names, "|") + `)(["\s/]|$)`
	root := strings.ReplaceAll(req.BundleRoot(), "$", "$$")

	return &searchPathRewriter{
		reference:   regexp.MustCompile(ref),
		replacement: root + "/${1}.xcframework/$${" + PlatformVariable + "}${2}",
		definitions: []string{
			PlatformVariable + "_" + domain.SDKSimulator.Xcodebuild() + " = " + domain.SDKSimulator.SliceID(req.Archs),
			PlatformVariable + "_" + domain.SDKDevice.Xcodebuild() + " = " + domain.SDKDevice.SliceID(req.Archs),
			PlatformVariable + " = $(" + PlatformVariable + "_$(PLATFORM_NAME))",
		},
	}
}

func settingKey(line string) string {
	key, _, ok := strings.Cut(line, "=")
	if !ok {
		return ""
	}
	return strings.TrimSpace(key)
}

func (r *searchPathRewriter) apply(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines)+len(r.definitions))
	usage := "${" + PlatformVariable + "}"

	for _, line := range lines {
		key := settingKey(line)
		if strings.HasPrefix(key, PlatformVariable) {
			continue
		}
		if key != buildDirKey {
			line = r.reference.ReplaceAllString(line, r.replacement)
		}
		out = append(out, line)
	}

	if !slices.ContainsFunc(out, func(line string) bool { return strings.Contains(line, usage) }) {
		return strings.Join(out, "\n")
	}

	at := slices.IndexFunc(out, func(line string) bool { return settingKey(line) == searchPathsKey })
	if at < 0 {
		at = slices.IndexFunc(out, func(line string) bool { return strings.Contains(line, usage) })
	}
	out = slices.Insert(out, at, r.definitions...)
	return strings.Join(out, "\n")
}
