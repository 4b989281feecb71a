// Package fixture provides a sample CocoaPods workspace for tests.
//
// The workspace holds a Pods project with two remote pods (Alamofire, and Moya
// depending on it), one development pod (Feature, depending on Moya and on
// its Feature-Resources bundle) and the Pods-App umbrella target.
package fixture

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
)

//go:embed all:project
var files embed.FS

const root = "project"

// ProjectPath is the Pods project relative to the workspace.
const ProjectPath = "Pods/Pods.xcodeproj"

// Target names of the sample project.
const (
	Alamofire        = "Alamofire"
	Moya             = "Moya"
	Feature          = "Feature"
	FeatureResources = "Feature-Resources"
	PodsApp          = "Pods-App"
)

// Install copies the sample workspace into dir and returns dir.
func Install(tb testing.TB, dir string) string {
	tb.Helper()
	copyTree(tb, root, dir, func(string) bool { return true })
	return dir
}

// PodInstall restores the generated project and support files of the
// workspace in dir, the way running "pod install" again would.
// Pod sources are left untouched.
func PodInstall(tb testing.TB, dir string) {
	tb.Helper()

	generated := []string{ProjectPath, "Pods/Target Support Files"}
	for _, p := range generated {
		if err := os.RemoveAll(filepath.Join(dir, filepath.FromSlash(p))); err != nil {
			tb.Fatalf("failed to remove %s: %v", p, err)
		}
	}

	copyTree(tb, root, dir, func(rel string) bool {
		for _, p := range generated {
			if rel == p || strings.HasPrefix(rel, p+"/") {
				return true
			}
		}
		return false
	})
}

func copyTree(tb testing.TB, src, dst string, include func(rel string) bool) {
	tb.Helper()

	err := fs.WalkDir(files, src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, src), "/")
		if d.IsDir() || !include(rel) {
			return nil
		}

		data, err := files.ReadFile(p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644) //nolint:gosec // Test fixture
	})
	if err != nil {
		tb.Fatalf("failed to install fixture: %v", err)
	}
}

// Read returns the content of a fixture file, by workspace relative path.
func Read(tb testing.TB, rel string) []byte {
	tb.Helper()
	data, err := files.ReadFile(path.Join(root, rel))
	if err != nil {
		tb.Fatalf("failed to read fixture %s: %v", rel, err)
	}
	return data
}

// WriteBundle creates an XCFramework at path whose Info.plist lists the
// given library identifiers.
func WriteBundle(tb testing.TB, path string, slices ...string) {
	tb.Helper()

	var libs strings.Builder
	for _, id := range slices {
		libs.WriteString("\t\t<dict>\n\t\t\t<key>LibraryIdentifier</key>\n\t\t\t<string>")
		libs.WriteString(id)
		libs.WriteString("</string>\n\t\t</dict>\n")
	}
	info := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>AvailableLibraries</key>
	<array>
` + libs.String() + `	</array>
	<key>CFBundlePackageType</key>
	<string>XFWK</string>
</dict>
</plist>
`
	writeFile(tb, filepath.Join(path, "Info.plist"), info)
}

// WriteProduct creates a fake build product (framework directory or static
// library) at path.
func WriteProduct(tb testing.TB, path string) {
	tb.Helper()
	if strings.HasSuffix(path, ".a") {
		writeFile(tb, path, "!<arch>\n")
		return
	}
	writeFile(tb, filepath.Join(path, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))), "binary")
}

func writeFile(tb testing.TB, path, content string) {
	tb.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		tb.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // Test fixture
		tb.Fatalf("failed to write %s: %v", path, err)
	}
}
