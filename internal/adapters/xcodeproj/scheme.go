package xcodeproj

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/bake/internal/adapters/fs"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/zerr"
)

const schemeExt = ".xcscheme"

type scheme struct {
	XMLName            xml.Name    `xml:"Scheme"`
	LastUpgradeVersion string      `xml:"LastUpgradeVersion,attr"`
	Version            string      `xml:"version,attr"`
	BuildAction        buildAction `xml:"BuildAction"`
}

type buildAction struct {
	ParallelizeBuildables     string             `xml:"parallelizeBuildables,attr"`
	BuildImplicitDependencies string             `xml:"buildImplicitDependencies,attr"`
	Entries                   []buildActionEntry `xml:"BuildActionEntries>BuildActionEntry"`
}

type buildActionEntry struct {
	BuildForTesting    string             `xml:"buildForTesting,attr"`
	BuildForRunning    string             `xml:"buildForRunning,attr"`
	BuildForProfiling  string             `xml:"buildForProfiling,attr"`
	BuildForArchiving  string             `xml:"buildForArchiving,attr"`
	BuildForAnalyzing  string             `xml:"buildForAnalyzing,attr"`
	BuildableReference buildableReference `xml:"BuildableReference"`
}

type buildableReference struct {
	BuildableIdentifier string `xml:"BuildableIdentifier,attr"`
	BlueprintIdentifier string `xml:"BlueprintIdentifier,attr"`
	BuildableName       string `xml:"BuildableName,attr"`
	BlueprintName       string `xml:"BlueprintName,attr"`
	ReferencedContainer string `xml:"ReferencedContainer,attr"`
}

func (p *Project) sharedSchemesDir() string {
	return filepath.Join(p.path, "xcshareddata", "xcschemes")
}

// CreateScheme writes a shared scheme building the given target.
func (p *Project) CreateScheme(name, target string) error {
	id, ok := p.targetID(target)
	if !ok {
		return zerr.With(zerr.Wrap(domain.ErrTargetNotFound, "cannot create scheme"), "target", target)
	}

	s := scheme{
		LastUpgradeVersion: "1500",
		Version:            "1.3",
		BuildAction: buildAction{
			ParallelizeBuildables:     "YES",
			BuildImplicitDependencies: "YES",
			Entries: []buildActionEntry{{
				BuildForTesting:   "YES",
				BuildForRunning:   "YES",
				BuildForProfiling: "YES",
				BuildForArchiving: "YES",
				BuildForAnalyzing: "YES",
				BuildableReference: buildableReference{
					BuildableIdentifier: "primary",
					BlueprintIdentifier: id,
					BuildableName:       target,
					BlueprintName:       target,
					ReferencedContainer: "container:" + filepath.Base(p.path),
				},
			}},
		},
	}

	body, err := xml.MarshalIndent(s, "", "   ")
	if err != nil {
		return zerr.Wrap(domain.ErrProjectWriteFailed, err.Error())
	}
	data := append([]byte(xml.Header), body...)
	data = append(data, '\n')

	file := filepath.Join(p.sharedSchemesDir(), name+schemeExt)
	if err := fs.WriteFileAtomic(file, data); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrProjectWriteFailed, err.Error()), "path", file)
	}
	if !slices.Contains(p.created, file) {
		p.created = append(p.created, file)
	}
	return nil
}

// RemoveSchemes deletes every shared or user scheme whose build entries
// only reference targets in the given set.
func (p *Project) RemoveSchemes(targets []string) (bool, error) {
	files, err := p.schemeFiles()
	if err != nil {
		return false, err
	}

	changed := false
	for _, file := range files {
		//nolint:gosec // Scheme files live inside the project bundle
		raw, err := os.ReadFile(file)
		if err != nil {
			return changed, zerr.With(zerr.Wrap(domain.ErrProjectLoadFailed, err.Error()), "path", file)
		}

		var s scheme
		if err := xml.Unmarshal(raw, &s); err != nil {
			// Not a scheme we understand; leave it alone.
			continue
		}
		if !onlyBuilds(s, targets) {
			continue
		}

		if err := os.Remove(file); err != nil {
			return changed, zerr.With(zerr.Wrap(domain.ErrProjectWriteFailed, err.Error()), "path", file)
		}
		p.created = slices.DeleteFunc(p.created, func(c string) bool { return c == file })
		changed = true
	}
	return changed, nil
}

func (p *Project) schemeFiles() ([]string, error) {
	patterns := []string{
		filepath.Join(p.sharedSchemesDir(), "*"+schemeExt),
		filepath.Join(p.path, "xcuserdata", "*.xcuserdatad", "xcschemes", "*"+schemeExt),
	}

	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidPattern, err.Error()), "pattern", pattern)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return files, nil
}

func onlyBuilds(s scheme, targets []string) bool {
	if len(s.BuildAction.Entries) == 0 {
		return false
	}
	for _, entry := range s.BuildAction.Entries {
		name := strings.TrimSpace(entry.BuildableReference.BlueprintName)
		if !slices.Contains(targets, name) {
			return false
		}
	}
	return true
}
