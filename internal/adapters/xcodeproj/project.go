// Package xcodeproj reads and rewrites Xcode project bundles.
//
// The project.pbxproj file is decoded into its generic object graph with
// howett.net/plist and edited in place. Only the objects the cache touches
// are interpreted; everything else round-trips untouched.
package xcodeproj

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/bake/internal/adapters/fs"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
	"howett.net/plist"
)

const (
	pbxprojFile   = "project.pbxproj"
	pbxprojHeader = "// !$*UTF8*$!\n"
)

var _ ports.Project = (*Project)(nil)

// Project implements ports.Project on a decoded project.pbxproj.
type Project struct {
	path     string
	original []byte

	data    object
	objects map[string]any
	rootID  string

	saved   bool
	created []string
	newID   func() string
}

// Open reads and decodes the project bundle at path.
func Open(path string) (*Project, error) {
	file := filepath.Join(path, pbxprojFile)
	//nolint:gosec // Project path is provided by the caller
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrProjectLoadFailed, err.Error()), "path", file)
	}

	p := &Project{path: path, original: raw, newID: newObjectID}
	if err := p.decode(raw); err != nil {
		return nil, zerr.With(err, "path", file)
	}
	return p, nil
}

func (p *Project) decode(raw []byte) error {
	var data map[string]any
	if _, err := plist.Unmarshal(raw, &data); err != nil {
		return zerr.Wrap(domain.ErrProjectLoadFailed, err.Error())
	}

	objects, ok := data["objects"].(map[string]any)
	if !ok {
		return zerr.Wrap(domain.ErrProjectLoadFailed, "missing objects table")
	}
	rootID, _ := data["rootObject"].(string)
	root, _ := objects[rootID].(map[string]any)
	if str(root, "isa") != isaProject {
		return zerr.With(zerr.Wrap(domain.ErrProjectLoadFailed, "root object is not a project"), "root", rootID)
	}

	p.data = data
	p.objects = objects
	p.rootID = rootID
	return nil
}

// Path returns the path of the .xcodeproj bundle.
func (p *Project) Path() string {
	return p.path
}

// Dir returns the directory the project's relative paths resolve against.
func (p *Project) Dir() string {
	return filepath.Join(filepath.Dir(p.path), str(p.root(), "projectDirPath"))
}

func (p *Project) root() object {
	return p.object(p.rootID)
}

func (p *Project) object(id string) object {
	o, _ := p.objects[id].(map[string]any)
	return o
}

func (p *Project) add(o object) string {
	id := p.newID()
	for p.objects[id] != nil {
		id = p.newID()
	}
	p.objects[id] = o
	return id
}

func (p *Project) delete(id string) {
	delete(p.objects, id)
}

// BuildSetting returns a build setting of the project level configurations.
// The first configuration defining the key wins.
func (p *Project) BuildSetting(key string) string {
	for _, cfg := range p.configurations(str(p.root(), "buildConfigurationList")) {
		settings, _ := cfg["buildSettings"].(map[string]any)
		if v := str(settings, key); v != "" {
			return v
		}
	}
	return ""
}

// SetBuildSetting sets a build setting on every project level configuration.
func (p *Project) SetBuildSetting(key, value string) {
	for _, cfg := range p.configurations(str(p.root(), "buildConfigurationList")) {
		settings, ok := cfg["buildSettings"].(map[string]any)
		if !ok {
			settings = map[string]any{}
			cfg["buildSettings"] = settings
		}
		settings[key] = value
	}
}

func (p *Project) configurations(listID string) []object {
	var out []object
	for _, id := range ids(p.object(listID), "buildConfigurations") {
		if cfg := p.object(id); cfg != nil {
			out = append(out, cfg)
		}
	}
	return out
}

// Encode serializes the project in the text property list format.
func (p *Project) Encode() ([]byte, error) {
	body, err := plist.MarshalIndent(p.data, plist.OpenStepFormat, "\t")
	if err != nil {
		return nil, zerr.Wrap(domain.ErrProjectWriteFailed, err.Error())
	}

	var buf bytes.Buffer
	buf.WriteString(pbxprojHeader)
	buf.Write(body)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// Save writes the project atomically.
func (p *Project) Save() error {
	data, err := p.Encode()
	if err != nil {
		return err
	}

	file := filepath.Join(p.path, pbxprojFile)
	if err := fs.WriteFileAtomic(file, data); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrProjectWriteFailed, err.Error()), "path", file)
	}
	p.saved = true
	return nil
}

// Revert restores the project file loaded from disk and deletes the
// schemes created since.
func (p *Project) Revert() error {
	var errs []string

	for _, scheme := range p.created {
		if err := os.Remove(scheme); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err.Error())
		}
	}
	p.created = nil

	if p.saved {
		file := filepath.Join(p.path, pbxprojFile)
		if err := fs.WriteFileAtomic(file, p.original); err != nil {
			errs = append(errs, err.Error())
		}
		p.saved = false
	}

	if err := p.decode(p.original); err != nil {
		return err
	}

	if len(errs) > 0 {
		return zerr.With(zerr.Wrap(domain.ErrProjectWriteFailed, "failed to revert project"), "errors", strings.Join(errs, "; "))
	}
	return nil
}
