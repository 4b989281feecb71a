package xcodeproj

import "go.trai.ch/bake/internal/core/ports"

// Loader opens project bundles from disk.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the project at path.
func (l *Loader) Load(path string) (ports.Project, error) {
	p, err := Open(path)
	if err != nil {
		return nil, err
	}
	return p, nil
}
