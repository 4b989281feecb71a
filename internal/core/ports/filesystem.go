package ports

import "iter"

// FileSystem is the file access used by the engines.
//
//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// WalkFiles yields every regular file below root in lexical order.
	// The returned function reports the walk error once iteration is done.
	WalkFiles(root string) (iter.Seq[string], func() error)

	// ReadFile returns the content of the file at path.
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces the file at path atomically.
	WriteFile(path string, data []byte) error

	// Exists reports whether path exists.
	Exists(path string) bool

	// RemoveAll removes path and everything below it.
	RemoveAll(path string) error

	// Glob returns the paths matching pattern, sorted.
	Glob(pattern string) ([]string, error)
}
