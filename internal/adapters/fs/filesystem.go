package fs

import (
	"errors"
	iofs "io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileSystem = (*FileSystem)(nil)

// FileSystem implements ports.FileSystem on the local disk.
type FileSystem struct {
	walker *Walker
}

// NewFileSystem creates a new FileSystem.
func NewFileSystem(walker *Walker) *FileSystem {
	return &FileSystem{walker: walker}
}

// WalkFiles yields every regular file below root.
func (f *FileSystem) WalkFiles(root string) (iter.Seq[string], func() error) {
	return f.walker.WalkFiles(root, nil)
}

// ReadFile returns the content of the file at path.
func (f *FileSystem) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read file"), "path", path)
	}
	return data, nil
}

// WriteFile replaces the file at path atomically.
func (f *FileSystem) WriteFile(path string, data []byte) error {
	if err := WriteFileAtomic(path, data); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", path)
	}
	return nil
}

// Exists reports whether path exists.
func (f *FileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// RemoveAll removes path and everything below it.
func (f *FileSystem) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove path"), "path", path)
	}
	return nil
}

// Glob returns the paths matching pattern, sorted.
func (f *FileSystem) Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to glob path"), "pattern", pattern)
	}
	slices.Sort(matches)
	return matches, nil
}

// WriteFileAtomic writes data to a file atomically by writing to a temp file
// in the same directory and renaming it. Readers never see a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	perm := iofs.FileMode(domain.FilePerm)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, iofs.ErrNotExist) {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
