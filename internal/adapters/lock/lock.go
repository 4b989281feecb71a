// Package lock serializes cache runs against the same project directory.
package lock

import (
	"os"
	"path/filepath"

	"github.com/rogpeppe/go-internal/lockedfile"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Locker = (*FileLocker)(nil)

// FileLocker implements ports.Locker with an advisory file lock.
type FileLocker struct{}

// New creates a new FileLocker.
func New() *FileLocker {
	return &FileLocker{}
}

// Lock blocks until the lock file at path is held and returns its release function.
func (l *FileLocker) Lock(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrLockFailed, err.Error()), "path", path)
	}

	unlock, err := lockedfile.MutexAt(path).Lock()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrLockFailed, err.Error()), "path", path)
	}
	return unlock, nil
}
