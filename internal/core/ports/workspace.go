package ports

//go:generate mockgen -source=workspace.go -destination=mocks/mock_workspace.go -package=mocks

// Locker serializes cache runs against the same project directory.
type Locker interface {
	// Lock blocks until the lock at path is held and returns its release function.
	Lock(path string) (unlock func(), err error)
}

// LogArchiver compresses toolchain logs of previous runs.
type LogArchiver interface {
	// Archive compresses the log at path into dir and removes the original.
	// It returns the archive path, or "" when there was no log to archive.
	Archive(path, dir string) (string, error)
}
