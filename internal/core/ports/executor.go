package ports

import (
	"context"
	"io"
)

// Command describes an external process invocation.
type Command struct {
	// Name is the executable to run.
	Name string
	// Args are the arguments passed to the executable.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds extra "KEY=VALUE" entries added to the process environment.
	Env []string
	// LogPath, if set, receives a copy of stdout and stderr.
	LogPath string
	// Stdout, if set, receives the standard output stream.
	Stdout io.Writer
	// Stderr, if set, receives the standard error stream.
	Stderr io.Writer
}

// Executor defines the interface for running external processes.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command until it exits and returns its exit code.
	//
	// A non-zero exit code is reported together with an error carrying
	// the exit code as metadata.
	Execute(ctx context.Context, cmd Command) (int, error)
}
