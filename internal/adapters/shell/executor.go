// Package shell provides the process executor adapter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Execute runs the command and returns its exit code.
// It merges environments with the following priority (low to high):
// 1. os.Environ() (System base)
// 2. cmd.Env (Command overrides, PATH entries are prepended)
//
// Output goes to the command's own writers, copied to the vertex in ctx if
// there is one. Without either it goes to the logger at debug level. A copy is appended to
// cmd.LogPath when set.
func (e *Executor) Execute(ctx context.Context, cmd ports.Command) (int, error) {
	if cmd.Name == "" {
		return 0, nil
	}

	cmdEnv := resolveEnvironment(os.Environ(), cmd.Env)

	// Resolve the executable path using the new environment's PATH
	executable := cmd.Name
	if !filepath.IsAbs(cmd.Name) {
		if lp, err := lookPath(cmd.Name, cmdEnv); err == nil {
			executable = lp
		}
	}

	proc := exec.CommandContext(ctx, executable, cmd.Args...) //nolint:gosec // toolchain command built by the engine

	// Restore the original command name in Args[0]
	if len(proc.Args) > 0 {
		proc.Args[0] = cmd.Name
	}
	proc.Dir = cmd.Dir
	proc.Env = cmdEnv

	stdout, stderr := e.writers(ctx, cmd)
	stdoutLines := &lineWriter{emit: e.logger.Debug}
	stderrLines := &lineWriter{emit: e.logger.Debug}
	if stdout == nil {
		stdout = stdoutLines
	}
	if stderr == nil {
		stderr = stderrLines
	}

	if cmd.LogPath != "" {
		logFile, err := openLog(cmd.LogPath)
		if err != nil {
			return -1, err
		}
		defer logFile.Close() //nolint:errcheck // Best effort close in defer

		shared := &syncWriter{w: logFile}
		stdout = io.MultiWriter(stdout, shared)
		stderr = io.MultiWriter(stderr, shared)
	}

	proc.Stdout = stdout
	proc.Stderr = stderr

	runErr := proc.Run()
	stdoutLines.Flush()
	stderrLines.Flush()

	if runErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) && exitErr.ExitCode() >= 0 {
			exitCode = exitErr.ExitCode()
		}

		err := zerr.With(zerr.Wrap(runErr, "command failed"), "exit_code", exitCode)
		err = zerr.With(err, "command", cmd.Name)
		if cmd.LogPath != "" {
			err = zerr.With(err, "log", cmd.LogPath)
		}
		return exitCode, err
	}

	return 0, nil
}

func (e *Executor) writers(ctx context.Context, cmd ports.Command) (stdout, stderr io.Writer) {
	vertex, ok := ports.VertexFromContext(ctx)
	if !ok {
		return cmd.Stdout, cmd.Stderr
	}
	return tee(cmd.Stdout, vertex.Stdout()), tee(cmd.Stderr, vertex.Stderr())
}

// tee writes to own and copies to the vertex stream. A nil own writer
// leaves the vertex stream alone.
func tee(own, vertex io.Writer) io.Writer {
	switch {
	case own == nil:
		return vertex
	case vertex == nil:
		return own
	default:
		return io.MultiWriter(own, vertex)
	}
}

func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create log directory"), "path", path)
	}
	//nolint:gosec // Log path is built from the working directory layout
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, domain.FilePerm)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open log file"), "path", path)
	}
	return f, nil
}

// syncWriter serializes writes of both output streams into one file.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// lineWriter buffers partial writes and emits complete lines.
type lineWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	emit func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Incomplete line goes back to the buffer.
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.emit(strings.TrimSuffix(line, "\n"))
	}
	return len(p), nil
}

// Flush emits any trailing partial line.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

// resolveEnvironment merges environment variables with the defined priority.
func resolveEnvironment(sysEnv, extraEnv []string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			envMap[k] = v
		}
	}

	for _, entry := range extraEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" {
			if sysPath, exists := envMap["PATH"]; exists && sysPath != "" {
				v = v + string(os.PathListSeparator) + sysPath
			}
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the directories named by the PATH environment variable.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
