// Package xcodebuild drives the Xcode command line toolchain.
package xcodebuild

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// Binary is the toolchain executable.
const Binary = "xcodebuild"

var _ ports.Toolchain = (*Toolchain)(nil)

// Toolchain implements ports.Toolchain on top of xcodebuild.
type Toolchain struct {
	executor ports.Executor

	mu      sync.Mutex
	version string
}

// New creates a Toolchain running commands through executor.
func New(executor ports.Executor) *Toolchain {
	return &Toolchain{executor: executor}
}

// Version returns the output of "xcodebuild -version" on one line.
// The result is computed once per Toolchain.
func (t *Toolchain) Version(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.version != "" {
		return t.version, nil
	}

	var stdout bytes.Buffer
	_, err := t.executor.Execute(ctx, ports.Command{
		Name:   Binary,
		Args:   []string{"-version"},
		Stdout: &stdout,
	})
	if err != nil {
		return "", zerr.Wrap(domain.ErrToolchainUnavailable, err.Error())
	}

	version := strings.Join(strings.Fields(stdout.String()), " ")
	if version == "" {
		return "", zerr.Wrap(domain.ErrToolchainUnavailable, "empty version output")
	}

	t.version = version
	return version, nil
}

// Build runs one scheme build for a single SDK.
func (t *Toolchain) Build(ctx context.Context, req ports.BuildRequest) (ports.BuildResult, error) {
	result := ports.BuildResult{LogPath: req.LogPath}

	code, err := t.executor.Execute(ctx, ports.Command{
		Name:    Binary,
		Args:    BuildArgs(req),
		LogPath: req.LogPath,
	})
	result.ExitCode = code
	if err != nil {
		buildErr := zerr.With(zerr.Wrap(domain.ErrBuildFailed, "xcodebuild exited with a non-zero status"), "exit_code", code)
		buildErr = zerr.With(buildErr, "sdk", string(req.SDK))
		return result, buildErr
	}

	return result, nil
}

// BuildArgs returns the xcodebuild arguments of a build request.
func BuildArgs(req ports.BuildRequest) []string {
	args := []string{
		"-project", req.ProjectPath,
		"-scheme", req.Scheme,
		"-configuration", req.Configuration,
		"-sdk", req.SDK.Xcodebuild(),
	}
	if req.DerivedDataPath != "" {
		args = append(args, "-derivedDataPath", req.DerivedDataPath)
	}
	if archs := req.SDK.ResolveArchs(req.Archs); len(archs) > 0 {
		args = append(args, "ARCHS="+strings.Join(archs, " "))
	}
	if req.SymRoot != "" {
		args = append(args, "SYMROOT="+absolute(req.SymRoot))
	}
	args = append(args, req.Flags...)
	return append(args, "build")
}

// CreateXCFramework merges per-SDK products into one bundle.
func (t *Toolchain) CreateXCFramework(ctx context.Context, req ports.XCFrameworkRequest) error {
	if len(req.Slices) == 0 {
		return zerr.With(zerr.Wrap(domain.ErrMergeFailed, "no products to merge"), "output", req.Output)
	}

	_, err := t.executor.Execute(ctx, ports.Command{
		Name:    Binary,
		Args:    XCFrameworkArgs(req),
		LogPath: req.LogPath,
	})
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrMergeFailed, err.Error()), "output", req.Output)
	}
	return nil
}

// XCFrameworkArgs returns the xcodebuild arguments of a merge request.
// Static libraries are passed with -library, everything else with -framework.
func XCFrameworkArgs(req ports.XCFrameworkRequest) []string {
	args := []string{"-create-xcframework"}
	for _, slice := range req.Slices {
		if strings.HasSuffix(slice.Product, ".a") {
			args = append(args, "-library", absolute(slice.Product))
		} else {
			args = append(args, "-framework", absolute(slice.Product))
		}
		if slice.DebugSymbols != "" {
			args = append(args, "-debug-symbols", absolute(slice.DebugSymbols))
		}
	}
	return append(args, "-output", absolute(req.Output))
}

// absolute resolves path against the working directory. xcodebuild
// rejects relative debug symbol paths.
func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
