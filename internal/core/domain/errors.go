package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrModuleAlreadyExists is returned when two targets share a module name.
	ErrModuleAlreadyExists = zerr.New("module already exists")

	// ErrMissingDependency is returned when a module references a module that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the module dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrUnknownModule is returned when a module name is not part of the project.
	ErrUnknownModule = zerr.New("unknown module")

	// ErrInvalidTransition is returned when a module state change is not allowed.
	ErrInvalidTransition = zerr.New("invalid module state transition")

	// ErrInvalidSDK is returned when an sdk name is not supported.
	ErrInvalidSDK = zerr.New("invalid sdk")

	// ErrInvalidArch is returned when an architecture name is not supported.
	ErrInvalidArch = zerr.New("invalid architecture")

	// ErrInvalidChecksumMode is returned when the checksum mode is not supported.
	ErrInvalidChecksumMode = zerr.New("invalid checksum mode, expected 'content' or 'mtime'")

	// ErrInvalidChecksum is returned when a stored checksum cannot be parsed.
	ErrInvalidChecksum = zerr.New("invalid checksum")

	// ErrChecksumFailed is returned when a module's inputs cannot be fingerprinted.
	ErrChecksumFailed = zerr.New("failed to compute checksum")

	// ErrProjectLoadFailed is returned when the project cannot be read or parsed.
	ErrProjectLoadFailed = zerr.New("failed to load project")

	// ErrProjectWriteFailed is returned when the mutated project cannot be written.
	ErrProjectWriteFailed = zerr.New("failed to write project")

	// ErrTargetNotFound is returned when a target is not part of the project.
	ErrTargetNotFound = zerr.New("target not found")

	// ErrBuildFailed is returned when the toolchain exits with a non-zero status.
	ErrBuildFailed = zerr.New("build failed")

	// ErrMergeFailed is returned when a bundle cannot be created from built products.
	ErrMergeFailed = zerr.New("failed to create xcframework")

	// ErrToolchainUnavailable is returned when the toolchain version cannot be determined.
	ErrToolchainUnavailable = zerr.New("toolchain unavailable")

	// ErrCacheReadFailed is returned when the cache file exists but cannot be read.
	ErrCacheReadFailed = zerr.New("failed to read cache file")

	// ErrCacheWriteFailed is returned when the cache file cannot be written.
	ErrCacheWriteFailed = zerr.New("failed to write cache file")

	// ErrCacheMarshalFailed is returned when the cache file cannot be encoded.
	ErrCacheMarshalFailed = zerr.New("failed to marshal cache file")

	// ErrPatchFailed is returned when a project artifact cannot be rewritten.
	ErrPatchFailed = zerr.New("failed to patch file")

	// ErrInvalidPattern is returned when a file selection pattern does not compile.
	ErrInvalidPattern = zerr.New("invalid file pattern")

	// ErrLockFailed is returned when the project lock cannot be acquired.
	ErrLockFailed = zerr.New("failed to lock project directory")

	// ErrHistoryFailed is returned when the run history cannot be read or written.
	ErrHistoryFailed = zerr.New("failed to access run history")

	// ErrConfigReadFailed is returned when the config file exists but cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrPipelineFailed marks an error that already carries its own step report.
	ErrPipelineFailed = zerr.New("cache pipeline failed")
)

// StepError reports which pipeline step failed, and for which module or SDK.
type StepError struct {
	Step    string
	Module  string
	SDK     SDK
	LogPath string
	Err     error
}

// Error returns the step context followed by the cause.
func (e *StepError) Error() string {
	msg := e.Message()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Message returns the step context without the cause chain.
func (e *StepError) Message() string {
	var b strings.Builder
	b.WriteString("step ")
	b.WriteString(e.Step)
	if e.Module != "" {
		b.WriteString(" (module ")
		b.WriteString(e.Module)
		b.WriteString(")")
	}
	if e.SDK != "" {
		b.WriteString(" (sdk ")
		b.WriteString(string(e.SDK))
		b.WriteString(")")
	}
	b.WriteString(" failed")
	if e.LogPath != "" {
		b.WriteString(", see log ")
		b.WriteString(e.LogPath)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *StepError) Unwrap() error {
	return e.Err
}
