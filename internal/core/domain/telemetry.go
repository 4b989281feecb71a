package domain

import (
	"strings"
	"time"
)

// RunStatus is the outcome of a cache run as recorded in the history.
type RunStatus string

const (
	// RunStatusRunning indicates the run has started but not finished.
	RunStatusRunning RunStatus = "running"
	// RunStatusSucceeded indicates every pipeline step completed.
	RunStatusSucceeded RunStatus = "succeeded"
	// RunStatusFailed indicates a pipeline step failed.
	RunStatusFailed RunStatus = "failed"
)

// IsTerminal reports whether the run has finished.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusSucceeded || s == RunStatusFailed
}

// NormalizeRunStatus converts a stored string to a RunStatus, defaulting to running if unknown.
func NormalizeRunStatus(s string) RunStatus {
	switch strings.ToLower(s) {
	case string(RunStatusSucceeded):
		return RunStatusSucceeded
	case string(RunStatusFailed):
		return RunStatusFailed
	default:
		return RunStatusRunning
	}
}

// RunRecord summarizes one cache run.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	SDKs       []SDK
	Status     RunStatus
	FailedStep string
	Error      string
	Modules    map[string]ModuleState
}

// Count returns how many modules ended the run in the given state.
func (r *RunRecord) Count(state ModuleState) int {
	n := 0
	for _, st := range r.Modules {
		if st == state {
			n++
		}
	}
	return n
}

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}
