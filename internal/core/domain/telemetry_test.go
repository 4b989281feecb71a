package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/bake/internal/core/domain"
)

func TestRunStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     domain.RunStatus
		isTerminal bool
	}{
		{"Running", domain.RunStatusRunning, false},
		{"Succeeded", domain.RunStatusSucceeded, true},
		{"Failed", domain.RunStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isTerminal, tt.status.IsTerminal())
		})
	}
}

func TestNormalizeRunStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected domain.RunStatus
	}{
		{"succeeded", domain.RunStatusSucceeded},
		{"SUCCEEDED", domain.RunStatusSucceeded},
		{"failed", domain.RunStatusFailed},
		{"running", domain.RunStatusRunning},
		{"unknown", domain.RunStatusRunning},
		{"", domain.RunStatusRunning},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.NormalizeRunStatus(tt.input))
		})
	}
}

func TestRunRecord_Count(t *testing.T) {
	rec := domain.RunRecord{
		Modules: map[string]domain.ModuleState{
			"A": domain.StatePruned,
			"B": domain.StatePruned,
			"C": domain.StateKeptAsSource,
		},
	}

	assert.Equal(t, 2, rec.Count(domain.StatePruned))
	assert.Equal(t, 1, rec.Count(domain.StateKeptAsSource))
	assert.Equal(t, 0, rec.Count(domain.StateDirty))
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    domain.LogLevel
		expected string
	}{
		{domain.LogLevelDebug, "DEBUG"},
		{domain.LogLevelInfo, "INFO"},
		{domain.LogLevelWarn, "WARN"},
		{domain.LogLevelError, "ERROR"},
		{domain.LogLevel(99), "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}
