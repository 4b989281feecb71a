// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/bake/internal/core/domain"

// Logger defines the interface for logging.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(err error)
	// SetLevel changes the minimum level that is written.
	SetLevel(level domain.LogLevel)
}
