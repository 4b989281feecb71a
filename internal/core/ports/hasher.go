package ports

import "go.trai.ch/bake/internal/core/domain"

// Hasher defines the interface for fingerprinting module inputs.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// ComputeModuleHash hashes the module's source tree together with the salt values
	// (build flags, tooling version). Unreadable files are an error.
	ComputeModuleHash(module *domain.Module, mode domain.ChecksumMode, salt []string) (string, error)
}
