package ports

import "go.trai.ch/bake/internal/core/domain"

// ConfigLoader defines the interface for loading cache defaults.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the optional configuration file and the BAKE_ environment
	// and returns the resulting cache options. path is either a directory
	// searched for .bake.yaml or the file itself. Without a file the defaults
	// are returned.
	Load(path string) (domain.CacheOptions, error)
}
