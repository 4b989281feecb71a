package ports

import "go.trai.ch/bake/internal/core/domain"

// CacheStore persists build cache records keyed by SDK variant and configuration.
//
//go:generate mockgen -source=cache_store.go -destination=mocks/mock_cache_store.go -package=mocks
type CacheStore interface {
	// Load returns the persisted cache file.
	// A missing, unreadable or undecodable file yields an empty CacheFile and no error.
	Load() (domain.CacheFile, error)

	// Update merges the given records into the persisted file and writes it atomically.
	// Keys that are not part of records are left untouched.
	Update(records domain.CacheFile) error
}
