// Package cachefile persists build cache records in a YAML file.
package cachefile

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/bake/internal/adapters/fs"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.CacheStore = (*Store)(nil)

const yamlIndent = 2

// Store implements ports.CacheStore using a flat YAML file.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a new CacheStore backed by the file at the given path.
func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

// Path returns the location of the cache file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted cache file.
// A missing, unreadable, empty or undecodable file yields an empty CacheFile.
func (s *Store) Load() (domain.CacheFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(), nil
}

func (s *Store) read() domain.CacheFile {
	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return domain.CacheFile{}
	}

	cache := domain.CacheFile{}
	if err := yaml.Unmarshal(data, &cache); err != nil || cache == nil {
		return domain.CacheFile{}
	}
	return cache
}

// Update merges the given records into the persisted file and writes it atomically.
func (s *Store) Update(records domain.CacheFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache := s.read()
	for key, record := range records {
		cache[key] = record
	}

	data, err := Marshal(cache)
	if err != nil {
		return err
	}

	if err := fs.WriteFileAtomic(s.path, data); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, err.Error()), "path", s.path)
	}

	return nil
}

// Marshal encodes the cache file with sorted keys and two space indentation.
func Marshal(cache domain.CacheFile) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent)

	if err := enc.Encode(cache); err != nil {
		return nil, zerr.Wrap(domain.ErrCacheMarshalFailed, err.Error())
	}
	if err := enc.Close(); err != nil {
		return nil, zerr.Wrap(domain.ErrCacheMarshalFailed, err.Error())
	}

	return buf.Bytes(), nil
}
