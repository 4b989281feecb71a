// Package checksum fingerprints modules and decides which of them can reuse
// a previously built bundle.
package checksum

import (
	"context"
	"runtime"
	"slices"
	"sync"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Engine computes module checksums and reads and writes cache records.
type Engine struct {
	hasher      ports.Hasher
	store       ports.CacheStore
	parallelism int
}

// New creates a checksum engine.
func New(hasher ports.Hasher, store ports.CacheStore) *Engine {
	return &Engine{
		hasher:      hasher,
		store:       store,
		parallelism: runtime.NumCPU(),
	}
}

// Fingerprint is the build environment a cache record must match.
type Fingerprint struct {
	Tooling string
	Flags   []string
	Arch    string
}

// Salt returns the values that feed every module checksum besides its files.
func (f Fingerprint) Salt() []string {
	salt := slices.Clone(f.Flags)
	return append(salt, "tooling="+f.Tooling)
}

// Compute fingerprints one module: its name, the build flags, the tooling
// identifier and every file of its source tree.
func (e *Engine) Compute(
	ctx context.Context,
	module *domain.Module,
	mode domain.ChecksumMode,
	fp Fingerprint,
) (domain.Checksum, error) {
	if err := ctx.Err(); err != nil {
		return domain.Checksum{}, err
	}
	value, err := e.hasher.ComputeModuleHash(module, mode, fp.Salt())
	if err != nil {
		return domain.Checksum{}, zerr.With(zerr.Wrap(domain.ErrChecksumFailed, err.Error()), "module", module.Name)
	}
	return domain.NewChecksum(module.Name, value), nil
}

// ComputeAll fingerprints the modules concurrently. The first failure
// cancels the remaining work and is returned.
func (e *Engine) ComputeAll(
	ctx context.Context,
	modules []*domain.Module,
	mode domain.ChecksumMode,
	fp Fingerprint,
) (map[string]domain.Checksum, error) {
	var mu sync.Mutex
	result := make(map[string]domain.Checksum, len(modules))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for _, module := range modules {
		g.Go(func() error {
			sum, err := e.Compute(ctx, module, mode, fp)
			if err != nil {
				return err
			}
			mu.Lock()
			result[module.Name] = sum
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Load returns the persisted records of the given SDKs. SDKs without a
// record are absent from the map. A missing, unreadable or undecodable cache
// file yields no records.
func (e *Engine) Load(sdks []domain.SDK, configuration string) (map[domain.SDK]*domain.BuildCacheRecord, error) {
	records := make(map[domain.SDK]*domain.BuildCacheRecord, len(sdks))
	file, err := e.store.Load()
	if err != nil {
		file = domain.CacheFile{}
	}

	for _, sdk := range sdks {
		if rec, ok := file[domain.CacheKey(sdk, configuration)]; ok {
			records[sdk] = &rec
		}
	}
	return records, nil
}

// Update merges the records of the given SDKs into the cache file in one
// atomic write. Records of other keys stay untouched.
func (e *Engine) Update(configuration string, records map[domain.SDK]domain.BuildCacheRecord) error {
	if len(records) == 0 {
		return nil
	}
	file := make(domain.CacheFile, len(records))
	for sdk, rec := range records {
		rec.SDK = sdk
		file[domain.CacheKey(sdk, configuration)] = rec
	}
	return e.store.Update(file)
}

// IsReusable reports whether the module's previous bundle can be used for
// the SDK of rec. The record must hold the same checksum and have been
// written with the same tooling, flags and architectures. With
// ignoreStaleness an existing bundle is enough. Without a bundle nothing
// is reusable.
func IsReusable(current domain.Checksum, rec *domain.BuildCacheRecord, fp Fingerprint, ignoreStaleness, bundlePresent bool) bool {
	if !bundlePresent {
		return false
	}
	if ignoreStaleness {
		return true
	}
	if rec == nil {
		return false
	}
	if rec.ToolingVersion != fp.Tooling || !rec.SameFlags(fp.Flags) {
		return false
	}
	if rec.Arch != "" && fp.Arch != "" && rec.Arch != fp.Arch {
		return false
	}
	stored, ok := rec.ChecksumMap()[current.Name]
	return ok && stored.Equal(current)
}
