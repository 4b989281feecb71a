package domain

import (
	"slices"
	"strings"
)

// BuildCacheRecord is the persisted state of one SDK variant.
type BuildCacheRecord struct {
	SDK            SDK      `yaml:"sdkVariant"`
	Arch           string   `yaml:"architecture,omitempty"`
	ToolingVersion string   `yaml:"toolingVersion,omitempty"`
	BuildFlags     []string `yaml:"buildFlags,omitempty"`
	Checksums      []string `yaml:"checksums,omitempty"`
}

// CacheFile maps a cache key to the record of that SDK variant and configuration.
type CacheFile map[string]BuildCacheRecord

// CacheKey returns the cache file key of an SDK and build configuration,
// for example "release-iphonesimulator".
func CacheKey(sdk SDK, configuration string) string {
	return strings.ToLower(configuration) + "-" + sdk.Xcodebuild()
}

// ChecksumMap returns the module checksums of the record keyed by module name.
// Entries that cannot be parsed are skipped.
func (r *BuildCacheRecord) ChecksumMap() map[string]Checksum {
	if r == nil {
		return map[string]Checksum{}
	}
	m := make(map[string]Checksum, len(r.Checksums))
	for _, raw := range r.Checksums {
		c, err := ParseChecksum(raw)
		if err != nil {
			continue
		}
		m[c.Name] = c
	}
	return m
}

// SetChecksums replaces the checksum list with the given map, sorted by module name.
func (r *BuildCacheRecord) SetChecksums(m map[string]Checksum) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)

	r.Checksums = make([]string, 0, len(names))
	for _, name := range names {
		r.Checksums = append(r.Checksums, m[name].String())
	}
}

// SameFlags reports whether the record was built with exactly the given flags.
func (r *BuildCacheRecord) SameFlags(flags []string) bool {
	if r == nil {
		return false
	}
	a := slices.Clone(r.BuildFlags)
	b := slices.Clone(flags)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}
