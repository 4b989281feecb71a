package cachefile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/adapters/cachefile"
	"go.trai.ch/bake/internal/core/domain"
)

func simRecord(checksums ...string) domain.BuildCacheRecord {
	return domain.BuildCacheRecord{
		SDK:            domain.SDKSimulator,
		Arch:           "arm64",
		ToolingVersion: "Xcode 15.0 Build version 15A240d",
		BuildFlags:     []string{"ONLY_ACTIVE_ARCH=NO"},
		Checksums:      checksums,
	}
}

func TestStore_Load_Missing(t *testing.T) {
	store := cachefile.NewStore(filepath.Join(t.TempDir(), "cache.yml"))

	cache, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, cache)
	assert.NotNil(t, cache)
}

func TestStore_Load_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace", "\n\n  \n"},
		{"not yaml", "release-iphonesimulator: [unterminated"},
		{"wrong shape", "- a\n- b\n"},
		{"binary", "\x00\x01\x02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cache.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			cache, err := cachefile.NewStore(path).Load()
			require.NoError(t, err, "a corrupt cache file is treated as a first run")
			assert.Empty(t, cache)
		})
	}
}

func TestStore_Load_Existing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.yml")
	content := `release-iphonesimulator:
  sdkVariant: sim
  architecture: arm64
  toolingVersion: Xcode 15.0 Build version 15A240d
  buildFlags:
    - ONLY_ACTIVE_ARCH=NO
  checksums:
    - 'Alamofire: 0123456789abcdef'
  someFutureField: ignored
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cache, err := cachefile.NewStore(path).Load()
	require.NoError(t, err)

	record, ok := cache["release-iphonesimulator"]
	require.True(t, ok)
	assert.Equal(t, simRecord("Alamofire: 0123456789abcdef"), record)
	assert.Equal(t, "0123456789abcdef", record.ChecksumMap()["Alamofire"].Value)
}

func TestStore_Update_MergesVariants(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".bake", "cache.yml")
	store := cachefile.NewStore(path)

	device := domain.BuildCacheRecord{SDK: domain.SDKDevice, Arch: "arm64", Checksums: []string{"A: 1"}}
	require.NoError(t, store.Update(domain.CacheFile{
		"release-iphoneos": device,
		"debug-iphoneos":   device,
	}))

	require.NoError(t, store.Update(domain.CacheFile{
		"release-iphonesimulator": simRecord("A: 2", "B: 3"),
	}))

	cache, err := cachefile.NewStore(path).Load()
	require.NoError(t, err)
	assert.Len(t, cache, 3)
	assert.Equal(t, device, cache["release-iphoneos"], "other variants are left untouched")
	assert.Equal(t, device, cache["debug-iphoneos"])
	assert.Equal(t, simRecord("A: 2", "B: 3"), cache["release-iphonesimulator"])

	require.NoError(t, store.Update(domain.CacheFile{
		"release-iphonesimulator": simRecord("A: 4"),
	}))
	cache, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"A: 4"}, cache["release-iphonesimulator"].Checksums)
	assert.Equal(t, device, cache["release-iphoneos"])
}

func TestStore_Update_Deterministic(t *testing.T) {
	dir := t.TempDir()
	records := domain.CacheFile{
		"release-iphoneos":        {SDK: domain.SDKDevice, Checksums: []string{"A: 1"}},
		"release-iphonesimulator": simRecord("A: 1", "B: 2"),
	}

	first := filepath.Join(dir, "first.yml")
	second := filepath.Join(dir, "second.yml")
	require.NoError(t, cachefile.NewStore(first).Update(records))
	require.NoError(t, cachefile.NewStore(second).Update(records))
	require.NoError(t, cachefile.NewStore(second).Update(domain.CacheFile{}))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Contains(t, string(a), "release-iphoneos:\n  sdkVariant: ios\n")
	assert.Contains(t, string(a), "toolingVersion: Xcode 15.0 Build version 15A240d\n")
	assert.NotContains(t, string(a), "architecture: \"\"", "empty fields are omitted")
}

func TestStore_Update_ReplacesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.yml")
	require.NoError(t, os.WriteFile(path, []byte(":: not yaml ::\n\t- ["), 0o600))
	store := cachefile.NewStore(path)

	require.NoError(t, store.Update(domain.CacheFile{"release-iphonesimulator": simRecord("A: 1")}))

	cache, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, cache, 1)
}

func TestStore_Update_UnreadablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0o600))

	store := cachefile.NewStore(filepath.Join(blocker, "cache.yml"))
	cache, err := store.Load()
	require.NoError(t, err, "an unreadable cache file is treated as a first run")
	assert.Empty(t, cache)

	err = store.Update(domain.CacheFile{"release-iphonesimulator": simRecord()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCacheWriteFailed))
	assert.Equal(t, filepath.Join(blocker, "cache.yml"), store.Path())
}

func TestStore_Load_Directory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.yml")
	require.NoError(t, os.Mkdir(path, 0o750))

	cache, err := cachefile.NewStore(path).Load()
	require.NoError(t, err)
	assert.Empty(t, cache)
	assert.NotNil(t, cache)
}

func TestMarshal(t *testing.T) {
	data, err := cachefile.Marshal(domain.CacheFile{
		"release-iphonesimulator": simRecord("Alamofire: 0123456789abcdef", "Moya: fedcba9876543210"),
		"release-iphoneos": {
			SDK:       domain.SDKDevice,
			Arch:      "arm64",
			Checksums: []string{"Alamofire: 1111111111111111"},
		},
	})
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "cache_file", data)
}
