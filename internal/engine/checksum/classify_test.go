package checksum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/engine/checksum"
)

func record(fp checksum.Fingerprint, checksums ...string) *domain.BuildCacheRecord {
	return &domain.BuildCacheRecord{
		SDK:            domain.SDKSimulator,
		Arch:           fp.Arch,
		ToolingVersion: fp.Tooling,
		BuildFlags:     fp.Flags,
		Checksums:      checksums,
	}
}

func TestIsReusable(t *testing.T) {
	current := domain.NewChecksum("A", "1")
	other := checksum.Fingerprint{Tooling: "Xcode 16", Flags: fingerprint.Flags, Arch: fingerprint.Arch}

	tests := []struct {
		name     string
		rec      *domain.BuildCacheRecord
		fp       checksum.Fingerprint
		ignore   bool
		bundle   bool
		expected bool
	}{
		{"match", record(fingerprint, "A: 1"), fingerprint, false, true, true},
		{"match without bundle", record(fingerprint, "A: 1"), fingerprint, false, false, false},
		{"no record", nil, fingerprint, false, true, false},
		{"checksum differs", record(fingerprint, "A: 2"), fingerprint, false, true, false},
		{"not recorded", record(fingerprint, "B: 1"), fingerprint, false, true, false},
		{"tooling differs", record(fingerprint, "A: 1"), other, false, true, false},
		{"flags differ", record(fingerprint, "A: 1"), checksum.Fingerprint{Tooling: fingerprint.Tooling, Flags: []string{"X=1"}}, false, true, false},
		{"arch differs", record(fingerprint, "A: 1"), checksum.Fingerprint{Tooling: fingerprint.Tooling, Flags: fingerprint.Flags, Arch: "arm64,x86_64"}, false, true, false},
		{"ignore staleness", record(fingerprint, "A: 2"), fingerprint, true, true, true},
		{"ignore staleness without bundle", nil, fingerprint, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, checksum.IsReusable(current, tt.rec, tt.fp, tt.ignore, tt.bundle))
		})
	}
}

func classifyGraph(t *testing.T) *domain.Graph {
	t.Helper()
	// Feature -> Moya -> Alamofire, Kingfisher standalone
	g := domain.NewGraph()
	for _, m := range []*domain.Module{
		{Name: "Alamofire"},
		{Name: "Moya", Dependencies: []string{"Alamofire"}},
		{Name: "Feature", Dependencies: []string{"Moya"}},
		{Name: "Kingfisher"},
	} {
		require.NoError(t, g.AddModule(m))
	}
	require.NoError(t, g.Validate())
	return g
}

func TestClassify(t *testing.T) {
	sums := map[string]domain.Checksum{
		"Alamofire":  domain.NewChecksum("Alamofire", "new"),
		"Moya":       domain.NewChecksum("Moya", "1"),
		"Feature":    domain.NewChecksum("Feature", "1"),
		"Kingfisher": domain.NewChecksum("Kingfisher", "1"),
	}
	sim := record(fingerprint, "Alamofire: old", "Feature: 1", "Kingfisher: 1", "Moya: 1")
	ios := record(fingerprint, "Alamofire: old", "Feature: 1", "Moya: 1")

	base := checksum.ClassifyRequest{
		Graph:        classifyGraph(t),
		Candidates:   []string{"Alamofire", "Feature", "Kingfisher", "Moya"},
		Checksums:    sums,
		Records:      map[domain.SDK]*domain.BuildCacheRecord{domain.SDKSimulator: sim, domain.SDKDevice: ios},
		Fingerprints: map[domain.SDK]checksum.Fingerprint{domain.SDKSimulator: fingerprint, domain.SDKDevice: fingerprint},
		SDKs:         []domain.SDK{domain.SDKSimulator},
		BundlePresent: func(string, domain.SDK) bool {
			return true
		},
	}

	t.Run("changed module only", func(t *testing.T) {
		out := checksum.Classify(base)
		assert.Equal(t, []string{"Alamofire"}, out.Dirty)
		assert.Equal(t, []string{"Feature", "Kingfisher", "Moya"}, out.Cacheable)
	})

	t.Run("dependents follow", func(t *testing.T) {
		req := base
		req.ExpandDependents = true
		out := checksum.Classify(req)
		assert.Equal(t, []string{"Alamofire", "Feature", "Moya"}, out.Dirty)
		assert.Equal(t, []string{"Kingfisher"}, out.Cacheable)
	})

	t.Run("dependents outside candidates stay out", func(t *testing.T) {
		req := base
		req.ExpandDependents = true
		req.Candidates = []string{"Alamofire", "Kingfisher", "Moya"}
		out := checksum.Classify(req)
		assert.Equal(t, []string{"Alamofire", "Moya"}, out.Dirty)
	})

	t.Run("every sdk must be reusable", func(t *testing.T) {
		req := base
		req.SDKs = []domain.SDK{domain.SDKSimulator, domain.SDKDevice}
		out := checksum.Classify(req)
		assert.Equal(t, []string{"Alamofire", "Kingfisher"}, out.Dirty)
	})

	t.Run("missing bundle slice", func(t *testing.T) {
		req := base
		req.BundlePresent = func(name string, _ domain.SDK) bool { return name != "Moya" }
		out := checksum.Classify(req)
		assert.Equal(t, []string{"Alamofire", "Moya"}, out.Dirty)
	})

	t.Run("ignore checksums", func(t *testing.T) {
		req := base
		req.IgnoreChecksums = true
		out := checksum.Classify(req)
		assert.Empty(t, out.Dirty)
	})

	t.Run("first run", func(t *testing.T) {
		req := base
		req.Records = nil
		req.BundlePresent = nil
		out := checksum.Classify(req)
		assert.Equal(t, []string{"Alamofire", "Feature", "Kingfisher", "Moya"}, out.Dirty)
		assert.Empty(t, out.Cacheable)
	})
}

func TestMergeRecord(t *testing.T) {
	prev := record(fingerprint, "Alamofire: old", "Excluded: 1", "Moya: 1")

	rec := checksum.MergeRecord(prev, checksum.RecordUpdate{
		SDK:         domain.SDKSimulator,
		Fingerprint: fingerprint,
		Upsert: map[string]domain.Checksum{
			"Alamofire": domain.NewChecksum("Alamofire", "new"),
			"Feature":   domain.NewChecksum("Feature", "1"),
		},
		Drop: []string{"Moya"},
	})

	assert.Equal(t, domain.SDKSimulator, rec.SDK)
	assert.Equal(t, fingerprint.Tooling, rec.ToolingVersion)
	assert.Equal(t, fingerprint.Arch, rec.Arch)
	assert.Equal(t, []string{"Alamofire: new", "Excluded: 1", "Feature: 1"}, rec.Checksums)

	t.Run("new environment drops old entries", func(t *testing.T) {
		fp := checksum.Fingerprint{Tooling: "Xcode 16", Flags: fingerprint.Flags, Arch: fingerprint.Arch}
		rec := checksum.MergeRecord(prev, checksum.RecordUpdate{
			SDK:         domain.SDKSimulator,
			Fingerprint: fp,
			Upsert:      map[string]domain.Checksum{"Moya": domain.NewChecksum("Moya", "2")},
		})
		assert.Equal(t, []string{"Moya: 2"}, rec.Checksums)
		assert.Equal(t, "Xcode 16", rec.ToolingVersion)
	})

	t.Run("first run", func(t *testing.T) {
		rec := checksum.MergeRecord(nil, checksum.RecordUpdate{SDK: domain.SDKDevice, Fingerprint: fingerprint})
		assert.Empty(t, rec.Checksums)
		assert.Equal(t, domain.SDKDevice, rec.SDK)
	})
}
