package checksum

import (
	"slices"

	"go.trai.ch/bake/internal/core/domain"
)

// ClassifyRequest holds everything needed to split candidates into dirty
// and cacheable modules.
type ClassifyRequest struct {
	Graph      *domain.Graph
	Candidates []string
	Checksums  map[string]domain.Checksum
	Records    map[domain.SDK]*domain.BuildCacheRecord
	// Fingerprints holds the expected build environment per SDK.
	Fingerprints map[domain.SDK]Fingerprint
	SDKs         []domain.SDK
	// IgnoreChecksums reuses every module that has a bundle.
	IgnoreChecksums bool
	// ExpandDependents marks the dependents of dirty modules dirty as well.
	ExpandDependents bool
	// BundlePresent reports whether the module's bundle has a slice for the SDK.
	BundlePresent func(name string, sdk domain.SDK) bool
}

// Classification is the outcome of Classify. Both lists are sorted.
type Classification struct {
	Dirty     []string
	Cacheable []string
}

// Classify applies IsReusable for every requested SDK. A module is cacheable
// only if it is reusable for all of them. With ExpandDependents, candidates
// depending on a dirty module are dirty too.
func Classify(req ClassifyRequest) Classification {
	dirty := map[string]bool{}
	for _, name := range req.Candidates {
		for _, sdk := range req.SDKs {
			present := req.BundlePresent != nil && req.BundlePresent(name, sdk)
			if !IsReusable(req.Checksums[name], req.Records[sdk], req.Fingerprints[sdk], req.IgnoreChecksums, present) {
				dirty[name] = true
				break
			}
		}
	}

	if req.ExpandDependents && len(dirty) > 0 && req.Graph != nil {
		seeds := make([]string, 0, len(dirty))
		for name := range dirty {
			seeds = append(seeds, name)
		}
		for _, dependent := range req.Graph.Dependents(seeds) {
			if slices.Contains(req.Candidates, dependent) {
				dirty[dependent] = true
			}
		}
	}

	var out Classification
	for _, name := range req.Candidates {
		if dirty[name] {
			out.Dirty = append(out.Dirty, name)
		} else {
			out.Cacheable = append(out.Cacheable, name)
		}
	}
	slices.Sort(out.Dirty)
	slices.Sort(out.Cacheable)
	return out
}
