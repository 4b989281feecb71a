package checksum

import (
	"maps"

	"go.trai.ch/bake/internal/core/domain"
)

// RecordUpdate describes how one SDK record changes at the end of a run.
type RecordUpdate struct {
	SDK         domain.SDK
	Fingerprint Fingerprint
	// Upsert holds the checksums of reused and freshly bundled modules.
	Upsert map[string]domain.Checksum
	// Drop lists modules whose entry must disappear, e.g. missing bundles.
	Drop []string
}

// MergeRecord applies an update to the previous record of the SDK.
// Entries of modules outside the run survive only when the previous record
// was written for the same build environment.
func MergeRecord(prev *domain.BuildCacheRecord, update RecordUpdate) domain.BuildCacheRecord {
	entries := map[string]domain.Checksum{}
	if prev != nil && prev.ToolingVersion == update.Fingerprint.Tooling && prev.SameFlags(update.Fingerprint.Flags) &&
		(prev.Arch == "" || prev.Arch == update.Fingerprint.Arch) {
		entries = prev.ChecksumMap()
	}

	maps.Copy(entries, update.Upsert)
	for _, name := range update.Drop {
		delete(entries, name)
	}

	rec := domain.BuildCacheRecord{
		SDK:            update.SDK,
		Arch:           update.Fingerprint.Arch,
		ToolingVersion: update.Fingerprint.Tooling,
		BuildFlags:     update.Fingerprint.Flags,
	}
	rec.SetChecksums(entries)
	return rec
}
