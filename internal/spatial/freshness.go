package spatial

// Freshness classifies how a persisted index relates to the dataset it is
// being used with.
type Freshness int

const (
	// Fresh means the index was built from exactly this dataset snapshot.
	Fresh Freshness = iota
	// Stale means the index decodes fine but was built from a different
	// snapshot. Callers should rebuild; using it is not an error.
	Stale
	// LegacyFormat means the index predates dataset metadata, so freshness
	// cannot be determined. Treated like Stale by cautious callers.
	LegacyFormat
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	case LegacyFormat:
		return "legacy"
	default:
		return "unknown"
	}
}

// CheckFreshness compares an index's recorded dataset identity against the
// current dataset's fingerprint and release tag. An empty release tag on
// either side skips the tag comparison.
func CheckFreshness(idx *Index, fingerprint [32]byte, releaseTag string) Freshness {
	meta := idx.Metadata()
	if meta == nil {
		return LegacyFormat
	}
	if meta.DatasetChecksum != fingerprint {
		return Stale
	}
	if releaseTag != "" && meta.ReleaseTag != "" && meta.ReleaseTag != releaseTag {
		return Stale
	}
	return Fresh
}
