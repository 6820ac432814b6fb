package api

import (
	"maps"

	"magf/internal/catalog"
	"magf/internal/preflight"
)

// FromEntry converts a catalog entry to its API representation.
func FromEntry(entry *catalog.Entry) ContainerSummary {
	if entry == nil {
		return ContainerSummary{}
	}
	dto := ContainerSummary{
		ID:          entry.ID,
		Name:        entry.Name,
		FrameCount:  entry.FrameCount,
		Width:       entry.Width,
		Height:      entry.Height,
		FPS:         entry.FPS,
		Duration:    entry.Duration,
		HasAudio:    entry.HasAudio,
		HasText:     entry.HasText,
		EncodedSize: entry.EncodedSize,
		Metadata:    maps.Clone(entry.Metadata),
	}
	if !entry.CreatedAt.IsZero() {
		dto.CreatedAt = entry.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromEntries converts a slice of entries, never returning nil.
func FromEntries(entries []*catalog.Entry) []ContainerSummary {
	out := make([]ContainerSummary, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		out = append(out, FromEntry(entry))
	}
	return out
}

// FromCatalogStats converts catalog statistics.
func FromCatalogStats(stats catalog.Stats) CatalogStats {
	return CatalogStats{
		Containers:  stats.Containers,
		Frames:      stats.Frames,
		EncodedSize: stats.EncodedSize,
	}
}

// FromPreflight converts preflight results.
func FromPreflight(results []preflight.Result) []CheckResult {
	out := make([]CheckResult, 0, len(results))
	for _, r := range results {
		out = append(out, CheckResult{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return out
}
