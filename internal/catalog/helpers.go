package catalog

import (
	"database/sql"
	"encoding/json"
	"time"
)

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry      Entry
		hasAudio   int64
		hasText    int64
		metadata   sql.NullString
		createdRaw string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.Name,
		&entry.FrameCount,
		&entry.Width,
		&entry.Height,
		&entry.FPS,
		&entry.Duration,
		&hasAudio,
		&hasText,
		&entry.EncodedSize,
		&metadata,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	entry.HasAudio = hasAudio != 0
	entry.HasText = hasText != 0
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &entry.Metadata); err != nil {
			return nil, err
		}
	}
	entry.CreatedAt = parseTime(createdRaw)
	return &entry, nil
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	return time.Time{}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
