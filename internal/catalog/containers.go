package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"magf/internal/magf"
)

const entryColumns = "id, name, frame_count, width, height, fps, duration, has_audio, has_text, encoded_size, metadata_json, created_at"

// DefaultName is the name given to entries created without one.
func DefaultName(id int64) string {
	return fmt.Sprintf("MAGF-%d", id)
}

// Create validates req by encoding it and stores its assets in a single
// transaction.
func (s *Store) Create(ctx context.Context, req CreateRequest) (*Entry, error) {
	ctx = ensureContext(ctx)
	fps := req.FPS
	if fps == 0 {
		fps = s.defaultFPS
	}
	input := magf.EncodeInput{
		Frames:    req.Frames,
		Audio:     req.Audio,
		Subtitles: req.Subtitles,
		FPS:       fps,
		Duration:  req.Duration,
	}
	encoded, err := s.encoder.Encode(input)
	if err != nil {
		return nil, fmt.Errorf("validate container: %w", err)
	}
	duration := req.Duration
	if duration == 0 {
		duration = float64(len(req.Frames)) / float64(fps)
	}

	var metadataJSON sql.NullString
	if len(req.Metadata) > 0 {
		data, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
		metadataJSON = sql.NullString{String: string(data), Valid: true}
	}
	var subtitlesJSON sql.NullString
	if req.Subtitles != nil {
		data, err := json.Marshal(req.Subtitles)
		if err != nil {
			return nil, fmt.Errorf("marshal subtitles: %w", err)
		}
		subtitlesJSON = sql.NullString{String: string(data), Valid: true}
	}
	var audio any
	if len(req.Audio) > 0 {
		audio = req.Audio
	}

	name := strings.TrimSpace(req.Name)
	first := req.Frames[0]
	created := time.Now().UTC()

	var id int64
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO containers (
                name, frame_count, width, height, fps, duration, has_audio, has_text,
                encoded_size, metadata_json, audio, subtitles_json, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			name,
			len(req.Frames),
			first.Width,
			first.Height,
			fps,
			duration,
			boolToInt(len(req.Audio) > 0),
			boolToInt(req.Subtitles != nil),
			len(encoded),
			metadataJSON,
			audio,
			subtitlesJSON,
			created.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert container: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		if name == "" {
			if _, err := tx.ExecContext(ctx, `UPDATE containers SET name = ? WHERE id = ?`, DefaultName(id), id); err != nil {
				return fmt.Errorf("assign default name: %w", err)
			}
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO frames (container_id, frame_index, data, width, height) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare frame insert: %w", err)
		}
		defer stmt.Close()
		for i, frame := range req.Frames {
			if _, err := stmt.ExecContext(ctx, id, i, frame.Data, frame.Width, frame.Height); err != nil {
				return fmt.Errorf("insert frame %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Get fetches an entry by identifier.
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM containers WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get container: %w", err)
	}
	return entry, nil
}

// List returns every entry ordered by id.
func (s *Store) List(ctx context.Context) ([]*Entry, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM containers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan container: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Delete removes an entry and its frames.
func (s *Store) Delete(ctx context.Context, id int64) error {
	ctx = ensureContext(ctx)
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM containers WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete container: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil
	})
}

// Assets loads the stored payloads for an entry.
func (s *Store) Assets(ctx context.Context, id int64) (*Assets, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx = ensureContext(ctx)

	var (
		audio         []byte
		subtitlesJSON sql.NullString
	)
	if err := s.db.QueryRowContext(ctx,
		`SELECT audio, subtitles_json FROM containers WHERE id = ?`, id,
	).Scan(&audio, &subtitlesJSON); err != nil {
		return nil, fmt.Errorf("load container assets: %w", err)
	}
	assets := &Assets{Entry: entry, Audio: audio}
	if entry.HasText {
		cues := []magf.Cue{}
		if subtitlesJSON.Valid {
			if err := json.Unmarshal([]byte(subtitlesJSON.String), &cues); err != nil {
				return nil, fmt.Errorf("decode stored subtitles: %w", err)
			}
		}
		assets.Subtitles = cues
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT data, width, height FROM frames WHERE container_id = ? ORDER BY frame_index`, id)
	if err != nil {
		return nil, fmt.Errorf("load frames: %w", err)
	}
	defer rows.Close()
	assets.Frames = make([]magf.Frame, 0, entry.FrameCount)
	for rows.Next() {
		var frame magf.Frame
		if err := rows.Scan(&frame.Data, &frame.Width, &frame.Height); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		assets.Frames = append(assets.Frames, frame)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(assets.Frames) != entry.FrameCount {
		return nil, fmt.Errorf("container %d: stored %d frames, expected %d", id, len(assets.Frames), entry.FrameCount)
	}
	return assets, nil
}

// Export encodes a stored entry into container bytes.
func (s *Store) Export(ctx context.Context, id int64) ([]byte, error) {
	assets, err := s.Assets(ctx, id)
	if err != nil {
		return nil, err
	}
	buf, err := s.encoder.Encode(assets.EncodeInput())
	if err != nil {
		return nil, fmt.Errorf("encode container %d: %w", id, err)
	}
	return buf, nil
}

// Stats counts entries, frames and the total exported size.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	var stats Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(frame_count), 0), COALESCE(SUM(encoded_size), 0) FROM containers`,
	).Scan(&stats.Containers, &stats.Frames, &stats.EncodedSize)
	if err != nil {
		return Stats{}, fmt.Errorf("catalog stats: %w", err)
	}
	return stats, nil
}
