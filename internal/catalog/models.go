package catalog

import (
	"errors"
	"time"

	"magf/internal/magf"
)

// ErrNotFound is returned when no container has the requested id.
var ErrNotFound = errors.New("container not found")

// Entry describes one catalogued container without its assets.
type Entry struct {
	ID         int64
	Name       string
	FrameCount int
	Width      int
	Height     int
	FPS        int
	Duration   float64
	HasAudio   bool
	HasText    bool
	// EncodedSize is the exact size Export produces.
	EncodedSize int
	Metadata    map[string]string
	CreatedAt   time.Time
}

// CreateRequest carries the assets for a new catalog entry. FPS zero selects
// the store default; Duration zero derives it from the frame count.
type CreateRequest struct {
	Name      string
	Frames    []magf.Frame
	Audio     []byte
	Subtitles []magf.Cue
	FPS       int
	Duration  float64
	Metadata  map[string]string
}

// Assets are the stored payloads for one entry, frames in table order.
// Subtitles is nil when the entry has no text track.
type Assets struct {
	Entry     *Entry
	Frames    []magf.Frame
	Audio     []byte
	Subtitles []magf.Cue
}

// EncodeInput converts the assets back into encoder input.
func (a *Assets) EncodeInput() magf.EncodeInput {
	return magf.EncodeInput{
		Frames:    a.Frames,
		Audio:     a.Audio,
		Subtitles: a.Subtitles,
		FPS:       a.Entry.FPS,
		Duration:  a.Entry.Duration,
	}
}

// Stats summarises the catalog.
type Stats struct {
	Containers  int
	Frames      int
	EncodedSize int64
}
