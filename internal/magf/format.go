package magf

import (
	"encoding/binary"
	"math"
	"time"
)

// Format constants.
const (
	// Magic identifies a MAGF container; it occupies the first six bytes.
	Magic = "MAGFJS"
	// Version is the only container version this package reads or writes.
	Version uint16 = 1
	// HeaderSize is the fixed length of the leading header.
	HeaderSize = 16
	// MaxContainerSize is the encode-time ceiling for a whole container.
	MaxContainerSize = 10 * 1024 * 1024
	// FileExtension is the conventional file suffix.
	FileExtension = ".magf"
	// MIMEType is the media type used when serving containers.
	MIMEType = "application/octet-stream"
	// DefaultFPS is applied by callers that accept an omitted frame rate.
	DefaultFPS = 15

	lengthPrefixSize = 4
)

// Header offsets, all little-endian.
const (
	offsetMagic    = 0
	offsetVersion  = 6
	offsetDuration = 8
	offsetFPS      = 12
	offsetFlags    = 14
)

// Header holds the fixed-size fields at the start of every container.
type Header struct {
	Version  uint16
	Duration float32
	FPS      uint16
	Flags    uint16
}

func (h Header) put(dst []byte) {
	copy(dst[offsetMagic:offsetVersion], Magic)
	binary.LittleEndian.PutUint16(dst[offsetVersion:], h.Version)
	binary.LittleEndian.PutUint32(dst[offsetDuration:], math.Float32bits(h.Duration))
	binary.LittleEndian.PutUint16(dst[offsetFPS:], h.FPS)
	binary.LittleEndian.PutUint16(dst[offsetFlags:], h.Flags)
}

func readHeader(src []byte) Header {
	return Header{
		Version:  binary.LittleEndian.Uint16(src[offsetVersion:]),
		Duration: math.Float32frombits(binary.LittleEndian.Uint32(src[offsetDuration:])),
		FPS:      binary.LittleEndian.Uint16(src[offsetFPS:]),
		Flags:    binary.LittleEndian.Uint16(src[offsetFlags:]),
	}
}

// Manifest describes the frame table and which optional chunks follow it.
// Width and Height come from the first frame only.
type Manifest struct {
	Frames int  `json:"frames"`
	Width  int  `json:"width"`
	Height int  `json:"height"`
	Audio  bool `json:"audio"`
	Text   bool `json:"text"`
	FPS    int  `json:"fps"`
}

// Cue is one subtitle entry. Start and End are seconds from playback start.
type Cue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Active reports whether t (seconds) falls inside the cue window. Both
// boundaries are inclusive.
func (c Cue) Active(t float64) bool {
	return t >= c.Start && t <= c.End
}

// ActiveCue returns the first cue, in list order, whose window contains t.
func ActiveCue(cues []Cue, t float64) (Cue, bool) {
	for _, cue := range cues {
		if cue.Active(t) {
			return cue, true
		}
	}
	return Cue{}, false
}

// Frame is one opaque still image plus its pixel dimensions.
type Frame struct {
	Data   []byte
	Width  int
	Height int
}

// Container is the parsed view of an encoded buffer. Frames and Audio alias
// the decoded buffer and must be treated as read-only.
type Container struct {
	Header    Header
	Manifest  Manifest
	Frames    [][]byte
	Audio     []byte
	Subtitles []Cue

	size int
}

// Interval is the time between frame advances, 1000/fps milliseconds.
func (c *Container) Interval() time.Duration {
	return FrameInterval(int(c.Header.FPS))
}

// HasAudio reports whether the container carried an audio chunk.
func (c *Container) HasAudio() bool {
	return c.Manifest.Audio
}

// HasText reports whether the container carried a cue list.
func (c *Container) HasText() bool {
	return c.Manifest.Text
}

// Size is the number of bytes the container occupied when decoded.
func (c *Container) Size() int {
	return c.size
}

// FrameInterval converts a frame rate to the tick interval. Non-positive
// rates yield zero.
func FrameInterval(fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(fps))
}
