package magf

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Regions named in ParseError.
const (
	RegionHeader   = "header"
	RegionManifest = "manifest"
	RegionFrames   = "frames"
	RegionAudio    = "audio"
	RegionText     = "text"
	RegionTrailer  = "trailer"
)

// cursor reads length-prefixed chunks from buf without copying.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

// chunk reads a u32 length prefix and returns the payload it covers. The
// returned slice shares buf but cannot be appended into the next region.
func (c *cursor) chunk(region string) ([]byte, error) {
	if c.remaining() < lengthPrefixSize {
		return nil, parseErr(region, c.off, ErrTruncatedInput,
			fmt.Sprintf("need %d-byte length prefix, have %d", lengthPrefixSize, c.remaining()))
	}
	n := uint64(binary.LittleEndian.Uint32(c.buf[c.off:]))
	start := c.off + lengthPrefixSize
	if n > uint64(len(c.buf)-start) {
		return nil, parseErr(region, c.off, ErrTruncatedInput,
			fmt.Sprintf("declared %d bytes, have %d", n, len(c.buf)-start))
	}
	end := start + int(n)
	c.off = end
	return c.buf[start:end:end], nil
}

// Decode parses buf into a Container. It never modifies buf; the returned
// frame and audio slices point into it.
func Decode(buf []byte) (*Container, error) {
	if len(buf) < HeaderSize {
		return nil, parseErr(RegionHeader, 0, ErrInvalidFormat,
			fmt.Sprintf("need %d header bytes, have %d", HeaderSize, len(buf)))
	}
	if !bytes.Equal(buf[offsetMagic:offsetVersion], []byte(Magic)) {
		return nil, parseErr(RegionHeader, offsetMagic, ErrInvalidFormat,
			fmt.Sprintf("bad magic %q", buf[offsetMagic:offsetVersion]))
	}
	header := readHeader(buf)
	switch {
	case header.Version != Version:
		return nil, parseErr(RegionHeader, offsetVersion, ErrInvalidFormat,
			fmt.Sprintf("unsupported version %d", header.Version))
	case header.Flags != 0:
		return nil, parseErr(RegionHeader, offsetFlags, ErrInvalidFormat,
			fmt.Sprintf("reserved flags set: %#04x", header.Flags))
	case header.FPS == 0:
		return nil, parseErr(RegionHeader, offsetFPS, ErrInvalidFormat, "fps is zero")
	}

	cur := &cursor{buf: buf, off: HeaderSize}

	manifestOff := cur.off
	raw, err := cur.chunk(RegionManifest)
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, parseErr(RegionManifest, manifestOff, ErrInvalidFormat, err.Error())
	}
	switch {
	case manifest.Frames < 1:
		return nil, parseErr(RegionManifest, manifestOff, ErrInvalidFormat,
			fmt.Sprintf("frame count %d", manifest.Frames))
	case manifest.Width < 0 || manifest.Height < 0:
		return nil, parseErr(RegionManifest, manifestOff, ErrInvalidFormat,
			fmt.Sprintf("negative dimensions %dx%d", manifest.Width, manifest.Height))
	}

	// Every entry needs at least its prefix, so the count is capped by what
	// the buffer could possibly hold.
	capacity := min(manifest.Frames, cur.remaining()/lengthPrefixSize)
	frames := make([][]byte, 0, capacity)
	for i := 0; i < manifest.Frames; i++ {
		frame, err := cur.chunk(RegionFrames)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}

	container := &Container{
		Header:   header,
		Manifest: manifest,
		Frames:   frames,
	}

	if manifest.Audio {
		if container.Audio, err = cur.chunk(RegionAudio); err != nil {
			return nil, err
		}
	}

	if manifest.Text {
		textOff := cur.off
		raw, err := cur.chunk(RegionText)
		if err != nil {
			return nil, err
		}
		cues := []Cue{}
		if err := json.Unmarshal(raw, &cues); err != nil {
			return nil, parseErr(RegionText, textOff, ErrInvalidFormat, err.Error())
		}
		if cues == nil {
			cues = []Cue{}
		}
		for i, cue := range cues {
			if err := checkCue(cue); err != nil {
				return nil, parseErr(RegionText, textOff, ErrInvalidFormat,
					fmt.Sprintf("cue %d: %v", i, err))
			}
		}
		container.Subtitles = cues
	}

	if cur.remaining() != 0 {
		return nil, parseErr(RegionTrailer, cur.off, ErrInvalidFormat,
			fmt.Sprintf("%d unexpected trailing bytes", cur.remaining()))
	}
	container.size = len(buf)
	return container, nil
}
