package magf

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// EncodeInput carries the assets for one container. Audio is written only
// when non-empty. Subtitles are written whenever the slice is non-nil, so an
// empty non-nil slice produces an empty cue list.
type EncodeInput struct {
	Frames    []Frame
	Audio     []byte
	Subtitles []Cue
	FPS       int
	// Duration in seconds. Zero means len(Frames)/FPS.
	Duration float64
}

// Encoder builds containers. The zero value takes width and height from the
// first frame and ignores the rest.
type Encoder struct {
	// StrictDimensions rejects frames whose dimensions differ from the first.
	StrictDimensions bool
}

// Encode builds a container with the permissive zero-value Encoder.
func Encode(in EncodeInput) ([]byte, error) {
	return Encoder{}.Encode(in)
}

// Encode validates in and assembles a container. The result never exceeds
// MaxContainerSize.
func (e Encoder) Encode(in EncodeInput) ([]byte, error) {
	if err := e.validate(in); err != nil {
		return nil, err
	}

	duration := in.Duration
	if duration == 0 {
		duration = float64(len(in.Frames)) / float64(in.FPS)
	}

	manifest := Manifest{
		Frames: len(in.Frames),
		Width:  in.Frames[0].Width,
		Height: in.Frames[0].Height,
		Audio:  len(in.Audio) > 0,
		Text:   in.Subtitles != nil,
		FPS:    in.FPS,
	}
	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	var cuesJSON []byte
	if manifest.Text {
		cuesJSON, err = json.Marshal(in.Subtitles)
		if err != nil {
			return nil, fmt.Errorf("%w: encode subtitles: %v", ErrInvalidInput, err)
		}
	}

	size := HeaderSize + lengthPrefixSize + len(manifestJSON)
	for _, frame := range in.Frames {
		size += lengthPrefixSize + len(frame.Data)
	}
	if manifest.Audio {
		size += lengthPrefixSize + len(in.Audio)
	}
	if manifest.Text {
		size += lengthPrefixSize + len(cuesJSON)
	}
	if size > MaxContainerSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrSizeLimitExceeded, size, MaxContainerSize)
	}

	buf := make([]byte, HeaderSize, size)
	Header{
		Version:  Version,
		Duration: float32(duration),
		FPS:      uint16(in.FPS),
	}.put(buf)

	buf = appendChunk(buf, manifestJSON)
	for _, frame := range in.Frames {
		buf = appendChunk(buf, frame.Data)
	}
	if manifest.Audio {
		buf = appendChunk(buf, in.Audio)
	}
	if manifest.Text {
		buf = appendChunk(buf, cuesJSON)
	}

	if len(buf) > MaxContainerSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrSizeLimitExceeded, len(buf), MaxContainerSize)
	}
	return buf, nil
}

func (e Encoder) validate(in EncodeInput) error {
	if len(in.Frames) == 0 {
		return fmt.Errorf("%w: no frames", ErrInvalidInput)
	}
	if in.FPS <= 0 || in.FPS > math.MaxUint16 {
		return fmt.Errorf("%w: fps %d out of range", ErrInvalidInput, in.FPS)
	}
	if in.Duration < 0 || math.IsNaN(in.Duration) || math.IsInf(in.Duration, 0) {
		return fmt.Errorf("%w: duration %v", ErrInvalidInput, in.Duration)
	}
	first := in.Frames[0]
	if first.Width < 0 || first.Height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidInput, first.Width, first.Height)
	}
	for i, frame := range in.Frames {
		if len(frame.Data) == 0 {
			return fmt.Errorf("%w: frame %d is empty", ErrInvalidInput, i)
		}
		if e.StrictDimensions && (frame.Width != first.Width || frame.Height != first.Height) {
			return fmt.Errorf("%w: frame %d is %dx%d, frame 0 is %dx%d",
				ErrInconsistentFrameDimensions, i, frame.Width, frame.Height, first.Width, first.Height)
		}
	}
	for i, cue := range in.Subtitles {
		if err := checkCue(cue); err != nil {
			return fmt.Errorf("%w: cue %d: %v", ErrInvalidInput, i, err)
		}
	}
	return nil
}

// checkCue applies the window rules shared by Encode and Decode.
func checkCue(cue Cue) error {
	switch {
	case math.IsNaN(cue.Start) || math.IsNaN(cue.End) || math.IsInf(cue.Start, 0) || math.IsInf(cue.End, 0):
		return fmt.Errorf("non-finite window [%v, %v]", cue.Start, cue.End)
	case cue.Start < 0:
		return fmt.Errorf("negative start %v", cue.Start)
	case cue.End < cue.Start:
		return fmt.Errorf("end %v before start %v", cue.End, cue.Start)
	}
	return nil
}

func appendChunk(buf, payload []byte) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(payload)))
	return append(buf, payload...)
}
