package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"magf/internal/magf"
)

const wavFormatPCM = 1

// Audio is decoded PCM held fully in memory. Samples are interleaved by
// channel.
type Audio struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Samples    []int
}

// Frames returns the number of sample frames (one sample per channel).
func (a *Audio) Frames() int {
	if a == nil || a.Channels <= 0 {
		return 0
	}
	return len(a.Samples) / a.Channels
}

// Duration is the playback length of the clip.
func (a *Audio) Duration() time.Duration {
	if a == nil || a.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(a.Frames()) / float64(a.SampleRate) * float64(time.Second))
}

// DecodeAudio decodes a PCM WAV payload.
func DecodeAudio(data []byte) (*Audio, error) {
	audio, err := decodeWAV(data)
	if err != nil {
		return nil, &magf.AssetError{Kind: magf.AssetAudio, Index: -1, Err: err}
	}
	return audio, nil
}

func decodeWAV(data []byte) (*Audio, error) {
	if len(data) == 0 {
		return nil, errors.New("empty payload")
	}
	dec := wav.NewDecoder(bytes.NewReader(data))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	if buf == nil || dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, errors.New("not a wav stream")
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("unsupported wav format %d", dec.WavAudioFormat)
	}
	return &Audio{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Samples:    buf.Data,
	}, nil
}

// EncodeWAV writes audio as PCM WAV. The writer must support seeking so the
// chunk sizes can be patched once all samples are written.
func EncodeWAV(w io.WriteSeeker, audio *Audio) error {
	if audio == nil || audio.Channels <= 0 || audio.SampleRate <= 0 {
		return errors.New("encode wav: incomplete format")
	}
	bitDepth := audio.BitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	enc := wav.NewEncoder(w, audio.SampleRate, bitDepth, audio.Channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: audio.Channels, SampleRate: audio.SampleRate},
		Data:           audio.Samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}

// EncodeWAVBytes is EncodeWAV into memory.
func EncodeWAVBytes(audio *Audio) ([]byte, error) {
	var buf seekBuffer
	if err := EncodeWAV(&buf, audio); err != nil {
		return nil, err
	}
	return buf.data, nil
}

// SineTone generates a 16-bit sine wave at freq Hz. The CLI uses it to
// produce placeholder soundtracks.
func SineTone(freq float64, length time.Duration, sampleRate, channels int) *Audio {
	if sampleRate <= 0 {
		sampleRate = 22050
	}
	if channels <= 0 {
		channels = 1
	}
	frames := int(length.Seconds() * float64(sampleRate))
	samples := make([]int, frames*channels)
	const amplitude = 0.4 * math.MaxInt16
	for i := 0; i < frames; i++ {
		v := int(amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
		for c := 0; c < channels; c++ {
			samples[i*channels+c] = v
		}
	}
	return &Audio{SampleRate: sampleRate, Channels: channels, BitDepth: 16, Samples: samples}
}

// seekBuffer is an in-memory io.WriteSeeker.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if end := b.pos + len(p); end > len(b.data) {
		b.data = append(b.data, make([]byte, end-len(b.data))...)
	}
	n := copy(b.data[b.pos:], p)
	b.pos += n
	return n, nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(b.pos)
	case io.SeekEnd:
		base = int64(len(b.data))
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	next := base + offset
	if next < 0 {
		return 0, errors.New("seek: negative position")
	}
	b.pos = int(next)
	return next, nil
}
