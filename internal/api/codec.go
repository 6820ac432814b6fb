package api

import (
	"fmt"
	"time"

	"magf/internal/magf"
	"magf/internal/media"
	"magf/internal/subtitles"
)

// EncodeRequest builds a container from req without storing it. FPS zero
// selects defaultFPS.
func EncodeRequest(req CreateContainerRequest, enc magf.Encoder, defaultFPS int) ([]byte, error) {
	createReq, err := BuildCreateRequest(req)
	if err != nil {
		return nil, err
	}
	fps := createReq.FPS
	if fps == 0 {
		fps = defaultFPS
	}
	return enc.Encode(magf.EncodeInput{
		Frames:    createReq.Frames,
		Audio:     createReq.Audio,
		Subtitles: createReq.Subtitles,
		FPS:       fps,
		Duration:  createReq.Duration,
	})
}

// Inspect decodes buf and describes its structure. Frame and audio payloads
// are probed, but a payload that fails to probe is reported in the result
// rather than failing the inspection.
func Inspect(buf []byte) (*InspectResult, error) {
	c, err := magf.Decode(buf)
	if err != nil {
		return nil, err
	}

	result := &InspectResult{
		Version:    c.Header.Version,
		Duration:   float64(c.Header.Duration),
		FPS:        int(c.Header.FPS),
		IntervalMS: float64(c.Interval()) / float64(time.Millisecond),
		Manifest:   c.Manifest,
		Frames:     make([]FrameInfo, len(c.Frames)),
		Subtitles:  c.Subtitles,
		TotalSize:  c.Size(),
	}
	if c.Manifest.FPS != int(c.Header.FPS) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("manifest fps %d differs from header fps %d", c.Manifest.FPS, c.Header.FPS))
	}

	for i, blob := range c.Frames {
		info := FrameInfo{Index: i, Size: len(blob)}
		probe, err := media.ProbeImage(blob)
		if err != nil {
			info.Error = err.Error()
			result.Warnings = append(result.Warnings, fmt.Sprintf("frame %d: %v", i, err))
		} else {
			info.Format, info.Width, info.Height = probe.Format, probe.Width, probe.Height
			if probe.Width != c.Manifest.Width || probe.Height != c.Manifest.Height {
				result.Warnings = append(result.Warnings, fmt.Sprintf("frame %d is %dx%d, manifest says %dx%d",
					i, probe.Width, probe.Height, c.Manifest.Width, c.Manifest.Height))
			}
		}
		result.Frames[i] = info
	}

	if c.HasAudio() {
		info := &AudioInfo{Size: len(c.Audio)}
		audio, err := media.DecodeAudio(c.Audio)
		if err != nil {
			info.Error = err.Error()
			result.Warnings = append(result.Warnings, err.Error())
		} else {
			info.SampleRate = audio.SampleRate
			info.Channels = audio.Channels
			info.BitDepth = audio.BitDepth
			info.Seconds = audio.Duration().Seconds()
		}
		result.Audio = info
	}

	result.Warnings = append(result.Warnings, subtitles.Validate(c.Subtitles, result.Duration)...)
	return result, nil
}
