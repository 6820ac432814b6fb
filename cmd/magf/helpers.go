package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"magf/internal/magf"
	"magf/internal/media"
	"magf/internal/subtitles"
)

// assetFlags collects the inputs shared by encode and catalog add.
type assetFlags struct {
	audioPath     string
	subtitlesPath string
	fps           int
	duration      float64
	stripAds      bool
}

func (f *assetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.audioPath, "audio", "", "WAV file to embed as the audio track")
	cmd.Flags().StringVar(&f.subtitlesPath, "subtitles", "", "Cue file (.srt or .json) to embed as the text track")
	cmd.Flags().IntVar(&f.fps, "fps", 0, "Frames per second (default from config)")
	cmd.Flags().Float64Var(&f.duration, "duration", 0, "Duration in seconds (default frames/fps)")
	cmd.Flags().BoolVar(&f.stripAds, "strip-ads", false, "Drop advertisement cues from the subtitles")
}

type loadedAssets struct {
	frames     []magf.Frame
	audio      []byte
	cues       []magf.Cue
	removedAds int
}

// load reads frame images in argument order plus the optional audio and cue files.
func (f *assetFlags) load(framePaths []string) (*loadedAssets, error) {
	if len(framePaths) == 0 {
		return nil, fmt.Errorf("%w: at least one frame image is required", magf.ErrInvalidInput)
	}
	blobs := make([][]byte, len(framePaths))
	for i, path := range framePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read frame %s: %w", path, err)
		}
		blobs[i] = data
	}
	frames, err := media.ProbeFrames(blobs)
	if err != nil {
		return nil, err
	}
	out := &loadedAssets{frames: frames}

	if path := strings.TrimSpace(f.audioPath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read audio: %w", err)
		}
		if _, err := media.DecodeAudio(data); err != nil {
			return nil, err
		}
		out.audio = data
	}

	if path := strings.TrimSpace(f.subtitlesPath); path != "" {
		cues, err := subtitles.Load(path)
		if err != nil {
			return nil, err
		}
		if f.stripAds {
			var stats subtitles.CleanStats
			cues, stats = subtitles.Clean(cues)
			out.removedAds = stats.RemovedCues
		}
		out.cues = cues
	}
	return out, nil
}

func (f *assetFlags) fpsOr(fallback int) int {
	if f.fps > 0 {
		return f.fps
	}
	return fallback
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid container id %q", value)
	}
	return id, nil
}

func formatBytes(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "s"
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
