package subtitles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"magf/internal/magf"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported subtitle format")

// ParseJSON reads the container's cue list form: [{"start","end","text"}].
func ParseJSON(r io.Reader) ([]magf.Cue, error) {
	var cues []magf.Cue
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cues); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if cues == nil {
		return []magf.Cue{}, nil
	}
	for i := range cues {
		cues[i].Text = norm.NFC.String(cues[i].Text)
	}
	return cues, nil
}

// Load reads a cue file, choosing the parser from its extension.
func Load(path string) ([]magf.Cue, error) {
	var parse func(io.Reader) ([]magf.Cue, error)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".srt":
		parse = ParseSRT
	case ".json":
		parse = ParseJSON
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open subtitles: %w", err)
	}
	defer f.Close()

	cues, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return cues, nil
}
