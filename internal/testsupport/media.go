package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"magf/internal/magf"
	"magf/internal/media"
)

// PNGFrame renders a solid grey PNG of the given size.
func PNGFrame(t testing.TB, width, height int, shade uint8) magf.Frame {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: shade})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return magf.Frame{Data: buf.Bytes(), Width: width, Height: height}
}

// PNGFrames returns n distinct frames of the same size.
func PNGFrames(t testing.TB, n, width, height int) []magf.Frame {
	t.Helper()

	frames := make([]magf.Frame, n)
	for i := range frames {
		frames[i] = PNGFrame(t, width, height, uint8(i*16))
	}
	return frames
}

// WAVClip returns a short mono 16-bit sine tone as WAV bytes.
func WAVClip(t testing.TB, length time.Duration) []byte {
	t.Helper()

	data, err := media.EncodeWAVBytes(media.SineTone(440, length, 8000, 1))
	if err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	return data
}

// WriteFile writes data below dir and returns the full path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
