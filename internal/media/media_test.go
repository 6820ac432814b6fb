package media_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"magf/internal/magf"
	"magf/internal/media"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeFramePNG(t *testing.T) {
	data := encodePNG(t, 8, 6, color.RGBA{R: 255, A: 255})
	img, err := media.DecodeFrame(0, data)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Fatalf("unexpected bounds %v", b)
	}
	r, _, _, _ := img.At(3, 3).RGBA()
	if r>>8 != 255 {
		t.Fatalf("expected red pixel, got r=%d", r>>8)
	}
}

func TestDecodeImageJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	_, format, err := media.DecodeImage(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("format = %q", format)
	}
}

func TestDecodeFrameReportsAssetError(t *testing.T) {
	_, err := media.DecodeFrame(3, []byte("not an image"))
	if !errors.Is(err, magf.ErrAssetDecode) {
		t.Fatalf("expected ErrAssetDecode, got %v", err)
	}
	var asset *magf.AssetError
	if !errors.As(err, &asset) || asset.Kind != magf.AssetFrame || asset.Index != 3 {
		t.Fatalf("expected frame AssetError at index 3, got %#v", err)
	}
}

func TestProbeFrames(t *testing.T) {
	blobs := [][]byte{
		encodePNG(t, 10, 20, color.White),
		encodePNG(t, 30, 40, color.Black),
	}
	frames, err := media.ProbeFrames(blobs)
	if err != nil {
		t.Fatalf("ProbeFrames failed: %v", err)
	}
	if frames[0].Width != 10 || frames[0].Height != 20 || frames[1].Width != 30 || frames[1].Height != 40 {
		t.Fatalf("unexpected dimensions %+v", frames)
	}
	if !bytes.Equal(frames[1].Data, blobs[1]) {
		t.Fatal("frame data should be the original blob")
	}

	_, err = media.ProbeFrames([][]byte{blobs[0], []byte("junk")})
	var asset *magf.AssetError
	if !errors.As(err, &asset) || asset.Index != 1 {
		t.Fatalf("expected AssetError at index 1, got %v", err)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	tone := media.SineTone(440, 250*time.Millisecond, 8000, 2)
	data, err := media.EncodeWAVBytes(tone)
	if err != nil {
		t.Fatalf("EncodeWAVBytes failed: %v", err)
	}
	if string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("unexpected wav header %q", data[:12])
	}

	decoded, err := media.DecodeAudio(data)
	if err != nil {
		t.Fatalf("DecodeAudio failed: %v", err)
	}
	if decoded.SampleRate != 8000 || decoded.Channels != 2 || decoded.BitDepth != 16 {
		t.Fatalf("unexpected format %+v", decoded)
	}
	if len(decoded.Samples) != len(tone.Samples) {
		t.Fatalf("expected %d samples, got %d", len(tone.Samples), len(decoded.Samples))
	}
	for i := range tone.Samples {
		if decoded.Samples[i] != tone.Samples[i] {
			t.Fatalf("sample %d: want %d got %d", i, tone.Samples[i], decoded.Samples[i])
		}
	}
	if decoded.Duration() != 250*time.Millisecond {
		t.Fatalf("duration = %v", decoded.Duration())
	}
}

func TestDecodeAudioRejectsGarbage(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("this is not a riff file at all"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := media.DecodeAudio(data)
			if !errors.Is(err, magf.ErrAssetDecode) {
				t.Fatalf("expected ErrAssetDecode, got %v", err)
			}
			var asset *magf.AssetError
			if !errors.As(err, &asset) || asset.Kind != magf.AssetAudio {
				t.Fatalf("expected audio AssetError, got %#v", err)
			}
		})
	}
}
