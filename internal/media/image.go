package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF frames
	_ "image/jpeg" // register JPEG frames
	_ "image/png"  // register PNG frames

	_ "golang.org/x/image/bmp"  // register BMP frames
	_ "golang.org/x/image/webp" // register WebP frames

	"magf/internal/magf"
)

// ImageInfo is the header-level description of a frame payload.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// DecodeImage decodes a still image of any registered format.
func DecodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("decode image: empty payload")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// DecodeFrame decodes the frame at index, reporting failures as an
// AssetError for that position.
func DecodeFrame(index int, data []byte) (image.Image, error) {
	img, _, err := DecodeImage(data)
	if err != nil {
		return nil, &magf.AssetError{Kind: magf.AssetFrame, Index: index, Err: err}
	}
	return img, nil
}

// ProbeImage reads only the image header.
func ProbeImage(data []byte) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("probe image: %w", err)
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// ProbeFrames builds encoder frames from raw blobs, filling in dimensions
// from each image header.
func ProbeFrames(blobs [][]byte) ([]magf.Frame, error) {
	frames := make([]magf.Frame, len(blobs))
	for i, blob := range blobs {
		info, err := ProbeImage(blob)
		if err != nil {
			return nil, &magf.AssetError{Kind: magf.AssetFrame, Index: i, Err: err}
		}
		frames[i] = magf.Frame{Data: blob, Width: info.Width, Height: info.Height}
	}
	return frames, nil
}
