// Package media turns the opaque payloads carried by a MAGF container into
// renderable forms and back.
//
// Frames are still images in any format registered with the image package:
// PNG, JPEG and GIF from the standard library plus WebP and BMP from
// golang.org/x/image. Audio is PCM WAV, read and written through
// github.com/go-audio/wav.
//
// Failures are reported as *magf.AssetError so callers can match them with
// errors.Is(err, magf.ErrAssetDecode).
package media
