package magf

import (
	"errors"
	"fmt"
)

// Sentinel errors for container handling. Every failure returned by this
// package, and by asset decoders built on it, wraps exactly one of these.
var (
	ErrInvalidInput                = errors.New("magf: invalid encode input")
	ErrInvalidFormat               = errors.New("magf: invalid format")
	ErrTruncatedInput              = errors.New("magf: truncated input")
	ErrSizeLimitExceeded           = errors.New("magf: size limit exceeded")
	ErrAssetDecode                 = errors.New("magf: asset decode failed")
	ErrInconsistentFrameDimensions = errors.New("magf: inconsistent frame dimensions")
)

// ParseError records which region of the container was being read and the
// byte offset where reading stopped.
type ParseError struct {
	Region string
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("magf: parse %s at offset %d: %v", e.Region, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Asset kinds reported by AssetError.
const (
	AssetFrame = "frame"
	AssetAudio = "audio"
)

// AssetError reports a frame or audio payload that the media layer could not
// turn into a renderable form. Index is the frame position, or -1 for audio.
type AssetError struct {
	Kind  string
	Index int
	Err   error
}

func (e *AssetError) Error() string {
	if e.Kind == AssetFrame {
		return fmt.Sprintf("magf: decode frame %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("magf: decode %s: %v", e.Kind, e.Err)
}

// Unwrap exposes both ErrAssetDecode and the underlying decoder error.
func (e *AssetError) Unwrap() []error {
	return []error{ErrAssetDecode, e.Err}
}

func parseErr(region string, offset int, sentinel error, detail string) error {
	return &ParseError{Region: region, Offset: offset, Err: fmt.Errorf("%w: %s", sentinel, detail)}
}
