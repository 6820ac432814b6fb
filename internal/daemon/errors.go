package daemon

import (
	"errors"
	"net/http"

	"magf/internal/catalog"
	"magf/internal/magf"
)

var (
	errBadRequest = errors.New("bad request")
	errBadID      = errors.New("invalid container id")
)

// statusFor maps an error to an HTTP status and a stable error code. More
// specific sentinels are checked first.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, magf.ErrSizeLimitExceeded):
		return http.StatusRequestEntityTooLarge, "size_limit_exceeded"
	case errors.Is(err, magf.ErrInconsistentFrameDimensions):
		return http.StatusBadRequest, "inconsistent_frame_dimensions"
	case errors.Is(err, magf.ErrAssetDecode):
		return http.StatusBadRequest, "asset_decode"
	case errors.Is(err, magf.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, magf.ErrTruncatedInput):
		return http.StatusBadRequest, "truncated_input"
	case errors.Is(err, magf.ErrInvalidFormat):
		return http.StatusBadRequest, "invalid_format"
	case errors.Is(err, errBadID):
		return http.StatusBadRequest, "invalid_id"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
