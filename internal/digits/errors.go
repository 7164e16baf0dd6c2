package digits

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/numeral/internal/submissions"
	"github.com/JaimeStill/numeral/pkg/classifier"
	"github.com/JaimeStill/numeral/pkg/raster"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidScale   = errors.New("invalid preview scale")
)

// MapHTTPStatus maps recognition and submission errors to HTTP status codes.
// A model failure is a server fault even when its cause is a shape error.
func MapHTTPStatus(err error) int {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, classifier.ErrModelFailure):
		return http.StatusInternalServerError
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidScale),
		errors.Is(err, raster.ErrShapeMismatch),
		errors.Is(err, raster.ErrOutOfRange),
		errors.Is(err, submissions.ErrInvalidLabel):
		return http.StatusBadRequest
	case errors.Is(err, submissions.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
