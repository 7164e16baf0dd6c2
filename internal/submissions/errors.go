package submissions

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/numeral/pkg/pagination"
)

var (
	ErrNotFound           = errors.New("submission not found")
	ErrInvalidLabel       = errors.New("label must be a digit 0-9")
	ErrInvalidCount       = pagination.ErrInvalidCount
	ErrStorageUnavailable = errors.New("submission storage unavailable")
	ErrDuplicate          = errors.New("submission already exists")
)

// MapHTTPStatus maps submission errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidLabel), errors.Is(err, ErrInvalidCount):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
