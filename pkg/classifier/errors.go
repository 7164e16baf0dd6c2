package classifier

import "errors"

var (
	// ErrModelFailure indicates a classifier failed while scoring a raster.
	ErrModelFailure = errors.New("model failure")
	// ErrDuplicateModel indicates a second registration under an existing name.
	ErrDuplicateModel = errors.New("model already registered")
	// ErrNoModels indicates an ensemble with nothing to evaluate.
	ErrNoModels = errors.New("no models registered")
)
