// Package digits serves digit recognition: pixel grids and canvas exports in,
// ensemble predictions out, with labelled submissions handed to the store.
package digits

import (
	"context"
	"fmt"

	"github.com/JaimeStill/numeral/pkg/classifier"
	"github.com/JaimeStill/numeral/pkg/raster"
)

// Predictor evaluates an ordered model set over one raster.
type Predictor interface {
	Predict(ctx context.Context, r raster.Raster) ([]classifier.Prediction, error)
	Names() []string
}

// DigitData is a 28×28 grid of greyscale intensities, row-major.
type DigitData struct {
	Pixels [][]int `json:"pixels"`
}

// Raster validates the grid.
func (d DigitData) Raster() (raster.Raster, error) {
	if d.Pixels == nil {
		return raster.Raster{}, fmt.Errorf("%w: pixels required", ErrInvalidRequest)
	}
	return raster.FromPixels(d.Pixels)
}

// SubmitRequest pairs a drawing with the digit its author intended.
type SubmitRequest struct {
	Digit DigitData `json:"digit"`
	Label *int      `json:"label"`
}

// CanvasResult reports the normalized raster a canvas export produced along
// with its predictions. Blank is set when the canvas had an incompatible size
// and a blank raster was scored in its place.
type CanvasResult struct {
	Pixels      [][]int                 `json:"pixels"`
	Blank       bool                    `json:"blank"`
	Predictions []classifier.Prediction `json:"predictions"`
}

// ModelsResult lists the ensemble in evaluation order.
type ModelsResult struct {
	Models []string `json:"models"`
}
