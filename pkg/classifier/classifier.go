// Package classifier defines the digit classification capability, the frozen
// network adapter every trained model shares, a deterministic baseline, and
// the ensemble that evaluates an ordered model set over one raster.
package classifier

import (
	"github.com/JaimeStill/numeral/pkg/raster"
)

// Digits is the number of classes every model scores.
const Digits = 10

// Prediction is one model's answer for a raster.
// Confidence is the model's probability for its top class, or 0 when the
// model does not produce calibrated probabilities.
type Prediction struct {
	Model      string  `json:"model"`
	Digit      int     `json:"predicted_digit"`
	Confidence float64 `json:"confidence"`
}

// Classifier maps a canonical raster to a predicted digit.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Name() string
	Predict(r raster.Raster) (Prediction, error)
}
