package submissions

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/numeral/pkg/classifier"
	"github.com/JaimeStill/numeral/pkg/raster"
)

// Submission is one archived labelled raster together with the ensemble
// predictions made for it at submission time.
type Submission struct {
	ID          uuid.UUID               `json:"id"`
	Timestamp   time.Time               `json:"timestamp"`
	Image       []byte                  `json:"png_base64"`
	Label       int                     `json:"label"`
	Predictions []classifier.Prediction `json:"predictions"`
}

// Raster decodes the stored PNG.
func (s Submission) Raster() (raster.Raster, error) {
	return raster.Decode(s.Image)
}

// CreateCommand carries the fields a caller supplies when adding a submission.
type CreateCommand struct {
	Raster      raster.Raster
	Label       int
	Predictions []classifier.Prediction
}

// Validate rejects labels outside the digit range.
func (c CreateCommand) Validate() error {
	return ValidateLabel(c.Label)
}

// ValidateLabel fails with ErrInvalidLabel unless label is a digit 0-9.
func ValidateLabel(label int) error {
	if label < 0 || label > 9 {
		return fmt.Errorf("%w: %d", ErrInvalidLabel, label)
	}
	return nil
}

// build assigns identity and encodes the raster.
func (c CreateCommand) build(at time.Time) (Submission, error) {
	if err := c.Validate(); err != nil {
		return Submission{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Submission{}, fmt.Errorf("generate id: %w", err)
	}

	img, err := raster.Encode(c.Raster)
	if err != nil {
		return Submission{}, err
	}

	preds := c.Predictions
	if preds == nil {
		preds = []classifier.Prediction{}
	}

	return Submission{
		ID:          id,
		Timestamp:   at,
		Image:       img,
		Label:       c.Label,
		Predictions: preds,
	}, nil
}

// stamper hands out UTC timestamps that never go backwards, even when the
// wall clock does.
type stamper struct {
	mu    sync.Mutex
	clock func() time.Time
	last  time.Time
}

func newStamper(clock func() time.Time) *stamper {
	if clock == nil {
		clock = time.Now
	}
	return &stamper{clock: clock}
}

func (s *stamper) next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.clock().UTC().Truncate(time.Microsecond)
	if t.Before(s.last) {
		t = s.last
	}
	s.last = t
	return t
}
