package classifier

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/numeral/pkg/raster"
)

// Ensemble evaluates a fixed, ordered model set over one raster.
type Ensemble struct {
	classifiers []Classifier
}

// NewEnsemble creates an Ensemble over the given models. The slice is copied;
// the model set never changes afterwards.
func NewEnsemble(classifiers ...Classifier) *Ensemble {
	return &Ensemble{
		classifiers: append([]Classifier(nil), classifiers...),
	}
}

// Names returns the model names in evaluation order.
func (e *Ensemble) Names() []string {
	names := make([]string, len(e.classifiers))
	for i, c := range e.classifiers {
		names[i] = c.Name()
	}
	return names
}

// Predict runs every model over r and returns one prediction per model in the
// configured order, not sorted by confidence. Models run concurrently; if any
// of them fails or panics the whole batch fails and no partial results are
// returned.
func (e *Ensemble) Predict(ctx context.Context, r raster.Raster) ([]Prediction, error) {
	if len(e.classifiers) == 0 {
		return nil, ErrNoModels
	}

	results := make([]Prediction, len(e.classifiers))
	g, gctx := errgroup.WithContext(ctx)

	for i, c := range e.classifiers {
		g.Go(func() (err error) {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			defer func() {
				if v := recover(); v != nil {
					err = fmt.Errorf("%w: %s: panic: %v", ErrModelFailure, c.Name(), v)
				}
			}()

			p, err := c.Predict(r)
			if err != nil {
				if errors.Is(err, ErrModelFailure) {
					return err
				}
				return fmt.Errorf("%w: %s: %w", ErrModelFailure, c.Name(), err)
			}

			results[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
