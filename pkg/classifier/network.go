package classifier

import (
	"fmt"
	"math"
	"sync"

	"gorgonia.org/tensor"

	"github.com/JaimeStill/numeral/pkg/raster"
)

// InputShape is the single-channel plane every network scores.
var InputShape = tensor.Shape{1, raster.Height, raster.Width}

// Network is a frozen scoring function producing one logit per digit.
// Implementations must not mutate the input and must be safe for concurrent use.
type Network interface {
	Logits(input *tensor.Dense) ([]float32, error)
}

// Options are the deployment constants of a trained model.
// Scale maps intensities to [0, 1] before scoring; models trained on raw
// 0–255 floats leave it false. Temperature multiplies the logits before softmax;
// the zero value means 1.
type Options struct {
	Scale       bool
	Temperature float64
}

// Tensor converts a raster into a network input: float32 intensities,
// optionally scaled to [0, 1], with polarity inverted so ink is bright on dark.
func Tensor(r raster.Raster, scale bool) (*tensor.Dense, error) {
	peak := float32(255)
	if scale {
		peak = 1
	}

	data := make([]float32, 0, raster.Height*raster.Width)
	for _, v := range r.Bytes() {
		f := float32(v)
		if scale {
			f /= 255
		}
		data = append(data, peak-f)
	}

	t := tensor.New(
		tensor.WithShape(InputShape...),
		tensor.WithBacking(data),
	)
	if err := CheckInput(t); err != nil {
		return nil, err
	}
	return t, nil
}

// CheckInput fails with raster.ErrShapeMismatch unless t is a 1×28×28 plane.
func CheckInput(t *tensor.Dense) error {
	if t == nil || !t.Shape().Eq(InputShape) {
		var got tensor.Shape
		if t != nil {
			got = t.Shape()
		}
		return fmt.Errorf("%w: expected input %v, got %v", raster.ErrShapeMismatch, InputShape, got)
	}
	return nil
}

type networkClassifier struct {
	name string
	net  Network
	opts Options
}

// NewNetworkClassifier wraps a frozen network with the shared preprocessing
// and temperature-scaled softmax.
func NewNetworkClassifier(name string, net Network, opts Options) Classifier {
	if opts.Temperature == 0 {
		opts.Temperature = 1
	}
	return &networkClassifier{
		name: name,
		net:  net,
		opts: opts,
	}
}

func (c *networkClassifier) Name() string {
	return c.name
}

func (c *networkClassifier) Predict(r raster.Raster) (Prediction, error) {
	input, err := Tensor(r, c.opts.Scale)
	if err != nil {
		return Prediction{}, err
	}

	logits, err := c.net.Logits(input)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %s: %w", ErrModelFailure, c.name, err)
	}
	if len(logits) != Digits {
		return Prediction{}, fmt.Errorf("%w: %s: expected %d logits, got %d", ErrModelFailure, c.name, Digits, len(logits))
	}

	probs := Softmax(logits, c.opts.Temperature)
	digit := Argmax(probs)

	return Prediction{
		Model:      c.name,
		Digit:      digit,
		Confidence: probs[digit],
	}, nil
}

// Softmax returns softmax(logits * temperature).
func Softmax(logits []float32, temperature float64) []float64 {
	probs := make([]float64, len(logits))
	if len(logits) == 0 {
		return probs
	}

	peak := math.Inf(-1)
	for i, l := range logits {
		probs[i] = float64(l) * temperature
		peak = max(peak, probs[i])
	}

	var sum float64
	for i := range probs {
		probs[i] = math.Exp(probs[i] - peak)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Argmax returns the index of the largest value; ties go to the lowest index.
func Argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// LazyNetwork loads a network on first use and keeps it for the life of the process.
type LazyNetwork struct {
	load func() (Network, error)
}

// Lazy returns a Network that calls load exactly once, on the first Logits or Warm call.
// A load failure is permanent.
func Lazy(load func() (Network, error)) *LazyNetwork {
	return &LazyNetwork{load: sync.OnceValues(load)}
}

// Warm forces the load and reports its error.
func (l *LazyNetwork) Warm() error {
	_, err := l.load()
	return err
}

func (l *LazyNetwork) Logits(input *tensor.Dense) ([]float32, error) {
	net, err := l.load()
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}
	return net.Logits(input)
}
