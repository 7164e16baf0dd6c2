package classifier

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"

	"github.com/JaimeStill/numeral/pkg/raster"
)

type random struct {
	name string
}

// NewRandom returns the weight-free baseline: a pseudo-random digit seeded from
// the exact raster bytes, so identical rasters always get identical answers.
// Its confidence is always 0.
func NewRandom(name string) Classifier {
	return &random{name: name}
}

func (c *random) Name() string {
	return c.name
}

func (c *random) Predict(r raster.Raster) (Prediction, error) {
	sum := sha256.Sum256(r.Bytes())
	rng := rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(sum[:8]),
		binary.LittleEndian.Uint64(sum[8:16]),
	))

	return Prediction{
		Model:      c.name,
		Digit:      rng.IntN(Digits),
		Confidence: 0,
	}, nil
}
