package raster

import (
	"fmt"
	"image"
	"image/draw"
)

// Canvas is a raw drawing-surface buffer: Height × Width pixels of Channels
// interleaved 8-bit samples in R, G, B, A order, row-major.
type Canvas struct {
	Height   int
	Width    int
	Channels int
	Pix      []uint8
}

// NewCanvas allocates a fully transparent RGBA canvas.
func NewCanvas(height, width int) *Canvas {
	return &Canvas{
		Height:   height,
		Width:    width,
		Channels: 4,
		Pix:      make([]uint8, height*width*4),
	}
}

// CanvasFromImage converts a decoded image into a non-premultiplied RGBA canvas.
func CanvasFromImage(img image.Image) *Canvas {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) || nrgba.Stride != b.Dx()*4 {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	return &Canvas{
		Height:   b.Dy(),
		Width:    b.Dx(),
		Channels: 4,
		Pix:      nrgba.Pix,
	}
}

// Set writes one RGBA pixel.
func (c *Canvas) Set(y, x int, r, g, b, a uint8) {
	i := (y*c.Width + x) * c.Channels
	c.Pix[i], c.Pix[i+1], c.Pix[i+2], c.Pix[i+3] = r, g, b, a
}

// Fill writes the same RGBA value to every pixel.
func (c *Canvas) Fill(r, g, b, a uint8) {
	for y := range c.Height {
		for x := range c.Width {
			c.Set(y, x, r, g, b, a)
		}
	}
}

// Normalize reduces a canvas to the canonical 28×28 raster.
func Normalize(c *Canvas) (Raster, error) {
	img, err := Downscale(c, Height, Width)
	if err != nil {
		return Raster{}, err
	}
	return FromGray(img)
}

// NormalizeOrBlank normalizes c, substituting a blank raster when the canvas
// does not have a compatible shape. A drawing surface can report an
// uninitialized size for a moment after it loads. The second result reports
// whether the substitution happened.
func NormalizeOrBlank(c *Canvas) (Raster, bool) {
	r, err := Normalize(c)
	if err != nil {
		return Blank(), true
	}
	return r, false
}

// Downscale composites the canvas over an opaque white background, flattens it to
// greyscale, and reduces it to outH × outW by averaging integer-sized blocks.
//
// Greyscale is the equal-weight mean of R, G and B. Alpha is normalized by 256,
// not 255, so a fully opaque pixel keeps 1/256 of the white background. Block
// means are truncated, not rounded.
func Downscale(c *Canvas, outH, outW int) (*image.Gray, error) {
	if err := checkShape(c, outH, outW); err != nil {
		return nil, err
	}

	yScale := c.Height / outH
	xScale := c.Width / outW
	sums := make([]float64, outH*outW)

	for y := range c.Height {
		row := (y / yScale) * outW
		for x := range c.Width {
			i := (y*c.Width + x) * 4
			grey := (float64(c.Pix[i]) + float64(c.Pix[i+1]) + float64(c.Pix[i+2])) / 3
			alpha := float64(c.Pix[i+3]) / 256
			sums[row+x/xScale] += 255*(1-alpha) + grey*alpha
		}
	}

	img := image.NewGray(image.Rect(0, 0, outW, outH))
	block := float64(yScale * xScale)
	for i, sum := range sums {
		img.Pix[i] = truncate(sum / block)
	}
	return img, nil
}

func checkShape(c *Canvas, outH, outW int) error {
	if c == nil {
		return fmt.Errorf("%w: nil canvas", ErrShapeMismatch)
	}
	if c.Channels != 4 {
		return fmt.Errorf("%w: expected 4 channels, got %d", ErrShapeMismatch, c.Channels)
	}
	if outH <= 0 || outW <= 0 || c.Height <= 0 || c.Width <= 0 {
		return fmt.Errorf("%w: empty shape (%d, %d) -> (%d, %d)", ErrShapeMismatch, c.Height, c.Width, outH, outW)
	}
	if c.Height%outH != 0 || c.Width%outW != 0 {
		return fmt.Errorf(
			"%w: output shape (%d, %d) is not an integer scale of input shape (%d, %d)",
			ErrShapeMismatch, outH, outW, c.Height, c.Width,
		)
	}
	if len(c.Pix) != c.Height*c.Width*4 {
		return fmt.Errorf("%w: buffer holds %d bytes, expected %d", ErrShapeMismatch, len(c.Pix), c.Height*c.Width*4)
	}
	return nil
}

func truncate(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
