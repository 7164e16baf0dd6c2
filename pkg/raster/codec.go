package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/nfnt/resize"
)

// Encode serializes the raster as a single-frame 8-bit greyscale PNG.
func Encode(r Raster) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Image()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a PNG produced by Encode. Colour images are converted to
// greyscale with the standard luma weights.
func Decode(data []byte) (Raster, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return Raster{}, fmt.Errorf("decode png: %w", err)
	}

	gray, ok := img.(*image.Gray)
	if !ok {
		b := img.Bounds()
		gray = image.NewGray(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
			}
		}
	}

	return FromGray(gray)
}

// Preview renders the raster at drawing scale for display next to the canvas.
// Light pixels are capped so the background reads as a pale blue.
func Preview(r Raster, scale int) image.Image {
	if scale < 1 {
		scale = 1
	}

	tinted := image.NewNRGBA(image.Rect(0, 0, Width, Height))
	for y := range r {
		for x, v := range r[y] {
			tinted.SetNRGBA(x, y, color.NRGBA{
				R: min(v, 240),
				G: min(v, 245),
				B: v,
				A: 255,
			})
		}
	}

	return resize.Resize(uint(Width*scale), uint(Height*scale), tinted, resize.NearestNeighbor)
}
