// Package raster converts drawing-surface buffers into the canonical 28×28
// greyscale raster consumed by the classifiers, and encodes that raster for
// transport and storage.
package raster

import (
	"fmt"
	"image"
)

// Canonical raster dimensions.
const (
	Height = 28
	Width  = 28
)

// Raster is a canonical 28×28 8-bit greyscale image, 0 = black and 255 = white.
// It is a value type: copies never share pixel storage.
type Raster [Height][Width]uint8

// Blank returns an all-white raster, used whenever no valid drawing exists yet.
func Blank() Raster {
	var r Raster
	for y := range r {
		for x := range r[y] {
			r[y][x] = 255
		}
	}
	return r
}

// Bytes returns the pixels in row-major order.
func (r Raster) Bytes() []byte {
	b := make([]byte, 0, Height*Width)
	for y := range r {
		b = append(b, r[y][:]...)
	}
	return b
}

// Pixels returns the raster as a grid of integers, the wire representation.
func (r Raster) Pixels() [][]int {
	rows := make([][]int, Height)
	for y := range r {
		rows[y] = make([]int, Width)
		for x, v := range r[y] {
			rows[y][x] = int(v)
		}
	}
	return rows
}

// Image returns the raster as an 8-bit greyscale image.
func (r Raster) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, Width, Height))
	for y := range r {
		copy(img.Pix[y*img.Stride:], r[y][:])
	}
	return img
}

// FromPixels validates a 28×28 grid of integers in [0, 255] and returns it as a Raster.
func FromPixels(rows [][]int) (Raster, error) {
	var r Raster
	if len(rows) != Height {
		return r, fmt.Errorf("%w: expected %d rows, got %d", ErrShapeMismatch, Height, len(rows))
	}
	for y, row := range rows {
		if len(row) != Width {
			return r, fmt.Errorf("%w: row %d has %d values, expected %d", ErrShapeMismatch, y, len(row), Width)
		}
		for x, v := range row {
			if v < 0 || v > 255 {
				return r, fmt.Errorf("%w: pixel (%d, %d) = %d", ErrOutOfRange, y, x, v)
			}
			r[y][x] = uint8(v)
		}
	}
	return r, nil
}

// FromGray copies a 28×28 greyscale image into a Raster.
func FromGray(img *image.Gray) (Raster, error) {
	var r Raster
	b := img.Bounds()
	if b.Dx() != Width || b.Dy() != Height {
		return r, fmt.Errorf("%w: expected %dx%d image, got %dx%d", ErrShapeMismatch, Width, Height, b.Dx(), b.Dy())
	}
	for y := range Height {
		for x := range Width {
			r[y][x] = img.GrayAt(b.Min.X+x, b.Min.Y+y).Y
		}
	}
	return r, nil
}
