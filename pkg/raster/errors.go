package raster

import "errors"

var (
	// ErrShapeMismatch indicates buffer or raster dimensions that cannot be mapped
	// onto the canonical shape.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrOutOfRange indicates a pixel value outside [0, 255].
	ErrOutOfRange = errors.New("pixel value out of range")
)
