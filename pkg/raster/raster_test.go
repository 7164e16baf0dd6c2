package raster_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/JaimeStill/numeral/pkg/raster"
)

func uniform(r raster.Raster) (uint8, bool) {
	v := r[0][0]
	for y := range r {
		for x := range r[y] {
			if r[y][x] != v {
				return 0, false
			}
		}
	}
	return v, true
}

func filled(scale int, r, g, b, a uint8) *raster.Canvas {
	c := raster.NewCanvas(raster.Height*scale, raster.Width*scale)
	c.Fill(r, g, b, a)
	return c
}

func TestNormalizeUniformCanvas(t *testing.T) {
	tests := []struct {
		name       string
		r, g, b, a uint8
		want       uint8
	}{
		{"opaque black", 0, 0, 0, 255, 0},
		{"opaque white", 255, 255, 255, 255, 255},
		{"transparent black", 0, 0, 0, 0, 255},
		{"transparent red", 255, 0, 0, 0, 255},
		{"transparent grey", 80, 80, 80, 0, 255},
	}

	for _, tt := range tests {
		for _, scale := range []int{1, 2, 3, 8} {
			t.Run(tt.name, func(t *testing.T) {
				got, err := raster.Normalize(filled(scale, tt.r, tt.g, tt.b, tt.a))
				if err != nil {
					t.Fatalf("Normalize() error = %v", err)
				}
				v, ok := uniform(got)
				if !ok {
					t.Fatalf("scale %d: raster is not uniform", scale)
				}
				if v != tt.want {
					t.Errorf("scale %d: pixel = %d, want %d", scale, v, tt.want)
				}
			})
		}
	}
}

func TestNormalizeIdentityScale(t *testing.T) {
	c := raster.NewCanvas(raster.Height, raster.Width)
	for y := range raster.Height {
		for x := range raster.Width {
			v := uint8((y*raster.Width + x) % 256)
			c.Set(y, x, v, v, v, 255)
		}
	}

	got, err := raster.Normalize(c)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	for y := range raster.Height {
		for x := range raster.Width {
			want := uint8((y*raster.Width + x) % 256)
			if got[y][x] != want {
				t.Fatalf("pixel (%d, %d) = %d, want %d", y, x, got[y][x], want)
			}
		}
	}
}

func TestNormalizeBlockMean(t *testing.T) {
	c := raster.NewCanvas(raster.Height*2, raster.Width*2)
	c.Fill(255, 255, 255, 255)
	// top-left block: two black, two white pixels
	c.Set(0, 0, 0, 0, 0, 255)
	c.Set(1, 1, 0, 0, 0, 255)

	got, err := raster.Normalize(c)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	// (255 + 255 + 255/256 + 255/256) / 4 = 127.998..., truncated
	if got[0][0] != 127 {
		t.Errorf("pixel (0, 0) = %d, want 127", got[0][0])
	}
	if got[0][1] != 255 {
		t.Errorf("pixel (0, 1) = %d, want 255", got[0][1])
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	c := raster.NewCanvas(raster.Height*8, raster.Width*8)
	for i := range c.Pix {
		c.Pix[i] = uint8(i * 31 % 251)
	}

	first, err := raster.Normalize(c)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	for range 5 {
		again, err := raster.Normalize(c)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if again != first {
			t.Fatal("repeated normalization produced a different raster")
		}
	}
}

func TestNormalizeShapeMismatch(t *testing.T) {
	tests := []struct {
		name   string
		canvas *raster.Canvas
	}{
		{"height not a multiple", raster.NewCanvas(300, 224)},
		{"width not a multiple", raster.NewCanvas(224, 600)},
		{"smaller than output", raster.NewCanvas(14, 14)},
		{"zero size", raster.NewCanvas(0, 0)},
		{"three channels", &raster.Canvas{Height: 28, Width: 28, Channels: 3, Pix: make([]uint8, 28*28*3)}},
		{"short buffer", &raster.Canvas{Height: 28, Width: 28, Channels: 4, Pix: make([]uint8, 10)}},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := raster.Normalize(tt.canvas)
			if !errors.Is(err, raster.ErrShapeMismatch) {
				t.Errorf("Normalize() error = %v, want ErrShapeMismatch", err)
			}
		})
	}
}

func TestNormalizeOrBlank(t *testing.T) {
	r, substituted := raster.NormalizeOrBlank(raster.NewCanvas(300, 600))
	if !substituted {
		t.Error("expected blank substitution for incompatible canvas")
	}
	if r != raster.Blank() {
		t.Error("substituted raster is not blank")
	}

	r, substituted = raster.NormalizeOrBlank(filled(8, 0, 0, 0, 255))
	if substituted {
		t.Error("unexpected substitution for compatible canvas")
	}
	if v, _ := uniform(r); v != 0 {
		t.Errorf("pixel = %d, want 0", v)
	}
}

func TestDownscaleCustomShape(t *testing.T) {
	c := raster.NewCanvas(20, 30)
	c.Fill(0, 0, 0, 255)

	img, err := raster.Downscale(c, 10, 10)
	if err != nil {
		t.Fatalf("Downscale() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 10 {
		t.Errorf("bounds = %v, want 10x10", b)
	}
}

func TestCanvasFromImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 56, 56))
	for y := range 56 {
		for x := range 56 {
			src.Set(x, y, color.RGBA{A: 255})
		}
	}

	c := raster.CanvasFromImage(src)
	if c.Height != 56 || c.Width != 56 || c.Channels != 4 {
		t.Fatalf("canvas = %dx%dx%d, want 56x56x4", c.Height, c.Width, c.Channels)
	}

	r, err := raster.Normalize(c)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if v, ok := uniform(r); !ok || v != 0 {
		t.Errorf("pixel = %d (uniform %v), want 0", v, ok)
	}
}

func TestFromPixels(t *testing.T) {
	grid := raster.Blank().Pixels()
	grid[3][4] = 17

	r, err := raster.FromPixels(grid)
	if err != nil {
		t.Fatalf("FromPixels() error = %v", err)
	}
	if r[3][4] != 17 {
		t.Errorf("pixel (3, 4) = %d, want 17", r[3][4])
	}

	t.Run("wrong row count", func(t *testing.T) {
		_, err := raster.FromPixels(grid[:27])
		if !errors.Is(err, raster.ErrShapeMismatch) {
			t.Errorf("error = %v, want ErrShapeMismatch", err)
		}
	})

	t.Run("wrong row length", func(t *testing.T) {
		bad := raster.Blank().Pixels()
		bad[10] = bad[10][:27]
		_, err := raster.FromPixels(bad)
		if !errors.Is(err, raster.ErrShapeMismatch) {
			t.Errorf("error = %v, want ErrShapeMismatch", err)
		}
	})

	t.Run("value out of range", func(t *testing.T) {
		bad := raster.Blank().Pixels()
		bad[0][0] = 256
		_, err := raster.FromPixels(bad)
		if !errors.Is(err, raster.ErrOutOfRange) {
			t.Errorf("error = %v, want ErrOutOfRange", err)
		}
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var r raster.Raster
	for y := range r {
		for x := range r[y] {
			r[y][x] = uint8((y*13 + x*7) % 256)
		}
	}

	data, err := raster.Encode(r)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatal("encoded data is not a PNG")
	}

	got, err := raster.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != r {
		t.Error("decoded raster differs from original")
	}
}

func TestDecodeWrongSize(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 10, 10))); err != nil {
		t.Fatal(err)
	}

	_, err := raster.Decode(buf.Bytes())
	if !errors.Is(err, raster.ErrShapeMismatch) {
		t.Errorf("Decode() error = %v, want ErrShapeMismatch", err)
	}
}

func TestPreview(t *testing.T) {
	img := raster.Preview(raster.Blank(), 8)

	if b := img.Bounds(); b.Dx() != 224 || b.Dy() != 224 {
		t.Fatalf("bounds = %v, want 224x224", b)
	}

	r, g, b, _ := img.At(100, 100).RGBA()
	if r>>8 != 240 || g>>8 != 245 || b>>8 != 255 {
		t.Errorf("colour = (%d, %d, %d), want (240, 245, 255)", r>>8, g>>8, b>>8)
	}
}
