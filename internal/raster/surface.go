package raster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// ErrType reports an argument that is not a usable pixel source.
var ErrType = errors.New("invalid surface")

// ErrRange reports a numeric parameter outside its allowed range.
var ErrRange = errors.New("value out of range")

// MaxDim bounds the width and height of any surface New or Resize
// allocates.
const MaxDim = 16384

// Surface is an owned, non-premultiplied RGBA pixel grid anchored at the
// origin. Width and height are always positive.
type Surface struct {
	pix *image.NRGBA
}

// New allocates a transparent w×h surface.
func New(w, h int) (*Surface, error) {
	if err := checkDims(w, h); err != nil {
		return nil, err
	}
	return &Surface{pix: image.NewNRGBA(image.Rect(0, 0, w, h))}, nil
}

// FromImage copies img into a fresh surface. The source bounds are
// translated so the result starts at (0, 0).
func FromImage(img image.Image) (*Surface, error) {
	if img == nil {
		return nil, fmt.Errorf("raster: nil image: %w", ErrType)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("raster: empty image %dx%d: %w", b.Dx(), b.Dy(), ErrType)
	}
	s := &Surface{pix: image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))}
	draw.Draw(s.pix, s.pix.Bounds(), img, b.Min, draw.Src)
	return s, nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.pix.Rect.Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.pix.Rect.Dy() }

// Image exposes the backing pixel buffer. Writes through it mutate the
// surface.
func (s *Surface) Image() *image.NRGBA { return s.pix }

// Pix returns the raw RGBA bytes, row-major with Stride() bytes per row.
func (s *Surface) Pix() []byte { return s.pix.Pix }

// Stride returns the byte distance between vertically adjacent pixels.
func (s *Surface) Stride() int { return s.pix.Stride }

// Clone returns a deep copy.
func (s *Surface) Clone() *Surface {
	c := image.NewNRGBA(s.pix.Rect)
	copy(c.Pix, s.pix.Pix)
	return &Surface{pix: c}
}

// Valid reports whether s has a usable pixel buffer.
func Valid(s *Surface) error {
	if s == nil || s.pix == nil {
		return fmt.Errorf("raster: nil surface: %w", ErrType)
	}
	if s.Width() <= 0 || s.Height() <= 0 || len(s.pix.Pix) < s.pix.Stride*s.Height() {
		return fmt.Errorf("raster: surface has no pixel buffer: %w", ErrType)
	}
	return nil
}

func checkDims(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("raster: dimensions %dx%d must be positive: %w", w, h, ErrRange)
	}
	if w > MaxDim || h > MaxDim {
		return fmt.Errorf("raster: dimensions %dx%d exceed %d: %w", w, h, MaxDim, ErrRange)
	}
	return nil
}
