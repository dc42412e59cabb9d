// Package pngenc renders a surface as a square PNG.
package pngenc

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"math"

	"github.com/Mavwarf/favpack/internal/raster"
)

// DefaultQuality is the quality value callers pass when they have no
// preference.
const DefaultQuality = 0.92

// MaxSize is the largest edge Encode renders.
const MaxSize = 4096

var encoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// Encode resizes s to size×size and returns the PNG stream.
//
// quality must be in [0, 1]. It is validated and otherwise ignored: PNG is
// lossless, and the parameter exists only so callers can treat every
// output format alike.
func Encode(s *raster.Surface, size int, quality float64) ([]byte, error) {
	if size <= 0 || size > MaxSize {
		return nil, fmt.Errorf("pngenc: size %d must be between 1 and %d: %w", size, MaxSize, raster.ErrRange)
	}
	if math.IsNaN(quality) || quality < 0 || quality > 1 {
		return nil, fmt.Errorf("pngenc: quality %v must be between 0 and 1: %w", quality, raster.ErrRange)
	}
	if err := raster.Valid(s); err != nil {
		return nil, fmt.Errorf("pngenc: %w", err)
	}

	img, err := raster.Resize(s, size, size)
	if err != nil {
		return nil, fmt.Errorf("pngenc: resize: %w", err)
	}
	var buf bytes.Buffer
	if err := encoder.Encode(&buf, img.Image()); err != nil {
		return nil, fmt.Errorf("pngenc: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI wraps PNG bytes in a data:image/png URI.
func DataURI(b []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b)
}
