package pngenc

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/Mavwarf/favpack/internal/raster"
)

var magic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func testSurface(t *testing.T) *raster.Surface {
	t.Helper()
	s, err := raster.New(90, 60)
	if err != nil {
		t.Fatal(err)
	}
	img := s.Image()
	for y := 0; y < 60; y++ {
		for x := 0; x < 90; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return s
}

func TestEncodeMagicAndSize(t *testing.T) {
	s := testSurface(t)
	for _, size := range []int{1, 16, 32, 512} {
		b, err := Encode(s, size, DefaultQuality)
		if err != nil {
			t.Fatalf("Encode(%d): %v", size, err)
		}
		if !bytes.HasPrefix(b, magic) {
			t.Fatalf("Encode(%d) missing PNG signature: % x", size, b[:8])
		}
		img, err := png.Decode(bytes.NewReader(b))
		if err != nil {
			t.Fatal(err)
		}
		if img.Bounds().Dx() != size || img.Bounds().Dy() != size {
			t.Errorf("decoded %v, want %dx%d", img.Bounds(), size, size)
		}
	}
}

func TestEncodeQualityHasNoEffect(t *testing.T) {
	s := testSurface(t)
	a, err := Encode(s, 32, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encode(s, 32, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("quality changed the PNG output")
	}
}

func TestEncodeRangeErrors(t *testing.T) {
	s := testSurface(t)
	tests := []struct {
		size    int
		quality float64
	}{
		{0, 0.5},
		{-3, 0.5},
		{MaxSize + 1, 0.5},
		{2000000, 0.5},
		{16, -0.1},
		{16, 1.01},
		{16, math.NaN()},
	}
	for _, tt := range tests {
		if _, err := Encode(s, tt.size, tt.quality); !errors.Is(err, raster.ErrRange) {
			t.Errorf("Encode(%d, %v) error = %v, want ErrRange", tt.size, tt.quality, err)
		}
	}
}

func TestEncodeNilSurface(t *testing.T) {
	if _, err := Encode(nil, 16, DefaultQuality); !errors.Is(err, raster.ErrType) {
		t.Fatalf("error = %v, want ErrType", err)
	}
}

func TestDataURI(t *testing.T) {
	if got := DataURI(magic); !strings.HasPrefix(got, "data:image/png;base64,iVBORw0KGgo") {
		t.Errorf("DataURI = %q", got)
	}
}
