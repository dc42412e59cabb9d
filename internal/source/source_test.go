package source

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"math"
	"strings"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/Mavwarf/favpack/internal/raster"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func filled(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDecodePNGFitsCanvas(t *testing.T) {
	data := encodePNG(t, filled(100, 50, color.NRGBA{R: 255, A: 255}))
	s, format, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if s.Width() != CanvasSize || s.Height() != CanvasSize {
		t.Fatalf("size = %dx%d", s.Width(), s.Height())
	}
	img := s.Image()
	// 100x50 scales to 512x256, centered vertically at y=128..384.
	if a := img.NRGBAAt(256, 10).A; a != 0 {
		t.Errorf("letterbox alpha = %d, want 0", a)
	}
	if c := img.NRGBAAt(256, 256); c != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("center = %v, want opaque red", c)
	}
}

func TestDecodeGIFAndBMP(t *testing.T) {
	green := color.RGBA{G: 255, A: 255}
	pal := image.NewPaletted(image.Rect(0, 0, 20, 20), color.Palette{color.Black, green})
	rgba := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			pal.SetColorIndex(x, y, 1)
			rgba.SetRGBA(x, y, green)
		}
	}

	var g bytes.Buffer
	if err := gif.Encode(&g, pal, nil); err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := bmp.Encode(&b, rgba); err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name string
		data []byte
	}{{"gif", g.Bytes()}, {"bmp", b.Bytes()}} {
		s, format, err := Decode(tc.data)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if format != tc.name {
			t.Errorf("format = %q, want %q", format, tc.name)
		}
		if c := s.Image().NRGBAAt(256, 256); c.G < 250 || c.A != 255 {
			t.Errorf("%s center = %v, want opaque green", tc.name, c)
		}
	}
}

func TestDecodeSVG(t *testing.T) {
	svg := `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10" width="10" height="10">
  <rect x="0" y="0" width="10" height="10" fill="#0000ff"/>
</svg>`
	s, format, err := Decode([]byte(svg))
	if err != nil {
		t.Fatal(err)
	}
	if format != "svg" {
		t.Errorf("format = %q, want svg", format)
	}
	if s.Width() != CanvasSize {
		t.Fatalf("width = %d", s.Width())
	}
	if c := s.Image().NRGBAAt(256, 256); c.B < 250 || c.A < 250 {
		t.Errorf("center = %v, want blue", c)
	}
}

func TestDecodeUnsupported(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("hello, not an image")} {
		if _, _, err := Decode(data); !errors.Is(err, ErrUnsupported) {
			t.Errorf("Decode(%q) error = %v, want ErrUnsupported", data, err)
		}
	}
}

// pngHeader returns a PNG signature and IHDR chunk declaring w×h RGBA
// pixels, enough for image.DecodeConfig.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	var b bytes.Buffer
	b.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&b, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	b.Write(chunk)
	binary.Write(&b, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return b.Bytes()
}

func TestDecodeRejectsHugeDimensions(t *testing.T) {
	for _, dims := range [][2]uint32{{20000, 20000}, {8193, 8192}, {1 << 20, 1}} {
		_, _, err := Decode(pngHeader(dims[0], dims[1]))
		if !errors.Is(err, ErrTooLarge) {
			t.Errorf("Decode(%dx%d) error = %v, want ErrTooLarge", dims[0], dims[1], err)
		}
	}
}

func TestLoadLimit(t *testing.T) {
	data := encodePNG(t, filled(8, 8, color.NRGBA{A: 255}))
	if _, _, err := Load(bytes.NewReader(data), 10); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("error = %v, want ErrTooLarge", err)
	}
	if _, _, err := Load(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("exact-limit load: %v", err)
	}
}

func TestFitNil(t *testing.T) {
	if _, err := Fit(nil, 64); !errors.Is(err, raster.ErrType) {
		t.Fatalf("error = %v, want ErrType", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#209CEE", color.NRGBA{0x20, 0x9c, 0xee, 0xff}},
		{"209cee", color.NRGBA{0x20, 0x9c, 0xee, 0xff}},
		{"#fff", color.NRGBA{0xff, 0xff, 0xff, 0xff}},
		{"#11223380", color.NRGBA{0x11, 0x22, 0x33, 0x80}},
		{"white", color.NRGBA{0xff, 0xff, 0xff, 0xff}},
		{"Black", color.NRGBA{0, 0, 0, 0xff}},
		{"transparent", color.NRGBA{}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "#12", "#ggg", "notacolour"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) succeeded", bad)
		}
	}
}

func TestTextIconDefaults(t *testing.T) {
	s, err := TextIcon(TextOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if s.Width() != 256 || s.Height() != 256 {
		t.Fatalf("size = %dx%d, want 256x256", s.Width(), s.Height())
	}
	img := s.Image()
	if c := img.NRGBAAt(0, 0); c != (color.NRGBA{A: 255}) {
		t.Errorf("corner = %v, want opaque black", c)
	}
	white := 0
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			if img.NRGBAAt(x, y).R > 200 {
				white++
			}
		}
	}
	if white == 0 {
		t.Error("no glyph pixels drawn")
	}
}

func TestTextIconShapes(t *testing.T) {
	for _, shape := range []string{ShapeCircle, ShapeRounded} {
		s, err := TextIcon(TextOptions{Text: "F", Shape: shape, BackgroundColor: "#209CEE", FontColor: "#ffffff", FontSize: 110, FontWeight: "700"})
		if err != nil {
			t.Fatalf("%s: %v", shape, err)
		}
		img := s.Image()
		if a := img.NRGBAAt(0, 0).A; a != 0 {
			t.Errorf("%s corner alpha = %d, want 0", shape, a)
		}
		if c := img.NRGBAAt(128, 3); c.A == 0 {
			t.Errorf("%s top-center is transparent", shape)
		}
	}
}

func TestTextIconBadColour(t *testing.T) {
	_, err := TextIcon(TextOptions{FontColor: "nope"})
	if !errors.Is(err, ErrColor) || !strings.Contains(err.Error(), `invalid colour "nope"`) {
		t.Fatalf("error = %v", err)
	}
}

func TestTextIconSizeRange(t *testing.T) {
	tests := []struct {
		name string
		opts TextOptions
	}{
		{"negative width", TextOptions{Width: -1}},
		{"negative font", TextOptions{FontSize: -3}},
		{"huge font", TextOptions{Text: "W", FontSize: 2e6}},
		{"font over 4x height", TextOptions{Height: 16, FontSize: 65}},
		{"NaN font", TextOptions{FontSize: math.NaN()}},
		{"infinite font", TextOptions{FontSize: math.Inf(1)}},
		{"huge canvas", TextOptions{Width: 1 << 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := TextIcon(tt.opts); !errors.Is(err, raster.ErrRange) {
				t.Fatalf("error = %v, want ErrRange", err)
			}
		})
	}
	if _, err := TextIcon(TextOptions{Height: 16, FontSize: 64}); err != nil {
		t.Errorf("font at 4x height: %v", err)
	}
}
