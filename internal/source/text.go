package source

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/Mavwarf/favpack/internal/raster"
)

// Background shapes for text icons.
const (
	ShapeSquare  = "square"
	ShapeCircle  = "circle"
	ShapeRounded = "rounded"
)

// TextOptions describes a text icon. Zero values take the defaults below.
type TextOptions struct {
	Width           int     // logical width, default 128
	Height          int     // logical height, default 128
	Text            string  // default "C"
	FontColor       string  // default "white"
	BackgroundColor string  // default "black"
	FontSize        float64 // logical pixels, default 64
	FontWeight      string  // CSS weight ("400", "700", "bold"), default "400"
	FontStyle       string  // "normal" | "italic"
	Shape           string  // "square" | "circle" | "rounded"
}

func (o TextOptions) withDefaults() TextOptions {
	if o.Width == 0 {
		o.Width = 128
	}
	if o.Height == 0 {
		o.Height = 128
	}
	if o.Text == "" {
		o.Text = "C"
	}
	if o.FontColor == "" {
		o.FontColor = "white"
	}
	if o.BackgroundColor == "" {
		o.BackgroundColor = "black"
	}
	if o.FontSize == 0 {
		o.FontSize = 64
	}
	if o.FontWeight == "" {
		o.FontWeight = "400"
	}
	if o.FontStyle == "" {
		o.FontStyle = "normal"
	}
	if o.Shape == "" {
		o.Shape = ShapeSquare
	}
	return o
}

// textScale is the device-pixel ratio text icons are rendered at.
const textScale = 2

// maxFontScale caps the font size relative to the icon height.
const maxFontScale = 4

// TextIcon draws opts.Text centered on a filled background shape. The
// surface is rendered at twice the logical size for sharper downscales.
// Glyphs are centered on their ink bounds, not the font's line metrics.
func TextIcon(opts TextOptions) (*raster.Surface, error) {
	o := opts.withDefaults()
	if o.Width < 0 || o.Height < 0 || o.FontSize < 0 {
		return nil, fmt.Errorf("source: text icon %dx%d font %v: %w", o.Width, o.Height, o.FontSize, raster.ErrRange)
	}
	if math.IsNaN(o.FontSize) || math.IsInf(o.FontSize, 0) || o.FontSize > maxFontScale*float64(o.Height) {
		return nil, fmt.Errorf("source: font size %v must be at most %d× the height %d: %w", o.FontSize, maxFontScale, o.Height, raster.ErrRange)
	}
	fg, err := ParseColor(o.FontColor)
	if err != nil {
		return nil, err
	}
	bg, err := ParseColor(o.BackgroundColor)
	if err != nil {
		return nil, err
	}

	s, err := raster.New(o.Width*textScale, o.Height*textScale)
	if err != nil {
		return nil, err
	}
	dst := s.Image()

	w, h := float32(s.Width()), float32(s.Height())
	z := vector.NewRasterizer(s.Width(), s.Height())
	switch strings.ToLower(o.Shape) {
	case ShapeCircle:
		circlePath(z, w/2, h/2, h/2)
	case ShapeRounded:
		roundedPath(z, w, h, h/10)
	default:
		z.MoveTo(0, 0)
		z.LineTo(w, 0)
		z.LineTo(w, h)
		z.LineTo(0, h)
		z.ClosePath()
	}
	z.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{})

	f, err := fontFor(o.FontWeight, o.FontStyle)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    o.FontSize * textScale,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("source: font face: %w", err)
	}
	defer face.Close()

	bounds, _ := font.BoundString(face, o.Text)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(s.Width())/2 - (bounds.Min.X+bounds.Max.X)/2,
			Y: fixed.I(s.Height())/2 - (bounds.Min.Y+bounds.Max.Y)/2,
		},
	}
	d.DrawString(o.Text)
	return s, nil
}

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

func circlePath(z *vector.Rasterizer, cx, cy, r float32) {
	k := r * kappa
	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	z.ClosePath()
}

func roundedPath(z *vector.Rasterizer, w, h, r float32) {
	k := r * kappa
	z.MoveTo(r, 0)
	z.LineTo(w-r, 0)
	z.CubeTo(w-r+k, 0, w, r-k, w, r)
	z.LineTo(w, h-r)
	z.CubeTo(w, h-r+k, w-r+k, h, w-r, h)
	z.LineTo(r, h)
	z.CubeTo(r-k, h, 0, h-r+k, 0, h-r)
	z.LineTo(0, r)
	z.CubeTo(0, r-k, r-k, 0, r, 0)
	z.ClosePath()
}

var (
	fontMu    sync.Mutex
	fontCache = map[string]*opentype.Font{}
)

// fontFor maps a CSS weight and style onto the bundled Go fonts.
func fontFor(weight, style string) (*opentype.Font, error) {
	bold := strings.EqualFold(weight, "bold")
	if n, err := strconv.Atoi(weight); err == nil {
		bold = n >= 600
	}
	italic := strings.EqualFold(style, "italic") || strings.EqualFold(style, "oblique")

	name, ttf := "regular", goregular.TTF
	switch {
	case bold && italic:
		name, ttf = "bolditalic", gobolditalic.TTF
	case bold:
		name, ttf = "bold", gobold.TTF
	case italic:
		name, ttf = "italic", goitalic.TTF
	}

	fontMu.Lock()
	defer fontMu.Unlock()
	if f, ok := fontCache[name]; ok {
		return f, nil
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("source: parse %s font: %w", name, err)
	}
	fontCache[name] = f
	return f, nil
}
