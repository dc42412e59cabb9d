// Package source turns user input (an uploaded image or a text string)
// into the surface the codec consumes.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/Mavwarf/favpack/internal/raster"
)

// CanvasSize is the square the uploaded image is fitted into.
const CanvasSize = 512

// MaxFileSize is the default upload limit.
const MaxFileSize = 5 << 20

// MaxPixels bounds the decoded width×height of raster uploads.
const MaxPixels = 8192 * 8192

var (
	// ErrTooLarge is returned when the input exceeds the byte limit.
	ErrTooLarge = errors.New("source: file too large")
	// ErrUnsupported is returned for data no registered decoder accepts.
	ErrUnsupported = errors.New("source: unsupported image format")
)

// Load reads at most limit bytes from r, decodes the image and fits it
// into a CanvasSize square. A limit <= 0 means MaxFileSize.
func Load(r io.Reader, limit int64) (*raster.Surface, string, error) {
	if limit <= 0 {
		limit = MaxFileSize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("source: read: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, "", fmt.Errorf("%w (limit %d bytes)", ErrTooLarge, limit)
	}
	return Decode(data)
}

// Decode decodes PNG, JPEG, GIF, WebP, BMP or SVG data and fits it into a
// CanvasSize square. It also returns the detected format name.
func Decode(data []byte) (*raster.Surface, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty input", ErrUnsupported)
	}
	if isSVG(data) {
		img, err := rasterizeSVG(data, CanvasSize)
		if err != nil {
			return nil, "", err
		}
		s, err := raster.FromImage(img)
		return s, "svg", err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupported
		}
		return nil, "", fmt.Errorf("source: decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d pixels (limit %d)", ErrTooLarge, cfg.Width, cfg.Height, MaxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupported
		}
		return nil, "", fmt.Errorf("source: decode: %w", err)
	}
	s, err := Fit(img, CanvasSize)
	return s, format, err
}

// Fit scales img to fit inside a size×size square, keeping its aspect
// ratio, and centers it on a transparent background.
func Fit(img image.Image, size int) (*raster.Surface, error) {
	if img == nil {
		return nil, fmt.Errorf("source: nil image: %w", raster.ErrType)
	}
	dst, err := raster.New(size, size)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("source: empty image: %w", raster.ErrType)
	}

	scale := math.Min(float64(size)/float64(b.Dx()), float64(size)/float64(b.Dy()))
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))
	x := (size - w) / 2
	y := (size - h) / 2

	draw.CatmullRom.Scale(dst.Image(), image.Rect(x, y, x+w, y+h), img, b, draw.Over, nil)
	return dst, nil
}

func isSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	head = bytes.TrimSpace(head)
	if !bytes.HasPrefix(head, []byte("<")) {
		return false
	}
	return bytes.Contains(head, []byte("<svg"))
}

func rasterizeSVG(data []byte, size int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("source: svg: %w", err)
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = float64(size), float64(size)
	}
	scale := float64(size) / math.Max(w, h)
	outW, outH := w*scale, h*scale
	icon.SetTarget((float64(size)-outW)/2, (float64(size)-outH)/2, outW, outH)

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)
	return img, nil
}
