package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// Resize returns s scaled to exactly w×h. Downscales go through repeated
// halving first and finish with one direct step to the exact target, so
// each pass drops at most half of the source samples. Upscales take the
// final step only. If s already has the target size it is returned as-is;
// otherwise s is left untouched and a new surface is returned.
func Resize(s *Surface, w, h int) (*Surface, error) {
	if err := checkDims(w, h); err != nil {
		return nil, err
	}
	if err := Valid(s); err != nil {
		return nil, err
	}
	if s.Width() == w && s.Height() == h {
		return s, nil
	}

	cur := s
	for cur.Width()/2 >= w && cur.Height()/2 >= h {
		cur = scale(cur, cur.Width()/2, cur.Height()/2)
	}
	if cur.Width() != w || cur.Height() != h {
		cur = scale(cur, w, h)
	}
	return cur, nil
}

// scale performs a single CatmullRom pass into a fresh surface.
func scale(src *Surface, w, h int) *Surface {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src.pix, src.pix.Bounds(), draw.Src, nil)
	return &Surface{pix: dst}
}
