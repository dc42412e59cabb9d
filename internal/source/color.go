package source

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ErrColor is returned for colour strings ParseColor does not understand.
var ErrColor = errors.New("invalid colour")

// ParseColor accepts "#rgb", "#rrggbb", "#rrggbbaa" (the leading # is
// optional) or an SVG/CSS colour name such as "white" or "steelblue".
// "transparent" yields a fully transparent colour.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	name := strings.ToLower(s)
	if name == "transparent" {
		return color.NRGBA{}, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("source: %w %q", ErrColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("source: %w %q", ErrColor, s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
