// Package bundle produces the standard favicon set from one surface.
package bundle

import (
	"fmt"
	"sort"

	"github.com/Mavwarf/favpack/internal/ico"
	"github.com/Mavwarf/favpack/internal/pngenc"
	"github.com/Mavwarf/favpack/internal/raster"
)

// KeyICO is the slot holding the ICO file.
const KeyICO = "ico"

// IcoSizes are the images embedded in the bundle's ICO file.
var IcoSizes = []int{16, 32, 48}

// PNGSizes are the square PNG outputs: classic favicons, the Windows tile,
// the Apple touch icon and the Android/manifest icons.
var PNGSizes = []int{16, 32, 150, 180, 192, 512}

// Bundle maps an output slot ("ico", "png16", ...) to its bytes.
type Bundle map[string][]byte

// PNGKey returns the slot name for a PNG of the given size.
func PNGKey(size int) string {
	return fmt.Sprintf("png%d", size)
}

// Keys returns every slot Generate fills, ICO first then PNGs by size.
func Keys() []string {
	keys := []string{KeyICO}
	for _, size := range PNGSizes {
		keys = append(keys, PNGKey(size))
	}
	return keys
}

// Generate builds the ICO and every PNG size from s. Each output is
// resized from s independently, so the result does not depend on the
// order the slots are produced in.
func Generate(s *raster.Surface) (Bundle, error) {
	if err := raster.Valid(s); err != nil {
		return nil, fmt.Errorf("bundle: %w", err)
	}

	b := make(Bundle, 1+len(PNGSizes))
	icoBytes, err := ico.Encode(s, IcoSizes)
	if err != nil {
		return nil, fmt.Errorf("bundle: %w", err)
	}
	b[KeyICO] = icoBytes

	for _, size := range PNGSizes {
		p, err := pngenc.Encode(s, size, pngenc.DefaultQuality)
		if err != nil {
			return nil, fmt.Errorf("bundle: %w", err)
		}
		b[PNGKey(size)] = p
	}
	return b, nil
}

// Total returns the combined payload size in bytes.
func (b Bundle) Total() int {
	n := 0
	for _, v := range b {
		n += len(v)
	}
	return n
}

// SortedKeys returns the bundle's slots in lexical order.
func (b Bundle) SortedKeys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
