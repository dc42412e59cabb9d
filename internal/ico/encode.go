// Package ico builds multi-image Windows icon files from a raster surface.
//
// Each embedded image is an uncompressed 32-bit BGRA DIB: a 40-byte
// BITMAPINFOHEADER whose height field is doubled to cover the XOR and AND
// planes, the pixel rows bottom-up, and a zero-filled AND mask.
package ico

import (
	"encoding/base64"
	"fmt"

	"github.com/Mavwarf/favpack/internal/binio"
	"github.com/Mavwarf/favpack/internal/raster"
)

const (
	headerSize     = 6
	entrySize      = 16
	infoHeaderSize = 40

	// MasterSize is the intermediate resolution every entry is derived
	// from, so all sizes share one resize path from the source.
	MasterSize = 128

	// MaxSize is the largest dimension an ICO directory entry can express.
	MaxSize = 256

	// MaxEntries is the largest image count the ICONDIR field can hold.
	MaxEntries = 0xFFFF

	// MaxFileSize bounds the encoded file; Encode allocates it up front.
	MaxFileSize = 64 << 20
)

// DefaultSizes is used when Encode is called with no sizes.
var DefaultSizes = []int{16, 32, 48}

// Encode renders s at each of sizes (square) and returns the ICO file.
// Sizes must be in [1, 256]; all of them are checked before any work is
// done, so an error never comes with partial output.
func Encode(s *raster.Surface, sizes []int) ([]byte, error) {
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	if err := ValidateSizes(sizes); err != nil {
		return nil, err
	}
	if err := raster.Valid(s); err != nil {
		return nil, fmt.Errorf("ico: %w", err)
	}

	master, err := raster.Resize(s, MasterSize, MasterSize)
	if err != nil {
		return nil, fmt.Errorf("ico: master: %w", err)
	}

	w := binio.NewWriter(FileSize(sizes))

	// ICONDIR
	w.Uint16(0) // reserved
	w.Uint16(1) // type: icon
	w.Uint16(uint16(len(sizes)))

	// ICONDIRENTRY[]
	offset := headerSize + entrySize*len(sizes)
	for _, size := range sizes {
		n := imageSize(size)
		writeEntry(w, size, n, offset)
		offset += n
	}

	// Image payloads, in directory order.
	for _, size := range sizes {
		img, err := raster.Resize(master, size, size)
		if err != nil {
			return nil, fmt.Errorf("ico: resize %d: %w", size, err)
		}
		writeBitmap(w, img)
	}

	if w.Remaining() != 0 {
		return nil, fmt.Errorf("ico: internal size mismatch: %d bytes unwritten", w.Remaining())
	}
	return w.Bytes(), nil
}

// DataURI wraps ICO bytes in a data:image/x-icon URI.
func DataURI(b []byte) string {
	return "data:image/x-icon;base64," + base64.StdEncoding.EncodeToString(b)
}

// ValidateSizes checks that every size fits an ICO directory entry, that
// the count fits the directory header, and that the encoded file stays
// within MaxFileSize.
func ValidateSizes(sizes []int) error {
	if len(sizes) > MaxEntries {
		return fmt.Errorf("ico: %d sizes, at most %d allowed: %w", len(sizes), MaxEntries, raster.ErrRange)
	}
	for i, size := range sizes {
		if size < 1 || size > MaxSize {
			return fmt.Errorf("ico: size[%d] = %d, must be between 1 and %d: %w", i, size, MaxSize, raster.ErrRange)
		}
	}
	if n := FileSize(sizes); n > MaxFileSize {
		return fmt.Errorf("ico: %d sizes encode to %d bytes, limit %d: %w", len(sizes), n, MaxFileSize, raster.ErrRange)
	}
	return nil
}

// FileSize returns the exact byte length of an ICO holding sizes.
func FileSize(sizes []int) int {
	n := headerSize + entrySize*len(sizes)
	for _, size := range sizes {
		n += imageSize(size)
	}
	return n
}

// MaskSize returns the AND-mask length for a w×h image. The mask is always
// zero since alpha travels in the 32-bit pixels, but its length is part of
// the payload size.
func MaskSize(w, h int) int {
	return w * h * 2 / 8
}

// imageSize is the payload length of one square entry: info header, XOR
// pixels and AND mask.
func imageSize(size int) int {
	return infoHeaderSize + 4*size*size + MaskSize(size, size)
}

func writeEntry(w *binio.Writer, size, n, offset int) {
	w.Uint8(dimByte(size))
	w.Uint8(dimByte(size))
	w.Uint8(0) // colour count: more than 256
	w.Uint8(0) // reserved
	w.Uint16(1)
	w.Uint16(32)
	w.Uint32(uint32(n))
	w.Uint32(uint32(offset))
}

// dimByte encodes a dimension for the directory: 256 is stored as 0.
func dimByte(size int) uint8 {
	if size >= MaxSize {
		return 0
	}
	return uint8(size)
}

func writeBitmap(w *binio.Writer, s *raster.Surface) {
	width, height := s.Width(), s.Height()

	// BITMAPINFOHEADER
	w.Uint32(infoHeaderSize)
	w.Int32(int32(width))
	w.Int32(int32(2 * height))
	w.Uint16(1)  // planes
	w.Uint16(32) // bit count
	w.Uint32(0)  // compression: BI_RGB
	w.Uint32(0)  // image size, implied
	w.Skip(infoHeaderSize - 24)

	bgraBottomUp(w.Slice(4*width*height), s)
	w.Skip(MaskSize(width, height))
}

// bgraBottomUp stores s into dst as 32-bit little-endian BGRA words with
// row y written at row height-1-y.
func bgraBottomUp(dst []byte, s *raster.Surface) {
	width, height := s.Width(), s.Height()
	src, stride := s.Pix(), s.Stride()
	for y := 0; y < height; y++ {
		in := src[y*stride : y*stride+4*width]
		out := dst[(height-1-y)*4*width:]
		for x := 0; x < width; x++ {
			i := 4 * x
			v := uint32(in[i]) | uint32(in[i+1])<<8 | uint32(in[i+2])<<16 | uint32(in[i+3])<<24
			v = v&0xff00ff00 | v>>16&0xff | v&0xff<<16
			out[i] = byte(v)
			out[i+1] = byte(v >> 8)
			out[i+2] = byte(v >> 16)
			out[i+3] = byte(v >> 24)
		}
	}
}
