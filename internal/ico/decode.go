package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
)

// ErrFormat is returned by Decode for data that is not a valid icon file.
var ErrFormat = errors.New("ico: invalid format")

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Entry is one parsed ICONDIRENTRY.
type Entry struct {
	Width      int // 1-256, decoded from the 0 = 256 byte encoding
	Height     int
	ColorCount uint8
	Planes     uint16
	BitCount   uint16
	Size       uint32
	Offset     uint32
	PNG        bool // payload is a PNG stream instead of a DIB
}

// File is a decoded icon: the directory and one top-down image per entry.
type File struct {
	Type    uint16
	Entries []Entry
	Images  []*image.NRGBA
}

// Decode parses an ICO file. It understands the 32-bit BGRA DIB entries
// Encode writes and PNG-compressed entries.
func Decode(b []byte) (*File, error) {
	if len(b) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrFormat, len(b))
	}
	le := binary.LittleEndian
	if le.Uint16(b[0:]) != 0 {
		return nil, fmt.Errorf("%w: reserved field is %d", ErrFormat, le.Uint16(b[0:]))
	}
	typ := le.Uint16(b[2:])
	if typ != 1 && typ != 2 {
		return nil, fmt.Errorf("%w: type %d", ErrFormat, typ)
	}
	count := int(le.Uint16(b[4:]))
	if len(b) < headerSize+entrySize*count {
		return nil, fmt.Errorf("%w: directory of %d entries truncated", ErrFormat, count)
	}

	f := &File{Type: typ}
	for i := 0; i < count; i++ {
		p := b[headerSize+entrySize*i:]
		e := Entry{
			Width:      dimInt(p[0]),
			Height:     dimInt(p[1]),
			ColorCount: p[2],
			Planes:     le.Uint16(p[4:]),
			BitCount:   le.Uint16(p[6:]),
			Size:       le.Uint32(p[8:]),
			Offset:     le.Uint32(p[12:]),
		}
		end := uint64(e.Offset) + uint64(e.Size)
		if end > uint64(len(b)) {
			return nil, fmt.Errorf("%w: entry %d spans %d-%d beyond %d bytes", ErrFormat, i, e.Offset, end, len(b))
		}
		data := b[e.Offset:end]

		var img *image.NRGBA
		var err error
		if bytes.HasPrefix(data, pngMagic) {
			e.PNG = true
			img, err = decodePNG(data)
		} else {
			img, err = decodeDIB(data)
		}
		if err != nil {
			return nil, fmt.Errorf("ico: entry %d: %w", i, err)
		}
		f.Entries = append(f.Entries, e)
		f.Images = append(f.Images, img)
	}
	return f, nil
}

func dimInt(b byte) int {
	if b == 0 {
		return 256
	}
	return int(b)
}

func decodePNG(data []byte) (*image.NRGBA, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if n, ok := src.(*image.NRGBA); ok {
		return n, nil
	}
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out, nil
}

// decodeDIB reads a 32bpp BI_RGB bitmap with bottom-up rows.
func decodeDIB(data []byte) (*image.NRGBA, error) {
	if len(data) < infoHeaderSize {
		return nil, fmt.Errorf("%w: bitmap header truncated", ErrFormat)
	}
	le := binary.LittleEndian
	if hs := le.Uint32(data[0:]); hs != infoHeaderSize {
		return nil, fmt.Errorf("%w: bitmap header size %d", ErrFormat, hs)
	}
	width := int(int32(le.Uint32(data[4:])))
	height := int(int32(le.Uint32(data[8:]))) / 2
	bits := le.Uint16(data[14:])
	compression := le.Uint32(data[16:])
	if bits != 32 || compression != 0 {
		return nil, fmt.Errorf("%w: unsupported bitmap %d bpp, compression %d", ErrFormat, bits, compression)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: bitmap dimensions %dx%d", ErrFormat, width, height)
	}
	pix := data[infoHeaderSize:]
	if len(pix) < 4*width*height {
		return nil, fmt.Errorf("%w: pixel data truncated", ErrFormat)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := pix[(height-1-y)*4*width:]
		out := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			i := 4 * x
			out[i] = row[i+2]
			out[i+1] = row[i+1]
			out[i+2] = row[i]
			out[i+3] = row[i+3]
		}
	}
	return img, nil
}

// RowBGRA returns row y of entry i exactly as stored in the file (row 0 is
// the bottom image row). Useful for checking on-disk byte order.
func RowBGRA(b []byte, e Entry, y int) ([]byte, error) {
	if e.PNG {
		return nil, fmt.Errorf("%w: entry is PNG-compressed", ErrFormat)
	}
	start := int(e.Offset) + infoHeaderSize + y*4*e.Width
	end := start + 4*e.Width
	if y < 0 || y >= e.Height || end > len(b) {
		return nil, fmt.Errorf("%w: row %d out of bounds", ErrFormat, y)
	}
	return b[start:end], nil
}
