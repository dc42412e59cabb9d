// Package binio provides a cursor for building fixed-layout little-endian
// binary records in a pre-sized buffer.
package binio

import (
	"encoding/binary"
	"fmt"
)

// Writer writes into a fixed-size byte slice. Writes past the end panic,
// since a correctly pre-sized buffer is a precondition of every caller.
type Writer struct {
	buf []byte
	off int
}

// NewWriter returns a Writer over a zeroed buffer of n bytes.
func NewWriter(n int) *Writer {
	return &Writer{buf: make([]byte, n)}
}

// Offset returns the current cursor position.
func (w *Writer) Offset() int { return w.off }

// Len returns the total buffer size.
func (w *Writer) Len() int { return len(w.buf) }

// Remaining returns the number of unwritten bytes after the cursor.
func (w *Writer) Remaining() int { return len(w.buf) - w.off }

// Bytes returns the whole buffer, including any unwritten tail.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) Uint8(v uint8) {
	w.need(1)
	w.buf[w.off] = v
	w.off++
}

func (w *Writer) Uint16(v uint16) {
	w.need(2)
	binary.LittleEndian.PutUint16(w.buf[w.off:], v)
	w.off += 2
}

func (w *Writer) Uint32(v uint32) {
	w.need(4)
	binary.LittleEndian.PutUint32(w.buf[w.off:], v)
	w.off += 4
}

func (w *Writer) Int32(v int32) {
	w.Uint32(uint32(v))
}

// Write copies p at the cursor.
func (w *Writer) Write(p []byte) {
	w.need(len(p))
	w.off += copy(w.buf[w.off:], p)
}

// Skip advances the cursor by n bytes, leaving them as they are (zero in a
// fresh buffer).
func (w *Writer) Skip(n int) {
	w.need(n)
	w.off += n
}

// Slice reserves n bytes at the cursor and returns them for direct filling.
func (w *Writer) Slice(n int) []byte {
	w.need(n)
	p := w.buf[w.off : w.off+n : w.off+n]
	w.off += n
	return p
}

func (w *Writer) need(n int) {
	if n < 0 || w.off+n > len(w.buf) {
		panic(fmt.Sprintf("binio: write of %d bytes at offset %d overflows %d-byte buffer", n, w.off, len(w.buf)))
	}
}
