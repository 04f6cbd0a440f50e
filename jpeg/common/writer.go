package common

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Writer emits the marker segments of a JPEG header
type Writer struct {
	w   io.Writer
	buf [2]byte
}

// NewWriter wraps w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteByte writes a single byte
func (w *Writer) WriteByte(b byte) error {
	w.buf[0] = b
	_, err := w.w.Write(w.buf[:1])
	return err
}

// WriteUint16 writes a big-endian value, as used by segment lengths and dimensions
func (w *Writer) WriteUint16(v uint16) error {
	binary.BigEndian.PutUint16(w.buf[:2], v)
	_, err := w.w.Write(w.buf[:2])
	return err
}

// WriteMarker writes a two-byte FFxx marker
func (w *Writer) WriteMarker(marker uint16) error {
	return w.WriteUint16(marker)
}

// WriteSegment writes marker, length and payload.
// The length counts itself, so payloads are limited to 65533 bytes.
func (w *Writer) WriteSegment(marker uint16, data []byte) error {
	if len(data)+2 > 0xFFFF {
		return fmt.Errorf("%s segment too long: %d bytes", MarkerName(marker), len(data))
	}
	if err := w.WriteMarker(marker); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(len(data) + 2)); err != nil {
		return err
	}
	_, err := w.w.Write(data)
	return err
}

// Write copies already-coded bytes, such as scan data, through unchanged
func (w *Writer) Write(data []byte) (int, error) {
	return w.w.Write(data)
}
