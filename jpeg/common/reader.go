package common

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Reader provides utilities for reading JPEG markers and segments
type Reader struct {
	r   *bufio.Reader
	buf [2]byte
}

// NewReader creates a new JPEG reader
func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

// truncated maps end-of-input conditions to ErrTruncatedStream.
func truncated(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s", ErrTruncatedStream, what)
	}
	return err
}

// ReadByte reads a single byte
func (r *Reader) ReadByte() (byte, error) {
	return r.r.ReadByte()
}

// ReadUint16 reads a 16-bit big-endian value
func (r *Reader) ReadUint16() (uint16, error) {
	if _, err := io.ReadFull(r.r, r.buf[:2]); err != nil {
		return 0, truncated(err, "word")
	}
	return binary.BigEndian.Uint16(r.buf[:2]), nil
}

// ReadMarker reads the next JPEG marker, including the 0xFF prefix.
func (r *Reader) ReadMarker() (uint16, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, truncated(err, "marker")
	}
	if b != 0xFF {
		return 0, fmt.Errorf("%w: expected marker, found byte 0x%02X", ErrMalformedHeader, b)
	}

	// Skip any fill 0xFF bytes
	for {
		b, err = r.r.ReadByte()
		if err != nil {
			return 0, truncated(err, "marker")
		}
		if b != 0xFF {
			break
		}
	}

	// 0x00 is a stuffed byte, not a marker
	if b == 0x00 {
		return 0, fmt.Errorf("%w: stuffed byte outside scan data", ErrMalformedHeader)
	}

	return uint16(0xFF00) | uint16(b), nil
}

// ReadSegment reads a segment with its length
// Returns the segment payload (without the length field)
func (r *Reader) ReadSegment() ([]byte, error) {
	length, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	// Length includes itself (2 bytes)
	if length < 2 {
		return nil, fmt.Errorf("%w: segment length %d", ErrMalformedHeader, length)
	}

	data := make([]byte, length-2)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, truncated(err, "segment payload")
	}
	return data, nil
}

// Skip skips n bytes
func (r *Reader) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	_, err := r.r.Discard(n)
	return truncated(err, "skipped bytes")
}
