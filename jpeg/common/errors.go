package common

import "errors"

// Error kinds reported by the decoder and encoder.
// Callers match them with errors.Is; the returned errors wrap them with context.
var (
	// ErrUnsupportedFeature is returned for valid JPEG features outside the
	// baseline subset (progressive frames, restart markers, DRI, COM, APPn).
	ErrUnsupportedFeature = errors.New("unsupported JPEG feature")

	// ErrMalformedHeader is returned when a marker segment is structurally invalid.
	ErrMalformedHeader = errors.New("malformed JPEG header")

	// ErrTruncatedStream is returned when the input ends before an expected field.
	ErrTruncatedStream = errors.New("truncated JPEG stream")

	// ErrCorruptScan is returned when entropy-coded data cannot be decoded.
	ErrCorruptScan = errors.New("corrupt JPEG scan data")

	// ErrHuffmanOverflow signals a Huffman code longer than 16 bits.
	ErrHuffmanOverflow = errors.New("Huffman code length exceeds 16 bits")
)

// Common errors
var (
	ErrInvalidState      = errors.New("invalid document state")
	ErrInvalidDimensions = errors.New("invalid image dimensions")
	ErrInvalidComponents = errors.New("invalid number of components")
	ErrInvalidQuality    = errors.New("invalid quality factor")
	ErrBufferTooSmall    = errors.New("buffer too small")
)
