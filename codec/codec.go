package codec

// Codec converts between raw 8-bit samples and JPEG baseline streams.
// The registry looks codecs up by name or by DICOM transfer syntax UID.
type Codec interface {
	// Encode compresses interleaved samples into a complete JPEG stream
	Encode(params EncodeParams) ([]byte, error)

	// Decode reconstructs interleaved samples from a JPEG stream
	Decode(data []byte) (*DecodeResult, error)

	// UID returns the DICOM transfer syntax UID
	UID() string

	// Name returns the registry name
	Name() string
}

// EncodeParams describes the raw image handed to Encode
type EncodeParams struct {
	PixelData  []byte  // Interleaved samples, gray or RGB
	Width      int     // Image width
	Height     int     // Image height
	Components int     // 1 (grayscale) or 3 (RGB)
	BitDepth   int     // Bits per sample, 0 or 8
	Options    Options // Encoder options, nil for defaults
}

// Options carries encoder settings such as quality and subsampling
type Options interface {
	Validate() error
}

// DecodeResult is the image reconstructed by Decode
type DecodeResult struct {
	PixelData  []byte // Interleaved samples, RGB for color streams
	Width      int    // Image width
	Height     int    // Image height
	Components int    // Components in the frame header
	BitDepth   int    // Always 8
}

// CompressionRatio returns the ratio of raw pixel bytes to compressed bytes
func CompressionRatio(rawSize, compressedSize int) float64 {
	if compressedSize == 0 {
		return 0
	}
	return float64(rawSize) / float64(compressedSize)
}

// BaseOptions holds the quality factor that scales the quantization tables
type BaseOptions struct {
	// Quality 1-100; 50 keeps the standard tables unscaled
	Quality int
}

// Validate rejects a quality outside 1-100
func (o *BaseOptions) Validate() error {
	if o.Quality < 1 || o.Quality > 100 {
		return ErrInvalidQuality
	}
	return nil
}
