package baseline

import (
	"bytes"
)

// Encode encodes pixel data to JPEG Baseline format with 4:2:0 chroma subsampling.
// components: 1 for grayscale, 3 for RGB
// quality: 1-100, 50 uses the standard quantization tables unscaled
func Encode(pixelData []byte, width, height, components, quality int) ([]byte, error) {
	opts := DefaultEncodeOptions()
	opts.Quality = quality
	return EncodeWithOptions(pixelData, width, height, components, opts)
}

// EncodeRGB encodes an interleaved RGB grid with the default options
func EncodeRGB(width, height int, rgb []byte) ([]byte, error) {
	return EncodeWithOptions(rgb, width, height, 3, nil)
}

// EncodeWithOptions encodes pixel data with explicit options; nil selects the defaults
func EncodeWithOptions(pixelData []byte, width, height, components int, opts *EncodeOptions) ([]byte, error) {
	doc := NewDocument()
	if err := doc.SetPixels(pixelData, width, height, components, opts); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
