package baseline

import (
	"bytes"
	"fmt"

	"github.com/cocosip/go-jpeg-baseline/jpeg/common"
)

// Decode decodes baseline JPEG data into interleaved 8-bit samples.
// Grayscale images yield one sample per pixel, YCbCr images yield RGB.
func Decode(jpegData []byte) (pixelData []byte, width, height, components int, err error) {
	doc := NewDocument()
	if _, err := doc.ReadFrom(bytes.NewReader(jpegData)); err != nil {
		return nil, 0, 0, 0, err
	}

	pixelData, err = doc.Pixels()
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return pixelData, doc.Width(), doc.Height(), doc.Components(), nil
}

// DecodeRGB decodes baseline JPEG data into an interleaved RGB grid.
// Grayscale images are expanded to R=G=B.
func DecodeRGB(jpegData []byte) (width, height int, rgb []byte, err error) {
	pixelData, width, height, components, err := Decode(jpegData)
	if err != nil {
		return 0, 0, nil, err
	}

	switch components {
	case 3:
		return width, height, pixelData, nil
	case 1:
		rgb = make([]byte, len(pixelData)*3)
		for i, v := range pixelData {
			rgb[i*3], rgb[i*3+1], rgb[i*3+2] = v, v, v
		}
		return width, height, rgb, nil
	default:
		return 0, 0, nil, fmt.Errorf("%w: %d-component image has no RGB form", common.ErrUnsupportedFeature, components)
	}
}
