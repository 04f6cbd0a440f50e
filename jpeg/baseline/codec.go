package baseline

import (
	"fmt"

	"github.com/cocosip/go-jpeg-baseline/codec"
)

// Codec implements the codec.Codec interface for JPEG Baseline
type Codec struct{}

// NewCodec creates a new JPEG Baseline codec
func NewCodec() *Codec {
	return &Codec{}
}

// Encode encodes pixel data using JPEG Baseline
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	if params.BitDepth != 0 && params.BitDepth != 8 {
		return nil, fmt.Errorf("%w: %d-bit samples (baseline is 8-bit)", codec.ErrUnsupportedFormat, params.BitDepth)
	}

	opts := DefaultEncodeOptions()
	if params.Options != nil {
		o, ok := params.Options.(*Options)
		if !ok {
			return nil, fmt.Errorf("%w: options of type %T", codec.ErrInvalidParameter, params.Options)
		}
		if err := o.Validate(); err != nil {
			return nil, err
		}
		opts = o.encodeOptions()
	}

	return EncodeWithOptions(
		params.PixelData,
		params.Width,
		params.Height,
		params.Components,
		opts,
	)
}

// Decode decodes JPEG Baseline data
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	pixelData, width, height, components, err := Decode(data)
	if err != nil {
		return nil, err
	}

	return &codec.DecodeResult{
		PixelData:  pixelData,
		Width:      width,
		Height:     height,
		Components: components,
		BitDepth:   8, // Baseline is always 8-bit
	}, nil
}

// UID returns the DICOM Transfer Syntax UID for JPEG Baseline
func (c *Codec) UID() string {
	return "1.2.840.10008.1.2.4.50"
}

// Name returns the human-readable name
func (c *Codec) Name() string {
	return "jpeg-baseline"
}

// Options contains encoding options for JPEG Baseline
type Options struct {
	codec.BaseOptions
	Subsampling    Subsampling
	StandardTables bool
}

// Validate validates the options
func (o *Options) Validate() error {
	if err := o.BaseOptions.Validate(); err != nil {
		return err
	}
	return o.encodeOptions().Validate()
}

func (o *Options) encodeOptions() *EncodeOptions {
	return &EncodeOptions{
		Quality:        o.Quality,
		Subsampling:    o.Subsampling,
		StandardTables: o.StandardTables,
	}
}

// Register registers this codec with the global registry
func init() {
	codec.Register(NewCodec())
}
