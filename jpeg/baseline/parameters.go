package baseline

import (
	"github.com/cocosip/go-dicom/pkg/imaging/codec"
)

// Ensure JPEGBaselineParameters implements codec.Parameters
var _ codec.Parameters = (*JPEGBaselineParameters)(nil)

// JPEGBaselineParameters contains parameters for JPEG Baseline compression
type JPEGBaselineParameters struct {
	// Quality controls the JPEG compression quality (1-100)
	// - 100: Best quality, minimal compression
	// - 75:  High quality
	// - 50:  Standard quantization tables (default)
	// - 1:   Lowest quality, maximum compression
	Quality int

	// Subsampling of the chroma components for color images
	Subsampling Subsampling

	// StandardTables selects the Annex K Huffman tables instead of optimized ones
	StandardTables bool

	// internal storage for compatibility with generic parameter interface
	params map[string]interface{}
}

// NewBaselineParameters creates a new JPEGBaselineParameters with default values
func NewBaselineParameters() *JPEGBaselineParameters {
	return &JPEGBaselineParameters{
		Quality:     DefaultQuality,
		Subsampling: Subsampling420,
		params:      make(map[string]interface{}),
	}
}

// GetParameter retrieves a parameter by name (implements codec.Parameters)
func (p *JPEGBaselineParameters) GetParameter(name string) interface{} {
	switch name {
	case "quality":
		return p.Quality
	case "subsampling":
		return p.Subsampling.String()
	case "standardTables":
		return p.StandardTables
	default:
		return p.params[name]
	}
}

// SetParameter sets a parameter value (implements codec.Parameters)
func (p *JPEGBaselineParameters) SetParameter(name string, value interface{}) {
	switch name {
	case "quality":
		if v, ok := value.(int); ok {
			p.Quality = v
		}
	case "subsampling":
		switch v := value.(type) {
		case Subsampling:
			p.Subsampling = v
		case string:
			if s, err := ParseSubsampling(v); err == nil {
				p.Subsampling = s
			}
		}
	case "standardTables":
		if v, ok := value.(bool); ok {
			p.StandardTables = v
		}
	default:
		p.params[name] = value
	}
}

// Validate checks the parameters, resetting out-of-range values to their defaults
func (p *JPEGBaselineParameters) Validate() error {
	if p.Quality < 1 || p.Quality > 100 {
		p.Quality = DefaultQuality
	}
	if p.Subsampling < Subsampling420 || p.Subsampling > Subsampling444 {
		p.Subsampling = Subsampling420
	}
	return nil
}

// WithQuality sets the quality and returns the parameters for chaining
func (p *JPEGBaselineParameters) WithQuality(quality int) *JPEGBaselineParameters {
	p.Quality = quality
	return p
}

// WithSubsampling sets the chroma subsampling and returns the parameters for chaining
func (p *JPEGBaselineParameters) WithSubsampling(s Subsampling) *JPEGBaselineParameters {
	p.Subsampling = s
	return p
}

func (p *JPEGBaselineParameters) encodeOptions() *EncodeOptions {
	return &EncodeOptions{
		Quality:        p.Quality,
		Subsampling:    p.Subsampling,
		StandardTables: p.StandardTables,
	}
}
