package baseline

import (
	"fmt"

	"github.com/cocosip/go-jpeg-baseline/jpeg/common"
)

// Subsampling selects the chroma sampling of three-component images
type Subsampling int

const (
	// Subsampling420 halves chroma resolution in both directions (Y sampled 2x2)
	Subsampling420 Subsampling = iota
	// Subsampling422 halves chroma resolution horizontally (Y sampled 2x1)
	Subsampling422
	// Subsampling444 keeps full chroma resolution (Y sampled 1x1)
	Subsampling444
)

// factors returns the luma sampling factors; chroma is always 1x1
func (s Subsampling) factors() (h, v int) {
	switch s {
	case Subsampling422:
		return 2, 1
	case Subsampling444:
		return 1, 1
	default:
		return 2, 2
	}
}

func (s Subsampling) String() string {
	switch s {
	case Subsampling420:
		return "4:2:0"
	case Subsampling422:
		return "4:2:2"
	case Subsampling444:
		return "4:4:4"
	default:
		return fmt.Sprintf("Subsampling(%d)", int(s))
	}
}

// ParseSubsampling parses "420", "422" or "444" (with or without colons)
func ParseSubsampling(s string) (Subsampling, error) {
	switch s {
	case "420", "4:2:0":
		return Subsampling420, nil
	case "422", "4:2:2":
		return Subsampling422, nil
	case "444", "4:4:4":
		return Subsampling444, nil
	default:
		return 0, fmt.Errorf("unknown subsampling %q", s)
	}
}

// DefaultQuality reproduces the quantization tables of ISO/IEC 10918-1 Annex K unscaled
const DefaultQuality = 50

// EncodeOptions controls the encoder
type EncodeOptions struct {
	// Quality scales the standard quantization tables (1-100, 50 = unscaled)
	Quality int

	// Subsampling of the chroma components, ignored for grayscale
	Subsampling Subsampling

	// StandardTables uses the Annex K Huffman tables instead of tables
	// optimized for the image. Images with extreme chroma at high quality
	// can need DC categories the standard tables do not define.
	StandardTables bool
}

// DefaultEncodeOptions returns quality 50 with 4:2:0 subsampling and optimized Huffman tables
func DefaultEncodeOptions() *EncodeOptions {
	return &EncodeOptions{
		Quality:     DefaultQuality,
		Subsampling: Subsampling420,
	}
}

// Validate checks the options
func (o *EncodeOptions) Validate() error {
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("%w: %d", common.ErrInvalidQuality, o.Quality)
	}
	if o.Subsampling < Subsampling420 || o.Subsampling > Subsampling444 {
		return fmt.Errorf("invalid subsampling %d", int(o.Subsampling))
	}
	return nil
}
