package baseline

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/imaging/codec"
	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"
	"github.com/cocosip/go-jpeg-baseline/jpeg/common"
)

var _ codec.Codec = (*BaselineCodec)(nil)

// BaselineCodec implements the go-dicom codec.Codec interface for
// JPEG Baseline (Process 1), transfer syntax 1.2.840.10008.1.2.4.50
type BaselineCodec struct {
	transferSyntax *transfer.Syntax
	quality        int
}

// NewBaselineCodec creates a new JPEG Baseline codec with the given default quality
func NewBaselineCodec(quality int) *BaselineCodec {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &BaselineCodec{
		transferSyntax: transfer.JPEGBaseline8Bit,
		quality:        quality,
	}
}

// Name returns the codec name
func (c *BaselineCodec) Name() string {
	return "JPEG Baseline (Process 1)"
}

// TransferSyntax returns the transfer syntax this codec handles
func (c *BaselineCodec) TransferSyntax() *transfer.Syntax {
	return c.transferSyntax
}

// GetDefaultParameters returns the default codec parameters
func (c *BaselineCodec) GetDefaultParameters() codec.Parameters {
	return NewBaselineParameters().WithQuality(c.quality)
}

// encodeOptions resolves the encoder options from generic or baseline parameters
func (c *BaselineCodec) encodeOptions(parameters codec.Parameters) *EncodeOptions {
	p := NewBaselineParameters().WithQuality(c.quality)
	switch v := parameters.(type) {
	case nil:
	case *JPEGBaselineParameters:
		if v != nil {
			cp := *v
			p = &cp
		}
	default:
		if q, ok := parameters.GetParameter("quality").(int); ok {
			p.Quality = q
		}
		if s, ok := parameters.GetParameter("subsampling").(string); ok {
			p.SetParameter("subsampling", s)
		}
	}
	p.Validate()
	return p.encodeOptions()
}

// Encode encodes every frame of 8-bit pixel data to JPEG Baseline
func (c *BaselineCodec) Encode(oldPixelData imagetypes.PixelData, newPixelData imagetypes.PixelData, parameters codec.Parameters) error {
	if oldPixelData == nil || newPixelData == nil {
		return fmt.Errorf("source and destination PixelData cannot be nil")
	}

	frameInfo := oldPixelData.GetFrameInfo()
	if frameInfo == nil {
		return fmt.Errorf("failed to get frame info from source pixel data")
	}
	if frameInfo.BitsAllocated != 8 || frameInfo.BitsStored > 8 {
		return fmt.Errorf("JPEG Baseline requires 8-bit samples, got BitsAllocated=%d BitsStored=%d",
			frameInfo.BitsAllocated, frameInfo.BitsStored)
	}

	width, height := int(frameInfo.Width), int(frameInfo.Height)
	components := int(frameInfo.SamplesPerPixel)
	if components != 1 && components != 3 {
		return fmt.Errorf("JPEG Baseline supports 1 or 3 samples per pixel, got %d", components)
	}
	opts := c.encodeOptions(parameters)

	frameCount := oldPixelData.FrameCount()
	for frameIndex := 0; frameIndex < frameCount; frameIndex++ {
		frameData, err := oldPixelData.GetFrame(frameIndex)
		if err != nil {
			return fmt.Errorf("failed to get frame %d: %w", frameIndex, err)
		}
		if len(frameData) < width*height*components {
			return fmt.Errorf("frame %d has %d bytes, need %d", frameIndex, len(frameData), width*height*components)
		}

		adjusted := frameData[:width*height*components]
		if components == 3 && frameInfo.PlanarConfiguration == 1 {
			adjusted = interleavePlanes(adjusted, width*height)
		}
		if frameInfo.PixelRepresentation == 1 {
			adjusted = append([]byte(nil), adjusted...)
			common.SignedToUnsigned(adjusted)
		}

		jpegData, err := EncodeWithOptions(adjusted, width, height, components, opts)
		if err != nil {
			return fmt.Errorf("JPEG Baseline encode failed for frame %d: %w", frameIndex, err)
		}

		if err := newPixelData.AddFrame(jpegData); err != nil {
			return fmt.Errorf("failed to add encoded frame %d: %w", frameIndex, err)
		}
	}

	return nil
}

// Decode decodes every JPEG Baseline frame to interleaved 8-bit pixel data
func (c *BaselineCodec) Decode(oldPixelData imagetypes.PixelData, newPixelData imagetypes.PixelData, parameters codec.Parameters) error {
	if oldPixelData == nil || newPixelData == nil {
		return fmt.Errorf("source and destination PixelData cannot be nil")
	}

	frameInfo := oldPixelData.GetFrameInfo()
	if frameInfo == nil {
		return fmt.Errorf("failed to get frame info from source pixel data")
	}

	frameCount := oldPixelData.FrameCount()
	for frameIndex := 0; frameIndex < frameCount; frameIndex++ {
		frameData, err := oldPixelData.GetFrame(frameIndex)
		if err != nil {
			return fmt.Errorf("failed to get frame %d: %w", frameIndex, err)
		}
		if len(frameData) == 0 {
			return fmt.Errorf("frame %d pixel data is empty", frameIndex)
		}

		pixelData, width, height, components, err := Decode(frameData)
		if err != nil {
			return fmt.Errorf("JPEG Baseline decode failed for frame %d: %w", frameIndex, err)
		}

		if width != int(frameInfo.Width) || height != int(frameInfo.Height) {
			return fmt.Errorf("decoded dimensions (%dx%d) don't match expected (%dx%d)",
				width, height, frameInfo.Width, frameInfo.Height)
		}
		if components != int(frameInfo.SamplesPerPixel) {
			return fmt.Errorf("decoded components (%d) don't match expected (%d)",
				components, frameInfo.SamplesPerPixel)
		}

		if frameInfo.PixelRepresentation == 1 {
			common.UnsignedToSigned(pixelData)
		}

		if err := newPixelData.AddFrame(pixelData); err != nil {
			return fmt.Errorf("failed to add decoded frame %d: %w", frameIndex, err)
		}
	}

	return nil
}

// interleavePlanes converts planar RRR..GGG..BBB.. samples to RGBRGB..
func interleavePlanes(planar []byte, pixels int) []byte {
	out := make([]byte, pixels*3)
	for i := 0; i < pixels; i++ {
		out[i*3] = planar[i]
		out[i*3+1] = planar[pixels+i]
		out[i*3+2] = planar[2*pixels+i]
	}
	return out
}

// RegisterBaselineCodec registers the JPEG Baseline codec with the go-dicom global registry
func RegisterBaselineCodec() {
	registry := codec.GetGlobalRegistry()
	registry.RegisterCodec(transfer.JPEGBaseline8Bit, NewBaselineCodec(DefaultQuality))
}

func init() {
	RegisterBaselineCodec()
}
