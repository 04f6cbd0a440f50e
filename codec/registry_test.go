package codec_test

import (
	"errors"
	"testing"

	"github.com/cocosip/go-jpeg-baseline/codec"
	"github.com/cocosip/go-jpeg-baseline/jpeg/baseline"
)

func TestCodecRegistry(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		wantFound bool
		wantUID   string
		wantName  string
	}{
		{
			name:      "Get baseline by UID",
			key:       "1.2.840.10008.1.2.4.50",
			wantFound: true,
			wantUID:   "1.2.840.10008.1.2.4.50",
			wantName:  "jpeg-baseline",
		},
		{
			name:      "Get baseline by name",
			key:       "jpeg-baseline",
			wantFound: true,
			wantUID:   "1.2.840.10008.1.2.4.50",
			wantName:  "jpeg-baseline",
		},
		{
			name:      "Get non-existent codec",
			key:       "non-existent",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := codec.Get(tt.key)

			if tt.wantFound {
				if err != nil {
					t.Fatalf("Get(%q) unexpected error: %v", tt.key, err)
				}
				if c.UID() != tt.wantUID {
					t.Errorf("Get(%q).UID() = %q, want %q", tt.key, c.UID(), tt.wantUID)
				}
				if c.Name() != tt.wantName {
					t.Errorf("Get(%q).Name() = %q, want %q", tt.key, c.Name(), tt.wantName)
				}
			} else if !errors.Is(err, codec.ErrCodecNotFound) {
				t.Errorf("Get(%q) error = %v, want %v", tt.key, err, codec.ErrCodecNotFound)
			}
		})
	}
}

// stubCodec is a named codec that does nothing
type stubCodec struct {
	name, uid string
}

func (s *stubCodec) Encode(codec.EncodeParams) ([]byte, error)  { return nil, nil }
func (s *stubCodec) Decode([]byte) (*codec.DecodeResult, error) { return nil, nil }
func (s *stubCodec) UID() string                                 { return s.uid }
func (s *stubCodec) Name() string                                { return s.name }

func TestRegistryListSortedAndDeduplicated(t *testing.T) {
	r := codec.NewRegistry()
	r.Register(&stubCodec{name: "zeta", uid: "1.2.3"})
	r.Register(&stubCodec{name: "alpha", uid: "1.2.4"})

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("List() returned %d codecs, want 2", len(list))
	}
	if list[0].Name() != "alpha" || list[1].Name() != "zeta" {
		t.Errorf("List() order = [%s %s], want [alpha zeta]", list[0].Name(), list[1].Name())
	}

	if _, err := r.Get("1.2.3"); err != nil {
		t.Errorf("Get by UID failed: %v", err)
	}
	if _, err := r.Get("jpeg-baseline"); !errors.Is(err, codec.ErrCodecNotFound) {
		t.Errorf("empty registry should not know jpeg-baseline, got %v", err)
	}
}

func TestBaselineCodecEncodeDecode(t *testing.T) {
	c, err := codec.Get("1.2.840.10008.1.2.4.50")
	if err != nil {
		t.Fatalf("Failed to get baseline codec: %v", err)
	}

	tests := []struct {
		name       string
		components int
		options    codec.Options
	}{
		{"grayscale defaults", 1, nil},
		{"RGB quality 90", 3, &baseline.Options{BaseOptions: codec.BaseOptions{Quality: 90}}},
		{"RGB 4:4:4", 3, &baseline.Options{BaseOptions: codec.BaseOptions{Quality: 75}, Subsampling: baseline.Subsampling444}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			width, height := 64, 48
			pixelData := make([]byte, width*height*tt.components)
			for i := range pixelData {
				pixelData[i] = byte(i % 256)
			}

			compressed, err := c.Encode(codec.EncodeParams{
				PixelData:  pixelData,
				Width:      width,
				Height:     height,
				Components: tt.components,
				BitDepth:   8,
				Options:    tt.options,
			})
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			t.Logf("Compressed size: %d bytes (ratio %.2fx)",
				len(compressed), codec.CompressionRatio(len(pixelData), len(compressed)))

			result, err := c.Decode(compressed)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if result.Width != width || result.Height != height {
				t.Errorf("size = %dx%d, want %dx%d", result.Width, result.Height, width, height)
			}
			if result.Components != tt.components {
				t.Errorf("Components = %d, want %d", result.Components, tt.components)
			}
			if result.BitDepth != 8 {
				t.Errorf("BitDepth = %d, want 8", result.BitDepth)
			}
		})
	}
}

func TestBaselineCodecRejectsBitDepth(t *testing.T) {
	c, err := codec.Get("jpeg-baseline")
	if err != nil {
		t.Fatalf("Failed to get baseline codec: %v", err)
	}
	_, err = c.Encode(codec.EncodeParams{
		PixelData:  make([]byte, 16*16*2),
		Width:      16,
		Height:     16,
		Components: 1,
		BitDepth:   12,
	})
	if !errors.Is(err, codec.ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}

func TestBaseOptionsValidate(t *testing.T) {
	tests := []struct {
		quality int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{50, false},
		{100, false},
		{101, true},
	}
	for _, tt := range tests {
		o := codec.BaseOptions{Quality: tt.quality}
		err := o.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(quality=%d) error = %v, wantErr %v", tt.quality, err, tt.wantErr)
		}
	}
}

func TestCompressionRatio(t *testing.T) {
	if got := codec.CompressionRatio(1000, 250); got != 4 {
		t.Errorf("CompressionRatio(1000, 250) = %v, want 4", got)
	}
	if got := codec.CompressionRatio(1000, 0); got != 0 {
		t.Errorf("CompressionRatio(1000, 0) = %v, want 0", got)
	}
}
