package baseline

import (
	"bytes"
	"errors"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/cocosip/go-jpeg-baseline/jpeg/common"
)

func TestFrameLayout(t *testing.T) {
	tests := []struct {
		name             string
		width, height    int
		subsampling      Subsampling
		components       int
		wantCols         int
		wantRows         int
		wantMCUW         int
		wantMCUH         int
		wantChromaPlaneW int
	}{
		{"Gray 10x10", 10, 10, Subsampling420, 1, 2, 2, 8, 8, 0},
		{"Gray 8x8", 8, 8, Subsampling420, 1, 1, 1, 8, 8, 0},
		{"420 10x10", 10, 10, Subsampling420, 3, 1, 1, 16, 16, 8},
		{"420 17x9", 17, 9, Subsampling420, 3, 2, 1, 16, 16, 16},
		{"422 17x9", 17, 9, Subsampling422, 3, 2, 2, 16, 8, 16},
		{"444 17x9", 17, 9, Subsampling444, 3, 3, 2, 8, 8, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument()
			opts := DefaultEncodeOptions()
			opts.Subsampling = tt.subsampling
			doc.setHeaders(tt.width, tt.height, tt.components, opts)
			l := doc.layout

			if l.mcuCols != tt.wantCols || l.mcuRows != tt.wantRows {
				t.Errorf("MCU grid = %dx%d, want %dx%d", l.mcuCols, l.mcuRows, tt.wantCols, tt.wantRows)
			}
			if l.mcuWidth != tt.wantMCUW || l.mcuHeight != tt.wantMCUH {
				t.Errorf("MCU size = %dx%d, want %dx%d", l.mcuWidth, l.mcuHeight, tt.wantMCUW, tt.wantMCUH)
			}
			if l.mcuCount() != tt.wantCols*tt.wantRows {
				t.Errorf("mcuCount = %d", l.mcuCount())
			}
			if tt.components == 3 {
				if w, _ := l.planeSize(1); w != tt.wantChromaPlaneW {
					t.Errorf("chroma plane width = %d, want %d", w, tt.wantChromaPlaneW)
				}
				m := l.newMCU()
				h, v := tt.subsampling.factors()
				if len(m[0]) != h*v || len(m[1]) != 1 || len(m[2]) != 1 {
					t.Errorf("MCU data units = %d/%d/%d", len(m[0]), len(m[1]), len(m[2]))
				}
			}
		})
	}
}

func TestExtendEdgesAndDownsample(t *testing.T) {
	f := &SOF0{
		Precision: 8, Width: 3, Height: 2,
		Components: []FrameComponent{{ID: 1, H: 2, V: 2}, {ID: 2, H: 1, V: 1}},
	}
	l := newFrameLayout(f)

	src := []int32{
		1, 2, 3,
		4, 5, 6,
	}
	full := l.extendEdges(src)
	if full.width != 16 || full.height != 16 {
		t.Fatalf("padded plane is %dx%d, want 16x16", full.width, full.height)
	}
	// Last column and row are replicated
	if full.samples[15] != 3 || full.samples[15*16] != 4 || full.samples[15*16+15] != 6 {
		t.Errorf("edge samples = %d %d %d", full.samples[15], full.samples[15*16], full.samples[15*16+15])
	}

	if luma := l.downsample(0, full); luma.width != 16 {
		t.Errorf("full-resolution component was resampled to width %d", luma.width)
	}

	chroma := l.downsample(1, full)
	if chroma.width != 8 || chroma.height != 8 {
		t.Fatalf("chroma plane is %dx%d, want 8x8", chroma.width, chroma.height)
	}
	// (1+2+4+5)/4 = 3, (3+3+6+6)/4 = 4.5 rounds to 5
	if chroma.samples[0] != 3 || chroma.samples[1] != 5 {
		t.Errorf("downsampled = %d %d, want 3 5", chroma.samples[0], chroma.samples[1])
	}

	neg := l.downsample(1, plane{width: 16, height: 16, samples: func() []int32 {
		s := make([]int32, 256)
		s[0], s[1], s[16], s[17] = -3, -3, -3, -1
		return s
	}()})
	// -10/4 = -2.5 rounds away from zero
	if neg.samples[0] != -3 {
		t.Errorf("negative average = %d, want -3", neg.samples[0])
	}
}

func TestSplitAssemblePlane(t *testing.T) {
	f := &SOF0{
		Precision: 8, Width: 32, Height: 16,
		Components: []FrameComponent{{ID: 1, H: 2, V: 2}, {ID: 2, H: 1, V: 1}},
	}
	l := newFrameLayout(f)
	mcus := make([]MCU, l.mcuCount())
	for i := range mcus {
		mcus[i] = l.newMCU()
	}

	for ci := range f.Components {
		w, h := l.planeSize(ci)
		p := plane{width: w, height: h, samples: make([]int32, w*h)}
		for i := range p.samples {
			p.samples[i] = int32(i)
		}
		l.splitPlane(ci, p, mcus)

		got := l.assemblePlane(ci, mcus)
		for i := range p.samples {
			if got.samples[i] != p.samples[i] {
				t.Fatalf("component %d sample %d = %d, want %d", ci, i, got.samples[i], p.samples[i])
			}
		}
	}

	// Luma data unit 1 of MCU 1 starts at x=24, y=0
	if mcus[1][0][1][0] != 24 {
		t.Errorf("MCU 1 unit 1 starts with %d, want 24", mcus[1][0][1][0])
	}

	chroma := l.assemblePlane(1, mcus)
	if got := l.upsample(1, chroma, 31, 15); got != chroma.samples[7*16+15] {
		t.Errorf("upsample(31,15) = %d, want %d", got, chroma.samples[7*16+15])
	}
}

func TestDPCM(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	f := &SOF0{
		Precision: 8, Width: 48, Height: 32,
		Components: []FrameComponent{{ID: 1, H: 2, V: 2}, {ID: 2, H: 1, V: 1}, {ID: 3, H: 1, V: 1}},
	}
	l := newFrameLayout(f)

	mcus := make([]MCU, l.mcuCount())
	want := make([]MCU, len(mcus))
	for i := range mcus {
		mcus[i] = l.newMCU()
		want[i] = l.newMCU()
		for ci := range mcus[i] {
			for j := range mcus[i][ci] {
				v := int32(rng.IntN(2047) - 1023)
				mcus[i][ci][j][0] = v
				want[i][ci][j][0] = v
			}
		}
	}

	encodeDC(mcus, 3)

	// The first unit of each component is coded against 0
	if mcus[0][1][0][0] != want[0][1][0][0] {
		t.Errorf("first Cb difference = %d, want %d", mcus[0][1][0][0], want[0][1][0][0])
	}
	// Luma units chain inside the MCU
	if d := mcus[0][0][1][0]; d != want[0][0][1][0]-want[0][0][0][0] {
		t.Errorf("second luma difference = %d", d)
	}
	// and across MCUs
	if d := mcus[1][2][0][0]; d != want[1][2][0][0]-want[0][2][0][0] {
		t.Errorf("Cr difference across MCUs = %d", d)
	}

	decodeDC(mcus, 3)
	for i := range mcus {
		for ci := range mcus[i] {
			for j := range mcus[i][ci] {
				if mcus[i][ci][j][0] != want[i][ci][j][0] {
					t.Fatalf("MCU %d component %d unit %d: DC %d, want %d",
						i, ci, j, mcus[i][ci][j][0], want[i][ci][j][0])
				}
			}
		}
	}
}

func TestDataUnitCoding(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 4))

	var units []dataUnit
	// Long zero runs force ZRL symbols
	units = append(units, dataUnit{0: 5, 40: -3})
	units = append(units, dataUnit{0, 63: 1})
	units = append(units, dataUnit{-2047, 1: 1023, 17: -1, 33: 1, 49: -1})
	units = append(units, dataUnit{})
	for i := 0; i < 50; i++ {
		var du dataUnit
		du[0] = int32(rng.IntN(4095) - 2047)
		for k := 1; k < 64; k++ {
			if rng.IntN(4) == 0 {
				du[k] = int32(rng.IntN(2047) - 1023)
			}
		}
		units = append(units, du)
	}

	var dcFreq, acFreq frequencyCounter
	for i := range units {
		if err := encodeDataUnit(&units[i], &dcFreq, &acFreq); err != nil {
			t.Fatalf("counting pass failed: %v", err)
		}
	}
	if acFreq.freq[symbolZRL] == 0 {
		t.Error("no ZRL symbols counted")
	}
	if acFreq.freq[symbolEOB] == 0 {
		t.Error("no EOB symbols counted")
	}

	dcTable, err := common.BuildOptimalTable(&dcFreq.freq)
	if err != nil {
		t.Fatalf("DC table: %v", err)
	}
	acTable, err := common.BuildOptimalTable(&acFreq.freq)
	if err != nil {
		t.Fatalf("AC table: %v", err)
	}

	var buf bytes.Buffer
	bw := common.NewBitWriter(&buf)
	dc, err := newHuffmanEmitter(bw, dcTable)
	if err != nil {
		t.Fatal(err)
	}
	ac, err := newHuffmanEmitter(bw, acTable)
	if err != nil {
		t.Fatal(err)
	}
	for i := range units {
		if err := encodeDataUnit(&units[i], dc, ac); err != nil {
			t.Fatalf("encode unit %d: %v", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		t.Fatal(err)
	}
	buf.Write([]byte{0xFF, 0xD9})

	br := common.NewBitReader(bytes.NewReader(buf.Bytes()))
	for i := range units {
		var got dataUnit
		if err := decodeDataUnit(br, dcTable, acTable, &got); err != nil {
			t.Fatalf("decode unit %d: %v", i, err)
		}
		if got != units[i] {
			t.Fatalf("unit %d = %v, want %v", i, got, units[i])
		}
	}

	var extra dataUnit
	if err := decodeDataUnit(br, dcTable, acTable, &extra); !errors.Is(err, io.EOF) {
		t.Errorf("read past EOI: error = %v, want io.EOF", err)
	}
}
