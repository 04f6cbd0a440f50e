package baseline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cocosip/go-jpeg-baseline/jpeg/common"
)

// documentState tracks where a Document is in its decode or encode pass
type documentState int

const (
	stateEmpty documentState = iota

	// Decode path
	stateHeadersParsed
	stateScanDecoded

	// Encode path
	stateHeadersSet
	stateCoefficientsComputed
	stateSerialized
)

func (s documentState) String() string {
	switch s {
	case stateEmpty:
		return "empty"
	case stateHeadersParsed:
		return "headers parsed"
	case stateScanDecoded:
		return "scan decoded"
	case stateHeadersSet:
		return "headers set"
	case stateCoefficientsComputed:
		return "coefficients computed"
	case stateSerialized:
		return "serialized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MaxPixels is the largest frame, in pixels, a Document decodes.
// Larger SOF0 dimensions are rejected before any buffer is sized from them.
const MaxPixels = 1 << 26

// Document holds the headers and coefficient data of one baseline JPEG image.
//
// A Document is used for exactly one pass: either ReadFrom followed by
// Pixels, or SetPixels followed by WriteTo.
type Document struct {
	app0 *APP0
	dqt  *DQT
	sof0 *SOF0
	dht  *DHT
	sos  *SOS

	// Coefficients in zig-zag order with differenced DC values,
	// one MCU per tile in raster order.
	mcus []MCU

	layout    frameLayout
	scanOrder []int // Frame component index of each scan component
	state     documentState
}

// NewDocument creates an empty document
func NewDocument() *Document {
	return &Document{
		dqt: newDQT(),
		dht: newDHT(),
	}
}

// Width returns the image width, or 0 before a frame header is known
func (d *Document) Width() int {
	if d.sof0 == nil {
		return 0
	}
	return int(d.sof0.Width)
}

// Height returns the image height, or 0 before a frame header is known
func (d *Document) Height() int {
	if d.sof0 == nil {
		return 0
	}
	return int(d.sof0.Height)
}

// Components returns the number of frame components
func (d *Document) Components() int {
	if d.sof0 == nil {
		return 0
	}
	return len(d.sof0.Components)
}

// MCUCount returns the number of MCUs held by the document
func (d *Document) MCUCount() int {
	return len(d.mcus)
}

func (d *Document) expectState(op string, want documentState) error {
	if d.state != want {
		return fmt.Errorf("%w: %s requires state %q, document is %q", common.ErrInvalidState, op, want, d.state)
	}
	return nil
}

// countingReader counts the bytes pulled from the underlying reader
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// ReadFrom parses a JPEG stream up to and including its EOI marker and
// decodes the entropy-coded scan. It returns the number of bytes read from r,
// which may include read-ahead past EOI.
func (d *Document) ReadFrom(r io.Reader) (int64, error) {
	if err := d.expectState("ReadFrom", stateEmpty); err != nil {
		return 0, err
	}
	cr := &countingReader{r: r}
	err := d.read(common.NewReader(cr))
	return cr.n, err
}

func (d *Document) read(reader *common.Reader) error {
	marker, err := reader.ReadMarker()
	if err != nil {
		return err
	}
	if marker != common.MarkerSOI {
		return fmt.Errorf("%w: stream starts with %s instead of SOI", common.ErrMalformedHeader, common.MarkerName(marker))
	}

	for {
		marker, err := reader.ReadMarker()
		if err != nil {
			return err
		}

		switch marker {
		case common.MarkerAPP0:
			data, err := reader.ReadSegment()
			if err != nil {
				return err
			}
			// JFXX extension segments are skipped
			if !bytes.HasPrefix(data, []byte("JFIF\x00")) {
				continue
			}
			app0, err := parseAPP0(data)
			if err != nil {
				return err
			}
			d.app0 = app0

		case common.MarkerDQT:
			data, err := reader.ReadSegment()
			if err != nil {
				return err
			}
			if err := d.dqt.parse(data); err != nil {
				return err
			}

		case common.MarkerSOF0:
			if d.sof0 != nil {
				return fmt.Errorf("%w: second SOF0 marker", common.ErrMalformedHeader)
			}
			data, err := reader.ReadSegment()
			if err != nil {
				return err
			}
			sof0, err := parseSOF0(data)
			if err != nil {
				return err
			}
			if pixels := int(sof0.Width) * int(sof0.Height); pixels > MaxPixels {
				return fmt.Errorf("%w: %dx%d frame exceeds %d pixels",
					common.ErrUnsupportedFeature, sof0.Width, sof0.Height, MaxPixels)
			}
			d.sof0 = sof0
			d.layout = newFrameLayout(sof0)

		case common.MarkerDHT:
			data, err := reader.ReadSegment()
			if err != nil {
				return err
			}
			if err := d.dht.parse(data); err != nil {
				return err
			}

		case common.MarkerSOS:
			data, err := reader.ReadSegment()
			if err != nil {
				return err
			}
			sos, err := parseSOS(data)
			if err != nil {
				return err
			}
			if err := d.bindScan(sos); err != nil {
				return err
			}
			d.state = stateHeadersParsed
			return d.decodeScan(reader)

		case common.MarkerEOI:
			return fmt.Errorf("%w: end of image before any scan", common.ErrMalformedHeader)

		default:
			return fmt.Errorf("%w: marker %s", common.ErrUnsupportedFeature, common.MarkerName(marker))
		}
	}
}

// bindScan checks a scan header against the frame and the defined tables
func (d *Document) bindScan(sos *SOS) error {
	if d.sof0 == nil {
		return fmt.Errorf("%w: SOS before SOF0", common.ErrMalformedHeader)
	}
	if len(sos.Components) != len(d.sof0.Components) {
		return fmt.Errorf("%w: scan covers %d of %d components (non-interleaved scans)",
			common.ErrUnsupportedFeature, len(sos.Components), len(d.sof0.Components))
	}

	order := make([]int, len(sos.Components))
	seen := make([]bool, len(d.sof0.Components))
	for i, sc := range sos.Components {
		ci := d.sof0.componentIndex(sc.ID)
		if ci < 0 {
			return fmt.Errorf("%w: scan component %d not declared in SOF0", common.ErrMalformedHeader, sc.ID)
		}
		if seen[ci] {
			return fmt.Errorf("%w: scan component %d listed twice", common.ErrMalformedHeader, sc.ID)
		}
		seen[ci] = true
		order[i] = ci

		if d.dht.DC[sc.Td] == nil {
			return fmt.Errorf("%w: component %d uses undefined DC table %d", common.ErrMalformedHeader, sc.ID, sc.Td)
		}
		if d.dht.AC[sc.Ta] == nil {
			return fmt.Errorf("%w: component %d uses undefined AC table %d", common.ErrMalformedHeader, sc.ID, sc.Ta)
		}
		if tq := d.sof0.Components[ci].Tq; d.dqt.Tables[tq] == nil {
			return fmt.Errorf("%w: component %d uses undefined quantization table %d", common.ErrMalformedHeader, sc.ID, tq)
		}
	}

	d.sos = sos
	d.scanOrder = order
	return nil
}

// decodeScan reads MCUs until the frame is covered or the image ends early
func (d *Document) decodeScan(reader *common.Reader) error {
	br := common.NewBitReader(reader)
	total := d.layout.mcuCount()
	d.mcus = nil

	for len(d.mcus) < total {
		m := d.layout.newMCU()
		err := d.decodeMCU(br, m)
		if errors.Is(err, io.EOF) {
			// Clean end of scan before the last MCU
			d.state = stateScanDecoded
			return nil
		}
		if err != nil {
			return fmt.Errorf("MCU %d: %w", len(d.mcus), err)
		}
		d.mcus = append(d.mcus, m)
	}

	if err := br.Drain(); err != nil {
		return err
	}
	d.state = stateScanDecoded
	return nil
}

// decodeMCU reads the data units of one MCU in scan component order.
// io.EOF is returned only if the image ends before the first data unit.
func (d *Document) decodeMCU(br *common.BitReader, m MCU) error {
	for si, ci := range d.scanOrder {
		sc := d.sos.Components[si]
		dc, ac := d.dht.DC[sc.Td], d.dht.AC[sc.Ta]
		for j := range m[ci] {
			err := decodeDataUnit(br, dc, ac, &m[ci][j])
			if err == nil {
				continue
			}
			if errors.Is(err, io.EOF) {
				if si == 0 && j == 0 {
					return io.EOF
				}
				return fmt.Errorf("%w: end of image inside MCU", common.ErrCorruptScan)
			}
			return err
		}
	}
	return nil
}

// spatialUnits returns a copy of the MCUs with every data unit
// reconstructed to level-shifted samples in natural order.
func (d *Document) spatialUnits() []MCU {
	n := len(d.sof0.Components)
	units := make([]MCU, len(d.mcus))
	for i, m := range d.mcus {
		units[i] = make(MCU, n)
		for ci := range m {
			units[i][ci] = append([]dataUnit(nil), m[ci]...)
		}
	}

	decodeDC(units, n)

	for _, m := range units {
		for ci, c := range d.sof0.Components {
			q := &d.dqt.Tables[c.Tq].Values
			for j := range m[ci] {
				du := (*[64]int32)(&m[ci][j])
				common.Dequantize(du, q)
				natural := common.FromZigZag(du)
				common.InverseDCT(&natural)
				*du = natural
			}
		}
	}
	return units
}

// Pixels reconstructs the image as interleaved 8-bit samples.
// Three-component images are converted to RGB; other component counts
// are returned as level-shifted component samples.
func (d *Document) Pixels() ([]byte, error) {
	if err := d.expectState("Pixels", stateScanDecoded); err != nil {
		return nil, err
	}

	units := d.spatialUnits()
	n := len(d.sof0.Components)
	planes := make([]plane, n)
	for ci := range planes {
		planes[ci] = d.layout.assemblePlane(ci, units)
	}

	width, height := d.Width(), d.Height()
	out := make([]byte, width*height*n)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := (y*width + x) * n
			if n == 3 {
				r, g, b := common.YCbCrToRGB(
					d.layout.upsample(0, planes[0], x, y),
					d.layout.upsample(1, planes[1], x, y),
					d.layout.upsample(2, planes[2], x, y),
				)
				out[off], out[off+1], out[off+2] = r, g, b
				continue
			}
			for ci := 0; ci < n; ci++ {
				out[off+ci] = common.LevelShiftSample(d.layout.upsample(ci, planes[ci], x, y))
			}
		}
	}
	return out, nil
}

// SetPixels fills the document from interleaved 8-bit samples: headers,
// quantized coefficients and Huffman tables built from their statistics.
// components is 1 (grayscale) or 3 (RGB).
func (d *Document) SetPixels(pixelData []byte, width, height, components int, opts *EncodeOptions) error {
	if err := d.expectState("SetPixels", stateEmpty); err != nil {
		return err
	}
	if opts == nil {
		opts = DefaultEncodeOptions()
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if width <= 0 || height <= 0 || width > 0xFFFF || height > 0xFFFF || width*height > MaxPixels {
		return fmt.Errorf("%w: %dx%d", common.ErrInvalidDimensions, width, height)
	}
	if components != 1 && components != 3 {
		return fmt.Errorf("%w: %d", common.ErrInvalidComponents, components)
	}
	if len(pixelData) < width*height*components {
		return fmt.Errorf("%w: need %d bytes, got %d", common.ErrBufferTooSmall, width*height*components, len(pixelData))
	}

	d.setHeaders(width, height, components, opts)
	d.computeCoefficients(pixelData)
	return d.buildHuffmanTables(opts.StandardTables)
}

// setHeaders fills APP0, DQT, SOF0 and SOS with encoder defaults
func (d *Document) setHeaders(width, height, components int, opts *EncodeOptions) {
	d.app0 = newAPP0()

	d.dqt = newDQT()
	d.dqt.Tables[0] = quantTableFromNatural(common.ScaleQuantTable(common.DefaultLuminanceQuantTable, opts.Quality))

	d.sof0 = newSOF0()
	d.sof0.Width = uint16(width)
	d.sof0.Height = uint16(height)

	d.sos = newSOS()

	if components == 1 {
		d.sof0.Components = []FrameComponent{{ID: 1, H: 1, V: 1, Tq: 0}}
		d.sos.Components = []ScanComponent{{ID: 1, Td: 0, Ta: 0}}
	} else {
		d.dqt.Tables[1] = quantTableFromNatural(common.ScaleQuantTable(common.DefaultChrominanceQuantTable, opts.Quality))
		h, v := opts.Subsampling.factors()
		d.sof0.Components = []FrameComponent{
			{ID: 1, H: h, V: v, Tq: 0},
			{ID: 2, H: 1, V: 1, Tq: 1},
			{ID: 3, H: 1, V: 1, Tq: 1},
		}
		d.sos.Components = []ScanComponent{
			{ID: 1, Td: 0, Ta: 0},
			{ID: 2, Td: 1, Ta: 1},
			{ID: 3, Td: 1, Ta: 1},
		}
	}

	d.layout = newFrameLayout(d.sof0)
	d.scanOrder = make([]int, components)
	for i := range d.scanOrder {
		d.scanOrder[i] = i
	}
	d.state = stateHeadersSet
}

func quantTableFromNatural(natural [64]int32) *QuantTable {
	return &QuantTable{Values: common.ToZigZag(&natural)}
}

// computeCoefficients converts, pads, subsamples, transforms and quantizes
// the pixels into MCUs.
func (d *Document) computeCoefficients(pixelData []byte) {
	n := len(d.sof0.Components)
	width, height := d.Width(), d.Height()

	full := make([][]int32, n)
	for ci := range full {
		full[ci] = make([]int32, width*height)
	}
	for i := 0; i < width*height; i++ {
		if n == 3 {
			full[0][i], full[1][i], full[2][i] = common.RGBToYCbCr(pixelData[i*3], pixelData[i*3+1], pixelData[i*3+2])
		} else {
			full[0][i] = int32(pixelData[i]) - 128
		}
	}

	d.mcus = make([]MCU, d.layout.mcuCount())
	for i := range d.mcus {
		d.mcus[i] = d.layout.newMCU()
	}
	for ci := 0; ci < n; ci++ {
		p := d.layout.downsample(ci, d.layout.extendEdges(full[ci]))
		d.layout.splitPlane(ci, p, d.mcus)
	}

	for _, m := range d.mcus {
		for ci, c := range d.sof0.Components {
			q := &d.dqt.Tables[c.Tq].Values
			for j := range m[ci] {
				du := (*[64]int32)(&m[ci][j])
				common.ForwardDCT(du)
				zz := common.ToZigZag(du)
				common.Quantize(&zz, q)
				*du = zz
			}
		}
	}

	encodeDC(d.mcus, n)
	d.state = stateCoefficientsComputed
}

// forEachDataUnit walks the data units in scan order with their entropy table selectors
func (d *Document) forEachDataUnit(fn func(du *dataUnit, sc ScanComponent) error) error {
	for _, m := range d.mcus {
		for si, ci := range d.scanOrder {
			sc := d.sos.Components[si]
			for j := range m[ci] {
				if err := fn(&m[ci][j], sc); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// buildHuffmanTables fills DHT, either with optimal tables for the
// coefficient statistics or with the standard Annex K tables.
func (d *Document) buildHuffmanTables(standard bool) error {
	d.dht = newDHT()

	if standard {
		d.dht.DC[0] = common.BuildStandardHuffmanTable(common.StandardDCLuminanceBits, common.StandardDCLuminanceValues)
		d.dht.AC[0] = common.BuildStandardHuffmanTable(common.StandardACLuminanceBits, common.StandardACLuminanceValues)
		if len(d.sof0.Components) > 1 {
			d.dht.DC[1] = common.BuildStandardHuffmanTable(common.StandardDCChrominanceBits, common.StandardDCChrominanceValues)
			d.dht.AC[1] = common.BuildStandardHuffmanTable(common.StandardACChrominanceBits, common.StandardACChrominanceValues)
		}
		return nil
	}

	var dcFreq, acFreq [maxHuffmanTables]*frequencyCounter
	err := d.forEachDataUnit(func(du *dataUnit, sc ScanComponent) error {
		if dcFreq[sc.Td] == nil {
			dcFreq[sc.Td] = &frequencyCounter{}
		}
		if acFreq[sc.Ta] == nil {
			acFreq[sc.Ta] = &frequencyCounter{}
		}
		return encodeDataUnit(du, dcFreq[sc.Td], acFreq[sc.Ta])
	})
	if err != nil {
		return err
	}

	for i := 0; i < maxHuffmanTables; i++ {
		if dcFreq[i] != nil {
			if d.dht.DC[i], err = common.BuildOptimalTable(&dcFreq[i].freq); err != nil {
				return fmt.Errorf("DC table %d: %w", i, err)
			}
		}
		if acFreq[i] != nil {
			// A table must define at least one code
			if acFreq[i].freq == [256]int{} {
				acFreq[i].freq[symbolEOB] = 1
			}
			if d.dht.AC[i], err = common.BuildOptimalTable(&acFreq[i].freq); err != nil {
				return fmt.Errorf("AC table %d: %w", i, err)
			}
		}
	}
	return nil
}

// WriteTo serializes the document as a JPEG stream
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if err := d.expectState("WriteTo", stateCoefficientsComputed); err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	if err := d.serialize(&buf); err != nil {
		return 0, err
	}
	d.state = stateSerialized
	return buf.WriteTo(w)
}

func (d *Document) serialize(buf *bytes.Buffer) error {
	writer := common.NewWriter(buf)

	if err := writer.WriteMarker(common.MarkerSOI); err != nil {
		return err
	}
	if err := d.app0.Serialize(writer); err != nil {
		return err
	}
	if err := d.dqt.Serialize(writer); err != nil {
		return err
	}
	if err := d.sof0.Serialize(writer); err != nil {
		return err
	}
	if err := d.dht.Serialize(writer); err != nil {
		return err
	}
	if err := d.sos.Serialize(writer); err != nil {
		return err
	}

	bw := common.NewBitWriter(buf)
	var dcEmit, acEmit [maxHuffmanTables]*huffmanEmitter
	for i := 0; i < maxHuffmanTables; i++ {
		var err error
		if d.dht.DC[i] != nil {
			if dcEmit[i], err = newHuffmanEmitter(bw, d.dht.DC[i]); err != nil {
				return err
			}
		}
		if d.dht.AC[i] != nil {
			if acEmit[i], err = newHuffmanEmitter(bw, d.dht.AC[i]); err != nil {
				return err
			}
		}
	}

	err := d.forEachDataUnit(func(du *dataUnit, sc ScanComponent) error {
		return encodeDataUnit(du, dcEmit[sc.Td], acEmit[sc.Ta])
	})
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	return writer.WriteMarker(common.MarkerEOI)
}

// String dumps the headers in a human-readable form
func (d *Document) String() string {
	var sb strings.Builder
	if d.app0 != nil {
		sb.WriteString(d.app0.String())
	}
	if d.dqt != nil {
		sb.WriteString(d.dqt.String())
	}
	if d.sof0 != nil {
		sb.WriteString(d.sof0.String())
	}
	if d.dht != nil {
		sb.WriteString(d.dht.String())
	}
	if d.sos != nil {
		sb.WriteString(d.sos.String())
	}
	if d.sof0 != nil {
		fmt.Fprintf(&sb, "MCUs: %d of %d (%dx%d pixels each)\n",
			len(d.mcus), d.layout.mcuCount(), d.layout.mcuWidth, d.layout.mcuHeight)
	}
	return sb.String()
}
