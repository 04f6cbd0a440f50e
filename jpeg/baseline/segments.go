package baseline

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cocosip/go-jpeg-baseline/jpeg/common"
)

// Table limits
const (
	maxQuantTables   = 4
	maxHuffmanTables = 3
	maxComponents    = 4
)

// APP0 is the JFIF application segment
type APP0 struct {
	Identifier   [5]byte // "JFIF\x00"
	VersionMajor byte
	VersionMinor byte
	DensityUnit  byte // 0: no units, 1: dots per inch, 2: dots per cm
	XDensity     uint16
	YDensity     uint16
	ThumbWidth   byte
	ThumbHeight  byte
	Thumbnail    []byte // Raw thumbnail payload, kept but not decoded
}

// newAPP0 returns a JFIF 1.01 header with a 1:1 aspect ratio and no thumbnail
func newAPP0() *APP0 {
	return &APP0{
		Identifier:   [5]byte{'J', 'F', 'I', 'F', 0},
		VersionMajor: 1,
		VersionMinor: 1,
		XDensity:     1,
		YDensity:     1,
	}
}

func parseAPP0(data []byte) (*APP0, error) {
	if len(data) < 14 {
		return nil, fmt.Errorf("%w: APP0 segment too short (%d bytes)", common.ErrMalformedHeader, len(data))
	}

	a := &APP0{}
	copy(a.Identifier[:], data[0:5])
	a.VersionMajor = data[5]
	a.VersionMinor = data[6]
	a.DensityUnit = data[7]
	a.XDensity = binary.BigEndian.Uint16(data[8:10])
	a.YDensity = binary.BigEndian.Uint16(data[10:12])
	a.ThumbWidth = data[12]
	a.ThumbHeight = data[13]

	thumbSize := int(a.ThumbWidth) * int(a.ThumbHeight)
	if len(data) < 14+thumbSize {
		return nil, fmt.Errorf("%w: APP0 thumbnail needs %d bytes, segment has %d",
			common.ErrMalformedHeader, thumbSize, len(data)-14)
	}
	if len(data) > 14 {
		a.Thumbnail = append([]byte(nil), data[14:]...)
	}
	return a, nil
}

// Serialize writes the APP0 marker segment
func (a *APP0) Serialize(w *common.Writer) error {
	data := make([]byte, 14, 14+len(a.Thumbnail))
	copy(data[0:5], a.Identifier[:])
	data[5] = a.VersionMajor
	data[6] = a.VersionMinor
	data[7] = a.DensityUnit
	binary.BigEndian.PutUint16(data[8:10], a.XDensity)
	binary.BigEndian.PutUint16(data[10:12], a.YDensity)
	data[12] = a.ThumbWidth
	data[13] = a.ThumbHeight
	data = append(data, a.Thumbnail...)
	return w.WriteSegment(common.MarkerAPP0, data)
}

func (a *APP0) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "APP0\n")
	fmt.Fprintf(&sb, "  identifier:   %q\n", string(bytes.TrimRight(a.Identifier[:], "\x00")))
	fmt.Fprintf(&sb, "  version:      %d.%02d\n", a.VersionMajor, a.VersionMinor)
	fmt.Fprintf(&sb, "  density unit: %d\n", a.DensityUnit)
	fmt.Fprintf(&sb, "  density:      %dx%d\n", a.XDensity, a.YDensity)
	fmt.Fprintf(&sb, "  thumbnail:    %dx%d (%d bytes)\n", a.ThumbWidth, a.ThumbHeight, len(a.Thumbnail))
	return sb.String()
}

// QuantTable is one quantization table with entries in zig-zag order
type QuantTable struct {
	Precision byte // 0: 8-bit entries, 1: 16-bit entries
	Values    [64]int32
}

// DQT holds the quantization tables defined by one or more DQT segments
type DQT struct {
	Tables [maxQuantTables]*QuantTable
}

func newDQT() *DQT {
	return &DQT{}
}

// parse reads every table in a DQT payload. Redefined tables replace earlier ones.
func (q *DQT) parse(data []byte) error {
	for offset := 0; offset < len(data); {
		pq := data[offset] >> 4
		tq := int(data[offset] & 0x0F)
		offset++

		if tq >= maxQuantTables {
			return fmt.Errorf("%w: quantization table index %d", common.ErrMalformedHeader, tq)
		}
		if pq > 1 {
			return fmt.Errorf("%w: quantization table precision %d", common.ErrMalformedHeader, pq)
		}

		table := &QuantTable{Precision: pq}
		if pq == 0 {
			if offset+64 > len(data) {
				return fmt.Errorf("%w: DQT table %d truncated", common.ErrMalformedHeader, tq)
			}
			for i := 0; i < 64; i++ {
				table.Values[i] = int32(data[offset+i])
			}
			offset += 64
		} else {
			if offset+128 > len(data) {
				return fmt.Errorf("%w: DQT table %d truncated", common.ErrMalformedHeader, tq)
			}
			for i := 0; i < 64; i++ {
				table.Values[i] = int32(binary.BigEndian.Uint16(data[offset+i*2:]))
			}
			offset += 128
		}

		for i, v := range table.Values {
			if v == 0 {
				return fmt.Errorf("%w: DQT table %d has a zero entry at %d", common.ErrMalformedHeader, tq, i)
			}
		}
		q.Tables[tq] = table
	}
	return nil
}

// Serialize writes all defined tables in a single DQT segment
func (q *DQT) Serialize(w *common.Writer) error {
	var data []byte
	for tq, table := range q.Tables {
		if table == nil {
			continue
		}
		data = append(data, table.Precision<<4|byte(tq))
		for _, v := range table.Values {
			if table.Precision == 0 {
				data = append(data, byte(v))
			} else {
				data = binary.BigEndian.AppendUint16(data, uint16(v))
			}
		}
	}
	return w.WriteSegment(common.MarkerDQT, data)
}

func (q *DQT) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DQT\n")
	for tq, table := range q.Tables {
		if table == nil {
			continue
		}
		bits := 8
		if table.Precision == 1 {
			bits = 16
		}
		natural := common.FromZigZag(&table.Values)
		fmt.Fprintf(&sb, "  table %d (%d-bit):\n", tq, bits)
		for row := 0; row < 8; row++ {
			sb.WriteString("   ")
			for col := 0; col < 8; col++ {
				fmt.Fprintf(&sb, " %4d", natural[row*8+col])
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// FrameComponent is a component declared in SOF0
type FrameComponent struct {
	ID byte
	H  int // Horizontal sampling factor (1-4)
	V  int // Vertical sampling factor (1-4)
	Tq int // Quantization table selector
}

// SOF0 is the baseline DCT frame header
type SOF0 struct {
	Precision  byte
	Height     uint16
	Width      uint16
	Components []FrameComponent
}

func newSOF0() *SOF0 {
	return &SOF0{Precision: 8}
}

func parseSOF0(data []byte) (*SOF0, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("%w: SOF0 segment too short (%d bytes)", common.ErrMalformedHeader, len(data))
	}

	f := &SOF0{
		Precision: data[0],
		Height:    binary.BigEndian.Uint16(data[1:3]),
		Width:     binary.BigEndian.Uint16(data[3:5]),
	}
	if f.Precision != 8 {
		return nil, fmt.Errorf("%w: %d-bit sample precision", common.ErrUnsupportedFeature, f.Precision)
	}
	if f.Width == 0 || f.Height == 0 {
		return nil, fmt.Errorf("%w: frame size %dx%d", common.ErrMalformedHeader, f.Width, f.Height)
	}

	n := int(data[5])
	if n < 1 || n > maxComponents {
		return nil, fmt.Errorf("%w: %d frame components", common.ErrMalformedHeader, n)
	}
	if len(data) != 6+n*3 {
		return nil, fmt.Errorf("%w: SOF0 length %d does not match %d components",
			common.ErrMalformedHeader, len(data), n)
	}

	f.Components = make([]FrameComponent, n)
	for i := range f.Components {
		p := data[6+i*3:]
		c := FrameComponent{
			ID: p[0],
			H:  int(p[1] >> 4),
			V:  int(p[1] & 0x0F),
			Tq: int(p[2]),
		}
		if c.H < 1 || c.H > 4 || c.V < 1 || c.V > 4 {
			return nil, fmt.Errorf("%w: component %d sampling factors %dx%d",
				common.ErrMalformedHeader, c.ID, c.H, c.V)
		}
		if c.Tq >= maxQuantTables {
			return nil, fmt.Errorf("%w: component %d quantization table %d",
				common.ErrMalformedHeader, c.ID, c.Tq)
		}
		for _, prev := range f.Components[:i] {
			if prev.ID == c.ID {
				return nil, fmt.Errorf("%w: duplicate component id %d", common.ErrMalformedHeader, c.ID)
			}
		}
		f.Components[i] = c
	}
	return f, nil
}

// componentIndex returns the position of the component with the given id, or -1
func (f *SOF0) componentIndex(id byte) int {
	for i, c := range f.Components {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Serialize writes the SOF0 marker segment
func (f *SOF0) Serialize(w *common.Writer) error {
	data := make([]byte, 6, 6+len(f.Components)*3)
	data[0] = f.Precision
	binary.BigEndian.PutUint16(data[1:3], f.Height)
	binary.BigEndian.PutUint16(data[3:5], f.Width)
	data[5] = byte(len(f.Components))
	for _, c := range f.Components {
		data = append(data, c.ID, byte(c.H<<4|c.V), byte(c.Tq))
	}
	return w.WriteSegment(common.MarkerSOF0, data)
}

func (f *SOF0) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SOF0\n")
	fmt.Fprintf(&sb, "  precision:  %d\n", f.Precision)
	fmt.Fprintf(&sb, "  size:       %dx%d\n", f.Width, f.Height)
	fmt.Fprintf(&sb, "  components: %d\n", len(f.Components))
	for _, c := range f.Components {
		fmt.Fprintf(&sb, "    id=%d sampling=%dx%d qtable=%d\n", c.ID, c.H, c.V, c.Tq)
	}
	return sb.String()
}

// DHT holds the Huffman tables defined by one or more DHT segments
type DHT struct {
	DC [maxHuffmanTables]*common.HuffmanTable
	AC [maxHuffmanTables]*common.HuffmanTable
}

func newDHT() *DHT {
	return &DHT{}
}

// parse reads every table in a DHT payload and builds its decode structures
func (h *DHT) parse(data []byte) error {
	for offset := 0; offset < len(data); {
		tc := int(data[offset] >> 4)
		th := int(data[offset] & 0x0F)
		offset++

		if th >= maxHuffmanTables {
			return fmt.Errorf("%w: unexpected Huffman table number %d", common.ErrMalformedHeader, th)
		}
		if tc > 1 {
			return fmt.Errorf("%w: Huffman table class %d", common.ErrMalformedHeader, tc)
		}

		if offset+16 > len(data) {
			return fmt.Errorf("%w: DHT code counts truncated", common.ErrMalformedHeader)
		}
		var bits [16]int
		total := 0
		for i := 0; i < 16; i++ {
			bits[i] = int(data[offset+i])
			total += bits[i]
		}
		offset += 16

		if offset+total > len(data) {
			return fmt.Errorf("%w: DHT declares %d symbols, %d bytes left",
				common.ErrMalformedHeader, total, len(data)-offset)
		}
		table, err := common.NewHuffmanTable(bits, data[offset:offset+total])
		if err != nil {
			return err
		}
		offset += total

		if tc == 0 {
			h.DC[th] = table
		} else {
			h.AC[th] = table
		}
	}
	return nil
}

// Serialize writes all defined tables in a single DHT segment
func (h *DHT) Serialize(w *common.Writer) error {
	var data []byte
	appendTable := func(class, id int, table *common.HuffmanTable) {
		data = append(data, byte(class<<4|id))
		for _, n := range table.Bits {
			data = append(data, byte(n))
		}
		data = append(data, table.Values...)
	}
	for th, table := range h.DC {
		if table != nil {
			appendTable(0, th, table)
		}
	}
	for th, table := range h.AC {
		if table != nil {
			appendTable(1, th, table)
		}
	}
	return w.WriteSegment(common.MarkerDHT, data)
}

func (h *DHT) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DHT\n")
	dump := func(class string, th int, table *common.HuffmanTable) {
		fmt.Fprintf(&sb, "  %s table %d: %d symbols, counts %v\n", class, th, len(table.Values), table.Bits)
	}
	for th, table := range h.DC {
		if table != nil {
			dump("DC", th, table)
		}
	}
	for th, table := range h.AC {
		if table != nil {
			dump("AC", th, table)
		}
	}
	return sb.String()
}

// ScanComponent is a component selected by SOS with its entropy table selectors
type ScanComponent struct {
	ID byte
	Td int // DC table selector
	Ta int // AC table selector
}

// SOS is the start-of-scan header
type SOS struct {
	Components []ScanComponent

	// Spectral selection and successive approximation, fixed to 0, 63, 0
	// for baseline. Stored as read.
	Ss, Se, AhAl byte
}

func newSOS() *SOS {
	return &SOS{Se: 63}
}

func parseSOS(data []byte) (*SOS, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: empty SOS segment", common.ErrMalformedHeader)
	}

	n := int(data[0])
	if n < 1 || n > maxComponents {
		return nil, fmt.Errorf("%w: %d scan components", common.ErrMalformedHeader, n)
	}
	if len(data) != 1+n*2+3 {
		return nil, fmt.Errorf("%w: SOS length %d does not match %d components",
			common.ErrMalformedHeader, len(data), n)
	}

	s := &SOS{Components: make([]ScanComponent, n)}
	for i := range s.Components {
		p := data[1+i*2:]
		c := ScanComponent{
			ID: p[0],
			Td: int(p[1] >> 4),
			Ta: int(p[1] & 0x0F),
		}
		if c.Td >= maxHuffmanTables || c.Ta >= maxHuffmanTables {
			return nil, fmt.Errorf("%w: component %d Huffman tables %d/%d",
				common.ErrMalformedHeader, c.ID, c.Td, c.Ta)
		}
		s.Components[i] = c
	}

	tail := data[1+n*2:]
	s.Ss, s.Se, s.AhAl = tail[0], tail[1], tail[2]
	return s, nil
}

// Serialize writes the SOS marker segment
func (s *SOS) Serialize(w *common.Writer) error {
	data := make([]byte, 1, 1+len(s.Components)*2+3)
	data[0] = byte(len(s.Components))
	for _, c := range s.Components {
		data = append(data, c.ID, byte(c.Td<<4|c.Ta))
	}
	data = append(data, s.Ss, s.Se, s.AhAl)
	return w.WriteSegment(common.MarkerSOS, data)
}

func (s *SOS) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SOS\n")
	fmt.Fprintf(&sb, "  components: %d\n", len(s.Components))
	for _, c := range s.Components {
		fmt.Fprintf(&sb, "    id=%d dc=%d ac=%d\n", c.ID, c.Td, c.Ta)
	}
	fmt.Fprintf(&sb, "  spectral:   %d..%d, approximation 0x%02X\n", s.Ss, s.Se, s.AhAl)
	return sb.String()
}
