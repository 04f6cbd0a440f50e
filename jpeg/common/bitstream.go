package common

import (
	"errors"
	"fmt"
	"io"
)

// BitReader is a pull cursor over entropy-coded scan data.
//
// Bits are delivered MSB first. A stuffed 0xFF00 pair yields the data byte
// 0xFF. The EOI marker ends the stream: ReadBit then returns io.EOF, and
// keeps returning it. Restart markers are not supported and any other
// marker inside scan data is a corrupt scan.
type BitReader struct {
	r     io.ByteReader
	bits  uint32 // Bit buffer
	nBits int    // Number of bits in buffer
	err   error  // Sticky terminal condition
}

// NewBitReader creates a bit reader over r
func NewBitReader(r io.ByteReader) *BitReader {
	return &BitReader{r: r}
}

// fill appends the next scan data byte to the bit buffer.
func (d *BitReader) fill() error {
	if d.err != nil {
		return d.err
	}
	b, err := d.r.ReadByte()
	if err != nil {
		d.err = truncated(err, "scan data")
		return d.err
	}
	if b == 0xFF {
		b2, err := d.r.ReadByte()
		if err != nil {
			d.err = truncated(err, "scan data")
			return d.err
		}
		switch marker := uint16(0xFF00) | uint16(b2); {
		case b2 == 0x00:
			// Byte stuffing, keep the 0xFF
		case marker == MarkerEOI:
			d.err = io.EOF
			return d.err
		case IsRST(marker):
			d.err = fmt.Errorf("%w: restart marker %s", ErrUnsupportedFeature, MarkerName(marker))
			return d.err
		default:
			d.err = fmt.Errorf("%w: marker %s inside scan data", ErrCorruptScan, MarkerName(marker))
			return d.err
		}
	}
	d.bits = (d.bits << 8) | uint32(b)
	d.nBits += 8
	return nil
}

// ReadBit reads a single bit
func (d *BitReader) ReadBit() (uint32, error) {
	if d.nBits == 0 {
		if err := d.fill(); err != nil {
			return 0, err
		}
	}
	d.nBits--
	return (d.bits >> uint(d.nBits)) & 1, nil
}

// ReadBits reads n bits (n <= 16) as an unsigned integer
func (d *BitReader) ReadBits(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	for d.nBits < n {
		if err := d.fill(); err != nil {
			return 0, err
		}
	}
	d.nBits -= n
	return (d.bits >> uint(d.nBits)) & ((1 << uint(n)) - 1), nil
}

// ReceiveExtend reads a size-bit amplitude and converts it to a signed value
func (d *BitReader) ReceiveExtend(size int) (int32, error) {
	if size == 0 {
		return 0, nil
	}
	v, err := d.ReadBits(size)
	if err != nil {
		return 0, err
	}
	return Extend(v, size), nil
}

// Decode decodes the next Huffman symbol
func (d *BitReader) Decode(table *HuffmanTable) (byte, error) {
	// Fast path for short codes when enough bits are buffered
	if d.nBits >= lookaheadBits {
		peek := (d.bits >> uint(d.nBits-lookaheadBits)) & (1<<lookaheadBits - 1)
		if entry := table.lookup[peek]; entry != 0 {
			d.nBits -= int(entry >> 8)
			return byte(entry), nil
		}
	}

	// Slow path: decode bit by bit
	code := int32(0)
	for l := 0; l < 16; l++ {
		bit, err := d.ReadBit()
		if err != nil {
			return 0, err
		}
		code = code<<1 | int32(bit)
		if table.maxCode[l] >= 0 && code <= table.maxCode[l] {
			return table.Values[table.valPtr[l]+code-table.minCode[l]], nil
		}
	}
	return 0, fmt.Errorf("%w: no Huffman code matched within 16 bits", ErrTruncatedStream)
}

// Drain discards the rest of the scan data up to and including the EOI marker.
func (d *BitReader) Drain() error {
	d.nBits = 0
	for {
		err := d.fill()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		d.nBits = 0
	}
}

// BitWriter packs bits MSB first into bytes, stuffing 0x00 after every 0xFF
type BitWriter struct {
	w     io.Writer
	bits  uint64 // Bit buffer
	nBits int    // Number of bits in buffer
	out   [2]byte
}

// NewBitWriter creates a new bit writer
func NewBitWriter(w io.Writer) *BitWriter {
	return &BitWriter{w: w}
}

// WriteBits writes the low n bits of bits
func (e *BitWriter) WriteBits(bits uint32, n int) error {
	if n == 0 {
		return nil
	}

	e.bits = (e.bits << uint(n)) | uint64(bits&((1<<uint(n))-1))
	e.nBits += n

	for e.nBits >= 8 {
		if err := e.writeByte(byte(e.bits >> uint(e.nBits-8))); err != nil {
			return err
		}
		e.nBits -= 8
	}
	return nil
}

// WriteCode writes a Huffman code
func (e *BitWriter) WriteCode(c HuffmanCode) error {
	if c.Len == 0 {
		return fmt.Errorf("%w: symbol has no Huffman code", ErrHuffmanOverflow)
	}
	return e.WriteBits(uint32(c.Code), c.Len)
}

// writeByte writes a byte with byte stuffing
func (e *BitWriter) writeByte(b byte) error {
	e.out[0] = b
	n := 1
	if b == 0xFF {
		e.out[1] = 0x00
		n = 2
	}
	_, err := e.w.Write(e.out[:n])
	return err
}

// Flush writes any remaining bits, padding the last byte with 1s
func (e *BitWriter) Flush() error {
	if e.nBits > 0 {
		pad := 8 - e.nBits
		b := byte(e.bits<<uint(pad)) | byte((1<<uint(pad))-1)
		if err := e.writeByte(b); err != nil {
			return err
		}
	}
	e.nBits = 0
	e.bits = 0
	return nil
}
