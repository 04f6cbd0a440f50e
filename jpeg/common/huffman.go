package common

import "fmt"

// lookaheadBits is the width of the fast decode table
const lookaheadBits = 8

// HuffmanTable represents a canonical Huffman coding table
type HuffmanTable struct {
	// Number of codes of each length (1-16 bits)
	Bits [16]int

	// Values for each code, in order of code length
	Values []byte

	// Per-length canonical code ranges
	minCode [16]int32
	maxCode [16]int32
	valPtr  [16]int32

	// Lookup table for codes up to lookaheadBits long.
	// Entry: (length << 8) | value, 0 if no short code matches.
	lookup [1 << lookaheadBits]uint16
}

// NewHuffmanTable creates and builds a table from code-length counts and symbols
func NewHuffmanTable(bits [16]int, values []byte) (*HuffmanTable, error) {
	table := &HuffmanTable{
		Bits:   bits,
		Values: append([]byte(nil), values...),
	}
	if err := table.Build(); err != nil {
		return nil, err
	}
	return table, nil
}

// Build assigns canonical codes and builds the decode structures.
// Codes start at 0 with length 1; within a length they are consecutive,
// and the running code is shifted left when moving to the next length.
func (h *HuffmanTable) Build() error {
	total := 0
	for _, n := range h.Bits {
		if n < 0 {
			return fmt.Errorf("%w: negative Huffman code count", ErrMalformedHeader)
		}
		total += n
	}
	if total > 256 {
		return fmt.Errorf("%w: %d Huffman symbols", ErrMalformedHeader, total)
	}
	if total != len(h.Values) {
		return fmt.Errorf("%w: Huffman table declares %d symbols but lists %d",
			ErrMalformedHeader, total, len(h.Values))
	}

	for i := range h.lookup {
		h.lookup[i] = 0
	}

	code := int32(0)
	p := 0
	for l := 0; l < 16; l++ {
		n := int32(h.Bits[l])
		if code+n > int32(1)<<uint(l+1) {
			return fmt.Errorf("%w: Huffman codes of length %d are over-subscribed", ErrMalformedHeader, l+1)
		}
		if n == 0 {
			h.maxCode[l] = -1
		} else {
			h.valPtr[l] = int32(p)
			h.minCode[l] = code

			if l < lookaheadBits {
				shift := uint(lookaheadBits - 1 - l)
				for i := int32(0); i < n; i++ {
					entry := uint16(l+1)<<8 | uint16(h.Values[p+int(i)])
					base := (code + i) << shift
					for j := int32(0); j < int32(1)<<shift; j++ {
						h.lookup[base+j] = entry
					}
				}
			}

			p += int(n)
			code += n
			h.maxCode[l] = code - 1
		}
		code <<= 1
	}
	return nil
}

// Lookup returns the symbol for a code of the given length (1-16).
func (h *HuffmanTable) Lookup(length int, code uint16) (byte, bool) {
	if length < 1 || length > 16 {
		return 0, false
	}
	l := length - 1
	c := int32(code)
	if h.maxCode[l] < 0 || c < h.minCode[l] || c > h.maxCode[l] {
		return 0, false
	}
	return h.Values[h.valPtr[l]+c-h.minCode[l]], true
}

// HuffmanCode represents a Huffman code
type HuffmanCode struct {
	Code uint16 // The Huffman code
	Len  int    // Code length in bits, 0 if the symbol has no code
}

// BuildHuffmanCodes maps every symbol of a canonical table to its code
func BuildHuffmanCodes(bits [16]int, values []byte) ([256]HuffmanCode, error) {
	var codes [256]HuffmanCode

	code := uint32(0)
	p := 0
	for l := 0; l < 16; l++ {
		for i := 0; i < bits[l]; i++ {
			if p >= len(values) {
				return codes, fmt.Errorf("%w: Huffman table lists too few symbols", ErrMalformedHeader)
			}
			if code >= 1<<uint(l+1) {
				return codes, fmt.Errorf("%w: Huffman codes of length %d are over-subscribed", ErrMalformedHeader, l+1)
			}
			codes[values[p]] = HuffmanCode{Code: uint16(code), Len: l + 1}
			code++
			p++
		}
		code <<= 1
	}
	return codes, nil
}

// Codes returns the encoding map of the table
func (h *HuffmanTable) Codes() ([256]HuffmanCode, error) {
	return BuildHuffmanCodes(h.Bits, h.Values)
}
