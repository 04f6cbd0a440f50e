package baseline

import (
	"errors"
	"fmt"
	"io"

	"github.com/cocosip/go-jpeg-baseline/jpeg/common"
)

// AC symbols with a special meaning
const (
	symbolEOB = 0x00 // End of block
	symbolZRL = 0xF0 // Run of 16 zeros
)

// symbolSink receives the Huffman symbols of a data unit, each followed by
// size amplitude bits.
type symbolSink interface {
	emit(symbol byte, bits uint32, size int) error
}

// frequencyCounter collects symbol statistics for optimal table construction
type frequencyCounter struct {
	freq [256]int
}

func (f *frequencyCounter) emit(symbol byte, _ uint32, _ int) error {
	f.freq[symbol]++
	return nil
}

// huffmanEmitter writes symbols with a fixed code table
type huffmanEmitter struct {
	w     *common.BitWriter
	codes [256]common.HuffmanCode
}

func newHuffmanEmitter(w *common.BitWriter, table *common.HuffmanTable) (*huffmanEmitter, error) {
	codes, err := table.Codes()
	if err != nil {
		return nil, err
	}
	return &huffmanEmitter{w: w, codes: codes}, nil
}

func (e *huffmanEmitter) emit(symbol byte, bits uint32, size int) error {
	if err := e.w.WriteCode(e.codes[symbol]); err != nil {
		return fmt.Errorf("symbol 0x%02X: %w", symbol, err)
	}
	return e.w.WriteBits(bits, size)
}

// encodeDataUnit emits the symbols of one quantized data unit (zig-zag
// order, DC already differenced).
func encodeDataUnit(du *dataUnit, dc, ac symbolSink) error {
	size, bits := common.Category(du[0])
	if err := dc.emit(byte(size), bits, size); err != nil {
		return err
	}

	run := 0
	for k := 1; k < 64; k++ {
		if du[k] == 0 {
			run++
			continue
		}
		for run > 15 {
			if err := ac.emit(symbolZRL, 0, 0); err != nil {
				return err
			}
			run -= 16
		}
		size, bits := common.Category(du[k])
		if err := ac.emit(byte(run<<4|size), bits, size); err != nil {
			return err
		}
		run = 0
	}

	if run > 0 {
		return ac.emit(symbolEOB, 0, 0)
	}
	return nil
}

// decodeDataUnit reads one data unit into du (zig-zag order, DC still
// differenced). End of image before the DC symbol is returned as io.EOF so
// the caller can tell a clean end of scan from a truncated MCU.
func decodeDataUnit(r *common.BitReader, dc, ac *common.HuffmanTable, du *dataUnit) error {
	*du = dataUnit{}

	s, err := r.Decode(dc)
	if err != nil {
		return err
	}
	if err := decodeCoefficients(r, s, ac, du); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: end of image inside data unit", common.ErrCorruptScan)
		}
		return err
	}
	return nil
}

// decodeCoefficients reads the DC amplitude for category s and the AC symbols
func decodeCoefficients(r *common.BitReader, s byte, ac *common.HuffmanTable, du *dataUnit) error {
	if s > 15 {
		return fmt.Errorf("%w: DC magnitude category %d", common.ErrCorruptScan, s)
	}
	diff, err := r.ReceiveExtend(int(s))
	if err != nil {
		return err
	}
	du[0] = diff

	for k := 1; k < 64; {
		rs, err := r.Decode(ac)
		if err != nil {
			return err
		}
		run := int(rs >> 4)
		size := int(rs & 0x0F)

		if size == 0 {
			switch run {
			case 0:
				return nil
			case 15:
				k += 16
				if k > 64 {
					return fmt.Errorf("%w: zero run past coefficient 63", common.ErrCorruptScan)
				}
				continue
			default:
				return fmt.Errorf("%w: AC symbol 0x%02X has size 0", common.ErrCorruptScan, rs)
			}
		}

		k += run
		if k > 63 {
			return fmt.Errorf("%w: AC coefficient index %d", common.ErrCorruptScan, k)
		}
		v, err := r.ReceiveExtend(size)
		if err != nil {
			return err
		}
		du[k] = v
		k++
	}
	return nil
}
