package common

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"testing"
)

func TestHuffmanTableCanonicalCodes(t *testing.T) {
	table := BuildStandardHuffmanTable(StandardDCLuminanceBits, StandardDCLuminanceValues)

	tests := []struct {
		length int
		code   uint16
		symbol byte
	}{
		{2, 0b00, 0},
		{3, 0b010, 1},
		{3, 0b011, 2},
		{3, 0b100, 3},
		{3, 0b101, 4},
		{3, 0b110, 5},
		{4, 0b1110, 6},
		{5, 0b11110, 7},
		{9, 0b111111110, 11},
	}

	for _, tt := range tests {
		got, ok := table.Lookup(tt.length, tt.code)
		if !ok || got != tt.symbol {
			t.Errorf("Lookup(%d, %b) = (%d, %v), want (%d, true)", tt.length, tt.code, got, ok, tt.symbol)
		}
	}

	if _, ok := table.Lookup(2, 0b01); ok {
		t.Error("Lookup(2, 01) should not match any symbol")
	}
	if _, ok := table.Lookup(17, 0); ok {
		t.Error("Lookup with length 17 should fail")
	}
}

func TestHuffmanTableMalformed(t *testing.T) {
	tests := []struct {
		name   string
		bits   [16]int
		values []byte
	}{
		{"over-subscribed length 1", [16]int{3}, []byte{1, 2, 3}},
		{"over-subscribed length 2", [16]int{1, 3}, []byte{1, 2, 3, 4}},
		{"too few symbols", [16]int{0, 2}, []byte{1}},
		{"too many symbols", [16]int{0, 1}, []byte{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHuffmanTable(tt.bits, tt.values)
			if !errors.Is(err, ErrMalformedHeader) {
				t.Errorf("got %v, want ErrMalformedHeader", err)
			}
		})
	}
}

func TestStandardTablesBuild(t *testing.T) {
	tables := []struct {
		name   string
		bits   [16]int
		values []byte
	}{
		{"DC luminance", StandardDCLuminanceBits, StandardDCLuminanceValues},
		{"DC chrominance", StandardDCChrominanceBits, StandardDCChrominanceValues},
		{"AC luminance", StandardACLuminanceBits, StandardACLuminanceValues},
		{"AC chrominance", StandardACChrominanceBits, StandardACChrominanceValues},
	}

	for _, tt := range tables {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewHuffmanTable(tt.bits, tt.values)
			if err != nil {
				t.Fatalf("NewHuffmanTable failed: %v", err)
			}
			codes, err := table.Codes()
			if err != nil {
				t.Fatalf("Codes failed: %v", err)
			}
			for _, sym := range tt.values {
				c := codes[sym]
				got, ok := table.Lookup(c.Len, c.Code)
				if !ok || got != sym {
					t.Errorf("symbol 0x%02X: code %0*b maps back to 0x%02X (%v)", sym, c.Len, c.Code, got, ok)
				}
			}
		})
	}
}

// roundTripSymbols encodes symbols with the table's codes and decodes them again
func roundTripSymbols(t *testing.T, table *HuffmanTable, symbols []byte) {
	t.Helper()

	codes, err := table.Codes()
	if err != nil {
		t.Fatalf("Codes failed: %v", err)
	}

	var buf bytes.Buffer
	w := NewBitWriter(&buf)
	for _, s := range symbols {
		if err := w.WriteCode(codes[s]); err != nil {
			t.Fatalf("WriteCode(0x%02X) failed: %v", s, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	buf.Write([]byte{0xFF, 0xD9})

	r := NewBitReader(bytes.NewReader(buf.Bytes()))
	for i, want := range symbols {
		got, err := r.Decode(table)
		if err != nil {
			t.Fatalf("symbol %d: Decode failed: %v", i, err)
		}
		if got != want {
			t.Fatalf("symbol %d: got 0x%02X, want 0x%02X", i, got, want)
		}
	}
}

func TestBuildOptimalTableBijection(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	tests := []struct {
		name    string
		symbols int
		maxFreq int
	}{
		{"few symbols", 5, 100},
		{"DC-like", 12, 1000},
		{"AC-like", 162, 5000},
		{"all symbols", 256, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var freq [256]int
			var stream []byte
			for i := 0; i < tt.symbols; i++ {
				s := byte(i)
				freq[s] = 1 + rng.IntN(tt.maxFreq)
				for j := 0; j < freq[s] && j < 20; j++ {
					stream = append(stream, s)
				}
			}
			rng.Shuffle(len(stream), func(i, j int) { stream[i], stream[j] = stream[j], stream[i] })

			table, err := BuildOptimalTable(&freq)
			if err != nil {
				t.Fatalf("BuildOptimalTable failed: %v", err)
			}

			total := 0
			for _, n := range table.Bits {
				total += n
			}
			if total != tt.symbols {
				t.Fatalf("table has %d symbols, want %d", total, tt.symbols)
			}

			codes, err := table.Codes()
			if err != nil {
				t.Fatalf("Codes failed: %v", err)
			}
			for s := 0; s < 256; s++ {
				c := codes[s]
				if freq[s] == 0 {
					if c.Len != 0 {
						t.Errorf("unused symbol %d got a code", s)
					}
					continue
				}
				if c.Len < 1 || c.Len > 16 {
					t.Fatalf("symbol %d has code length %d", s, c.Len)
				}
				if c.Code == uint16(1<<uint(c.Len)-1) {
					t.Errorf("symbol %d uses the all-ones code of length %d", s, c.Len)
				}
				if got, ok := table.Lookup(c.Len, c.Code); !ok || got != byte(s) {
					t.Errorf("symbol %d does not map back through Lookup", s)
				}
			}

			roundTripSymbols(t, table, stream)
		})
	}
}

func TestBuildOptimalTableSingleSymbol(t *testing.T) {
	var freq [256]int
	freq[0x42] = 1000

	table, err := BuildOptimalTable(&freq)
	if err != nil {
		t.Fatalf("BuildOptimalTable failed: %v", err)
	}
	codes, err := table.Codes()
	if err != nil {
		t.Fatalf("Codes failed: %v", err)
	}
	if codes[0x42].Len != 1 {
		t.Errorf("single symbol code length = %d, want 1", codes[0x42].Len)
	}

	roundTripSymbols(t, table, []byte{0x42, 0x42, 0x42, 0x42, 0x42, 0x42, 0x42, 0x42, 0x42})
}

func TestBuildOptimalTableLengthLimit(t *testing.T) {
	// Fibonacci frequencies produce a maximally skewed tree
	var freq [256]int
	a, b := 1, 1
	for i := 0; i < 40; i++ {
		freq[i] = a
		a, b = b, a+b
	}

	table, err := BuildOptimalTable(&freq)
	if err != nil {
		t.Fatalf("BuildOptimalTable failed: %v", err)
	}

	codes, err := table.Codes()
	if err != nil {
		t.Fatalf("Codes failed: %v", err)
	}
	for i := 0; i < 40; i++ {
		if codes[i].Len == 0 || codes[i].Len > 16 {
			t.Errorf("symbol %d has code length %d", i, codes[i].Len)
		}
	}

	// More frequent symbols never get longer codes
	for i := 1; i < 40; i++ {
		if freq[i] > freq[i-1] && codes[i].Len > codes[i-1].Len {
			t.Errorf("symbol %d (freq %d) longer than symbol %d (freq %d)", i, freq[i], i-1, freq[i-1])
		}
	}

	roundTripSymbols(t, table, []byte{0, 1, 2, 3, 39, 38, 20, 10, 0, 0, 5})
}

func TestBuildOptimalTableEmpty(t *testing.T) {
	var freq [256]int
	table, err := BuildOptimalTable(&freq)
	if err != nil {
		t.Fatalf("BuildOptimalTable failed: %v", err)
	}
	if len(table.Values) != 0 {
		t.Errorf("expected empty table, got %d values", len(table.Values))
	}
}

func TestDecodeNoMatch(t *testing.T) {
	// Only code "0" exists; a run of ones never matches
	table, err := NewHuffmanTable([16]int{1}, []byte{7})
	if err != nil {
		t.Fatalf("NewHuffmanTable failed: %v", err)
	}
	r := NewBitReader(bytes.NewReader([]byte{0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00}))
	if _, err := r.Decode(table); !errors.Is(err, ErrTruncatedStream) {
		t.Errorf("got %v, want ErrTruncatedStream", err)
	}
}

func BenchmarkBuildOptimalTable(b *testing.B) {
	rng := rand.New(rand.NewPCG(3, 4))
	var freq [256]int
	for i := range freq {
		freq[i] = rng.IntN(10000)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildOptimalTable(&freq); err != nil {
			b.Fatal(err)
		}
	}
}
