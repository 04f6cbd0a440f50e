package common

import (
	"container/heap"
	"fmt"
	"sort"
)

// reservedSymbol is a pseudo-symbol with frequency 1. It takes the
// all-ones codeword of the longest length, which is then left unused.
const reservedSymbol = 256

// symbolGroup is a set of symbols merged into one subtree
type symbolGroup struct {
	freq    int
	seq     int
	symbols []int
}

// groupHeap implements heap.Interface (min-heap by frequency, then insertion order)
type groupHeap []*symbolGroup

func (h groupHeap) Len() int { return len(h) }
func (h groupHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].seq < h[j].seq
}
func (h groupHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *groupHeap) Push(x any) {
	*h = append(*h, x.(*symbolGroup))
}

func (h *groupHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// BuildOptimalTable builds a canonical Huffman table from symbol frequencies.
// Symbols with zero frequency get no code. Code lengths are limited to 16 bits.
func BuildOptimalTable(freq *[256]int) (*HuffmanTable, error) {
	var codeLen [257]int

	groups := make(groupHeap, 0, 257)
	// The reserved symbol loses every tie so it ends up deepest.
	groups = append(groups, &symbolGroup{freq: 1, seq: -1, symbols: []int{reservedSymbol}})
	for s, f := range freq {
		if f > 0 {
			groups = append(groups, &symbolGroup{freq: f, seq: s, symbols: []int{s}})
		}
	}
	if len(groups) == 1 {
		return NewHuffmanTable([16]int{}, nil)
	}

	seq := len(freq)
	heap.Init(&groups)
	for groups.Len() > 1 {
		a := heap.Pop(&groups).(*symbolGroup)
		b := heap.Pop(&groups).(*symbolGroup)
		for _, s := range a.symbols {
			codeLen[s]++
		}
		for _, s := range b.symbols {
			codeLen[s]++
		}
		merged := &symbolGroup{
			freq:    a.freq + b.freq,
			seq:     seq,
			symbols: append(a.symbols, b.symbols...),
		}
		seq++
		heap.Push(&groups, merged)
	}

	// Canonical order: by code length, then by decreasing frequency so that
	// length limiting never gives a rarer symbol a shorter code.
	// The reserved symbol always comes last.
	symbols := make([]int, 0, 256)
	maxLen := codeLen[reservedSymbol]
	for s := 0; s < reservedSymbol; s++ {
		if codeLen[s] > 0 {
			symbols = append(symbols, s)
			if codeLen[s] > maxLen {
				maxLen = codeLen[s]
			}
		}
	}
	sort.Slice(symbols, func(i, j int) bool {
		a, b := symbols[i], symbols[j]
		if codeLen[a] != codeLen[b] {
			return codeLen[a] < codeLen[b]
		}
		if freq[a] != freq[b] {
			return freq[a] > freq[b]
		}
		return a < b
	})
	symbols = append(symbols, reservedSymbol)

	counts := make([]int, maxLen+1)
	for _, s := range symbols {
		counts[codeLen[s]]++
	}
	limitCodeLengths(counts)

	// Drop the reserved symbol from the longest length
	last := 16
	if len(counts)-1 < last {
		last = len(counts) - 1
	}
	for counts[last] == 0 {
		last--
	}
	counts[last]--
	symbols = symbols[:len(symbols)-1]

	var bits [16]int
	for l := 1; l < len(counts); l++ {
		if counts[l] == 0 {
			continue
		}
		if l > 16 {
			return nil, fmt.Errorf("%w: %d codes of length %d", ErrHuffmanOverflow, counts[l], l)
		}
		bits[l-1] = counts[l]
	}

	values := make([]byte, len(symbols))
	for i, s := range symbols {
		values[i] = byte(s)
	}
	return NewHuffmanTable(bits, values)
}

// limitCodeLengths folds code lengths above 16 into shorter lengths while
// keeping the code complete (ISO/IEC 10918-1 Annex K.3).
func limitCodeLengths(counts []int) {
	for i := len(counts) - 1; i > 16; i-- {
		for counts[i] > 0 {
			j := i - 2
			for counts[j] == 0 {
				j--
			}
			counts[i] -= 2
			counts[i-1]++
			counts[j+1] += 2
			counts[j]--
		}
	}
}
