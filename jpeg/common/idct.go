package common

import "math"

// InverseDCT transforms 8x8 DCT coefficients (natural order) back into
// level-shifted samples in place, rounded to the nearest integer.
// The output is not clamped; the caller adds the level shift and saturates.
func InverseDCT(block *[64]int32) {
	var tmp [64]float64

	// Columns: tmp[y][u] = Σv basis[v][y]·F[v][u]
	for u := 0; u < 8; u++ {
		for y := 0; y < 8; y++ {
			var sum float64
			for v := 0; v < 8; v++ {
				if c := block[v*8+u]; c != 0 {
					sum += dctBasis[v][y] * float64(c)
				}
			}
			tmp[y*8+u] = sum
		}
	}

	// Rows: f[y][x] = Σu basis[u][x]·tmp[y][u]
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			var sum float64
			for u := 0; u < 8; u++ {
				sum += dctBasis[u][x] * tmp[y*8+u]
			}
			block[y*8+x] = int32(math.Round(sum))
		}
	}
}
