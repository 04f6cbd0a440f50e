package common

import "math"

// dctBasis[u][x] = C(u)/2 * cos((2x+1)uπ/16), with C(0) = 1/√2 and C(u>0) = 1.
// The 2-D transform pair is F(v,u) = Σ basis[v][y]·basis[u][x]·f(y,x)
// and its transpose, which together carry the C(u)C(v)/4 normalization.
var dctBasis = func() (b [8][8]float64) {
	for u := 0; u < 8; u++ {
		cu := 1.0
		if u == 0 {
			cu = 1 / math.Sqrt2
		}
		for x := 0; x < 8; x++ {
			b[u][x] = cu / 2 * math.Cos(float64(2*x+1)*float64(u)*math.Pi/16)
		}
	}
	return b
}()

// ForwardDCT transforms a level-shifted 8x8 sample block (natural order)
// into DCT coefficients in place, rounded to the nearest integer.
func ForwardDCT(block *[64]int32) {
	var tmp [64]float64

	// Rows: tmp[y][u] = Σx basis[u][x]·f[y][x]
	for y := 0; y < 8; y++ {
		for u := 0; u < 8; u++ {
			var sum float64
			for x := 0; x < 8; x++ {
				sum += dctBasis[u][x] * float64(block[y*8+x])
			}
			tmp[y*8+u] = sum
		}
	}

	// Columns: F[v][u] = Σy basis[v][y]·tmp[y][u]
	for u := 0; u < 8; u++ {
		for v := 0; v < 8; v++ {
			var sum float64
			for y := 0; y < 8; y++ {
				sum += dctBasis[v][y] * tmp[y*8+u]
			}
			block[v*8+u] = int32(math.Round(sum))
		}
	}
}
