package common

// Quantize divides each coefficient by its quantizer, rounding half away from zero.
// Both the block and the table are in zig-zag order.
func Quantize(block *[64]int32, qtable *[64]int32) {
	for i := 0; i < 64; i++ {
		q := qtable[i]
		c := block[i]
		if c < 0 {
			block[i] = -((-c*2 + q) / (2 * q))
		} else {
			block[i] = (c*2 + q) / (2 * q)
		}
	}
}

// Dequantize multiplies each coefficient by its quantizer
func Dequantize(block *[64]int32, qtable *[64]int32) {
	for i := 0; i < 64; i++ {
		block[i] *= qtable[i]
	}
}
