package common

// ZigZag maps a zig-zag scan position to its natural (row-major) index
var ZigZag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// ToZigZag reorders a block from natural order to zig-zag order
func ToZigZag(block *[64]int32) [64]int32 {
	var out [64]int32
	for k, n := range ZigZag {
		out[k] = block[n]
	}
	return out
}

// FromZigZag reorders a block from zig-zag order to natural order
func FromZigZag(block *[64]int32) [64]int32 {
	var out [64]int32
	for k, n := range ZigZag {
		out[n] = block[k]
	}
	return out
}
