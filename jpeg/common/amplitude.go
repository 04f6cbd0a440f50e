package common

// Category returns the bit length (SSSS) of val and the bits that encode it.
// Negative values use the one's complement of their magnitude.
func Category(val int32) (size int, bits uint32) {
	if val == 0 {
		return 0, 0
	}

	abs := val
	if abs < 0 {
		abs = -abs
	}
	for (int32(1) << uint(size)) <= abs {
		size++
	}

	if val > 0 {
		return size, uint32(val)
	}
	return size, uint32(val+(int32(1)<<uint(size))-1) & ((1 << uint(size)) - 1)
}

// Extend converts size received bits back to a signed value.
func Extend(v uint32, size int) int32 {
	if size == 0 {
		return 0
	}
	if v < 1<<uint(size-1) {
		return int32(v) - (int32(1)<<uint(size) - 1)
	}
	return int32(v)
}
