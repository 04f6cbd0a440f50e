package common

// 8-bit DICOM samples with PixelRepresentation=1 are two's complement.
// Baseline JPEG codes unsigned samples, so signed data is stored offset by 128
// and the offset is removed again after decoding.

// SignedToUnsigned maps signed samples [-128, 127] to [0, 255] in place.
func SignedToUnsigned(pixelData []byte) {
	for i := range pixelData {
		pixelData[i] ^= 0x80
	}
}

// UnsignedToSigned maps [0, 255] back to two's complement [-128, 127] in place.
func UnsignedToSigned(pixelData []byte) {
	for i := range pixelData {
		pixelData[i] ^= 0x80
	}
}
