package common

import "math"

// Luma weights (ITU-R BT.601)
const (
	kr = 0.299
	kg = 0.587
	kb = 0.114
)

// RGBToYCbCr converts an RGB pixel to signed YCbCr.
// The level shift of 128 is applied to Y only, so all three outputs are
// centred on zero and can be fed to the DCT directly.
func RGBToYCbCr(r, g, b uint8) (y, cb, cr int32) {
	luma := math.Round(kr*float64(r) + kg*float64(g) + kb*float64(b))
	cb = int32(math.Round((float64(b) - luma) / (2 - 2*kb)))
	cr = int32(math.Round((float64(r) - luma) / (2 - 2*kr)))
	return int32(luma) - 128, cb, cr
}

// YCbCrToRGB converts signed YCbCr back to RGB, saturating each channel
func YCbCrToRGB(y, cb, cr int32) (r, g, b uint8) {
	fy := float64(y) + 128
	fcb := float64(cb)
	fcr := float64(cr)
	r = clampByte(math.Round(fcr*(2-2*kr) + fy))
	g = clampByte(math.Round(fy - 0.344136*fcb - 0.714136*fcr))
	b = clampByte(math.Round(fcb*(2-2*kb) + fy))
	return r, g, b
}

// LevelShiftSample converts a signed sample back to an 8-bit value
func LevelShiftSample(v int32) uint8 {
	return uint8(Clamp(int(v)+128, 0, 255))
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
