// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Clamp limits x to [-1, 1].
func Clamp(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// FloatToPCM converts a sample in [-1,1] to a signed integer of the given
// bit depth (8, 16, 24 or 32). Values outside the range are clipped. The
// negative side scales by 2^(depth-1) so -1 maps to the minimum.
func FloatToPCM(x float32, bitDepth int) int {
	x = Clamp(x)
	full := float64(int64(1) << (bitDepth - 1))

	if x < 0 {
		return int(math.Round(float64(x) * full))
	}
	return int(math.Round(float64(x) * (full - 1)))
}

// DecibelsToAmplitude converts a gain in dB to a linear factor. Anything at
// or below -60 dB is treated as silence.
func DecibelsToAmplitude(db float64) float64 {
	if db <= -60 {
		return 0
	}
	return math.Pow(10, db/20)
}
