// Package mathx contains small numeric helpers shared by the camera and
// pipeline packages.
package mathx

import "math"

// Round rounds a float to the nearest "unit" (0.1 for tenth, 0.01 for hundredth, and so on).
// Halves round away from zero.
func Round(x, unit float64) float64 {
	return math.Round(x/unit) * unit
}

// Clamp limits x to the closed interval [lo, hi].
//
// NaN is returned unchanged, since every comparison against it is false.
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
