// Package utils provides small numeric helpers shared by the presolve and
// conversion code.
package utils

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Clamp returns v restricted to the interval [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FloorPowerOfTwo returns the largest power of two not greater than v, or 1
// if v is not a positive finite value. Power-of-two factors keep scaling and
// unscaling exact in floating point.
func FloorPowerOfTwo(v float64) float64 {
	if math.IsInf(v, 1) || math.IsNaN(v) || v < 1 {
		return 1
	}
	// v = frac * 2**exp with frac in [0.5, 1)
	_, exp := math.Frexp(v)
	return math.Ldexp(1, exp-1)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
