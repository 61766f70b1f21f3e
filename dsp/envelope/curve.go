//go:build !fastmath

package envelope

import "math"

// exp2 computes 2^x using standard library math.
func exp2(x float64) float64 {
	return math.Exp2(x)
}
