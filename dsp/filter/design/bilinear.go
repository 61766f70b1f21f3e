package design

import (
	"fmt"
	"math"
)

// prewarp returns the bilinear transform scale 1/tan(π·freq/sampleRate) that
// maps the analog unit frequency onto freq.
func prewarp(freq, sampleRate float64) (float64, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, fmt.Errorf("design: sample rate %g: %w", sampleRate, ErrInvalidSampleRate)
	}

	if !(freq > 0) || freq >= sampleRate/2 || math.IsInf(freq, 0) {
		return 0, fmt.Errorf("design: cutoff %g Hz at %g Hz: %w", freq, sampleRate, ErrInvalidCutoff)
	}

	return 1 / math.Tan(math.Pi*freq/sampleRate), nil
}

// BilinearTransform converts an analog second-order polynomial
// c0*s^2 + c1*s + c2 into the digital z^-1-domain polynomial
// d0 + d1*z^-1 + d2*z^-2 using s = k(1-z^-1)/(1+z^-1).
//
// The returned coefficients are normalized such that d0 = 1 and the
// normalization factor 1/d0 is returned alongside.
func BilinearTransform(sCoeffs [3]float64, k float64) ([3]float64, float64) {
	c0, c1, c2 := sCoeffs[0], sCoeffs[1], sCoeffs[2]

	d0 := c0*k*k + c1*k + c2
	d1 := -2*c0*k*k + 2*c2
	d2 := c0*k*k - c1*k + c2

	if d0 == 0 || math.IsNaN(d0) || math.IsInf(d0, 0) {
		return [3]float64{1, 0, 0}, 0
	}

	norm := 1 / d0

	return [3]float64{1, d1 * norm, d2 * norm}, norm
}
