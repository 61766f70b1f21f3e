package design

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/filter/biquad"
)

// MaxOrder is the highest Butterworth order the designers accept.
const MaxOrder = 16

var (
	// ErrInvalidOrder is returned for orders outside [1, MaxOrder].
	ErrInvalidOrder = errors.New("invalid filter order")
	// ErrInvalidCutoff is returned when the cutoff is not inside (0, Nyquist).
	ErrInvalidCutoff = errors.New("invalid cutoff frequency")
	// ErrInvalidSampleRate is returned for non-positive sample rates.
	ErrInvalidSampleRate = errors.New("invalid sample rate")
)

// Sections returns the number of biquad sections an order-n cascade needs.
func Sections(order int) int {
	return (order + 1) / 2
}

// ButterworthLP designs a lowpass Butterworth cascade.
//
// Second-order sections come first, ordered by pole angle. For odd orders
// the final section is first-order (B2=A2=0).
func ButterworthLP(cutoff float64, order int, sampleRate float64) ([]biquad.Coefficients, error) {
	if order < 1 || order > MaxOrder {
		return nil, fmt.Errorf("design: butterworth order %d: %w", order, ErrInvalidOrder)
	}

	return AppendButterworthLP(make([]biquad.Coefficients, 0, Sections(order)), cutoff, order, sampleRate)
}

// AppendButterworthLP appends the sections of a lowpass Butterworth cascade
// to dst. It does not allocate when dst has room for Sections(order) more
// elements. On error dst is returned unchanged.
func AppendButterworthLP(dst []biquad.Coefficients, cutoff float64, order int, sampleRate float64) ([]biquad.Coefficients, error) {
	if order < 1 || order > MaxOrder {
		return dst, fmt.Errorf("design: butterworth order %d: %w", order, ErrInvalidOrder)
	}

	k, err := prewarp(cutoff, sampleRate)
	if err != nil {
		return dst, err
	}

	for i := range order / 2 {
		// Analog section s^2 + s/Q + 1; the numerator is 1 so every section
		// has unity DC gain.
		den, norm := BilinearTransform([3]float64{1, 1 / ButterworthQ(order, i), 1}, k)
		dst = append(dst, biquad.Coefficients{
			B0: norm,
			B1: 2 * norm,
			B2: norm,
			A1: den[1],
			A2: den[2],
		})
	}

	if order%2 != 0 {
		// s + 1
		norm := 1 / (k + 1)
		dst = append(dst, biquad.Coefficients{
			B0: norm,
			B1: norm,
			A1: (1 - k) * norm,
		})
	}

	return dst, nil
}

// ButterworthQ returns the quality factor of the index-th second-order
// section of an order-n Butterworth filter, in the order AppendButterworthLP
// emits them.
func ButterworthQ(order, index int) float64 {
	theta := float64(2*(index+1)+order-1) * math.Pi / float64(2*order)

	c := -math.Cos(theta)
	if c <= 0 {
		return 1 / math.Sqrt2
	}

	return 1 / (2 * c)
}
