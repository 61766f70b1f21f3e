package biquad

import "github.com/cwbudde/algo-synth/dsp/core"

// Coefficients holds the transfer function coefficients for a single
// second-order section. a0 is normalized to 1 and not stored.
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
//
// First-order sections set B2 = A2 = 0.
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Identity returns the unity passthrough section.
func Identity() Coefficients {
	return Coefficients{B0: 1}
}

// DCGain returns H(1), the gain of the section at 0 Hz.
func (c Coefficients) DCGain() float64 {
	return (c.B0 + c.B1 + c.B2) / (1 + c.A1 + c.A2)
}

// Section is a single biquad filter with coefficients and internal state.
type Section struct {
	Coefficients

	wn1, wn2 float64
}

// NewSection returns a Section initialized with the given coefficients
// and zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample filters one input sample and returns the output.
// Delay-line values below 1e-30 are flushed to zero.
func (s *Section) ProcessSample(x float64) float64 {
	wn := core.FlushDenormals(x - s.A1*s.wn1 - s.A2*s.wn2)
	y := s.B0*wn + s.B1*s.wn1 + s.B2*s.wn2
	s.wn2 = s.wn1
	s.wn1 = wn

	return y
}

// ProcessBlock filters a block of samples in-place. Zero-alloc.
func (s *Section) ProcessBlock(buf []float64) {
	b0, b1, b2 := s.B0, s.B1, s.B2
	a1, a2 := s.A1, s.A2
	wn1, wn2 := s.wn1, s.wn2

	for i, x := range buf {
		wn := core.FlushDenormals(x - a1*wn1 - a2*wn2)
		buf[i] = b0*wn + b1*wn1 + b2*wn2
		wn2 = wn1
		wn1 = wn
	}

	s.wn1, s.wn2 = wn1, wn2
}

// Reset clears the delay line to zero.
func (s *Section) Reset() {
	s.wn1 = 0
	s.wn2 = 0
}

// State returns the current delay-line state [wn1, wn2].
func (s *Section) State() [2]float64 {
	return [2]float64{s.wn1, s.wn2}
}

// SetState restores a previously saved delay-line state.
func (s *Section) SetState(state [2]float64) {
	s.wn1 = state[0]
	s.wn2 = state[1]
}
