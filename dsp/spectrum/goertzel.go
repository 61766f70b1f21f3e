package spectrum

import (
	"fmt"
	"math"
)

// Goertzel evaluates one DFT term over all samples processed since the
// last Reset.
type Goertzel struct {
	coeff  float64
	s0, s1 float64
}

// NewGoertzel returns an analyzer for frequency in Hz, which must lie in
// [0, sampleRate/2].
func NewGoertzel(frequency, sampleRate float64) (*Goertzel, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	if !(frequency >= 0 && frequency <= sampleRate/2) {
		return nil, fmt.Errorf("spectrum: goertzel frequency must be between 0 and sampleRate/2: %v", frequency)
	}

	return &Goertzel{coeff: 2 * math.Cos(2*math.Pi*frequency/sampleRate)}, nil
}

// Reset clears the accumulated state.
func (g *Goertzel) Reset() {
	g.s0, g.s1 = 0, 0
}

// ProcessBlock accumulates samples.
func (g *Goertzel) ProcessBlock(input []float64) {
	s0, s1, coeff := g.s0, g.s1, g.coeff
	for _, x := range input {
		s0, s1 = x+coeff*s0-s1, s0
	}

	g.s0, g.s1 = s0, s1
}

// Power returns |X|^2 of the tracked frequency.
func (g *Goertzel) Power() float64 {
	return g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
}

// Amplitude returns the amplitude of a sinusoid at the tracked frequency
// that would produce the accumulated power over n samples.
func (g *Goertzel) Amplitude(n int) float64 {
	p := g.Power()
	if p <= 0 || n <= 0 {
		return 0
	}

	return 2 * math.Sqrt(p) / float64(n)
}

// ToneAmplitude is the one-shot form of [Goertzel.Amplitude].
func ToneAmplitude(input []float64, frequency, sampleRate float64) (float64, error) {
	g, err := NewGoertzel(frequency, sampleRate)
	if err != nil {
		return 0, err
	}

	g.ProcessBlock(input)

	return g.Amplitude(len(input)), nil
}
