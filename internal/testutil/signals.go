package testutil

import (
	"math"
	"math/rand/v2"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed uint64, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	rng := rand.New(rand.NewPCG(seed, 0))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}

// Float64s widens rendered PCM for analysis.
func Float64s(pcm []float32) []float64 {
	out := make([]float64, len(pcm))
	for i, v := range pcm {
		out[i] = float64(v)
	}

	return out
}

// ZeroCrossings returns the indices i at which x changes sign between
// x[i-1] and x[i], or where x[i] is within eps of zero while its
// neighbours have opposite signs. Runs of near-zero samples count once.
func ZeroCrossings(x []float64, eps float64) []int {
	var idx []int

	for i := 1; i < len(x); i++ {
		prev, cur := x[i-1], x[i]

		switch {
		case math.Abs(cur) <= eps:
			if math.Abs(prev) > eps {
				idx = append(idx, i)
			}
		case math.Abs(prev) <= eps:
		case (prev < 0) != (cur < 0):
			idx = append(idx, i)
		}
	}

	return idx
}
