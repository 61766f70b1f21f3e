package waveform

import (
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// Kind selects an oscillator shape.
type Kind uint8

const (
	// Sine is sin(2π·f·phase + fm).
	Sine Kind = iota
	// Square toggles between +Amp/2 and -Amp/2 at the duty cycle.
	Square
	// Sawtooth rises linearly from -Amp to +Amp once per cycle.
	Sawtooth
	// Triangle is the folded sawtooth.
	Triangle
	// Noise is uniform white noise in [-Amp, Amp].
	Noise
	// Off disables the oscillator. It is only produced by selectors.
	Off
)

// DefaultDuty is the square-wave duty cycle used by note waves.
const DefaultDuty = 0.5

var kindNames = [...]string{"sine", "square", "sawtooth", "triangle", "noise", "off"}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "unknown"
}

// ParseKind returns the kind with the given name as produced by String.
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}

	return Off, false
}

// FromSelector maps a host control value to a kind: 0 sine, 1 square,
// 2 sawtooth, 3 triangle, 4 noise. The value is rounded to the nearest
// integer; anything outside [0, 4] (and NaN) selects Off.
func FromSelector(v float32) Kind {
	r := math.Round(float64(v))
	if !(r >= 0 && r < float64(Off)) {
		return Off
	}

	return Kind(r)
}

// Wave describes one oscillator.
type Wave struct {
	Kind Kind
	Freq float64 // cycles per sample
	Amp  float64
	Duty float64 // square only, in (0, 1)
}

// New returns a wave of the given kind with the default duty cycle.
func New(kind Kind, freq, amp float64) Wave {
	return Wave{Kind: kind, Freq: freq, Amp: amp, Duty: DefaultDuty}
}

// Secondary scales a modulator template to a carrier. The template's Freq
// is a multiplier of the carrier frequency and its Amp is the modulation
// depth in the carrier's phase units.
func (w Wave) Secondary(carrierFreq float64) Wave {
	w.Freq *= carrierFreq
	return w
}

// Sample returns the value of w at phase samples after its start, with fm
// added to the oscillator phase. noise is only consulted for the Noise
// kind and may be nil otherwise.
func (w Wave) Sample(phase, fm float64, noise *rand.Rand) float64 {
	switch w.Kind {
	case Sine:
		return w.Amp * math.Sin(2*math.Pi*w.Freq*phase+fm)
	case Square:
		if core.FloorMod(w.Freq*phase+fm) < w.Duty {
			return w.Amp / 2
		}

		return -w.Amp / 2
	case Sawtooth:
		return w.Amp * (2*core.FloorMod(w.Freq*phase+fm) - 1)
	case Triangle:
		out := w.Freq*phase + fm

		saw := 2 * core.FloorMod(2*out)
		if core.FloorMod(out) < 0.5 {
			return w.Amp * (saw - 1)
		}

		return w.Amp * (1 - saw)
	case Noise:
		if noise == nil {
			return 0
		}

		return w.Amp * (noise.Float64()*2 - 1)
	default:
		return 0
	}
}

// NoteFrequency returns the equal-tempered frequency of a MIDI pitch in
// cycles per sample (A4 = pitch 69 = 440 Hz).
func NoteFrequency(pitch int, sampleRate float64) float64 {
	return math.Exp2(float64(pitch-69)/12) * 440 / sampleRate
}

// NewNoise returns a deterministic noise source for the given seed.
func NewNoise(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
