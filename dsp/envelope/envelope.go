package envelope

import (
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// Curve selects how the linear envelope is mapped to gain.
type Curve uint8

const (
	// Linear uses the envelope value as gain.
	Linear Curve = iota
	// Exponential maps the envelope value g to 2^g - 1.
	Exponential
)

// Params describes an ADSR envelope. Attack, Decay and Release are lengths
// in samples; Sustain is the hold level in [0, 1].
type Params struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
	Curve   Curve
}

// FromSeconds converts host control values to Params at sampleRate.
// Negative or NaN times become zero-length stages and the sustain level is
// clamped to [0, 1].
func FromSeconds(attack, decay, sustain, release, sampleRate float64) Params {
	return Params{
		Attack:  stageLength(attack, sampleRate),
		Decay:   stageLength(decay, sampleRate),
		Sustain: level(sustain),
		Release: stageLength(release, sampleRate),
	}
}

func stageLength(seconds, sampleRate float64) float64 {
	n := seconds * sampleRate
	if !(n > 0) || math.IsInf(n, 0) {
		return 0
	}

	return n
}

func level(s float64) float64 {
	if math.IsNaN(s) {
		return 0
	}

	return core.Clamp(s, 0, 1)
}

// Gain returns the envelope gain rt samples after the note started, for a
// note released et samples after it started. A held note uses
// et = math.MaxInt64.
//
//	rt < a          rt/a
//	rt < a+d        (1-s)·(a+d-rt)/d + s
//	rt < et         s
//	rt < et+r       L·(et+r-rt)/r
//	otherwise       0
//
// L is the level reached at et, so a note released during attack or decay
// fades from where it is and is silent at et+r. Zero-length stages are
// skipped.
func (p Params) Gain(et, rt int64) float64 {
	if rt < 0 {
		return 0
	}

	g := p.linear(float64(et), float64(rt))
	if p.Curve == Exponential {
		return exp2(g) - 1
	}

	return g
}

func (p Params) linear(et, rt float64) float64 {
	if rt < et {
		return p.held(rt)
	}

	er := et + p.Release
	if rt >= er {
		return 0
	}

	return p.held(et) * (er - rt) / p.Release
}

// held is the attack, decay and sustain part of the envelope.
func (p Params) held(rt float64) float64 {
	a, d, s := p.Attack, p.Decay, p.Sustain
	ad := a + d

	switch {
	case rt < 0:
		return 0
	case rt < a:
		return rt / a
	case rt < ad:
		return (1-s)*((ad-rt)/d) + s
	default:
		return s
	}
}

// Silent reports whether the envelope has finished for a note released et
// samples after it started, at rt samples after the start.
func (p Params) Silent(et, rt int64) bool {
	return float64(rt) >= float64(et)+p.Release
}
