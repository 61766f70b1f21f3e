package synth

import (
	"math"

	"github.com/cwbudde/algo-synth/dsp/envelope"
	"github.com/cwbudde/algo-synth/dsp/voice"
	"github.com/cwbudde/algo-synth/dsp/waveform"
)

// Controls are the host's scalar control ports, read once per block.
type Controls struct {
	// Waveform selects the primary waveform: 0 sine, 1 square, 2 sawtooth,
	// 3 triangle, 4 noise, 5 off.
	Waveform float32
	// Attack, Decay and Release are stage lengths in seconds.
	Attack  float32
	Decay   float32
	Sustain float32 // level in [0, 1]
	Release float32
	// SecondaryWaveform selects the FM modulator waveform; 5 disables FM.
	SecondaryWaveform float32
	// SecondaryDepth scales the modulator output added to the carrier
	// phase.
	SecondaryDepth float32
	// SecondaryFreqMultiplier is the modulator frequency relative to the
	// note frequency.
	SecondaryFreqMultiplier float32
	// FilterCutoffHz is the per-voice lowpass cutoff.
	FilterCutoffHz float32
	FilterEnabled  bool
}

// DefaultControls returns the factory sound: a sine carrier modulated by a
// sine at twice the note frequency, a short percussive envelope and a
// 450 Hz lowpass.
func DefaultControls() Controls {
	return Controls{
		Waveform:                float32(waveform.Sine),
		Attack:                  0.01,
		Decay:                   0.013,
		Sustain:                 0.6,
		Release:                 0.1,
		SecondaryWaveform:       float32(waveform.Sine),
		SecondaryDepth:          0.6,
		SecondaryFreqMultiplier: 2,
		FilterCutoffHz:          450,
		FilterEnabled:           true,
	}
}

// filterKey identifies the filter settings a cascade was designed for.
type filterKey struct {
	enabled bool
	cutoff  float32
}

func (c Controls) filterKey() filterKey {
	k := filterKey{enabled: c.FilterEnabled, cutoff: c.FilterCutoffHz}
	if math.IsNaN(float64(k.cutoff)) {
		k.cutoff = -1
	}

	return k
}

// patch fills every field of p except the filter cascade.
func (c Controls) patch(p *voice.Patch, sampleRate float64, curve envelope.Curve) {
	p.Wave = waveform.FromSelector(c.Waveform)

	p.Secondary = waveform.Wave{
		Kind: waveform.FromSelector(c.SecondaryWaveform),
		Freq: finiteOr(c.SecondaryFreqMultiplier, 0),
		Amp:  finiteOr(c.SecondaryDepth, 0),
		Duty: waveform.DefaultDuty,
	}

	p.Envelope = envelope.FromSeconds(
		float64(c.Attack), float64(c.Decay), float64(c.Sustain), float64(c.Release), sampleRate,
	)
	p.Envelope.Curve = curve
}

func finiteOr(v float32, def float64) float64 {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}

	return f
}
