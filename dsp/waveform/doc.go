// Package waveform implements the oscillator shapes of the synthesizer.
//
// A [Wave] is a closed description of one oscillator: its [Kind], frequency
// in cycles per sample, amplitude and pulse duty cycle. [Wave.Sample] maps
// a phase (in samples since the note started) and a phase-modulation input
// to one output sample. Apart from the noise source it is a pure function,
// so a voice only has to keep its own phase counter.
//
// Frequencies are pre-normalized: a 440 Hz tone at 48 kHz has Freq
// 440/48000. Phase is measured in samples, not radians.
package waveform
