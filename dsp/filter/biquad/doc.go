// Package biquad provides the second-order IIR runtime used by the voice
// filters.
//
// A [Section] is one second-order section defined by [Coefficients] with a0
// normalised to 1. It keeps its own two-sample delay line (wn1, wn2) and
// evaluates
//
//	wn = x - A1*wn1 - A2*wn2
//	y  = B0*wn + B1*wn1 + B2*wn2
//
// A [Chain] cascades sections in order. Chains have a fixed section capacity
// so that voices can reload coefficients on every retrigger without
// allocating. A chain with no sections is the identity (bypass).
//
// Coefficient design lives in dsp/filter/design.
package biquad
