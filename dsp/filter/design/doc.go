// Package design provides digital IIR filter coefficient designers.
//
// The designers produce biquad coefficients consumable by dsp/filter/biquad
// for runtime processing. Butterworth lowpass cascades are derived from the
// analog prototype and mapped to the z-plane with a pre-warped bilinear
// transform, so the -3 dB point lands exactly on the requested cutoff and
// the DC gain of the cascade is unity.
//
// All designers validate their inputs up front and report problems through
// the sentinel errors of this package. The Append variants write into
// caller-owned storage and are safe to call from a real-time thread once
// that storage has been sized with [Sections].
package design
