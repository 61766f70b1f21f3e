// Package spectrum measures the frequency content of rendered audio.
//
// [Analyzer] wraps an algo-fft plan with a periodic window (Hann unless
// [WithWindow] says otherwise) and preallocated buffers for magnitude
// spectra and peak-frequency estimates. [Goertzel] evaluates a single
// frequency and is cheaper when only the level of a known tone matters.
package spectrum
