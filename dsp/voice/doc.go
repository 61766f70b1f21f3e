// Package voice implements the polyphonic oscillator bank.
//
// A [Bank] owns a fixed pool of voices allocated once at construction.
// Note-on events claim a voice (retriggering the one already playing the
// same pitch, then the first silent one, then stealing per [StealPolicy]),
// snapshot the current [Patch] into it, and the voice then renders
// independently until its envelope has finished. Rendering sums all voices
// into a caller buffer and advances the bank's sample clock.
//
// The bank is not safe for concurrent use; it is driven from the audio
// thread only.
package voice
