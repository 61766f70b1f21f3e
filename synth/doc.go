// Package synth is the render entry point of the synthesizer.
//
// An [Engine] turns one block of host events plus the current [Controls]
// into PCM samples:
//
//	events (LV2 atom sequence) -> event.Decoder -> voice.Bank -> rack.Rack -> pcm
//
// Controls are sampled once per Render call and snapshotted into every
// voice triggered during that call. Note events are applied at their frame
// offset: the block is rendered in spans between consecutive events. The
// voice mix is fed into the rack's "voices" module and the block is read
// back from its "out" module.
//
// Render never allocates in steady state, never blocks and never returns
// an error. Malformed events, dropped notes and rejected filter settings
// are reported through [Engine.Stats].
package synth
