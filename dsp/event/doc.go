// Package event decodes LV2 atom sequences into time-stamped synth events.
//
// A host hands the plugin one atom:Sequence per render call. The sequence
// starts with a 16-byte header (atom size and type, body unit and padding)
// followed by records of the form
//
//	i64 frames | u32 size | u32 type | payload[size] | pad to 8 bytes
//
// all in host byte order, which this package takes to be little-endian.
// midi:MidiEvent payloads are parsed with gitlab.com/gomidi/midi/v2.
// atom:Object payloads are scanned for transport properties (time:frame,
// time:speed, time:beatsPerMinute).
//
// [Decoder.Decode] never panics and never allocates once the destination
// slice has enough capacity: every read goes through a bounds-checked
// cursor, malformed records are counted in [Result] and skipped, and
// decoding stops at the first record whose framing cannot be trusted.
// [Writer] produces byte-exact sequences for tests and offline tools.
package event
