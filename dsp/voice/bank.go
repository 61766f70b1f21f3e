package voice

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/filter/design"
	"github.com/cwbudde/algo-synth/dsp/waveform"
)

// ErrInvalidConfig is returned by NewBank for unusable configurations.
var ErrInvalidConfig = errors.New("voice: invalid config")

// StealPolicy decides what happens to a note-on when every voice is busy.
type StealPolicy uint8

const (
	// StealReleasing takes the voice whose release started earliest and
	// drops the note when every voice is still held.
	StealReleasing StealPolicy = iota
	// StealOldest takes the voice that started earliest, held or not.
	StealOldest
	// StealNone drops the note.
	StealNone
)

// String returns the policy name used in configuration.
func (p StealPolicy) String() string {
	switch p {
	case StealReleasing:
		return "releasing"
	case StealOldest:
		return "oldest"
	case StealNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseStealPolicy parses the names produced by String.
func ParseStealPolicy(s string) (StealPolicy, error) {
	for _, p := range []StealPolicy{StealReleasing, StealOldest, StealNone} {
		if p.String() == s {
			return p, nil
		}
	}

	return 0, fmt.Errorf("voice: unknown steal policy %q", s)
}

// Stats reports allocator activity since construction.
type Stats struct {
	Active      int // voices not yet silent
	Dropped     int // note-ons that found no voice
	Stolen      int // note-ons that took a busy voice
	Retriggered int // note-ons that restarted a sounding voice of the same pitch
}

// Option configures a Bank.
type Option func(*Bank)

// WithSteal sets the steal policy. The default is StealReleasing.
func WithSteal(p StealPolicy) Option {
	return func(b *Bank) {
		b.steal = p
	}
}

// WithSeed sets the seed of the per-voice noise generators.
func WithSeed(seed uint64) Option {
	return func(b *Bank) {
		b.seed = seed
	}
}

// Bank is a fixed pool of voices sharing one sample clock.
type Bank struct {
	sampleRate float64
	voices     []Voice
	scratch    []float64
	now        int64
	steal      StealPolicy
	seed       uint64
	sustain    bool

	dropped     int
	stolen      int
	retriggered int
}

// NewBank allocates a bank for cfg.Voices voices whose filters hold up to
// a cfg.FilterOrder cascade, with scratch space for cfg.BlockSize samples.
func NewBank(cfg core.ProcessorConfig, opts ...Option) (*Bank, error) {
	if !(cfg.SampleRate > 0) {
		return nil, fmt.Errorf("%w: sample rate %g", ErrInvalidConfig, cfg.SampleRate)
	}

	if cfg.Voices < 1 {
		return nil, fmt.Errorf("%w: %d voices", ErrInvalidConfig, cfg.Voices)
	}

	if cfg.BlockSize < 1 {
		return nil, fmt.Errorf("%w: block size %d", ErrInvalidConfig, cfg.BlockSize)
	}

	if cfg.FilterOrder < 1 || cfg.FilterOrder > design.MaxOrder {
		return nil, fmt.Errorf("%w: filter order %d", ErrInvalidConfig, cfg.FilterOrder)
	}

	b := &Bank{
		sampleRate: cfg.SampleRate,
		voices:     make([]Voice, cfg.Voices),
		scratch:    make([]float64, cfg.BlockSize),
		seed:       1,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	for i := range b.voices {
		b.voices[i].init(design.Sections(cfg.FilterOrder))
	}

	return b, nil
}

// Now returns the sample clock: the absolute index of the next sample
// Render will produce.
func (b *Bank) Now() int64 {
	return b.now
}

// Len returns the pool size.
func (b *Bank) Len() int {
	return len(b.voices)
}

// NoteOn starts pitch at offset samples from now with the given MIDI
// velocity, snapshotting p. It returns the voice index, or -1 when the
// note was dropped.
func (b *Bank) NoteOn(pitch, velocity int, offset int64, p *Patch) int {
	idx := b.Slot(pitch)
	if idx >= 0 && !b.voices[idx].free(b.now) {
		b.retriggered++
	}

	if idx < 0 {
		idx = b.firstFree()
	}

	if idx < 0 {
		idx = b.victim()
		if idx < 0 {
			b.dropped++
			return -1
		}

		b.stolen++
	}

	start := b.now + max(offset, 0)
	freq := waveform.NoteFrequency(pitch, b.sampleRate)
	b.voices[idx].configure(pitch, float64(velocity)/127, start, freq, p, b.seed+uint64(idx))

	return idx
}

// NoteOff releases pitch at offset samples from now. While the sustain
// pedal is down the release is deferred until the pedal is lifted.
func (b *Bank) NoteOff(pitch int, offset int64) {
	idx := b.Slot(pitch)
	if idx < 0 {
		return
	}

	v := &b.voices[idx]
	if b.sustain && !v.released() {
		v.sustained = true
		return
	}

	v.release(b.now + max(offset, 0))
}

// AllNotesOff releases every held voice at offset samples from now.
func (b *Bank) AllNotesOff(offset int64) {
	at := b.now + max(offset, 0)
	for i := range b.voices {
		v := &b.voices[i]
		if v.note >= 0 {
			v.sustained = false
			v.release(at)
		}
	}
}

// Sustain sets the sustain pedal. Lifting it releases every note whose
// note-off arrived while it was down.
func (b *Bank) Sustain(down bool, offset int64) {
	b.sustain = down
	if down {
		return
	}

	at := b.now + max(offset, 0)
	for i := range b.voices {
		v := &b.voices[i]
		if v.sustained {
			v.sustained = false
			v.release(at)
		}
	}
}

// Reset silences every voice, lifts the pedal and rewinds the clock.
// Stats counters are kept.
func (b *Bank) Reset() {
	b.now = 0
	b.sustain = false

	for i := range b.voices {
		v := &b.voices[i]
		v.note = -1
		v.end = 0
		v.sustained = false
		v.filter.Reset()
	}
}

// Slot returns the index of the voice that last played pitch, or -1.
func (b *Bank) Slot(pitch int) int {
	for i := range b.voices {
		if int(b.voices[i].note) == pitch {
			return i
		}
	}

	return -1
}

func (b *Bank) firstFree() int {
	for i := range b.voices {
		if b.voices[i].free(b.now) {
			return i
		}
	}

	return -1
}

func (b *Bank) victim() int {
	best := -1

	switch b.steal {
	case StealReleasing:
		for i := range b.voices {
			v := &b.voices[i]
			if v.released() && (best < 0 || v.end < b.voices[best].end) {
				best = i
			}
		}
	case StealOldest:
		for i := range b.voices {
			if best < 0 || b.voices[i].start < b.voices[best].start {
				best = i
			}
		}
	case StealNone:
	}

	return best
}

// Render overwrites out with the sum of all voices for the next len(out)
// samples and advances the clock. Silent voices cost nothing.
func (b *Bank) Render(out []float64) {
	n := len(out)
	core.Zero(out)

	b.scratch = core.EnsureLen(b.scratch, n)
	buf := b.scratch[:n]

	for i := range b.voices {
		v := &b.voices[i]
		if v.free(b.now) || v.start >= b.now+int64(n) {
			continue
		}

		v.render(buf, b.now)
		vecmath.AddBlockInPlace(out, buf)
	}

	b.now += int64(n)
}

// Stats returns the allocator counters.
func (b *Bank) Stats() Stats {
	s := Stats{
		Dropped:     b.dropped,
		Stolen:      b.stolen,
		Retriggered: b.retriggered,
	}

	for i := range b.voices {
		if !b.voices[i].free(b.now) {
			s.Active++
		}
	}

	return s
}
