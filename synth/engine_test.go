package synth

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-synth/dsp/event"
	"github.com/cwbudde/algo-synth/dsp/spectrum"
	"github.com/cwbudde/algo-synth/dsp/voice"
	"github.com/cwbudde/algo-synth/internal/testutil"
)

const testRate = 48000

func sequence(build func(w *event.Writer)) []byte {
	w := event.NewWriter(event.DefaultURIDs())
	if build != nil {
		build(w)
	}

	return append([]byte(nil), w.Bytes()...)
}

func noteOn(frames int64, pitch, velocity uint8) []byte {
	return sequence(func(w *event.Writer) { w.MIDI(frames, midi.NoteOn(0, pitch, velocity)) })
}

// toneControls give a pure sine at full level with no filter.
func toneControls() Controls {
	c := DefaultControls()
	c.Attack, c.Decay, c.Sustain = 0, 0, 1
	c.SecondaryWaveform = 5
	c.FilterEnabled = false

	return c
}

func mustNew(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	e, err := New(testRate, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return e
}

func rms(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}

	return math.Sqrt(sum / float64(len(x)))
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rate float64
		opts []Option
		want error
	}{
		{name: "zero rate", rate: 0, want: ErrInvalidSampleRate},
		{name: "nan rate", rate: math.NaN(), want: ErrInvalidSampleRate},
		{name: "filter order", rate: testRate, opts: []Option{WithFilterOrder(20)}, want: voice.ErrInvalidConfig},
		{
			name: "rack without out",
			rate: testRate,
			opts: []Option{WithRack([]byte(`{"modules":[{"name":"voices","kind":"passthrough"}]}`))},
			want: ErrInvalidRack,
		},
		{
			name: "voices without in port",
			rate: testRate,
			opts: []Option{WithRack([]byte(`{
				"modules": [
					{"name": "voices", "kind": "oscillator"},
					{"name": "out", "kind": "passthrough"}
				],
				"connections": [{"from": "voices", "to": "out"}]
			}`))},
			want: ErrInvalidRack,
		},
		{
			name: "voices mixer has no in port",
			rate: testRate,
			opts: []Option{WithRack([]byte(`{
				"modules": [
					{"name": "voices", "kind": "mixer"},
					{"name": "out", "kind": "passthrough"}
				],
				"connections": [{"from": "voices", "to": "out"}]
			}`))},
			want: ErrInvalidRack,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.rate, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := New(testRate, WithRack([]byte("{"))); err == nil {
		t.Fatal("expected error for malformed rack json")
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	e := mustNew(t)
	cfg := e.Config()

	if cfg.SampleRate != testRate || cfg.BlockSize != 1024 || cfg.Voices != 4 || cfg.FilterOrder != 2 {
		t.Fatalf("config = %+v", cfg)
	}

	if e.SampleRate() != testRate {
		t.Fatalf("SampleRate = %v", e.SampleRate())
	}
}

func TestRenderSilenceWithoutEvents(t *testing.T) {
	t.Parallel()

	e := mustNew(t)
	pcm := make([]float32, 512)

	for i := range pcm {
		pcm[i] = 1
	}

	e.Render(pcm, nil, DefaultControls())
	testutil.RequireSilent(t, pcm, 0)

	if s := e.Stats(); s.Blocks != 1 || s.Frames != 512 || s.ActiveVoices != 0 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestNoteStartsAtFrameOffset(t *testing.T) {
	t.Parallel()

	e := mustNew(t)
	pcm := make([]float32, 512)

	e.Render(pcm, noteOn(100, 60, 100), DefaultControls())

	testutil.RequireSilent(t, pcm[:101], 0)

	peak := 0.0
	for _, v := range pcm[101:] {
		peak = max(peak, math.Abs(float64(v)))
	}

	if peak < 0.01 {
		t.Fatalf("peak after note-on = %v", peak)
	}

	if s := e.Stats(); s.ActiveVoices != 1 || s.Events != 1 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestPitchAccuracy(t *testing.T) {
	t.Parallel()

	e := mustNew(t)
	a, err := spectrum.NewAnalyzer(8192)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	pcm := make([]float32, a.Size())
	e.Render(pcm, noteOn(0, 69, 127), toneControls())

	freq, _, err := a.PeakFrequency(testutil.Float64s(pcm), testRate)
	if err != nil {
		t.Fatalf("PeakFrequency: %v", err)
	}

	if math.Abs(freq-440) > 0.5 {
		t.Fatalf("A4 renders at %v Hz", freq)
	}

	amp, err := spectrum.ToneAmplitude(testutil.Float64s(pcm[:4800]), 440, testRate)
	if err != nil {
		t.Fatalf("ToneAmplitude: %v", err)
	}

	if math.Abs(amp-1) > 1e-3 {
		t.Fatalf("amplitude at velocity 127 = %v, want 1", amp)
	}
}

func TestPoolExhaustionDropsFifthNote(t *testing.T) {
	t.Parallel()

	e := mustNew(t)
	buf := sequence(func(w *event.Writer) {
		for i := range 5 {
			w.MIDI(int64(i), midi.NoteOn(0, uint8(60+i), 100))
		}
	})

	e.Render(make([]float32, 256), buf, DefaultControls())

	s := e.Stats()
	if s.ActiveVoices != 4 || s.NotesDropped != 1 || s.NotesStolen != 0 {
		t.Fatalf("stats = %+v, want 4 active and 1 dropped", s)
	}
}

func TestStealOldestOption(t *testing.T) {
	t.Parallel()

	e := mustNew(t, WithSteal(voice.StealOldest), WithVoices(2))
	buf := sequence(func(w *event.Writer) {
		for i := range 3 {
			w.MIDI(int64(i), midi.NoteOn(0, uint8(60+i), 100))
		}
	})

	e.Render(make([]float32, 64), buf, DefaultControls())

	if s := e.Stats(); s.ActiveVoices != 2 || s.NotesStolen != 1 || s.NotesDropped != 0 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestRenderIndependentOfBlockSize(t *testing.T) {
	t.Parallel()

	buf := sequence(func(w *event.Writer) {
		w.MIDI(0, midi.NoteOn(0, 60, 90))
		w.MIDI(300, midi.NoteOn(0, 64, 70))
		w.MIDI(700, midi.NoteOff(0, 60))
	})

	small := mustNew(t, WithBlockSize(64))
	large := mustNew(t)

	a := make([]float32, 1000)
	b := make([]float32, 1000)

	small.Render(a, buf, DefaultControls())
	large.Render(b, buf, DefaultControls())

	testutil.RequireSliceNearlyEqual(t, testutil.Float64s(a), testutil.Float64s(b), 0)
}

func TestRenderContinuesAcrossCalls(t *testing.T) {
	t.Parallel()

	one := mustNew(t)
	two := mustNew(t)

	whole := make([]float32, 1000)
	one.Render(whole, noteOn(0, 57, 100), DefaultControls())

	parts := make([]float32, 1000)
	two.Render(parts[:500], noteOn(0, 57, 100), DefaultControls())
	two.Render(parts[500:], nil, DefaultControls())

	testutil.RequireSliceNearlyEqual(t, testutil.Float64s(whole), testutil.Float64s(parts), 0)
}

func TestNoteOffReleasesToSilence(t *testing.T) {
	t.Parallel()

	e := mustNew(t)
	c := DefaultControls()

	e.Render(make([]float32, 512), sequence(func(w *event.Writer) {
		w.MIDI(0, midi.NoteOn(0, 60, 100))
		w.MIDI(100, midi.NoteOff(0, 60))
	}), c)

	// Release is 0.1 s: the voice is free once 4800 samples have passed.
	e.Render(make([]float32, 5000), nil, c)

	if s := e.Stats(); s.ActiveVoices != 0 {
		t.Fatalf("active voices after release = %d", s.ActiveVoices)
	}

	pcm := make([]float32, 256)
	e.Render(pcm, nil, c)
	testutil.RequireSilent(t, pcm, 0)
}

func TestAllNotesOffController(t *testing.T) {
	t.Parallel()

	for _, cc := range []uint8{event.ControllerAllNotesOff, event.ControllerAllSoundOff} {
		e := mustNew(t)
		c := DefaultControls()

		e.Render(make([]float32, 256), sequence(func(w *event.Writer) {
			w.MIDI(0, midi.NoteOn(0, 60, 100))
			w.MIDI(1, midi.NoteOn(0, 67, 100))
		}), c)

		e.Render(make([]float32, 256), sequence(func(w *event.Writer) {
			w.MIDI(0, midi.ControlChange(0, cc, 0))
		}), c)
		e.Render(make([]float32, 5000), nil, c)

		if s := e.Stats(); s.ActiveVoices != 0 {
			t.Fatalf("cc %d: active voices = %d", cc, s.ActiveVoices)
		}
	}
}

func TestSustainPedalDefersRelease(t *testing.T) {
	t.Parallel()

	e := mustNew(t)
	c := DefaultControls()

	e.Render(make([]float32, 512), sequence(func(w *event.Writer) {
		w.MIDI(0, midi.ControlChange(0, 64, 127))
		w.MIDI(0, midi.NoteOn(0, 60, 100))
		w.MIDI(10, midi.NoteOff(0, 60))
	}), c)
	e.Render(make([]float32, 10000), nil, c)

	if s := e.Stats(); s.ActiveVoices != 1 {
		t.Fatalf("active voices with pedal down = %d, want 1", s.ActiveVoices)
	}

	e.Render(make([]float32, 64), sequence(func(w *event.Writer) {
		w.MIDI(0, midi.ControlChange(0, 64, 0))
	}), c)
	e.Render(make([]float32, 5000), nil, c)

	if s := e.Stats(); s.ActiveVoices != 0 {
		t.Fatalf("active voices after pedal up = %d, want 0", s.ActiveVoices)
	}
}

func TestControlsSnapshotAtNoteOn(t *testing.T) {
	t.Parallel()

	c := DefaultControls()
	changed := c
	changed.Waveform = 1
	changed.Attack = 0.5
	changed.FilterCutoffHz = 5000
	changed.SecondaryDepth = 0

	steady := mustNew(t)
	moving := mustNew(t)

	a := make([]float32, 512)
	b := make([]float32, 512)

	steady.Render(a, noteOn(0, 60, 100), c)
	moving.Render(b, noteOn(0, 60, 100), c)

	steady.Render(a, nil, c)
	moving.Render(b, nil, changed)

	testutil.RequireSliceNearlyEqual(t, testutil.Float64s(a), testutil.Float64s(b), 0)
}

func TestFilterAttenuatesHighNotes(t *testing.T) {
	t.Parallel()

	open := toneControls()
	closed := toneControls()
	closed.FilterEnabled = true

	// Pitch 100 is about 2637 Hz, well above the 450 Hz cutoff.
	a := make([]float32, 4096)
	b := make([]float32, 4096)

	mustNew(t).Render(a, noteOn(0, 100, 127), open)
	mustNew(t).Render(b, noteOn(0, 100, 127), closed)

	if ra, rb := rms(a), rms(b); rb > 0.1*ra {
		t.Fatalf("filtered rms %v not well below unfiltered %v", rb, ra)
	}
}

func TestInvalidFilterFallsBackToBypass(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	bad := toneControls()
	bad.FilterEnabled = true
	bad.FilterCutoffHz = 30000

	e := mustNew(t, WithLogger(logger))
	ref := mustNew(t)

	a := make([]float32, 1024)
	b := make([]float32, 1024)

	e.Render(a, noteOn(0, 69, 100), bad)
	e.Render(a, nil, bad)
	ref.Render(b, noteOn(0, 69, 100), toneControls())
	ref.Render(b, nil, toneControls())

	testutil.RequireFinite(t, testutil.Float64s(a))
	testutil.RequireSliceNearlyEqual(t, testutil.Float64s(a), testutil.Float64s(b), 0)

	if s := e.Stats(); s.FilterConfigErrors != 1 {
		t.Fatalf("FilterConfigErrors = %d, want 1", s.FilterConfigErrors)
	}

	if n := strings.Count(logs.String(), "filter settings rejected"); n != 1 {
		t.Fatalf("warning logged %d times:\n%s", n, logs.String())
	}

	for _, cutoff := range []float32{0, -10, float32(math.NaN())} {
		bad.FilterCutoffHz = cutoff
		e.Render(a, nil, bad)
	}

	if s := e.Stats(); s.FilterConfigErrors != 4 {
		t.Fatalf("FilterConfigErrors = %d, want 4", s.FilterConfigErrors)
	}
}

func TestDecodeErrorsAreCounted(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	e := mustNew(t, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	buf := sequence(func(w *event.Writer) {
		w.MIDI(0, midi.NoteOn(0, 60, 100))
		w.MIDI(10, midi.NoteOn(0, 64, 100))
	})
	buf = buf[:len(buf)-7]

	e.Render(make([]float32, 128), buf, DefaultControls())
	e.Render(make([]float32, 128), buf, DefaultControls())

	s := e.Stats()
	if s.DecodeErrors != 2 || s.ActiveVoices != 1 {
		t.Fatalf("stats = %+v", s)
	}

	if n := strings.Count(logs.String(), "malformed events skipped"); n != 1 {
		t.Fatalf("decode warning logged %d times", n)
	}
}

func TestTransportTracksPosition(t *testing.T) {
	t.Parallel()

	e := mustNew(t)

	if tr := e.Transport(); tr.Valid {
		t.Fatalf("transport valid before any property: %+v", tr)
	}

	e.Render(make([]float32, 256), sequence(func(w *event.Writer) {
		w.Properties(0,
			event.Property{Key: event.PropertyFrame, Long: 1000},
			event.Property{Key: event.PropertySpeed, Float: 1},
			event.Property{Key: event.PropertyBPM, Float: 120},
		)
	}), DefaultControls())

	if tr := e.Transport(); !tr.Valid || tr.Frame != 1256 || tr.Speed != 1 || tr.BPM != 120 {
		t.Fatalf("transport = %+v", tr)
	}

	e.Render(make([]float32, 256), sequence(func(w *event.Writer) {
		w.Properties(100, event.Property{Key: event.PropertySpeed, Float: 0})
	}), DefaultControls())

	if tr := e.Transport(); tr.Frame != 1356 || tr.Speed != 0 {
		t.Fatalf("transport after stop = %+v", tr)
	}

	e.Reset()

	if tr := e.Transport(); tr.Valid || tr.Frame != 0 {
		t.Fatalf("transport after reset = %+v", tr)
	}
}

func TestCustomRack(t *testing.T) {
	t.Parallel()

	half := mustNew(t, WithRack([]byte(`{
		"modules": [
			{"name": "voices", "kind": "passthrough"},
			{"name": "out", "kind": "attenuverter", "params": {"gain": 0.5}}
		],
		"connections": [{"from": "voices", "to": "out"}]
	}`)))
	full := mustNew(t)

	a := make([]float32, 512)
	b := make([]float32, 512)

	half.Render(a, noteOn(0, 60, 100), DefaultControls())
	full.Render(b, noteOn(0, 60, 100), DefaultControls())

	for i := range a {
		if math.Abs(float64(a[i])-0.5*float64(b[i])) > 1e-7 {
			t.Fatalf("sample %d: %v, want %v", i, a[i], 0.5*b[i])
		}
	}
}

func TestRender_VoicesFeedNamedInPort(t *testing.T) {
	t.Parallel()

	// The envelope's "in" port is not its first input; an open gate with
	// zero-length stages passes it through unchanged.
	gated := mustNew(t, WithRack([]byte(`{
		"modules": [
			{"name": "voices", "kind": "envelope",
			 "params": {"attack": 0, "decay": 0, "sustain": 1, "release": 0, "gate": 1}},
			{"name": "out", "kind": "passthrough"}
		],
		"connections": [{"from": "voices", "to": "out"}]
	}`)))
	full := mustNew(t)

	a := make([]float32, 512)
	b := make([]float32, 512)

	gated.Render(a, noteOn(0, 60, 100), DefaultControls())
	full.Render(b, noteOn(0, 60, 100), DefaultControls())

	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-7 {
			t.Fatalf("sample %d: %v, want %v", i, a[i], b[i])
		}
	}
}

func TestResetSilences(t *testing.T) {
	t.Parallel()

	e := mustNew(t)
	e.Render(make([]float32, 256), noteOn(0, 60, 100), DefaultControls())
	e.Reset()

	if s := e.Stats(); s.ActiveVoices != 0 || s.Events != 1 {
		t.Fatalf("stats after reset = %+v", s)
	}

	pcm := make([]float32, 256)
	e.Render(pcm, nil, DefaultControls())
	testutil.RequireSilent(t, pcm, 0)
}

func TestRenderDoesNotAllocate(t *testing.T) {
	e, err := New(testRate, WithBlockSize(256))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	buf := sequence(func(w *event.Writer) {
		w.MIDI(0, midi.NoteOn(0, 60, 100))
		w.MIDI(64, midi.NoteOn(0, 67, 100))
		w.MIDI(200, midi.NoteOff(0, 60))
		w.MIDI(300, midi.ControlChange(0, 64, 0))
		w.Properties(400, event.Property{Key: event.PropertySpeed, Float: 1})
	})

	pcm := make([]float32, 512)
	c := DefaultControls()
	e.Render(pcm, buf, c)

	allocs := testing.AllocsPerRun(50, func() {
		e.Render(pcm, buf, c)
	})
	if allocs != 0 {
		t.Fatalf("allocs per render = %v, want 0", allocs)
	}
}
