package main

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/event"
	"github.com/cwbudde/algo-synth/synth"
)

// scheduled is a MIDI message at an absolute sample position.
type scheduled struct {
	at  int64
	msg midi.Message
}

// schedule lays out note-ons and note-offs for o.notes.
func schedule(o options) (events []scheduled, length int64) {
	hold := seconds(o.hold, o.sampleRate)
	spacing := seconds(o.spacing, o.sampleRate)

	var last int64

	for i, n := range o.notes {
		on := int64(i) * spacing
		off := on + hold
		last = max(last, off)

		events = append(events,
			scheduled{at: on, msg: midi.NoteOn(0, uint8(n), uint8(o.velocity))},
			scheduled{at: off, msg: midi.NoteOff(0, uint8(n))},
		)
	}

	slices.SortStableFunc(events, func(a, b scheduled) int {
		return cmp.Compare(a.at, b.at)
	})

	return events, last + seconds(o.tail, o.sampleRate)
}

func seconds(s, sampleRate float64) int64 {
	if !(s > 0) {
		return 0
	}

	return int64(math.Round(s * sampleRate))
}

func newEngine(o options, logger *slog.Logger) (*synth.Engine, error) {
	opts := []synth.Option{
		synth.WithBlockSize(o.blockSize),
		synth.WithVoices(o.voices),
		synth.WithFilterOrder(o.order),
		synth.WithSteal(o.steal),
		synth.WithSeed(o.seed),
		synth.WithLogger(logger),
	}

	if o.rack != nil {
		opts = append(opts, synth.WithRack(o.rack))
	}

	return synth.New(o.sampleRate, opts...)
}

// render plays the schedule through a fresh engine block by block, the
// way a host would.
func render(o options, logger *slog.Logger) ([]float32, synth.Stats, error) {
	e, err := newEngine(o, logger)
	if err != nil {
		return nil, synth.Stats{}, err
	}

	events, length := schedule(o)
	pcm := make([]float32, length)
	w := event.NewWriter(event.DefaultURIDs())

	next := 0
	for pos := int64(0); pos < length; pos += int64(o.blockSize) {
		end := min(pos+int64(o.blockSize), length)

		w.Reset()

		for next < len(events) && events[next].at < end {
			w.MIDI(events[next].at-pos, events[next].msg)
			next++
		}

		e.Render(pcm[pos:end], w.Bytes(), o.controls)
	}

	return pcm, e.Stats(), nil
}

func writeWAVFile(path string, pcm []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := writeWAV(f, pcm, sampleRate); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}

// Written files are integer PCM, so samples are clamped to [-1, 1] on the
// way out.
const (
	wavBitDepth  = 32
	wavFormatPCM = 1
)

// writeWAV writes pcm as a mono 32-bit PCM WAV stream.
func writeWAV(w io.WriteSeeker, pcm []float32, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, wavBitDepth, 1, wavFormatPCM)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(pcm)),
		SourceBitDepth: wavBitDepth,
	}

	for i, v := range pcm {
		buf.Data[i] = int(math.Round(core.Clamp(float64(v), -1, 1) * math.MaxInt32))
	}

	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("encode wav: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finish wav: %w", err)
	}

	return nil
}
