// Command synthrender renders notes through the synth engine offline.
//
// Usage:
//
//	synthrender [flags]
//
// The notes given with -notes are played as a chord, or as an arpeggio
// when -spacing is set, held for -hold seconds and followed by -tail
// seconds of release. The result can be written as a 32-bit float WAV
// file, analysed per note, or played on the default audio device.
//
// Examples:
//
//	synthrender -notes 60,64,67 -out chord.wav
//	synthrender -notes 45,57,69 -analyze -nofilter -secondary off
//	synthrender -notes 60 -wave sawtooth -cutoff 1200 -play
//	synthrender -rack tremolo.json -notes 48 -out trem.wav
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-synth/dsp/voice"
	"github.com/cwbudde/algo-synth/dsp/waveform"
	"github.com/cwbudde/algo-synth/synth"
)

type options struct {
	sampleRate float64
	blockSize  int
	voices     int
	order      int
	steal      voice.StealPolicy
	rack       []byte
	seed       uint64

	notes    []int
	velocity int
	hold     float64
	spacing  float64
	tail     float64

	controls synth.Controls
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := run(ctx, os.Args[1:])

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("synthrender", flag.ContinueOnError)

	def := synth.DefaultControls()
	sampleRate := fs.Float64("rate", 48000, "sample rate in Hz")
	blockSize := fs.Int("block", 256, "host block size in samples")
	voices := fs.Int("voices", 4, "polyphony")
	order := fs.Int("order", 2, "Butterworth order of the per-voice lowpass")
	steal := fs.String("steal", voice.StealReleasing.String(), "voice steal policy: releasing, oldest, none")
	rackPath := fs.String("rack", "", "JSON rack spec (default routes voices to out)")
	seed := fs.Uint64("seed", 1, "noise seed")

	notesRaw := fs.String("notes", "60,64,67", "comma-separated MIDI notes")
	velocity := fs.Int("velocity", 100, "MIDI velocity 1-127")
	hold := fs.Float64("hold", 1, "seconds each note is held")
	spacing := fs.Float64("spacing", 0, "seconds between successive note-ons")
	tail := fs.Float64("tail", 0.5, "seconds rendered after the last note-off")

	wave := fs.String("wave", waveform.Sine.String(), "primary waveform: sine, square, sawtooth, triangle, noise, off")
	secondary := fs.String("secondary", waveform.Sine.String(), "FM modulator waveform, off disables FM")
	depth := fs.Float64("depth", float64(def.SecondaryDepth), "FM depth")
	mult := fs.Float64("mult", float64(def.SecondaryFreqMultiplier), "FM frequency multiplier")
	attack := fs.Float64("attack", float64(def.Attack), "attack in seconds")
	decay := fs.Float64("decay", float64(def.Decay), "decay in seconds")
	sustain := fs.Float64("sustain", float64(def.Sustain), "sustain level 0-1")
	release := fs.Float64("release", float64(def.Release), "release in seconds")
	cutoff := fs.Float64("cutoff", float64(def.FilterCutoffHz), "lowpass cutoff in Hz")
	noFilter := fs.Bool("nofilter", false, "disable the per-voice lowpass")

	out := fs.String("out", "", "write a mono float32 WAV file")
	analyze := fs.Bool("analyze", false, "render each note alone and report its measured pitch")
	play := fs.Bool("play", false, "play the result on the default audio device")
	verbose := fs.Bool("v", false, "debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: synthrender [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders notes through the synth engine.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	o := options{
		sampleRate: *sampleRate,
		blockSize:  *blockSize,
		voices:     *voices,
		order:      *order,
		seed:       *seed,
		velocity:   *velocity,
		hold:       *hold,
		spacing:    *spacing,
		tail:       *tail,
		controls:   def,
	}

	var err error

	if o.steal, err = voice.ParseStealPolicy(*steal); err != nil {
		return err
	}

	if o.notes, err = parseNotes(*notesRaw); err != nil {
		return err
	}

	if o.velocity < 1 || o.velocity > 127 {
		return fmt.Errorf("velocity %d out of range 1-127", o.velocity)
	}

	if o.blockSize < 1 {
		return fmt.Errorf("block size %d must be positive", o.blockSize)
	}

	if *rackPath != "" {
		if o.rack, err = os.ReadFile(*rackPath); err != nil {
			return fmt.Errorf("read rack: %w", err)
		}
	}

	if o.controls.Waveform, err = selector(*wave); err != nil {
		return err
	}

	if o.controls.SecondaryWaveform, err = selector(*secondary); err != nil {
		return err
	}

	o.controls.SecondaryDepth = float32(*depth)
	o.controls.SecondaryFreqMultiplier = float32(*mult)
	o.controls.Attack = float32(*attack)
	o.controls.Decay = float32(*decay)
	o.controls.Sustain = float32(*sustain)
	o.controls.Release = float32(*release)
	o.controls.FilterCutoffHz = float32(*cutoff)
	o.controls.FilterEnabled = !*noFilter

	if *analyze {
		rows, err := analyzeNotes(ctx, o, logger)
		if err != nil {
			return err
		}

		printAnalysis(os.Stdout, rows)
	}

	if *out == "" && !*play {
		return nil
	}

	pcm, stats, err := render(o, logger)
	if err != nil {
		return err
	}

	logger.Info("rendered",
		"samples", len(pcm),
		"seconds", float64(len(pcm))/o.sampleRate,
		"dropped", stats.NotesDropped,
		"stolen", stats.NotesStolen,
		"decode_errors", stats.DecodeErrors,
		"filter_errors", stats.FilterConfigErrors,
	)

	if *out != "" {
		if err := writeWAVFile(*out, pcm, int(o.sampleRate)); err != nil {
			return err
		}

		logger.Info("wrote", "path", *out)
	}

	if *play {
		return playPCM(ctx, pcm, int(o.sampleRate))
	}

	return nil
}

func parseNotes(s string) ([]int, error) {
	var notes []int

	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}

		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n > 127 {
			return nil, fmt.Errorf("invalid MIDI note %q", f)
		}

		notes = append(notes, n)
	}

	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes given")
	}

	return notes, nil
}

func selector(name string) (float32, error) {
	k, ok := waveform.ParseKind(name)
	if !ok {
		return 0, fmt.Errorf("unknown waveform %q", name)
	}

	return float32(k), nil
}
