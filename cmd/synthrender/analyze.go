package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/spectrum"
	"github.com/cwbudde/algo-synth/dsp/waveform"
)

const analysisSize = 8192

type noteReport struct {
	note     int
	expected float64 // Hz
	measured float64 // Hz
	cents    float64
	peakDB   float64
	rmsDB    float64
}

// analyzeNotes renders every note on its own engine, in parallel, and
// measures the dominant frequency of the held portion.
func analyzeNotes(ctx context.Context, o options, logger *slog.Logger) ([]noteReport, error) {
	rows := make([]noteReport, len(o.notes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, n := range o.notes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			single := o
			single.notes = []int{n}
			single.spacing = 0
			single.hold = max(o.hold, float64(analysisSize)/o.sampleRate)

			pcm, _, err := render(single, logger)
			if err != nil {
				return fmt.Errorf("note %d: %w", n, err)
			}

			row, err := measure(pcm, n, o.sampleRate)
			if err != nil {
				return fmt.Errorf("note %d: %w", n, err)
			}

			rows[i] = row

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return rows, nil
}

func measure(pcm []float32, note int, sampleRate float64) (noteReport, error) {
	a, err := spectrum.NewAnalyzer(analysisSize)
	if err != nil {
		return noteReport{}, err
	}

	frame := make([]float64, min(len(pcm), analysisSize))
	for i := range frame {
		frame[i] = float64(pcm[i])
	}

	freq, _, err := a.PeakFrequency(frame, sampleRate)
	if err != nil {
		return noteReport{}, err
	}

	expected := waveform.NoteFrequency(note, sampleRate) * sampleRate

	var peak, sum float64
	for _, v := range frame {
		peak = max(peak, math.Abs(v))
		sum += v * v
	}

	return noteReport{
		note:     note,
		expected: expected,
		measured: freq,
		cents:    1200 * math.Log2(freq/expected),
		peakDB:   core.LinearToDB(peak),
		rmsDB:    core.LinearToDB(math.Sqrt(sum / float64(max(len(frame), 1)))),
	}, nil
}

func printAnalysis(w io.Writer, rows []noteReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "note\texpected Hz\tmeasured Hz\tcents\tpeak dB\trms dB\t")

	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%+.1f\t%.1f\t%.1f\t\n",
			r.note, r.expected, r.measured, r.cents, r.peakDB, r.rmsDB)
	}

	tw.Flush()
}
