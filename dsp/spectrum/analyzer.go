package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/dsp/window"
)

var (
	// ErrInvalidSize is returned for FFT sizes that are not a power of two
	// of at least 4.
	ErrInvalidSize = errors.New("spectrum: size must be a power of two >= 4")
	// ErrInvalidSampleRate is returned for non-positive sample rates.
	ErrInvalidSampleRate = errors.New("spectrum: sample rate must be > 0")
)

type forwardPlan interface {
	Forward(dst, src []complex128) error
}

// Analyzer computes windowed magnitude spectra of a fixed size. It is not
// safe for concurrent use.
type Analyzer struct {
	size   int
	plan   forwardPlan
	window []float64
	in     []complex128
	out    []complex128
	re, im []float64
	mag    []float64
}

// Option configures an Analyzer.
type Option func(*analyzerConfig)

type analyzerConfig struct {
	window window.Type
}

// WithWindow selects the analysis window. The default is Hann.
func WithWindow(t window.Type) Option {
	return func(c *analyzerConfig) {
		c.window = t
	}
}

// NewAnalyzer returns an analyzer for frames of size samples.
func NewAnalyzer(size int, opts ...Option) (*Analyzer, error) {
	if size < 4 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	cfg := analyzerConfig{window: window.TypeHann}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	bins := size/2 + 1
	a := &Analyzer{
		size:   size,
		plan:   plan,
		window: make([]float64, size),
		in:     make([]complex128, size),
		out:    make([]complex128, size),
		re:     make([]float64, bins),
		im:     make([]float64, bins),
		mag:    make([]float64, bins),
	}

	window.Fill(a.window, cfg.window, window.WithPeriodic())

	return a, nil
}

// Size returns the frame length.
func (a *Analyzer) Size() int { return a.size }

// Bins returns the number of non-negative frequency bins.
func (a *Analyzer) Bins() int { return len(a.mag) }

// BinFrequency returns the centre frequency of bin k in Hz.
func (a *Analyzer) BinFrequency(k int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(a.size)
}

// Magnitude returns |X[k]| for k = 0..size/2 of the windowed frame x.
// Shorter frames are zero padded, longer ones truncated. The returned slice
// is owned by the analyzer and overwritten by the next call.
func (a *Analyzer) Magnitude(x []float64) ([]float64, error) {
	n := min(len(x), a.size)
	for i := range n {
		a.in[i] = complex(x[i]*a.window[i], 0)
	}

	clear(a.in[n:])

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return nil, fmt.Errorf("spectrum: forward fft: %w", err)
	}

	for k := range a.mag {
		a.re[k] = real(a.out[k])
		a.im[k] = imag(a.out[k])
	}

	vecmath.Magnitude(a.mag, a.re, a.im)

	return a.mag, nil
}

// PeakFrequency returns the frequency in Hz of the strongest non-DC
// component of x, refined by parabolic interpolation of the log magnitude
// around the peak bin, together with the peak's magnitude.
func (a *Analyzer) PeakFrequency(x []float64, sampleRate float64) (freq, magnitude float64, err error) {
	if !(sampleRate > 0) {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	mag, err := a.Magnitude(x)
	if err != nil {
		return 0, 0, err
	}

	peak := 1
	for k := 2; k < len(mag); k++ {
		if mag[k] > mag[peak] {
			peak = k
		}
	}

	offset := 0.0
	if peak < len(mag)-1 && mag[peak] > 0 {
		l := math.Log(math.Max(mag[peak-1], 1e-300))
		c := math.Log(mag[peak])
		r := math.Log(math.Max(mag[peak+1], 1e-300))

		if d := l - 2*c + r; d < 0 {
			offset = 0.5 * (l - r) / d
		}
	}

	return (float64(peak) + offset) * sampleRate / float64(a.size), mag[peak], nil
}
