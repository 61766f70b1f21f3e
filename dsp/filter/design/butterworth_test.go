package design

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/dsp/filter/biquad"
)

const tol = 1e-9

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestButterworthLP_SectionCount(t *testing.T) {
	t.Parallel()

	for order := 1; order <= MaxOrder; order++ {
		coeffs, err := ButterworthLP(1000, order, 48000)
		if err != nil {
			t.Fatalf("order %d: %v", order, err)
		}

		if len(coeffs) != Sections(order) {
			t.Fatalf("order %d: got %d sections, want %d", order, len(coeffs), Sections(order))
		}

		if order%2 != 0 {
			last := coeffs[len(coeffs)-1]
			if last.B2 != 0 || last.A2 != 0 {
				t.Fatalf("order %d: last section not first-order: %+v", order, last)
			}
		}
	}
}

func TestButterworthLP_UnityDCGain(t *testing.T) {
	t.Parallel()

	sampleRates := []float64{44100, 48000, 96000}
	cutoffs := []float64{20, 100, 1000, 5000, 15000}

	for _, sr := range sampleRates {
		for _, fc := range cutoffs {
			for order := 1; order <= 8; order++ {
				coeffs, err := ButterworthLP(fc, order, sr)
				if err != nil {
					t.Fatalf("sr=%g fc=%g order=%d: %v", sr, fc, order, err)
				}

				chain := biquad.NewChain(coeffs)
				if got := chain.DCGain(); !almostEqual(got, 1, 1e-9) {
					t.Errorf("sr=%g fc=%g order=%d: DC gain %.12f", sr, fc, order, got)
				}
			}
		}
	}
}

func TestButterworthLP_HalfPowerAtCutoff(t *testing.T) {
	t.Parallel()

	const sr = 48000.0

	for _, fc := range []float64{250, 1000, 8000} {
		for order := 1; order <= 8; order++ {
			coeffs, err := ButterworthLP(fc, order, sr)
			if err != nil {
				t.Fatal(err)
			}

			chain := biquad.NewChain(coeffs)
			want := -10 * math.Log10(2)
			if got := chain.MagnitudeDB(fc, sr); !almostEqual(got, want, 1e-6) {
				t.Errorf("fc=%g order=%d: %.6f dB at cutoff, want %.6f", fc, order, got, want)
			}
		}
	}
}

func TestButterworthLP_MonotonicRolloff(t *testing.T) {
	t.Parallel()

	coeffs, err := ButterworthLP(2000, 4, 48000)
	if err != nil {
		t.Fatal(err)
	}

	chain := biquad.NewChain(coeffs)
	prev := math.Inf(1)

	for f := 50.0; f < 24000; f *= 1.25 {
		m := chain.MagnitudeDB(f, 48000)
		if m > prev+1e-9 {
			t.Fatalf("response rises at %.1f Hz: %.4f > %.4f", f, m, prev)
		}

		prev = m
	}
}

func TestButterworthLP_Stable(t *testing.T) {
	t.Parallel()

	for order := 1; order <= MaxOrder; order++ {
		for _, fc := range []float64{10, 1000, 23000} {
			coeffs, err := ButterworthLP(fc, order, 48000)
			if err != nil {
				t.Fatal(err)
			}

			for i, c := range coeffs {
				if !c.Stable() {
					t.Fatalf("order=%d fc=%g section %d unstable: poles %v", order, fc, i, c.Poles())
				}
			}
		}
	}
}

func TestButterworthLP_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cutoff float64
		order  int
		sr     float64
		want   error
	}{
		{"zero order", 1000, 0, 48000, ErrInvalidOrder},
		{"negative order", 1000, -2, 48000, ErrInvalidOrder},
		{"order too high", 1000, MaxOrder + 1, 48000, ErrInvalidOrder},
		{"zero cutoff", 0, 2, 48000, ErrInvalidCutoff},
		{"negative cutoff", -10, 2, 48000, ErrInvalidCutoff},
		{"nyquist cutoff", 24000, 2, 48000, ErrInvalidCutoff},
		{"above nyquist", 30000, 2, 48000, ErrInvalidCutoff},
		{"NaN cutoff", math.NaN(), 2, 48000, ErrInvalidCutoff},
		{"zero sample rate", 1000, 2, 0, ErrInvalidSampleRate},
		{"negative sample rate", 1000, 2, -1, ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			coeffs, err := ButterworthLP(tt.cutoff, tt.order, tt.sr)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}

			if coeffs != nil {
				t.Fatalf("coeffs = %v, want nil", coeffs)
			}
		})
	}
}

func TestAppendButterworthLP_NoAllocation(t *testing.T) {
	buf := make([]biquad.Coefficients, 0, Sections(MaxOrder))

	allocs := testing.AllocsPerRun(100, func() {
		var err error

		buf, err = AppendButterworthLP(buf[:0], 1234, 7, 48000)
		if err != nil {
			t.Fatal(err)
		}
	})
	if allocs != 0 {
		t.Fatalf("AppendButterworthLP allocated %v times", allocs)
	}

	if len(buf) != 4 {
		t.Fatalf("len = %d, want 4", len(buf))
	}
}

func TestAppendButterworthLP_ErrorKeepsDst(t *testing.T) {
	dst := []biquad.Coefficients{biquad.Identity()}

	got, err := AppendButterworthLP(dst, -1, 2, 48000)
	if !errors.Is(err, ErrInvalidCutoff) {
		t.Fatalf("err = %v", err)
	}

	if len(got) != 1 || got[0] != biquad.Identity() {
		t.Fatalf("dst modified: %v", got)
	}
}

func TestButterworthQ(t *testing.T) {
	t.Parallel()

	if q := ButterworthQ(2, 0); !almostEqual(q, 1/math.Sqrt2, tol) {
		t.Fatalf("order 2 Q = %v", q)
	}

	// Order 4: Q = 1/(2cos(3π/8)) and 1/(2cos(π/8)).
	want := []float64{1 / (2 * math.Cos(3*math.Pi/8)), 1 / (2 * math.Cos(math.Pi/8))}
	for i, w := range want {
		if q := ButterworthQ(4, i); !almostEqual(q, w, tol) {
			t.Fatalf("order 4 section %d Q = %v, want %v", i, q, w)
		}
	}
}

func TestBilinearTransform_NormalizesA0(t *testing.T) {
	t.Parallel()

	got, norm := BilinearTransform([3]float64{1, math.Sqrt2, 1}, 3)
	if !almostEqual(got[0], 1, 1e-12) {
		t.Fatalf("got d0=%v, want 1", got[0])
	}

	if !almostEqual(norm, 1/(10+3*math.Sqrt2), 1e-12) {
		t.Fatalf("norm = %v", norm)
	}

	if _, norm := BilinearTransform([3]float64{0, 0, 0}, 1); norm != 0 {
		t.Fatalf("degenerate polynomial norm = %v, want 0", norm)
	}
}
