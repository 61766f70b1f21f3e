package biquad

import (
	"math"
	"testing"
)

// tolerance for floating-point comparisons.
const eps = 1e-12

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// smoothing returns a stable lowpass-like section used throughout the tests.
func smoothing() Coefficients {
	return Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
}

func TestNewSection(t *testing.T) {
	c := Coefficients{B0: 1, B1: 2, B2: 3, A1: 4, A2: 5}
	s := NewSection(c)
	if s.Coefficients != c {
		t.Fatalf("coefficients mismatch: got %v, want %v", s.Coefficients, c)
	}
	if st := s.State(); st != [2]float64{0, 0} {
		t.Fatalf("initial state not zero: %v", st)
	}
}

func TestProcessSample_Identity(t *testing.T) {
	s := NewSection(Identity())
	input := []float64{1, 0, -1, 0.5, 0.25}
	for i, x := range input {
		if y := s.ProcessSample(x); !almostEqual(y, x, eps) {
			t.Errorf("sample %d: got %v, want %v", i, y, x)
		}
	}
}

func TestProcessSample_HandTraced(t *testing.T) {
	// x = [1, 0, 0, 0]:
	//
	// n=0: wn=1                        y=0.25
	// n=1: wn=0.2*1=0.2                y=0.25*0.2+0.5*1=0.55
	// n=2: wn=0.2*0.2-0.04*1=0         y=0.5*0.2+0.25*1=0.35
	// n=3: wn=-0.04*0.2=-0.008         y=0.25*-0.008+0.25*0.2=0.048
	s := NewSection(smoothing())

	want := []float64{0.25, 0.55, 0.35, 0.048}
	for i, w := range want {
		var x float64
		if i == 0 {
			x = 1
		}
		if y := s.ProcessSample(x); !almostEqual(y, w, eps) {
			t.Fatalf("n=%d: got %.15f, want %.15f", i, y, w)
		}
	}
}

func TestProcessSample_DelayLineShift(t *testing.T) {
	s := NewSection(Coefficients{B0: 1})
	s.ProcessSample(3)
	s.ProcessSample(5)
	if st := s.State(); st != [2]float64{5, 3} {
		t.Fatalf("state = %v, want [5 3]", st)
	}
}

func TestProcessBlock_MatchesProcessSample(t *testing.T) {
	input := []float64{1, 0.5, -0.3, 0.7, 0, -1, 0.2, 0.8, 0.1}

	ref := NewSection(smoothing())
	want := make([]float64, len(input))
	for i, x := range input {
		want[i] = ref.ProcessSample(x)
	}

	s := NewSection(smoothing())
	got := append([]float64(nil), input...)
	s.ProcessBlock(got)

	for i := range want {
		if !almostEqual(got[i], want[i], eps) {
			t.Fatalf("index %d: block=%v sample=%v", i, got[i], want[i])
		}
	}
	if s.State() != ref.State() {
		t.Fatalf("state mismatch: block=%v sample=%v", s.State(), ref.State())
	}
}

func TestResetAndState(t *testing.T) {
	s := NewSection(smoothing())
	s.ProcessSample(1)
	saved := s.State()

	s.Reset()
	if s.State() != [2]float64{} {
		t.Fatalf("state after reset = %v", s.State())
	}

	s.SetState(saved)
	if s.State() != saved {
		t.Fatalf("state = %v, want %v", s.State(), saved)
	}
}

func TestCoefficientsDCGain(t *testing.T) {
	// (0.25+0.5+0.25)/(1-0.2+0.04) = 1/0.84
	got := smoothing().DCGain()
	if !almostEqual(got, 1/0.84, eps) {
		t.Fatalf("DCGain = %v, want %v", got, 1/0.84)
	}
}

func TestPolesAndStability(t *testing.T) {
	c := smoothing()
	if !c.Stable() {
		t.Fatalf("expected stable section, poles=%v", c.Poles())
	}

	unstable := Coefficients{B0: 1, A1: 0, A2: 1.1}
	if unstable.Stable() {
		t.Fatalf("expected unstable section, poles=%v", unstable.Poles())
	}

	firstOrder := Coefficients{B0: 0.5, B1: 0.5, A1: -0.5}
	p := firstOrder.Poles()
	if !almostEqual(real(p[0]), 0.5, eps) || p[1] != 0 {
		t.Fatalf("first-order poles = %v", p)
	}
}

func TestSection_DecayFlushesToZero(t *testing.T) {
	// A single pole at 0.5 halves the state each sample; without flushing it
	// would still be 2^-200 after 200 samples.
	c := Coefficients{B0: 1, A1: -0.5}

	s := NewSection(c)
	s.ProcessSample(1)
	for range 200 {
		s.ProcessSample(0)
	}
	if st := s.State(); st != [2]float64{} {
		t.Fatalf("ProcessSample state = %v, want exact zero", st)
	}

	blk := NewSection(c)
	buf := make([]float64, 201)
	buf[0] = 1
	blk.ProcessBlock(buf)
	if st := blk.State(); st != [2]float64{} {
		t.Fatalf("ProcessBlock state = %v, want exact zero", st)
	}
	if buf[200] != 0 || buf[50] == 0 {
		t.Fatalf("tail = %g, %g", buf[50], buf[200])
	}
}
