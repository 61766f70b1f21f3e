package envelope

import "math"

// Gate is a gate-driven ADSR. A rising edge of the gate restarts the
// attack; a falling edge starts the release.
type Gate struct {
	Params

	t    int64 // samples since the last rising edge
	end  int64 // release position relative to the rising edge
	open bool
	used bool
}

// NewGate returns a closed gate envelope.
func NewGate(p Params) *Gate {
	return &Gate{Params: p, end: math.MaxInt64}
}

// Next advances the envelope by one sample with the given gate state and
// returns the gain for that sample.
func (g *Gate) Next(gate bool) float64 {
	switch {
	case gate && !g.open:
		g.t = 0
		g.end = math.MaxInt64
		g.used = true
	case !gate && g.open:
		g.end = g.t
	}

	g.open = gate
	if !g.used {
		return 0
	}

	gain := g.Gain(g.end, g.t)
	if g.t < math.MaxInt64 {
		g.t++
	}

	return gain
}

// Process multiplies buf by the envelope, reading the gate state per
// sample from gate (gate[i] > 0.5 is open). A single-element gate slice is
// held for the whole block.
func (g *Gate) Process(buf, gate []float64) {
	for i := range buf {
		open := false
		switch len(gate) {
		case 0:
		case 1:
			open = gate[0] > 0.5
		default:
			open = gate[i] > 0.5
		}

		buf[i] *= g.Next(open)
	}
}

// Reset closes the gate and silences the envelope.
func (g *Gate) Reset() {
	g.t = 0
	g.end = math.MaxInt64
	g.open = false
	g.used = false
}
