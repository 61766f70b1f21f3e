package rack

import (
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/envelope"
	"github.com/cwbudde/algo-synth/dsp/waveform"
)

// Module is one node of a rack.
type Module struct {
	name string
	kind Kind
	in   []input
	out  [][]float64
	defs []float64 // input values restored by Reset

	sampleRate float64
	outLen     int
	clock      *uint64 // owning rack's block counter

	// oscillator
	phase float64
	noise *rand.Rand

	// envelope
	gate *envelope.Gate
}

func newModule(name string, kind Kind, params map[string]float64, sampleRate float64, maxBlock int, clock *uint64, seed uint64) Module {
	spec := kinds[kind]

	m := Module{
		name:       name,
		kind:       kind,
		in:         make([]input, len(spec.inputs)),
		out:        make([][]float64, len(spec.outputs)),
		defs:       make([]float64, len(spec.inputs)),
		sampleRate: sampleRate,
		clock:      clock,
	}

	for i, p := range spec.inputs {
		def := p.def
		if v, ok := params[p.name]; ok && core.Finite(v) {
			def = v
		}

		m.defs[i] = def
		m.in[i] = newInput(def, maxBlock)
	}

	for i := range m.out {
		m.out[i] = make([]float64, maxBlock)
	}

	switch kind {
	case KindOscillator:
		m.noise = waveform.NewNoise(seed)
	case KindEnvelope:
		m.gate = envelope.NewGate(envelope.Params{})
	}

	return m
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Kind returns the module kind.
func (m *Module) Kind() Kind { return m.kind }

// Feed stores samples on input port. A single sample is held as a scalar.
// Feeds within the same block add up. Unknown ports are ignored.
func (m *Module) Feed(port int, samples []float64) {
	if port < 0 || port >= len(m.in) {
		return
	}

	m.in[port].feed(samples, *m.clock)
}

// Extract returns the first n samples of output port from the last render.
func (m *Module) Extract(port, n int) []float64 {
	if port < 0 || port >= len(m.out) {
		return nil
	}

	return m.out[port][:min(n, m.outLen)]
}

func (m *Module) reset() {
	for i := range m.in {
		m.in[i].set(m.defs[i])
		m.in[i].stamp = 0
	}

	for i := range m.out {
		core.Zero(m.out[i])
	}

	m.outLen = 0
	m.phase = 0

	if m.gate != nil {
		m.gate.Reset()
	}
}

func (m *Module) process(n int) {
	out := m.out[0][:n]
	m.outLen = n

	switch m.kind {
	case KindPassthrough:
		copy(out, m.in[0].view(n))
	case KindConstant:
		copy(out, m.in[0].view(n))
	case KindAttenuverter:
		vecmath.MulBlock(out, m.in[0].view(n), m.in[1].view(n))
		vecmath.AddBlockInPlace(out, m.in[2].view(n))
	case KindMixer:
		copy(out, m.in[0].view(n))

		for i := 1; i < 4; i++ {
			vecmath.AddBlockInPlace(out, m.in[i].view(n))
		}

		vecmath.MulBlockInPlace(out, m.in[4].view(n))
	case KindVCA:
		vecmath.MulBlock(out, m.in[0].view(n), m.in[1].view(n))
	case KindOscillator:
		m.oscillate(out)
	case KindEnvelope:
		m.envelope(out)
	}
}

func (m *Module) oscillate(out []float64) {
	n := len(out)
	pitch := m.in[0].view(n)
	fm := m.in[1].view(n)
	w := waveform.New(waveform.FromSelector(float32(m.in[2].first())), 1, 1)

	for i := range out {
		out[i] = w.Sample(m.phase, fm[i], m.noise)
		m.phase = core.FloorMod(m.phase + math.Exp2(pitch[i])*440/m.sampleRate)
	}
}

func (m *Module) envelope(out []float64) {
	n := len(out)
	m.gate.Params = envelope.FromSeconds(
		m.in[0].first(), m.in[1].first(), m.in[2].first(), m.in[3].first(), m.sampleRate,
	)

	copy(out, m.in[5].view(n))
	m.gate.Process(out, m.in[4].view(n))
}
