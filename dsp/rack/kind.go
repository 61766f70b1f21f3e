package rack

import "fmt"

// Kind selects a module implementation.
type Kind uint8

const (
	// KindPassthrough copies in to out.
	KindPassthrough Kind = iota
	// KindConstant outputs its value input.
	KindConstant
	// KindAttenuverter outputs in·gain + offset.
	KindAttenuverter
	// KindMixer outputs level·(in1+in2+in3+in4).
	KindMixer
	// KindVCA outputs in·cv.
	KindVCA
	// KindOscillator outputs a waveform. pitch is in octaves relative to
	// A440, fm is added to the phase in radians, wave is the waveform
	// selector (0 sine, 1 square, 2 sawtooth, 3 triangle, 4 noise).
	KindOscillator
	// KindEnvelope multiplies in by an ADSR driven by gate (> 0.5 is
	// open). attack, decay and release are in seconds.
	KindEnvelope

	numKinds
)

type portSpec struct {
	name string
	def  float64
}

type kindSpec struct {
	name    string
	inputs  []portSpec
	outputs []string
}

var kinds = [numKinds]kindSpec{
	KindPassthrough: {
		name:    "passthrough",
		inputs:  []portSpec{{"in", 0}},
		outputs: []string{"out"},
	},
	KindConstant: {
		name:    "constant",
		inputs:  []portSpec{{"value", 0}},
		outputs: []string{"out"},
	},
	KindAttenuverter: {
		name:    "attenuverter",
		inputs:  []portSpec{{"in", 0}, {"gain", 1}, {"offset", 0}},
		outputs: []string{"out"},
	},
	KindMixer: {
		name:    "mixer",
		inputs:  []portSpec{{"in1", 0}, {"in2", 0}, {"in3", 0}, {"in4", 0}, {"level", 1}},
		outputs: []string{"out"},
	},
	KindVCA: {
		name:    "vca",
		inputs:  []portSpec{{"in", 0}, {"cv", 1}},
		outputs: []string{"out"},
	},
	KindOscillator: {
		name:    "oscillator",
		inputs:  []portSpec{{"pitch", 0}, {"fm", 0}, {"wave", 0}},
		outputs: []string{"out"},
	},
	KindEnvelope: {
		name: "envelope",
		inputs: []portSpec{
			{"attack", 0.01}, {"decay", 0.1}, {"sustain", 1}, {"release", 0.1},
			{"gate", 0}, {"in", 1},
		},
		outputs: []string{"out"},
	},
}

func (k Kind) valid() bool {
	return k < numKinds
}

// String returns the kind name used in JSON specs.
func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", k)
	}

	return kinds[k].name
}

// ParseKind returns the kind with the given JSON name.
func ParseKind(name string) (Kind, error) {
	for k := range numKinds {
		if kinds[k].name == name {
			return k, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// InputIndex returns the index of the named input port of k.
func (k Kind) InputIndex(name string) (int, bool) {
	if !k.valid() {
		return 0, false
	}

	for i, p := range kinds[k].inputs {
		if p.name == name {
			return i, true
		}
	}

	return 0, false
}

// OutputIndex returns the index of the named output port of k.
func (k Kind) OutputIndex(name string) (int, bool) {
	if !k.valid() {
		return 0, false
	}

	for i, p := range kinds[k].outputs {
		if p == name {
			return i, true
		}
	}

	return 0, false
}

// Inputs returns the input port names of k.
func (k Kind) Inputs() []string {
	if !k.valid() {
		return nil
	}

	names := make([]string, len(kinds[k].inputs))
	for i, p := range kinds[k].inputs {
		names[i] = p.name
	}

	return names
}
