package rack

import (
	"errors"
	"fmt"
	"maps"
)

// Reserved module names used by the synth engine: the voice mix is fed
// into InputModule and the block output is read from OutputModule.
const (
	InputModule  = "voices"
	OutputModule = "out"
)

var (
	// ErrUnknownModule is returned for connections naming a missing module.
	ErrUnknownModule = errors.New("rack: unknown module")
	// ErrUnknownPort is returned for connections naming a missing port.
	ErrUnknownPort = errors.New("rack: unknown port")
	// ErrUnknownKind is returned for unsupported module kinds.
	ErrUnknownKind = errors.New("rack: unknown module kind")
	// ErrDuplicateModule is returned when two modules share a name.
	ErrDuplicateModule = errors.New("rack: duplicate module")
	// ErrCycle is returned when the connections form a cycle.
	ErrCycle = errors.New("rack: connections contain a cycle")
	// ErrInvalidConfig is returned for non-positive rates or block sizes.
	ErrInvalidConfig = errors.New("rack: invalid config")
)

type moduleSpec struct {
	name   string
	kind   Kind
	params map[string]float64
}

type connSpec struct {
	from, fromPort string
	to, toPort     string
}

// Connection links an output port to an input port by module index.
type Connection struct {
	From, FromPort int
	To, ToPort     int
}

// Builder collects modules and connections by name. Nothing is validated
// until Build.
type Builder struct {
	modules []moduleSpec
	conns   []connSpec
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add declares a module. params sets initial input values by port name.
func (b *Builder) Add(name string, kind Kind, params map[string]float64) *Builder {
	b.modules = append(b.modules, moduleSpec{name: name, kind: kind, params: maps.Clone(params)})
	return b
}

// Connect routes output fromPort of module from into input toPort of
// module to. Empty port names mean "out" and "in".
func (b *Builder) Connect(from, fromPort, to, toPort string) *Builder {
	if fromPort == "" {
		fromPort = "out"
	}

	if toPort == "" {
		toPort = "in"
	}

	b.conns = append(b.conns, connSpec{from: from, fromPort: fromPort, to: to, toPort: toPort})

	return b
}

// Build resolves names, orders the modules and preallocates every buffer
// for blocks of up to maxBlock samples.
func (b *Builder) Build(sampleRate float64, maxBlock int) (*Rack, error) {
	if !(sampleRate > 0) || maxBlock < 1 {
		return nil, fmt.Errorf("%w: sample rate %g, block %d", ErrInvalidConfig, sampleRate, maxBlock)
	}

	byName := make(map[string]int, len(b.modules))
	for i, m := range b.modules {
		if !m.kind.valid() {
			return nil, fmt.Errorf("%w: module %q has kind %d", ErrUnknownKind, m.name, m.kind)
		}

		if _, dup := byName[m.name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateModule, m.name)
		}

		byName[m.name] = i

		for p := range m.params {
			if _, ok := m.kind.InputIndex(p); !ok {
				return nil, fmt.Errorf("%w: %s has no input %q", ErrUnknownPort, m.name, p)
			}
		}
	}

	conns := make([]Connection, 0, len(b.conns))
	for _, c := range b.conns {
		from, ok := byName[c.from]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownModule, c.from)
		}

		to, ok := byName[c.to]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownModule, c.to)
		}

		fromPort, ok := b.modules[from].kind.OutputIndex(c.fromPort)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no output %q", ErrUnknownPort, c.from, c.fromPort)
		}

		toPort, ok := b.modules[to].kind.InputIndex(c.toPort)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no input %q", ErrUnknownPort, c.to, c.toPort)
		}

		conns = append(conns, Connection{From: from, FromPort: fromPort, To: to, ToPort: toPort})
	}

	order, err := topoOrder(len(b.modules), conns)
	if err != nil {
		return nil, err
	}

	r := &Rack{
		modules:  make([]Module, len(b.modules)),
		conns:    conns,
		order:    order,
		outgoing: make([][]int, len(b.modules)),
		byName:   byName,
		maxBlock: maxBlock,
		block:    1,
	}

	for i, m := range b.modules {
		r.modules[i] = newModule(m.name, m.kind, m.params, sampleRate, maxBlock, &r.block, uint64(i)+1)
	}

	for ci, c := range conns {
		r.outgoing[c.From] = append(r.outgoing[c.From], ci)
	}

	return r, nil
}

// topoOrder sorts modules with Kahn's algorithm, always emitting the
// lowest-index ready module first.
func topoOrder(n int, conns []Connection) ([]int, error) {
	indegree := make([]int, n)
	for _, c := range conns {
		indegree[c.To]++
	}

	done := make([]bool, n)
	order := make([]int, 0, n)

	for len(order) < n {
		next := -1

		for i := range n {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}

		if next < 0 {
			return nil, ErrCycle
		}

		done[next] = true
		order = append(order, next)

		for _, c := range conns {
			if c.From == next {
				indegree[c.To]--
			}
		}
	}

	return order, nil
}
