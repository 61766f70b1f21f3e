package rack

// Rack is a built, immutable routing graph.
type Rack struct {
	modules  []Module
	conns    []Connection
	order    []int
	outgoing [][]int // connection indices per source module
	byName   map[string]int
	maxBlock int
	block    uint64
}

// Len returns the number of modules.
func (r *Rack) Len() int {
	return len(r.modules)
}

// MaxBlock returns the largest block RenderBlock accepts.
func (r *Rack) MaxBlock() int {
	return r.maxBlock
}

// Lookup returns the index of the named module.
func (r *Rack) Lookup(name string) (int, bool) {
	i, ok := r.byName[name]
	return i, ok
}

// Module returns the module at index i.
func (r *Rack) Module(i int) *Module {
	return &r.modules[i]
}

// Order returns the evaluation order as module indices.
func (r *Rack) Order() []int {
	return append([]int(nil), r.order...)
}

// Connections returns the resolved connections in declaration order.
func (r *Rack) Connections() []Connection {
	return append([]Connection(nil), r.conns...)
}

// Feed stores samples on an input of module idx for the next render.
func (r *Rack) Feed(idx, port int, samples []float64) {
	if idx < 0 || idx >= len(r.modules) {
		return
	}

	r.modules[idx].Feed(port, samples)
}

// Extract returns the first n samples of an output of module idx from the
// last render.
func (r *Rack) Extract(idx, port, n int) []float64 {
	if idx < 0 || idx >= len(r.modules) {
		return nil
	}

	return r.modules[idx].Extract(port, n)
}

// RenderBlock evaluates every module for n samples and returns the number
// rendered, which is n clamped to MaxBlock.
func (r *Rack) RenderBlock(n int) int {
	n = min(max(n, 0), r.maxBlock)
	if n == 0 {
		return 0
	}

	for _, i := range r.order {
		m := &r.modules[i]
		m.process(n)

		for _, ci := range r.outgoing[i] {
			c := r.conns[ci]
			r.modules[c.To].Feed(c.ToPort, m.out[c.FromPort][:n])
		}
	}

	r.block++

	return n
}

// Reset restores every input to its initial value and clears module state.
func (r *Rack) Reset() {
	for i := range r.modules {
		r.modules[i].reset()
	}

	r.block = 1
}
