package rack

import "github.com/cwbudde/algo-vecmath"

// input is one module input. It holds either a scalar (n == 1) or a
// sequence of n samples, and remembers the block in which it was last fed
// so that several feeds within one block are summed.
type input struct {
	buf   []float64 // capacity maxBlock
	n     int
	stamp uint64
}

func newInput(def float64, maxBlock int) input {
	in := input{buf: make([]float64, maxBlock), n: 1}
	in.buf[0] = def

	return in
}

func (p *input) set(v float64) {
	p.buf[0] = v
	p.n = 1
}

// feed stores or accumulates samples. Feeds longer than the buffer are
// truncated; an empty feed is ignored.
func (p *input) feed(samples []float64, block uint64) {
	m := min(len(samples), len(p.buf))
	if m == 0 {
		return
	}

	if p.stamp != block {
		p.stamp = block
		p.n = m
		copy(p.buf, samples[:m])

		return
	}

	switch {
	case m == 1 && p.n == 1:
		p.buf[0] += samples[0]
	case m == 1:
		s := samples[0]
		for i := range p.n {
			p.buf[i] += s
		}
	default:
		if p.n < m {
			p.extend(m)
		}

		vecmath.AddBlockInPlace(p.buf[:m], samples[:m])
	}
}

// extend widens the held value to n samples by repeating the last one.
func (p *input) extend(n int) {
	last := p.buf[p.n-1]
	for i := p.n; i < n; i++ {
		p.buf[i] = last
	}

	p.n = n
}

// view returns the input as exactly n samples without changing its
// scalar or sequence nature.
func (p *input) view(n int) []float64 {
	if p.n < n {
		last := p.buf[p.n-1]
		for i := p.n; i < n; i++ {
			p.buf[i] = last
		}
	}

	return p.buf[:n]
}

// first returns the value at the start of the block.
func (p *input) first() float64 {
	return p.buf[0]
}
