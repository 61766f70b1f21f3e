package biquad

// Chain is an ordered cascade of biquad sections processed in series.
// The output of each section feeds the next. An empty chain passes its
// input through unchanged.
type Chain struct {
	sections []Section
}

// NewChain creates a cascade from zero or more coefficient sets.
// Each Coefficients value becomes one Section in the cascade.
func NewChain(coeffs []Coefficients) *Chain {
	c := &Chain{}
	c.Load(coeffs)

	return c
}

// Init prepares a zero-value chain with room for capacity sections, so
// that Load does not allocate. The chain starts bypassed.
func (c *Chain) Init(capacity int) {
	c.sections = make([]Section, 0, max(capacity, 0))
}

// Load replaces the cascade with coeffs and clears all state.
// It reuses the existing section storage when it is large enough.
func (c *Chain) Load(coeffs []Coefficients) {
	if cap(c.sections) < len(coeffs) {
		c.sections = make([]Section, len(coeffs))
	}

	c.sections = c.sections[:len(coeffs)]
	for i := range coeffs {
		c.sections[i] = Section{Coefficients: coeffs[i]}
	}
}

// Bypass removes every section, turning the chain into the identity.
func (c *Chain) Bypass() {
	c.sections = c.sections[:0]
}

// Bypassed reports whether the chain has no sections.
func (c *Chain) Bypassed() bool {
	return len(c.sections) == 0
}

// ProcessSample cascades input through all sections in order.
func (c *Chain) ProcessSample(x float64) float64 {
	for i := range c.sections {
		x = c.sections[i].ProcessSample(x)
	}

	return x
}

// ProcessBlock filters a block in-place through the full cascade.
func (c *Chain) ProcessBlock(buf []float64) {
	for i := range c.sections {
		c.sections[i].ProcessBlock(buf)
	}
}

// Reset clears all section states.
func (c *Chain) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}

// NumSections returns the number of biquad sections.
func (c *Chain) NumSections() int {
	return len(c.sections)
}

// Section returns a pointer to the i-th section for inspection or modification.
func (c *Chain) Section(i int) *Section {
	return &c.sections[i]
}

// Coefficients appends the coefficients of every section to dst.
func (c *Chain) Coefficients(dst []Coefficients) []Coefficients {
	for i := range c.sections {
		dst = append(dst, c.sections[i].Coefficients)
	}

	return dst
}

// DCGain returns the product of the section DC gains.
func (c *Chain) DCGain() float64 {
	g := 1.0
	for i := range c.sections {
		g *= c.sections[i].DCGain()
	}

	return g
}
