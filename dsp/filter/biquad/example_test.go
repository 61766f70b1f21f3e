package biquad_test

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/filter/biquad"
)

func ExampleSection_ProcessSample() {
	s := biquad.NewSection(biquad.Coefficients{
		B0: 0.25, B1: 0.5, B2: 0.25,
		A1: -0.2, A2: 0.04,
	})

	for i := range 6 {
		var x float64
		if i == 0 {
			x = 1
		}

		y := s.ProcessSample(x)
		fmt.Printf("y[%d] = %.6f\n", i, y)
	}
	// Output:
	// y[0] = 0.250000
	// y[1] = 0.550000
	// y[2] = 0.350000
	// y[3] = 0.048000
	// y[4] = -0.004400
	// y[5] = -0.002800
}

func ExampleChain_Load() {
	var c biquad.Chain
	c.Init(2)
	fmt.Println(c.Bypassed(), c.ProcessSample(0.5))

	c.Load([]biquad.Coefficients{{B0: 0.5}, {B0: 0.5}})
	fmt.Println(c.Bypassed(), c.ProcessSample(1))
	// Output:
	// true 0.5
	// false 0.25
}
