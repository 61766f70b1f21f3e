package design_test

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/filter/biquad"
	"github.com/cwbudde/algo-synth/dsp/filter/design"
)

func ExampleButterworthLP() {
	coeffs, err := design.ButterworthLP(1000, 4, 48000)
	if err != nil {
		panic(err)
	}

	chain := biquad.NewChain(coeffs)

	fmt.Printf("sections=%d\n", chain.NumSections())
	fmt.Printf("DC gain:  %.6f\n", chain.DCGain())
	fmt.Printf("1000 Hz:  %.2f dB\n", chain.MagnitudeDB(1000, 48000))
	fmt.Printf("10000 Hz: %.2f dB\n", chain.MagnitudeDB(10000, 48000))
	// Output:
	// sections=2
	// DC gain:  1.000000
	// 1000 Hz:  -3.01 dB
	// 10000 Hz: -85.48 dB
}
