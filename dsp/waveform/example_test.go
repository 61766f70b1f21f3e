package waveform_test

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/waveform"
)

func ExampleWave_Sample() {
	tri := waveform.New(waveform.Triangle, 1.0/8, 1)

	for phase := range 9 {
		fmt.Printf("%.2f ", tri.Sample(float64(phase), 0, nil))
	}
	fmt.Println()
	// Output:
	// -1.00 -0.50 0.00 0.50 1.00 0.50 0.00 -0.50 -1.00
}
