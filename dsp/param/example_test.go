package param_test

import (
	"fmt"

	"github.com/cwbudde/algo-compressor/dsp/param"
)

func ExampleSmoother() {
	s := param.NewSmoother(param.SmoothingLinear, 10) // 10 ms window
	s.SetSampleRate(1000)
	s.Reset(0)
	s.SetTarget(1)

	for i := 0; i < 10; i++ {
		s.Next()
	}

	fmt.Printf("after window: %.2f smoothing=%v\n", s.Current(), s.Smoothing())

	// Output:
	// after window: 1.00 smoothing=false
}

func ExampleDescriptor() {
	d := param.Descriptor{
		ID:          "drywet",
		Name:        "Dry/Wet",
		Min:         0,
		Max:         1,
		Default:     1,
		Smoothing:   param.SmoothingLinear,
		SmoothingMs: 10,
		Format:      param.FormatPercent(0),
	}

	fmt.Println(d.Format(d.Clamp(1.5)))

	// Output:
	// 100%
}
