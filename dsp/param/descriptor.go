package param

import (
	"fmt"
	"math"
)

// SmoothingStyle selects how a parameter value ramps toward its target.
type SmoothingStyle int

const (
	// SmoothingNone applies target values immediately (discrete controls).
	SmoothingNone SmoothingStyle = iota
	// SmoothingLinear interpolates additively over the smoothing window.
	SmoothingLinear
	// SmoothingLogarithmic interpolates multiplicatively over the window.
	// Suited to values stored as linear gain, where equal ratios sound
	// like equal steps.
	SmoothingLogarithmic
)

// Descriptor describes one host-visible control: identity, range, default,
// and smoothing policy. Host layers consume the descriptor table to
// register automation and persist state; the DSP core itself never
// serializes anything.
type Descriptor struct {
	ID          string
	Name        string
	Unit        string
	Min         float64
	Max         float64
	Default     float64
	Steps       int // 0 for continuous controls, choice count for discrete
	Smoothing   SmoothingStyle
	SmoothingMs float64
	Format      func(float64) string
}

// Validate reports structural problems in the descriptor.
func (d Descriptor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("descriptor needs an ID")
	}
	if !isFiniteValue(d.Min) || !isFiniteValue(d.Max) || !isFiniteValue(d.Default) {
		return fmt.Errorf("descriptor %s has non-finite range or default", d.ID)
	}
	if d.Min > d.Max {
		return fmt.Errorf("descriptor %s has min %f > max %f", d.ID, d.Min, d.Max)
	}
	if d.Default < d.Min || d.Default > d.Max {
		return fmt.Errorf("descriptor %s default %f outside [%f, %f]", d.ID, d.Default, d.Min, d.Max)
	}
	if d.SmoothingMs < 0 {
		return fmt.Errorf("descriptor %s has negative smoothing window: %f", d.ID, d.SmoothingMs)
	}

	return nil
}

// Clamp limits v to the descriptor's declared range.
func (d Descriptor) Clamp(v float64) float64 {
	if v < d.Min {
		return d.Min
	}
	if v > d.Max {
		return d.Max
	}

	return v
}

// NewSmoother builds a smoother configured with the descriptor's policy,
// resting at the default value.
func (d Descriptor) NewSmoother() *Smoother {
	s := NewSmoother(d.Smoothing, d.SmoothingMs)
	s.Reset(d.Default)
	return s
}

func isFiniteValue(v float64) bool {
	return !(math.IsNaN(v) || math.IsInf(v, 0))
}
