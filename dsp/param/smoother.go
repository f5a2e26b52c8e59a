package param

import "math"

// minLogValue floors logarithmic smoothing away from zero, where a
// multiplicative ramp cannot move.
const minLogValue = 1e-6

// Smoother ramps a parameter value toward its target once per sample.
// After SetTarget, Next advances monotonically and lands exactly on the
// target when the smoothing window has elapsed. A Smoother is owned by
// the audio thread; it is not safe for concurrent use.
type Smoother struct {
	style      SmoothingStyle
	durationMs float64
	sampleRate float64

	current   float64
	target    float64
	stepsLeft int
	step      float64 // additive increment for linear smoothing
	factor    float64 // multiplicative increment for logarithmic smoothing
}

// NewSmoother returns a Smoother with the given style and window length.
// Call SetSampleRate before use; until then targets apply immediately.
func NewSmoother(style SmoothingStyle, durationMs float64) *Smoother {
	if durationMs < 0 {
		durationMs = 0
	}

	return &Smoother{style: style, durationMs: durationMs}
}

// SetSampleRate sets the sample rate used to size the smoothing window.
// Any ramp in progress restarts from the current value.
func (s *Smoother) SetSampleRate(rate float64) {
	if rate <= 0 {
		return
	}

	s.sampleRate = rate
	if s.stepsLeft > 0 {
		s.beginRamp(s.target)
	}
}

// Reset jumps current and target to v, cancelling any ramp.
func (s *Smoother) Reset(v float64) {
	s.current = v
	s.target = v
	s.stepsLeft = 0
}

// SetTarget starts a ramp toward v. Setting the current target again is a
// no-op; an unreachable window (no smoothing, zero duration, unknown
// sample rate) applies v immediately.
func (s *Smoother) SetTarget(v float64) {
	if v == s.target {
		return
	}

	s.beginRamp(v)
}

func (s *Smoother) beginRamp(v float64) {
	s.target = v

	if s.style == SmoothingNone || s.durationMs <= 0 || s.sampleRate <= 0 {
		s.current = v
		s.stepsLeft = 0
		return
	}

	steps := int(math.Round(s.durationMs * 0.001 * s.sampleRate))
	if steps < 1 {
		s.current = v
		s.stepsLeft = 0
		return
	}

	s.stepsLeft = steps

	switch s.style {
	case SmoothingLinear:
		s.step = (v - s.current) / float64(steps)
	case SmoothingLogarithmic:
		from := math.Max(s.current, minLogValue)
		to := math.Max(v, minLogValue)
		s.current = from
		s.factor = math.Pow(to/from, 1/float64(steps))
	case SmoothingNone:
		// Handled above.
	}
}

// Next advances the ramp by one sample and returns the new value.
func (s *Smoother) Next() float64 {
	if s.stepsLeft == 0 {
		return s.current
	}

	s.stepsLeft--
	if s.stepsLeft == 0 {
		s.current = s.target
		return s.current
	}

	switch s.style {
	case SmoothingLinear:
		s.current += s.step
	case SmoothingLogarithmic:
		s.current *= s.factor
	case SmoothingNone:
		s.current = s.target
	}

	return s.current
}

// Current returns the value without advancing the ramp.
func (s *Smoother) Current() float64 {
	return s.current
}

// Target returns the value the smoother is ramping toward.
func (s *Smoother) Target() float64 {
	return s.target
}

// Smoothing reports whether a ramp is still in progress.
func (s *Smoother) Smoothing() bool {
	return s.stepsLeft > 0
}
