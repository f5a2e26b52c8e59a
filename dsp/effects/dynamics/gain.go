package dynamics

import "github.com/cwbudde/algo-compressor/dsp/core"

// log2Of10Div20 converts decibels to a base-2 exponent: dB * log2(10)/20.
const log2Of10Div20 = 0.166096404744368117393515971474

// GainReduction maps a detected level to the linear gain multiplier of a
// soft-knee downward compressor. The computation runs in the log2 domain
// so only one logarithm and one exponential are needed per call.
//
// Below the knee the multiplier is exactly 1. Above the knee it follows
// the slope -(1 - 1/ratio) per decibel of overshoot. Inside the knee a
// quadratic interpolation joins the two regions with a continuous value
// and first derivative. A ratio of 1 yields exactly 1 for any level.
//
// level is a linear amplitude and is floored at core.MinLevel, so a
// silent input never produces a non-finite result. thresholdDB and
// kneeDB are in decibels, kneeDB being the full knee width centered on
// the threshold. ratio must be >= 1 and kneeDB >= 0; range enforcement
// belongs to the parameter layer.
func GainReduction(level, thresholdDB, ratio, kneeDB float64) float64 {
	if level < core.MinLevel {
		level = core.MinLevel
	}

	slope := 1.0 - 1.0/ratio
	if slope <= 0 {
		return 1.0
	}

	diff := mathLog2(level) - thresholdDB*log2Of10Div20
	half := kneeDB * log2Of10Div20 * 0.5

	var gainLog2 float64

	switch {
	case diff <= -half:
		return 1.0
	case diff >= half:
		gainLog2 = -slope * diff
	default:
		t := diff + half
		gainLog2 = -slope * t * t / (4.0 * half)
	}

	return mathPower2(gainLog2)
}
