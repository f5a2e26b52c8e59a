package dynamics

import (
	"fmt"

	"github.com/cwbudde/algo-compressor/dsp/core"
	"github.com/cwbudde/algo-compressor/dsp/param"
)

// Parameter identifiers, stable across releases. Hosts persist these.
const (
	ParamLevelDetection = "lvldetection"
	ParamThreshold      = "threshold"
	ParamRatio          = "ratio"
	ParamAttack         = "attack"
	ParamRelease        = "release"
	ParamKnee           = "knee"
	ParamInputGain      = "ingain"
	ParamOutputGain     = "outgain"
	ParamDryWet         = "drywet"
)

const (
	minThresholdDB     = -100.0
	maxThresholdDB     = 5.0
	defaultThresholdDB = -10.0

	minRatio     = 1.0
	maxRatio     = 100.0
	defaultRatio = 4.0

	defaultAttackSeconds  = 0.001
	defaultReleaseSeconds = 0.05

	minKneeDB     = 0.0
	maxKneeDB     = 20.0
	defaultKneeDB = 5.0

	minGainDB = -30.0
	maxGainDB = 30.0

	minDryWet     = 0.0
	maxDryWet     = 1.0
	defaultDryWet = 1.0

	gainSmoothingMs  = 50.0
	levelSmoothingMs = 10.0
)

// Params is the control-side view of a compressor. Setters validate their
// inputs and publish the new target through lock-free cells; the audio
// thread picks targets up at sub-block boundaries without locking.
//
// Gains are stored as linear multipliers so the audio thread can smooth
// them logarithmically and apply them without any dB conversion.
type Params struct {
	detection param.Choice

	threshold  param.Value // dB
	ratio      param.Value
	attack     param.Value // seconds
	release    param.Value // seconds
	knee       param.Value // dB, full width
	inputGain  param.Value // linear
	outputGain param.Value // linear
	dryWet     param.Value
}

// NewParams returns a parameter set at the defaults.
func NewParams() *Params {
	p := &Params{}
	p.detection.Store(int(DetectorModeRMS))
	p.threshold.Store(defaultThresholdDB)
	p.ratio.Store(defaultRatio)
	p.attack.Store(defaultAttackSeconds)
	p.release.Store(defaultReleaseSeconds)
	p.knee.Store(defaultKneeDB)
	p.inputGain.Store(1.0)
	p.outputGain.Store(1.0)
	p.dryWet.Store(defaultDryWet)

	return p
}

// SetLevelDetection selects the detector mode.
func (p *Params) SetLevelDetection(mode DetectorMode) error {
	if mode != DetectorModeRMS && mode != DetectorModePeak {
		return fmt.Errorf("unknown level detection mode: %d", mode)
	}

	p.detection.Store(int(mode))

	return nil
}

// LevelDetection returns the selected detector mode.
func (p *Params) LevelDetection() DetectorMode {
	return DetectorMode(p.detection.Load())
}

// SetThreshold sets the compression threshold in dB.
func (p *Params) SetThreshold(db float64) error {
	if db < minThresholdDB || db > maxThresholdDB || !core.IsFinite(db) {
		return fmt.Errorf("threshold must be in [%f, %f] dB: %f", minThresholdDB, maxThresholdDB, db)
	}

	p.threshold.Store(db)

	return nil
}

// Threshold returns the compression threshold in dB.
func (p *Params) Threshold() float64 { return p.threshold.Load() }

// SetRatio sets the compression ratio (input dB per output dB above the
// threshold). 1 means no compression.
func (p *Params) SetRatio(ratio float64) error {
	if ratio < minRatio || ratio > maxRatio || !core.IsFinite(ratio) {
		return fmt.Errorf("ratio must be in [%f, %f]: %f", minRatio, maxRatio, ratio)
	}

	p.ratio.Store(ratio)

	return nil
}

// Ratio returns the compression ratio.
func (p *Params) Ratio() float64 { return p.ratio.Load() }

// SetAttack sets the attack time constant in seconds.
func (p *Params) SetAttack(seconds float64) error {
	if seconds < minAttackSeconds || seconds > maxAttackSeconds || !core.IsFinite(seconds) {
		return fmt.Errorf("attack must be in [%f, %f] seconds: %f", minAttackSeconds, maxAttackSeconds, seconds)
	}

	p.attack.Store(seconds)

	return nil
}

// Attack returns the attack time constant in seconds.
func (p *Params) Attack() float64 { return p.attack.Load() }

// SetRelease sets the release time constant in seconds.
func (p *Params) SetRelease(seconds float64) error {
	if seconds < minReleaseSeconds || seconds > maxReleaseSeconds || !core.IsFinite(seconds) {
		return fmt.Errorf("release must be in [%f, %f] seconds: %f", minReleaseSeconds, maxReleaseSeconds, seconds)
	}

	p.release.Store(seconds)

	return nil
}

// Release returns the release time constant in seconds.
func (p *Params) Release() float64 { return p.release.Load() }

// SetKnee sets the full knee width in dB. Zero selects a hard knee.
func (p *Params) SetKnee(db float64) error {
	if db < minKneeDB || db > maxKneeDB || !core.IsFinite(db) {
		return fmt.Errorf("knee must be in [%f, %f] dB: %f", minKneeDB, maxKneeDB, db)
	}

	p.knee.Store(db)

	return nil
}

// Knee returns the full knee width in dB.
func (p *Params) Knee() float64 { return p.knee.Load() }

// SetInputGain sets the pre-compression gain in dB.
func (p *Params) SetInputGain(db float64) error {
	if db < minGainDB || db > maxGainDB || !core.IsFinite(db) {
		return fmt.Errorf("input gain must be in [%f, %f] dB: %f", minGainDB, maxGainDB, db)
	}

	p.inputGain.Store(core.DBToLinear(db))

	return nil
}

// InputGain returns the pre-compression gain in dB.
func (p *Params) InputGain() float64 { return core.LinearToDB(p.inputGain.Load()) }

// SetOutputGain sets the post-blend makeup gain in dB.
func (p *Params) SetOutputGain(db float64) error {
	if db < minGainDB || db > maxGainDB || !core.IsFinite(db) {
		return fmt.Errorf("output gain must be in [%f, %f] dB: %f", minGainDB, maxGainDB, db)
	}

	p.outputGain.Store(core.DBToLinear(db))

	return nil
}

// OutputGain returns the post-blend makeup gain in dB.
func (p *Params) OutputGain() float64 { return core.LinearToDB(p.outputGain.Load()) }

// SetDryWet sets the dry/wet blend. 0 is fully dry, 1 fully wet.
func (p *Params) SetDryWet(mix float64) error {
	if mix < minDryWet || mix > maxDryWet || !core.IsFinite(mix) {
		return fmt.Errorf("dry/wet must be in [%f, %f]: %f", minDryWet, maxDryWet, mix)
	}

	p.dryWet.Store(mix)

	return nil
}

// DryWet returns the dry/wet blend.
func (p *Params) DryWet() float64 { return p.dryWet.Load() }

// Descriptors returns the host-facing description of every parameter, in
// display order. Gain descriptors use linear ranges so their logarithmic
// smoothing and formatting operate on the stored representation.
func Descriptors() []param.Descriptor {
	return []param.Descriptor{
		{
			ID:      ParamLevelDetection,
			Name:    "Level Detection",
			Min:     0,
			Max:     1,
			Default: float64(DetectorModeRMS),
			Steps:   2,
			Format:  param.FormatChoice("RMS", "Peak"),
		},
		{
			ID:          ParamThreshold,
			Name:        "Threshold",
			Unit:        "dB",
			Min:         minThresholdDB,
			Max:         maxThresholdDB,
			Default:     defaultThresholdDB,
			Smoothing:   param.SmoothingLinear,
			SmoothingMs: levelSmoothingMs,
			Format:      param.FormatDB(1),
		},
		{
			ID:          ParamRatio,
			Name:        "Ratio",
			Min:         minRatio,
			Max:         maxRatio,
			Default:     defaultRatio,
			Smoothing:   param.SmoothingLinear,
			SmoothingMs: levelSmoothingMs,
			Format:      param.FormatRatio(1),
		},
		{
			ID:      ParamAttack,
			Name:    "Attack",
			Unit:    "s",
			Min:     minAttackSeconds,
			Max:     maxAttackSeconds,
			Default: defaultAttackSeconds,
			Format:  param.FormatSeconds(),
		},
		{
			ID:      ParamRelease,
			Name:    "Release",
			Unit:    "s",
			Min:     minReleaseSeconds,
			Max:     maxReleaseSeconds,
			Default: defaultReleaseSeconds,
			Format:  param.FormatSeconds(),
		},
		{
			ID:          ParamKnee,
			Name:        "Knee",
			Unit:        "dB",
			Min:         minKneeDB,
			Max:         maxKneeDB,
			Default:     defaultKneeDB,
			Smoothing:   param.SmoothingLinear,
			SmoothingMs: levelSmoothingMs,
			Format:      param.FormatDB(1),
		},
		{
			ID:          ParamInputGain,
			Name:        "Input Gain",
			Unit:        "dB",
			Min:         core.DBToLinear(minGainDB),
			Max:         core.DBToLinear(maxGainDB),
			Default:     1.0,
			Smoothing:   param.SmoothingLogarithmic,
			SmoothingMs: gainSmoothingMs,
			Format:      param.FormatGainDB(1),
		},
		{
			ID:          ParamOutputGain,
			Name:        "Output Gain",
			Unit:        "dB",
			Min:         core.DBToLinear(minGainDB),
			Max:         core.DBToLinear(maxGainDB),
			Default:     1.0,
			Smoothing:   param.SmoothingLogarithmic,
			SmoothingMs: gainSmoothingMs,
			Format:      param.FormatGainDB(1),
		},
		{
			ID:          ParamDryWet,
			Name:        "Dry/Wet",
			Min:         minDryWet,
			Max:         maxDryWet,
			Default:     defaultDryWet,
			Smoothing:   param.SmoothingLinear,
			SmoothingMs: levelSmoothingMs,
			Format:      param.FormatPercent(0),
		},
	}
}
