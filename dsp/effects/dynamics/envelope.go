package dynamics

import (
	"fmt"

	"github.com/cwbudde/algo-compressor/dsp/core"
)

const (
	minAttackSeconds  = 0.0
	maxAttackSeconds  = 1.0
	minReleaseSeconds = 0.0
	maxReleaseSeconds = 5.0
)

// EnvelopeFollower smooths the raw gain multiplier with asymmetric time
// constants. The attack constant applies while the multiplier is falling
// (compression engaging) and the release constant while it is rising
// (compression letting go), so onsets are caught quickly and recovery
// stays free of pumping.
//
// Each constant is the time after which the remaining distance to a step
// target has shrunk to 1/e. A constant of zero makes that direction
// instantaneous.
type EnvelopeFollower struct {
	sampleRate float64
	attackSec  float64
	releaseSec float64

	current float64

	attackCoeff  float64
	releaseCoeff float64
}

// NewEnvelopeFollower creates a follower at rest, i.e. with a current
// multiplier of 1 (no gain reduction).
func NewEnvelopeFollower(sampleRate, attackSec, releaseSec float64) (*EnvelopeFollower, error) {
	e := &EnvelopeFollower{
		sampleRate: sampleRate,
		attackSec:  attackSec,
		releaseSec: releaseSec,
		current:    1.0,
	}

	err := e.recalculate()
	if err != nil {
		return nil, err
	}

	return e, nil
}

// SetSampleRate updates the sample rate and recalculates coefficients.
func (e *EnvelopeFollower) SetSampleRate(sampleRate float64) error {
	prev := e.sampleRate
	e.sampleRate = sampleRate

	err := e.recalculate()
	if err != nil {
		e.sampleRate = prev
		return err
	}

	return nil
}

// SetTimes updates the attack and release time constants in seconds.
func (e *EnvelopeFollower) SetTimes(attackSec, releaseSec float64) error {
	prevAttack, prevRelease := e.attackSec, e.releaseSec
	e.attackSec = attackSec
	e.releaseSec = releaseSec

	err := e.recalculate()
	if err != nil {
		e.attackSec = prevAttack
		e.releaseSec = prevRelease

		return err
	}

	return nil
}

// Attack returns the attack time constant in seconds.
func (e *EnvelopeFollower) Attack() float64 { return e.attackSec }

// Release returns the release time constant in seconds.
func (e *EnvelopeFollower) Release() float64 { return e.releaseSec }

// Process advances the envelope one sample toward target and returns the
// smoothed multiplier.
func (e *EnvelopeFollower) Process(target float64) float64 {
	coeff := e.releaseCoeff
	if target < e.current {
		coeff = e.attackCoeff
	}

	e.current += (target - e.current) * coeff
	if core.NearlyEqual(e.current, target, 1e-12) {
		e.current = target
	}

	return e.current
}

// Current returns the smoothed multiplier without advancing it.
func (e *EnvelopeFollower) Current() float64 { return e.current }

// Reset returns the follower to rest (multiplier 1).
func (e *EnvelopeFollower) Reset() {
	e.current = 1.0
}

func (e *EnvelopeFollower) recalculate() error {
	if e.sampleRate <= 0 || !core.IsFinite(e.sampleRate) {
		return fmt.Errorf("envelope sample rate must be positive and finite: %f", e.sampleRate)
	}

	if e.attackSec < minAttackSeconds || e.attackSec > maxAttackSeconds || !core.IsFinite(e.attackSec) {
		return fmt.Errorf("envelope attack must be in [%f, %f] seconds: %f", minAttackSeconds, maxAttackSeconds, e.attackSec)
	}

	if e.releaseSec < minReleaseSeconds || e.releaseSec > maxReleaseSeconds || !core.IsFinite(e.releaseSec) {
		return fmt.Errorf("envelope release must be in [%f, %f] seconds: %f", minReleaseSeconds, maxReleaseSeconds, e.releaseSec)
	}

	e.attackCoeff = onePoleCoeff(e.attackSec, e.sampleRate)
	e.releaseCoeff = onePoleCoeff(e.releaseSec, e.sampleRate)

	return nil
}

// onePoleCoeff returns the blend factor 1 - exp(-1/(t*sr)), clamped to 1
// for a non-positive time constant.
func onePoleCoeff(seconds, sampleRate float64) float64 {
	samples := seconds * sampleRate
	if samples <= 0 {
		return 1.0
	}

	return 1.0 - mathPower2(-log2E/samples)
}
