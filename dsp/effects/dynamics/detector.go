package dynamics

import (
	"fmt"

	"github.com/cwbudde/algo-compressor/dsp/core"
)

const (
	defaultDetectorTimeMs = 100.0
	minDetectorTimeMs     = 1.0
	maxDetectorTimeMs     = 1000.0
)

// DetectorMode selects which level metric drives the gain computer.
type DetectorMode int

const (
	// DetectorModeRMS uses an exponential moving average of the squared
	// signal followed by a square root.
	DetectorModeRMS DetectorMode = iota
	// DetectorModePeak uses an envelope tracker that rises instantly to
	// the absolute sample value and decays exponentially.
	DetectorModePeak
)

// Detector produces a continuously updated level estimate from a sample
// stream. Both metrics are tracked on every sample regardless of the
// selected mode, so switching modes is glitch-free: the inactive tracker
// is always warm.
//
// State persists across blocks; Reset is only for transport restarts.
type Detector struct {
	sampleRate float64
	timeMs     float64

	meanSquare float64
	peak       float64

	rmsCoeff  float64 // one-pole coefficient toward the squared input
	peakDecay float64 // per-sample exponential decay of the peak tracker
}

// NewDetector creates a level detector with the given averaging window.
// A window of 100 ms matches the reference metering behavior.
func NewDetector(sampleRate, timeMs float64) (*Detector, error) {
	d := &Detector{sampleRate: sampleRate, timeMs: timeMs}

	err := d.recalculate()
	if err != nil {
		return nil, err
	}

	return d, nil
}

// SetSampleRate updates the sample rate and recalculates coefficients.
func (d *Detector) SetSampleRate(sampleRate float64) error {
	prev := d.sampleRate
	d.sampleRate = sampleRate

	err := d.recalculate()
	if err != nil {
		d.sampleRate = prev
		return err
	}

	return nil
}

// SetTime updates the averaging window in milliseconds.
func (d *Detector) SetTime(ms float64) error {
	prev := d.timeMs
	d.timeMs = ms

	err := d.recalculate()
	if err != nil {
		d.timeMs = prev
		return err
	}

	return nil
}

// SampleRate returns the configured sample rate in Hz.
func (d *Detector) SampleRate() float64 { return d.sampleRate }

// Time returns the averaging window in milliseconds.
func (d *Detector) Time() float64 { return d.timeMs }

// Process advances both trackers by one sample.
func (d *Detector) Process(x float64) {
	ax := x
	if ax < 0 {
		ax = -ax
	}

	// Peak: instant rise, exponential decay.
	decayed := d.peak * d.peakDecay
	if ax > decayed {
		d.peak = ax
	} else {
		d.peak = core.FlushDenormals(decayed)
	}

	// RMS: one-pole low-pass on the squared signal.
	d.meanSquare = core.FlushDenormals(d.meanSquare + (x*x-d.meanSquare)*d.rmsCoeff)
}

// Level returns the current estimate for the given mode.
func (d *Detector) Level(mode DetectorMode) float64 {
	if mode == DetectorModePeak {
		return d.peak
	}

	return d.RMS()
}

// RMS returns the current RMS estimate.
func (d *Detector) RMS() float64 {
	if d.meanSquare <= 0 {
		return 0
	}

	return mathSqrt(d.meanSquare)
}

// Peak returns the current peak estimate.
func (d *Detector) Peak() float64 {
	return d.peak
}

// Reset clears both trackers.
func (d *Detector) Reset() {
	d.meanSquare = 0
	d.peak = 0
}

func (d *Detector) recalculate() error {
	if d.sampleRate <= 0 || !core.IsFinite(d.sampleRate) {
		return fmt.Errorf("detector sample rate must be positive and finite: %f", d.sampleRate)
	}

	if d.timeMs < minDetectorTimeMs || d.timeMs > maxDetectorTimeMs || !core.IsFinite(d.timeMs) {
		return fmt.Errorf("detector time must be in [%f, %f]: %f", minDetectorTimeMs, maxDetectorTimeMs, d.timeMs)
	}

	samples := d.timeMs * 0.001 * d.sampleRate
	d.peakDecay = mathPower2(-log2E / samples)
	d.rmsCoeff = 1.0 - d.peakDecay

	return nil
}

// log2E converts the one-pole relation exp(-1/n) into the power-of-two
// form 2^(-log2E/n) served by the shared math backend.
const log2E = 1.4426950408889634
