package dynamics

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-compressor/dsp/buffer"
	"github.com/cwbudde/algo-compressor/dsp/core"
	"github.com/cwbudde/algo-compressor/dsp/param"
	"github.com/cwbudde/algo-vecmath"
)

// Structural misuse of Process. Wrapped with context; match with
// errors.Is.
var (
	ErrNilBlock        = errors.New("nil block")
	ErrChannelMismatch = errors.New("channel count mismatch")
	ErrFrameMismatch   = errors.New("frame count mismatch")
)

// MaxBlockSize is the sub-block length the signal path splits host
// blocks into. Parameter targets are re-read at each sub-block boundary,
// bounding the automation latency regardless of host block size, while
// the scratch buffers stay small enough to live in the struct.
const MaxBlockSize = 64

// Compressor is the complete feed-forward signal path: input gain,
// per-channel level detection, soft-knee gain computation, asymmetric
// envelope smoothing, dry/wet blend, and output gain.
//
// Process is single-threaded and allocation-free. Parameter changes
// arrive through Params from any control thread; continuous parameters
// ramp per-sample via their smoothing policy, discrete and time-constant
// parameters apply at sub-block boundaries.
type Compressor struct {
	cfg    core.ProcessorConfig
	params *Params
	meters *Meters

	detectors []*Detector
	envelopes []*EnvelopeFollower

	threshold  *param.Smoother
	ratio      *param.Smoother
	knee       *param.Smoother
	inputGain  *param.Smoother
	outputGain *param.Smoother
	dryWet     *param.Smoother

	// Envelope times currently applied to the followers.
	attackSec  float64
	releaseSec float64

	thresholdCurve [MaxBlockSize]float64
	ratioCurve     [MaxBlockSize]float64
	kneeCurve      [MaxBlockSize]float64
	inGainCurve    [MaxBlockSize]float64
	outGainCurve   [MaxBlockSize]float64
	mixCurve       [MaxBlockSize]float64

	scaled [MaxBlockSize]float64
	mult   [MaxBlockSize]float64
	wet    [MaxBlockSize]float64
}

// NewCompressor creates a compressor with default parameters for the
// configured layout.
func NewCompressor(opts ...core.ProcessorOption) (*Compressor, error) {
	cfg := core.ApplyProcessorOptions(opts...)

	c := &Compressor{
		cfg:        cfg,
		params:     NewParams(),
		meters:     newMeters(cfg.Channels),
		detectors:  make([]*Detector, cfg.Channels),
		envelopes:  make([]*EnvelopeFollower, cfg.Channels),
		attackSec:  defaultAttackSeconds,
		releaseSec: defaultReleaseSeconds,
	}

	for ch := range c.detectors {
		det, err := NewDetector(cfg.SampleRate, defaultDetectorTimeMs)
		if err != nil {
			return nil, err
		}

		env, err := NewEnvelopeFollower(cfg.SampleRate, defaultAttackSeconds, defaultReleaseSeconds)
		if err != nil {
			return nil, err
		}

		c.detectors[ch] = det
		c.envelopes[ch] = env
	}

	c.threshold = smootherFor(ParamThreshold, cfg.SampleRate)
	c.ratio = smootherFor(ParamRatio, cfg.SampleRate)
	c.knee = smootherFor(ParamKnee, cfg.SampleRate)
	c.inputGain = smootherFor(ParamInputGain, cfg.SampleRate)
	c.outputGain = smootherFor(ParamOutputGain, cfg.SampleRate)
	c.dryWet = smootherFor(ParamDryWet, cfg.SampleRate)

	return c, nil
}

// Params returns the control-side parameter set.
func (c *Compressor) Params() *Params { return c.params }

// Meters returns the per-channel meter readings.
func (c *Compressor) Meters() *Meters { return c.meters }

// Config returns the processor configuration.
func (c *Compressor) Config() core.ProcessorConfig { return c.cfg }

// SetSampleRate reconfigures the compressor for a new sample rate.
// Detector and envelope state is kept; smoothing ramps restart.
func (c *Compressor) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("sample rate must be positive and finite: %f", sampleRate)
	}

	for ch := range c.detectors {
		if err := c.detectors[ch].SetSampleRate(sampleRate); err != nil {
			return err
		}

		if err := c.envelopes[ch].SetSampleRate(sampleRate); err != nil {
			return err
		}
	}

	c.threshold.SetSampleRate(sampleRate)
	c.ratio.SetSampleRate(sampleRate)
	c.knee.SetSampleRate(sampleRate)
	c.inputGain.SetSampleRate(sampleRate)
	c.outputGain.SetSampleRate(sampleRate)
	c.dryWet.SetSampleRate(sampleRate)

	c.cfg.SampleRate = sampleRate

	return nil
}

// Reset clears all processing state: detectors, envelopes, and meters.
// Smoothers jump to their current targets so no stale ramp survives a
// transport restart. Parameters are unaffected.
func (c *Compressor) Reset() {
	for ch := range c.detectors {
		c.detectors[ch].Reset()
		c.envelopes[ch].Reset()
	}

	c.threshold.Reset(c.params.threshold.Load())
	c.ratio.Reset(c.params.ratio.Load())
	c.knee.Reset(c.params.knee.Load())
	c.inputGain.Reset(c.params.inputGain.Load())
	c.outputGain.Reset(c.params.outputGain.Load())
	c.dryWet.Reset(c.params.dryWet.Load())

	c.meters.reset()
}

// Process compresses in into out. The blocks must have the configured
// channel count and equal frame counts; in and out may be the same
// block. State carries across calls.
func (c *Compressor) Process(in, out *buffer.Block) error {
	if in == nil || out == nil {
		return fmt.Errorf("process: %w", ErrNilBlock)
	}

	if in.Channels() != c.cfg.Channels || out.Channels() != c.cfg.Channels {
		return fmt.Errorf("process: want %d channels, in %d, out %d: %w",
			c.cfg.Channels, in.Channels(), out.Channels(), ErrChannelMismatch)
	}

	if in.Frames() != out.Frames() {
		return fmt.Errorf("process: in %d frames, out %d: %w", in.Frames(), out.Frames(), ErrFrameMismatch)
	}

	frames := in.Frames()
	for offset := 0; offset < frames; offset += MaxBlockSize {
		n := min(MaxBlockSize, frames-offset)
		if err := c.processSubBlock(in, out, offset, n); err != nil {
			return err
		}
	}

	return nil
}

// ProcessInPlace compresses the block in place.
func (c *Compressor) ProcessInPlace(block *buffer.Block) error {
	return c.Process(block, block)
}

func (c *Compressor) processSubBlock(in, out *buffer.Block, offset, n int) error {
	c.threshold.SetTarget(c.params.threshold.Load())
	c.ratio.SetTarget(c.params.ratio.Load())
	c.knee.SetTarget(c.params.knee.Load())
	c.inputGain.SetTarget(c.params.inputGain.Load())
	c.outputGain.SetTarget(c.params.outputGain.Load())
	c.dryWet.SetTarget(c.params.dryWet.Load())

	attack := c.params.attack.Load()
	release := c.params.release.Load()
	if attack != c.attackSec || release != c.releaseSec {
		for _, env := range c.envelopes {
			if err := env.SetTimes(attack, release); err != nil {
				return err
			}
		}

		c.attackSec = attack
		c.releaseSec = release
	}

	mode := c.params.LevelDetection()

	for i := 0; i < n; i++ {
		c.thresholdCurve[i] = c.threshold.Next()
		c.ratioCurve[i] = c.ratio.Next()
		c.kneeCurve[i] = c.knee.Next()
		c.inGainCurve[i] = c.inputGain.Next()
		c.outGainCurve[i] = c.outputGain.Next()
		c.mixCurve[i] = c.dryWet.Next()
	}

	for ch := 0; ch < c.cfg.Channels; ch++ {
		src := in.Channel(ch)[offset : offset+n]
		dst := out.Channel(ch)[offset : offset+n]
		det := c.detectors[ch]
		env := c.envelopes[ch]

		vecmath.MulBlock(c.scaled[:n], src, c.inGainCurve[:n])

		for i, x := range c.scaled[:n] {
			det.Process(x)
			raw := GainReduction(det.Level(mode), c.thresholdCurve[i], c.ratioCurve[i], c.kneeCurve[i])
			c.mult[i] = env.Process(raw)
		}

		vecmath.MulBlock(c.wet[:n], c.scaled[:n], c.mult[:n])

		// The dry branch taps the signal after input gain, so a fully dry
		// blend reproduces the gain-adjusted input exactly.
		for i := 0; i < n; i++ {
			mix := c.mixCurve[i]
			dst[i] = c.wet[i]*mix + c.scaled[i]*(1.0-mix)
		}

		vecmath.MulBlockInPlace(dst, c.outGainCurve[:n])

		c.meters.publish(ch, det.RMS(), det.Peak(), env.Current())
	}

	return nil
}

func smootherFor(id string, sampleRate float64) *param.Smoother {
	for _, d := range Descriptors() {
		if d.ID == id {
			s := d.NewSmoother()
			s.SetSampleRate(sampleRate)

			return s
		}
	}

	s := param.NewSmoother(param.SmoothingNone, 0)
	s.SetSampleRate(sampleRate)

	return s
}
