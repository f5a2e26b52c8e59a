package dynamics

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-compressor/dsp/buffer"
	"github.com/cwbudde/algo-compressor/dsp/core"
)

func dcBlock(t *testing.T, channels, frames int, levels ...float64) *buffer.Block {
	t.Helper()

	b, err := buffer.New(channels, frames)
	if err != nil {
		t.Fatalf("buffer.New() error = %v", err)
	}

	for ch := 0; ch < channels; ch++ {
		level := levels[0]
		if ch < len(levels) {
			level = levels[ch]
		}

		core.Fill(b.Channel(ch), level)
	}

	return b
}

// TestNewCompressorDefaults verifies the constructor honors the
// processor options and starts with default parameters.
func TestNewCompressorDefaults(t *testing.T) {
	c, err := NewCompressor(core.WithSampleRate(44100), core.WithChannels(1))
	if err != nil {
		t.Fatalf("NewCompressor() error = %v", err)
	}

	cfg := c.Config()
	if cfg.SampleRate != 44100 || cfg.Channels != 1 {
		t.Errorf("Config() = %+v, want 44100 Hz mono", cfg)
	}

	if c.Params().Ratio() != defaultRatio {
		t.Errorf("Ratio() = %f, want %f", c.Params().Ratio(), defaultRatio)
	}

	if c.Meters().Channels() != 1 {
		t.Errorf("Meters().Channels() = %d, want 1", c.Meters().Channels())
	}
}

// TestCompressorSteadyStateDC verifies the full chain against the
// compression law: DC at -5 dB through threshold -10 dB, ratio 4, hard
// knee settles at -8.75 dB.
func TestCompressorSteadyStateDC(t *testing.T) {
	const sampleRate = 48000.0

	c, err := NewCompressor(core.WithSampleRate(sampleRate), core.WithChannels(1))
	if err != nil {
		t.Fatalf("NewCompressor() error = %v", err)
	}

	p := c.Params()
	if err := p.SetThreshold(-10); err != nil {
		t.Fatal(err)
	}

	if err := p.SetRatio(4); err != nil {
		t.Fatal(err)
	}

	if err := p.SetKnee(0); err != nil {
		t.Fatal(err)
	}

	if err := p.SetAttack(0); err != nil {
		t.Fatal(err)
	}

	if err := p.SetRelease(0); err != nil {
		t.Fatal(err)
	}

	c.Reset() // jump smoothers to the configured values

	in := dcBlock(t, 1, 480, core.DBToLinear(-5))

	out, err := buffer.New(1, 480)
	if err != nil {
		t.Fatal(err)
	}

	// Two seconds: the RMS window has fully converged.
	for i := 0; i < 200; i++ {
		if err := c.Process(in, out); err != nil {
			t.Fatalf("Process() error = %v", err)
		}
	}

	samples := out.Channel(0)
	got := samples[len(samples)-1]
	want := core.DBToLinear(-8.75)

	if math.Abs(got-want) > 1e-6 {
		t.Errorf("steady-state output = %.9f (%.4f dB), want %.9f (-8.75 dB)",
			got, core.LinearToDB(got), want)
	}
}

// TestCompressorPeakInstantAttack verifies sample-accurate response with
// peak detection and zero attack: the very first sample of a 0 dB step
// is already reduced to the law's output level.
func TestCompressorPeakInstantAttack(t *testing.T) {
	c, err := NewCompressor(core.WithSampleRate(48000), core.WithChannels(1))
	if err != nil {
		t.Fatalf("NewCompressor() error = %v", err)
	}

	p := c.Params()
	if err := p.SetLevelDetection(DetectorModePeak); err != nil {
		t.Fatal(err)
	}

	if err := p.SetThreshold(-10); err != nil {
		t.Fatal(err)
	}

	if err := p.SetRatio(100); err != nil {
		t.Fatal(err)
	}

	if err := p.SetKnee(0); err != nil {
		t.Fatal(err)
	}

	if err := p.SetAttack(0); err != nil {
		t.Fatal(err)
	}

	c.Reset()

	in := dcBlock(t, 1, 64, 1.0)
	if err := c.ProcessInPlace(in); err != nil {
		t.Fatalf("ProcessInPlace() error = %v", err)
	}

	// Output excess above threshold: 10 dB in at ratio 100 leaves 0.1 dB.
	want := core.DBToLinear(-9.9)
	if math.Abs(in.Channel(0)[0]-want) > 1e-9 {
		t.Errorf("first sample = %.9f, want %.9f", in.Channel(0)[0], want)
	}
}

// TestCompressorBelowThresholdIdentity verifies signal below the knee
// passes through bit-exact at default gain settings.
func TestCompressorBelowThresholdIdentity(t *testing.T) {
	c, err := NewCompressor(core.WithChannels(1))
	if err != nil {
		t.Fatalf("NewCompressor() error = %v", err)
	}

	in := dcBlock(t, 1, 1024, core.DBToLinear(-30))

	out, err := buffer.New(1, 1024)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Process(in, out); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	for i, want := range in.Channel(0) {
		if out.Channel(0)[i] != want {
			t.Fatalf("sample %d: got %v, want bit-exact %v", i, out.Channel(0)[i], want)
		}
	}
}

// TestCompressorRatioOneIdentity verifies a ratio of 1 passes any signal
// through bit-exact, even far above the threshold.
func TestCompressorRatioOneIdentity(t *testing.T) {
	c, err := NewCompressor(core.WithChannels(1))
	if err != nil {
		t.Fatalf("NewCompressor() error = %v", err)
	}

	if err := c.Params().SetRatio(1); err != nil {
		t.Fatal(err)
	}

	c.Reset()

	in := dcBlock(t, 1, 1024, 0.9)

	out, err := buffer.New(1, 1024)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Process(in, out); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	for i, want := range in.Channel(0) {
		if out.Channel(0)[i] != want {
			t.Fatalf("sample %d: got %v, want bit-exact %v", i, out.Channel(0)[i], want)
		}
	}
}

// TestCompressorFullyDry verifies a dry/wet of 0 passes the input
// through bit-exact regardless of compression settings.
func TestCompressorFullyDry(t *testing.T) {
	c, err := NewCompressor(core.WithChannels(1))
	if err != nil {
		t.Fatalf("NewCompressor() error = %v", err)
	}

	p := c.Params()
	if err := p.SetThreshold(-60); err != nil {
		t.Fatal(err)
	}

	if err := p.SetRatio(100); err != nil {
		t.Fatal(err)
	}

	if err := p.SetDryWet(0); err != nil {
		t.Fatal(err)
	}

	c.Reset()

	in := dcBlock(t, 1, 1024, 0.8)

	out, err := buffer.New(1, 1024)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Process(in, out); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	for i, want := range in.Channel(0) {
		if out.Channel(0)[i] != want {
			t.Fatalf("sample %d: got %v, want bit-exact %v", i, out.Channel(0)[i], want)
		}
	}
}

// TestCompressorDryTapsAfterInputGain verifies the dry branch carries
// the input gain: fully dry output is the gain-adjusted input, not the
// raw input.
func TestCompressorDryTapsAfterInputGain(t *testing.T) {
	c, err := NewCompressor(core.WithChannels(1))
	if err != nil {
		t.Fatalf("NewCompressor() error = %v", err)
	}

	p := c.Params()
	if err := p.SetInputGain(-12); err != nil {
		t.Fatal(err)
	}

	if err := p.SetDryWet(0); err != nil {
		t.Fatal(err)
	}

	c.Reset()

	in := dcBlock(t, 1, 256, 0.5)

	out, err := buffer.New(1, 256)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Process(in, out); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	gain := core.DBToLinear(-12)
	for i, x := range in.Channel(0) {
		want := x * gain
		if out.Channel(0)[i] != want {
			t.Fatalf("sample %d: got %v, want %v", i, out.Channel(0)[i], want)
		}
	}
}

// TestCompressorOutputGain verifies the makeup gain applies after the
// blend.
func TestCompressorOutputGain(t *testing.T) {
	c, err := NewCompressor(core.WithChannels(1))
	if err != nil {
		t.Fatalf("NewCompressor() error = %v", err)
	}

	if err := c.Params().SetOutputGain(6); err != nil {
		t.Fatal(err)
	}

	c.Reset()

	in := dcBlock(t, 1, 256, core.DBToLinear(-40))

	out, err := buffer.New(1, 256)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Process(in, out); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	gain := core.DBToLinear(6)
	for i, x := range in.Channel(0) {
		want := x * gain
		if out.Channel(0)[i] != want {
			t.Fatalf("sample %d: got %v, want %v", i, out.Channel(0)[i], want)
		}
	}
}

// TestCompressorInputGainDrivesDetection verifies the input gain feeds
// the detector: a quiet signal pushed above the threshold compresses.
func TestCompressorInputGainDrivesDetection(t *testing.T) {
	const sampleRate = 48000.0

	c, err := NewCompressor(core.WithSampleRate(sampleRate), core.WithChannels(1))
	if err != nil {
		t.Fatalf("NewCompressor() error = %v", err)
	}

	p := c.Params()
	if err := p.SetInputGain(20); err != nil {
		t.Fatal(err)
	}

	if err := p.SetAttack(0); err != nil {
		t.Fatal(err)
	}

	c.Reset()

	// -25 dB input plus 20 dB gain is -5 dB, well above the -10 dB
	// threshold.
	in := dcBlock(t, 1, 4800, core.DBToLinear(-25))
	for i := 0; i < 20; i++ {
		if err := c.ProcessInPlace(in); err != nil {
			t.Fatalf("ProcessInPlace() error = %v", err)
		}

		core.Fill(in.Channel(0), core.DBToLinear(-25))
	}

	if c.Meters().GainReductionDB(0) <= 0.5 {
		t.Errorf("GainReductionDB(0) = %f, want compression driven by input gain",
			c.Meters().GainReductionDB(0))
	}
}

// TestCompressorChannelIndependence verifies detection chains do not
// couple: a loud left channel leaves a quiet right channel bit-exact.
func TestCompressorChannelIndependence(t *testing.T) {
	const sampleRate = 48000.0

	c, err := NewCompressor(core.WithSampleRate(sampleRate))
	if err != nil {
		t.Fatalf("NewCompressor() error = %v", err)
	}

	in := dcBlock(t, 2, int(sampleRate), core.DBToLinear(-5), core.DBToLinear(-40))

	out, err := buffer.New(2, int(sampleRate))
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Process(in, out); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	for i, want := range in.Channel(1) {
		if out.Channel(1)[i] != want {
			t.Fatalf("quiet channel sample %d: got %v, want bit-exact %v", i, out.Channel(1)[i], want)
		}
	}

	last := out.Channel(0)[int(sampleRate)-1]
	if last >= core.DBToLinear(-5) {
		t.Errorf("loud channel not compressed: last sample %f", last)
	}
}

// TestCompressorChunkingInvariance verifies splitting a signal across
// Process calls of arbitrary sizes does not change a single sample.
func TestCompressorChunkingInvariance(t *testing.T) {
	const frames = 512

	newLoud := func() (*Compressor, error) {
		c, err := NewCompressor(core.WithChannels(1))
		if err != nil {
			return nil, err
		}

		if err := c.Params().SetAttack(0.005); err != nil {
			return nil, err
		}

		c.Reset()

		return c, nil
	}

	signal := make([]float64, frames)
	for i := range signal {
		signal[i] = 0.8 * math.Sin(2*math.Pi*440*float64(i)/48000)
	}

	c1, err := newLoud()
	if err != nil {
		t.Fatal(err)
	}

	whole := make([]float64, frames)
	copy(whole, signal)

	block, err := buffer.FromSlices([][]float64{whole})
	if err != nil {
		t.Fatal(err)
	}

	if err := c1.ProcessInPlace(block); err != nil {
		t.Fatalf("ProcessInPlace() error = %v", err)
	}

	c2, err := newLoud()
	if err != nil {
		t.Fatal(err)
	}

	chunked := make([]float64, frames)
	copy(chunked, signal)

	for _, bounds := range [][2]int{{0, 37}, {37, 137}, {137, 512}} {
		part, err := buffer.FromSlices([][]float64{chunked[bounds[0]:bounds[1]]})
		if err != nil {
			t.Fatal(err)
		}

		if err := c2.ProcessInPlace(part); err != nil {
			t.Fatalf("ProcessInPlace() error = %v", err)
		}
	}

	for i := range whole {
		if whole[i] != chunked[i] {
			t.Fatalf("sample %d: whole %v, chunked %v", i, whole[i], chunked[i])
		}
	}
}

// TestCompressorProcessErrors verifies block validation.
func TestCompressorProcessErrors(t *testing.T) {
	c, err := NewCompressor() // stereo
	if err != nil {
		t.Fatalf("NewCompressor() error = %v", err)
	}

	stereo := dcBlock(t, 2, 64, 0)
	mono := dcBlock(t, 1, 64, 0)
	short := dcBlock(t, 2, 32, 0)

	if err := c.Process(nil, stereo); !errors.Is(err, ErrNilBlock) {
		t.Errorf("Process(nil, out) error = %v, want ErrNilBlock", err)
	}

	if err := c.Process(stereo, nil); !errors.Is(err, ErrNilBlock) {
		t.Errorf("Process(in, nil) error = %v, want ErrNilBlock", err)
	}

	if err := c.Process(mono, stereo); !errors.Is(err, ErrChannelMismatch) {
		t.Errorf("Process() channel mismatch error = %v, want ErrChannelMismatch", err)
	}

	if err := c.Process(stereo, short); !errors.Is(err, ErrFrameMismatch) {
		t.Errorf("Process() frame mismatch error = %v, want ErrFrameMismatch", err)
	}
}

// TestCompressorMeters verifies meter publication during compression.
func TestCompressorMeters(t *testing.T) {
	c, err := NewCompressor(core.WithChannels(1))
	if err != nil {
		t.Fatalf("NewCompressor() error = %v", err)
	}

	if err := c.Params().SetAttack(0); err != nil {
		t.Fatal(err)
	}

	c.Reset()

	in := dcBlock(t, 1, 48000, 0.9)
	if err := c.ProcessInPlace(in); err != nil {
		t.Fatalf("ProcessInPlace() error = %v", err)
	}

	m := c.Meters()
	if m.RMS(0) <= 0 || m.Peak(0) <= 0 {
		t.Errorf("meters = (RMS %f, Peak %f), want positive", m.RMS(0), m.Peak(0))
	}

	if m.GainReduction(0) >= 1.0 {
		t.Errorf("GainReduction(0) = %f, want < 1.0 for a loud signal", m.GainReduction(0))
	}

	if m.GainReductionDB(0) <= 0 {
		t.Errorf("GainReductionDB(0) = %f, want positive reduction", m.GainReductionDB(0))
	}
}

// TestCompressorReset verifies Reset clears processing state and meters
// but keeps parameters.
func TestCompressorReset(t *testing.T) {
	c, err := NewCompressor(core.WithChannels(1))
	if err != nil {
		t.Fatalf("NewCompressor() error = %v", err)
	}

	if err := c.Params().SetRatio(10); err != nil {
		t.Fatal(err)
	}

	in := dcBlock(t, 1, 4096, 0.9)
	if err := c.ProcessInPlace(in); err != nil {
		t.Fatalf("ProcessInPlace() error = %v", err)
	}

	c.Reset()

	m := c.Meters()
	if m.RMS(0) != 0 || m.Peak(0) != 0 || m.GainReduction(0) != 1.0 {
		t.Errorf("meters = (RMS %f, Peak %f, GR %f) after Reset(), want (0, 0, 1)",
			m.RMS(0), m.Peak(0), m.GainReduction(0))
	}

	if c.Params().Ratio() != 10 {
		t.Errorf("Ratio() = %f after Reset(), parameters should survive", c.Params().Ratio())
	}
}

// TestCompressorInPlaceMatchesSeparate verifies in-place processing is
// identical to processing into a separate block.
func TestCompressorInPlaceMatchesSeparate(t *testing.T) {
	c1, err := NewCompressor(core.WithChannels(1))
	if err != nil {
		t.Fatal(err)
	}

	c2, err := NewCompressor(core.WithChannels(1))
	if err != nil {
		t.Fatal(err)
	}

	in := dcBlock(t, 1, 1024, 0.7)

	out, err := buffer.New(1, 1024)
	if err != nil {
		t.Fatal(err)
	}

	if err := c1.Process(in, out); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if err := c2.ProcessInPlace(in); err != nil {
		t.Fatalf("ProcessInPlace() error = %v", err)
	}

	for i, want := range out.Channel(0) {
		if in.Channel(0)[i] != want {
			t.Fatalf("sample %d: in-place %v, separate %v", i, in.Channel(0)[i], want)
		}
	}
}

// TestCompressorSetSampleRate verifies rate changes are validated and
// applied to the whole chain.
func TestCompressorSetSampleRate(t *testing.T) {
	c, err := NewCompressor(core.WithChannels(1))
	if err != nil {
		t.Fatal(err)
	}

	if err := c.SetSampleRate(96000); err != nil {
		t.Errorf("SetSampleRate(96000) error = %v", err)
	}

	if c.Config().SampleRate != 96000 {
		t.Errorf("SampleRate = %f, want 96000", c.Config().SampleRate)
	}

	for _, rate := range []float64{0, -48000, math.NaN()} {
		if err := c.SetSampleRate(rate); err == nil {
			t.Errorf("SetSampleRate(%f) expected error", rate)
		}
	}
}
