// Command compinfo prints the steady-state behavior of the compressor
// across a sweep of input levels.
//
// Usage:
//
//	compinfo [flags]
//
// For each input level it drives the compressor with a test signal until
// the detector and envelope settle, then reports the measured output
// level and gain reduction.
//
// Examples:
//
//	compinfo
//	compinfo -threshold -20 -ratio 8 -knee 6
//	compinfo -signal sine -freq 997 -mode peak
//	compinfo -level -6
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-compressor/dsp/buffer"
	"github.com/cwbudde/algo-compressor/dsp/core"
	"github.com/cwbudde/algo-compressor/dsp/effects/dynamics"
	"github.com/cwbudde/algo-compressor/dsp/signal"
)

func main() {
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	threshold := flag.Float64("threshold", -10, "compression threshold in dB")
	ratio := flag.Float64("ratio", 4, "compression ratio")
	knee := flag.Float64("knee", 5, "knee width in dB (0 for hard knee)")
	attack := flag.Float64("attack", 0.001, "attack time in seconds")
	release := flag.Float64("release", 0.05, "release time in seconds")
	inGain := flag.Float64("ingain", 0, "input gain in dB")
	outGain := flag.Float64("outgain", 0, "output gain in dB")
	dryWet := flag.Float64("drywet", 1, "dry/wet blend, 0 to 1")
	mode := flag.String("mode", "rms", "level detection mode: rms or peak")
	sig := flag.String("signal", "dc", "test signal: dc or sine")
	freq := flag.Float64("freq", 997, "sine frequency in Hz")
	level := flag.Float64("level", math.NaN(), "single input level in dB instead of the sweep")
	dur := flag.Float64("dur", 2, "settle time per level in seconds")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: compinfo [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Prints steady-state compressor behavior across input levels.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  compinfo -threshold -20 -ratio 8 -knee 6\n")
		fmt.Fprintf(os.Stderr, "  compinfo -signal sine -freq 997 -mode peak\n")
		fmt.Fprintf(os.Stderr, "  compinfo -level -6\n")
	}
	flag.Parse()

	detection, err := parseMode(*mode)
	if err != nil {
		fail(err)
	}

	if *sig != "dc" && *sig != "sine" {
		fail(fmt.Errorf("unknown signal %q (use dc or sine)", *sig))
	}

	levels := []float64{-60, -50, -40, -30, -25, -20, -15, -10, -5, 0}
	if !math.IsNaN(*level) {
		levels = []float64{*level}
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "In [dB]\tOut [dB]\tReduction [dB]\tDetector [dB]\tPeak [dB]\n"); err != nil {
		fail(err)
	}
	if _, err := fmt.Fprintf(tw, "-------\t--------\t--------------\t-------------\t---------\n"); err != nil {
		fail(err)
	}

	for _, inDB := range levels {
		r, err := measure(settings{
			rate:      *rate,
			threshold: *threshold,
			ratio:     *ratio,
			knee:      *knee,
			attack:    *attack,
			release:   *release,
			inGain:    *inGain,
			outGain:   *outGain,
			dryWet:    *dryWet,
			detection: detection,
			signal:    *sig,
			freq:      *freq,
			levelDB:   inDB,
			duration:  *dur,
		})
		if err != nil {
			fail(err)
		}

		if _, err := fmt.Fprintf(tw, "%.1f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			inDB,
			core.LinearToDBFloored(r.outputRMS),
			r.reductionDB,
			core.LinearToDBFloored(r.detectorLevel),
			core.LinearToDBFloored(r.peak),
		); err != nil {
			fail(err)
		}
	}

	if err := tw.Flush(); err != nil {
		fail(err)
	}
}

type settings struct {
	rate      float64
	threshold float64
	ratio     float64
	knee      float64
	attack    float64
	release   float64
	inGain    float64
	outGain   float64
	dryWet    float64
	detection dynamics.DetectorMode
	signal    string
	freq      float64
	levelDB   float64
	duration  float64
}

type result struct {
	outputRMS     float64
	reductionDB   float64
	detectorLevel float64
	peak          float64
}

func measure(s settings) (result, error) {
	comp, err := dynamics.NewCompressor(
		core.WithSampleRate(s.rate),
		core.WithChannels(1),
	)
	if err != nil {
		return result{}, err
	}

	p := comp.Params()
	steps := []error{
		p.SetThreshold(s.threshold),
		p.SetRatio(s.ratio),
		p.SetKnee(s.knee),
		p.SetAttack(s.attack),
		p.SetRelease(s.release),
		p.SetInputGain(s.inGain),
		p.SetOutputGain(s.outGain),
		p.SetDryWet(s.dryWet),
		p.SetLevelDetection(s.detection),
	}
	for _, err := range steps {
		if err != nil {
			return result{}, err
		}
	}

	comp.Reset()

	gen := signal.NewGenerator(core.WithSampleRate(s.rate))
	amplitude := core.DBToLinear(s.levelDB)

	frames := int(s.duration * s.rate)
	if frames < 1 {
		frames = 1
	}

	var samples []float64
	switch s.signal {
	case "sine":
		samples, err = gen.Sine(s.freq, amplitude, frames)
	default:
		samples, err = gen.Constant(amplitude, frames)
	}
	if err != nil {
		return result{}, err
	}

	block, err := buffer.FromSlices([][]float64{samples})
	if err != nil {
		return result{}, err
	}

	if err := comp.ProcessInPlace(block); err != nil {
		return result{}, err
	}

	// Measure the output RMS over the final quarter, after settling.
	tail := samples[len(samples)-len(samples)/4:]
	if len(tail) == 0 {
		tail = samples
	}
	sum := 0.0
	for _, x := range tail {
		sum += x * x
	}

	m := comp.Meters()

	return result{
		outputRMS:     math.Sqrt(sum / float64(len(tail))),
		reductionDB:   m.GainReductionDB(0),
		detectorLevel: m.RMS(0),
		peak:          m.Peak(0),
	}, nil
}

func parseMode(name string) (dynamics.DetectorMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rms":
		return dynamics.DetectorModeRMS, nil
	case "peak":
		return dynamics.DetectorModePeak, nil
	default:
		return 0, fmt.Errorf("unknown detection mode %q (use rms or peak)", name)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
