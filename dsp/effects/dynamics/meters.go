package dynamics

import (
	"github.com/cwbudde/algo-compressor/dsp/core"
	"github.com/cwbudde/algo-compressor/dsp/param"
)

// Meters exposes per-channel readings for UI and monitoring. The audio
// thread publishes at sub-block boundaries through lock-free cells, so a
// reader sees values at most one sub-block old and never blocks the
// signal path.
type Meters struct {
	rms  []param.Value
	peak []param.Value
	gain []param.Value // smoothed multiplier, linear
}

func newMeters(channels int) *Meters {
	m := &Meters{
		rms:  make([]param.Value, channels),
		peak: make([]param.Value, channels),
		gain: make([]param.Value, channels),
	}
	m.reset()

	return m
}

func (m *Meters) reset() {
	for i := range m.gain {
		m.rms[i].Store(0)
		m.peak[i].Store(0)
		m.gain[i].Store(1.0)
	}
}

func (m *Meters) publish(channel int, rms, peak, gain float64) {
	m.rms[channel].Store(rms)
	m.peak[channel].Store(peak)
	m.gain[channel].Store(gain)
}

// Channels returns the number of metered channels.
func (m *Meters) Channels() int { return len(m.gain) }

// RMS returns the detector's RMS estimate for the channel.
func (m *Meters) RMS(channel int) float64 { return m.rms[channel].Load() }

// Peak returns the detector's peak estimate for the channel.
func (m *Meters) Peak(channel int) float64 { return m.peak[channel].Load() }

// GainReduction returns the smoothed gain multiplier for the channel.
// 1 means no reduction.
func (m *Meters) GainReduction(channel int) float64 { return m.gain[channel].Load() }

// GainReductionDB returns the current reduction for the channel as a
// positive dB amount. 0 means no reduction.
func (m *Meters) GainReductionDB(channel int) float64 {
	return -core.LinearToDB(m.gain[channel].Load())
}
