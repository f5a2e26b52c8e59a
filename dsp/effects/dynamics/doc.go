// Package dynamics implements a real-time feed-forward dynamic-range
// compressor for multi-channel audio.
//
// The engine is split into four parts:
//   - Detector: continuously tracks RMS and Peak level estimates.
//   - GainReduction: the pure soft-knee gain computer mapping a level to
//     a linear multiplier.
//   - EnvelopeFollower: one-pole smoothing of the raw multiplier with
//     asymmetric attack and release time constants.
//   - Compressor: the per-sample signal path combining input gain,
//     detection, gain computation, envelope smoothing, dry/wet blend,
//     and output gain across channels and blocks.
//
// Each channel runs an independent detection and envelope chain, so a
// loud event on one channel does not duck the other. Parameter targets
// cross from the control thread through lock-free cells; Process never
// allocates, locks, or blocks.
package dynamics
