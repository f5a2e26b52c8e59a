// Package param provides the control-plane building blocks for real-time
// processors: parameter descriptors (name, range, default, smoothing
// policy), lock-free single-writer value cells for passing targets from a
// control thread to the audio thread, and per-sample smoothers that ramp
// the audible value toward its target without zipper noise.
//
// The audio thread only ever reads targets and advances smoothing state;
// it never blocks on the control thread.
package param
