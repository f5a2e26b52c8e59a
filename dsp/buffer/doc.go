// Package buffer provides a multi-channel audio block type and pool for
// allocation-friendly DSP processing. A Block holds one slice of samples
// per channel; processors read and write those slices directly, so hot
// paths never copy or allocate. The Pool is an optional convenience for
// host layers that juggle scratch blocks.
package buffer
