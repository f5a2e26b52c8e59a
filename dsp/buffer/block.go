package buffer

import "fmt"

// Block is a fixed-layout multi-channel sequence of samples. All channels
// have the same frame count. A Block owns no processing state; it is the
// unit of exchange between a host layer and DSP processors.
type Block struct {
	channels [][]float64
	frames   int
}

// New returns a zero-filled Block with the given channel and frame counts.
func New(channels, frames int) (*Block, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("block channel count must be > 0: %d", channels)
	}
	if frames < 0 {
		return nil, fmt.Errorf("block frame count must be >= 0: %d", frames)
	}

	chs := make([][]float64, channels)
	for i := range chs {
		chs[i] = make([]float64, frames)
	}

	return &Block{channels: chs, frames: frames}, nil
}

// FromSlices wraps existing per-channel slices without copying. All slices
// must have the same length. Mutations through the Block are visible in the
// original slices and vice versa.
func FromSlices(channels [][]float64) (*Block, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("block needs at least one channel")
	}

	frames := len(channels[0])
	for i, ch := range channels {
		if len(ch) != frames {
			return nil, fmt.Errorf("channel %d has %d frames, want %d", i, len(ch), frames)
		}
	}

	return &Block{channels: channels, frames: frames}, nil
}

// Channels returns the channel count.
func (b *Block) Channels() int {
	return len(b.channels)
}

// Frames returns the frame count per channel.
func (b *Block) Frames() int {
	return b.frames
}

// Channel returns the sample slice for channel i.
func (b *Block) Channel(i int) []float64 {
	return b.channels[i]
}

// Resize sets the frame count to n on every channel, reusing capacity when
// possible. Newly exposed frames are zeroed.
func (b *Block) Resize(n int) {
	if n < 0 {
		n = 0
	}

	for i, ch := range b.channels {
		oldLen := len(ch)
		if n <= cap(ch) {
			ch = ch[:n]
		} else {
			grown := make([]float64, n)
			copy(grown, ch)
			ch = grown
		}
		for j := oldLen; j < n; j++ {
			ch[j] = 0
		}
		b.channels[i] = ch
	}

	b.frames = n
}

// Zero sets every sample in every channel to 0.
func (b *Block) Zero() {
	for _, ch := range b.channels {
		for i := range ch {
			ch[i] = 0
		}
	}
}

// CopyFrom copies the samples of src into b. Channel and frame counts must
// match exactly.
func (b *Block) CopyFrom(src *Block) error {
	if src == nil {
		return fmt.Errorf("copy source block is nil")
	}
	if src.Channels() != b.Channels() {
		return fmt.Errorf("channel count mismatch: src %d, dst %d", src.Channels(), b.Channels())
	}
	if src.Frames() != b.Frames() {
		return fmt.Errorf("frame count mismatch: src %d, dst %d", src.Frames(), b.Frames())
	}

	for i, ch := range b.channels {
		copy(ch, src.channels[i])
	}

	return nil
}
