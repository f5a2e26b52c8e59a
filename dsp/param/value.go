package param

import (
	"math"
	"sync/atomic"
)

// Value is a lock-free cell holding one float64 parameter target.
// It is written by a single control thread and read by the audio thread;
// neither side blocks.
type Value struct {
	bits atomic.Uint64
}

// NewValue returns a Value initialized to v.
func NewValue(v float64) *Value {
	val := &Value{}
	val.Store(v)
	return val
}

// Store publishes a new target value.
func (v *Value) Store(f float64) {
	v.bits.Store(math.Float64bits(f))
}

// Load returns the most recently published value.
func (v *Value) Load() float64 {
	return math.Float64frombits(v.bits.Load())
}

// Choice is a lock-free cell holding one discrete parameter selection.
// Discrete parameters are never smoothed.
type Choice struct {
	v atomic.Int32
}

// NewChoice returns a Choice initialized to index.
func NewChoice(index int) *Choice {
	c := &Choice{}
	c.Store(index)
	return c
}

// Store publishes a new selection.
func (c *Choice) Store(index int) {
	c.v.Store(int32(index))
}

// Load returns the current selection.
func (c *Choice) Load() int {
	return int(c.v.Load())
}
