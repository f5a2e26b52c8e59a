package buffer

import "sync"

// Pool provides sync.Pool-based Block reuse to reduce GC pressure in
// host layers that need transient scratch blocks.
type Pool struct {
	channels int
	pool     sync.Pool
}

// NewPool returns a Pool producing Blocks with the given channel count.
func NewPool(channels int) *Pool {
	if channels <= 0 {
		channels = 1
	}

	return &Pool{
		channels: channels,
		pool: sync.Pool{
			New: func() any {
				b, _ := New(channels, 0)
				return b
			},
		},
	}
}

// Get returns a Block with the requested frame count. The block is zeroed.
// Callers must return it via Put when done.
func (p *Pool) Get(frames int) *Block {
	b := p.pool.Get().(*Block)
	b.Resize(frames)
	b.Zero()
	return b
}

// Put returns a Block to the pool for reuse.
// The caller must not use the block after calling Put.
func (p *Pool) Put(b *Block) {
	if b == nil {
		return
	}
	p.pool.Put(b)
}
