package model

import "sync"

// BufferPool recycles cell buffers between generations
type BufferPool struct {
	pool sync.Pool
}

func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				return &[]Cell{}
			},
		},
	}
}

// Get returns a buffer of exactly size cells. Contents are unspecified.
func (p *BufferPool) Get(size int) []Cell {
	buf := p.pool.Get().(*[]Cell)
	if cap(*buf) < size {
		return make([]Cell, size)
	}
	return (*buf)[:size]
}

// Put returns a buffer to the pool for reuse
func (p *BufferPool) Put(buf []Cell) {
	if buf == nil {
		return
	}
	p.pool.Put(&buf)
}
