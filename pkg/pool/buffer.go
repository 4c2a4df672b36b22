// Package pool provides reusable byte buffers for the streaming copy paths
// of the file compressors.
package pool

import (
	"bytes"
	"sync"
)

// BufferPool hands out byte buffers with a common base capacity so the
// per-file compression copies do not allocate a fresh buffer each time.
type BufferPool struct {
	size int
	pool sync.Pool
}

// NewBufferPool creates a pool whose buffers start at the given capacity.
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		size: size,
		pool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, size))
			},
		},
	}
}

// Get returns an empty buffer ready for use.
func (bp *BufferPool) Get() *bytes.Buffer {
	buf := bp.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// Put returns a buffer to the pool. Buffers that grew well past the base
// capacity are dropped instead of pinning their memory in the pool.
func (bp *BufferPool) Put(buf *bytes.Buffer) {
	if buf.Cap() > bp.size*2 {
		return
	}

	buf.Reset()
	bp.pool.Put(buf)
}
