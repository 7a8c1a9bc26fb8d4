// File: bufpool/slab.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// SlabManager: the generic BufferManager variant. On Init it allocates
// numBuffers identical SharedBuffers; Front exposes the head of a ring
// deque; Pop either advances the head buffer in place (reuse, when the
// popped amount is less than half the buffer size) or drops it; Push
// returns a buffer to the tail. Empty iff the deque is empty.
//
// Grounded on pool/slab_pool.go's queue-backed allocation counters and the
// original GenericBufferManager.cpp's pop()/push() reuse-in-place logic.

package bufpool

import (
	"sync"
	"sync/atomic"

	"github.com/hioload-flow/flowcore/buffer"
	"github.com/hioload-flow/flowcore/flowerr"
)

// SlabManager is the generic slab BufferManager.
type SlabManager struct {
	mu         sync.Mutex
	ready      []buffer.ManagedBuffer
	bufferSize int
	bytesPopped int

	totalAlloc atomic.Int64
	totalFree  atomic.Int64
}

var _ Manager = (*SlabManager)(nil)

// NewSlabManager constructs an uninitialized slab manager; call Init before use.
func NewSlabManager() *SlabManager { return &SlabManager{} }

// Init allocates args.NumBuffers SharedBuffers of args.BufferSize bytes.
// It fails with a ConfigurationError when args.NumBuffers < 1.
func (m *SlabManager) Init(args Args) error {
	if args.NumBuffers < 1 {
		return flowerr.Configuration("bufpool: NumBuffers must be >= 1")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bufferSize = args.BufferSize
	m.ready = make([]buffer.ManagedBuffer, 0, args.NumBuffers)
	for i := 0; i < args.NumBuffers; i++ {
		shared, err := buffer.NewSharedBuffer(args.BufferSize, args.NodeAffinity, args.Allocator)
		if err != nil {
			return err
		}
		mb := buffer.NewManagedBuffer(shared, i, m)
		m.ready = append(m.ready, mb)
		m.totalAlloc.Add(1)
	}
	return nil
}

// Empty reports whether the ready deque holds no buffers.
func (m *SlabManager) Empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ready) == 0
}

// Front returns the head buffer as a raw (Int8-typed) BufferChunk, or Null
// if empty. The caller (OutputPort) re-views it under its configured dtype.
func (m *SlabManager) Front() buffer.BufferChunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ready) == 0 {
		return buffer.Null()
	}
	return buffer.NewManagedChunk(m.ready[0], buffer.Int8)
}

// Pop advances past numBytes. When the popped total stays under half the
// buffer size, the head buffer is reused in place (address/length adjusted,
// no allocation); otherwise the head buffer is retired and the next one
// (if any) becomes the front.
func (m *SlabManager) Pop(numBytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ready) == 0 {
		return
	}
	m.bytesPopped += numBytes
	if m.bytesPopped*2 < m.bufferSize {
		head := m.ready[0]
		head.Shared = head.Shared.Slice(numBytes, head.Shared.Length())
		m.ready[0] = head
		return
	}
	m.bytesPopped = 0
	m.ready = m.ready[1:]
}

// Push returns buf to the tail of the ready deque. Satisfies
// buffer.ManagerRef so ManagedBuffer.Release() can call back into this
// manager across actor boundaries.
func (m *SlabManager) Push(buf buffer.ManagedBuffer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = append(m.ready, buf)
	m.totalFree.Add(1)
}

// Stats reports coarse allocation counters for debug/stats surfaces.
func (m *SlabManager) Stats() (totalAlloc, totalFree, inUse int64) {
	totalAlloc = m.totalAlloc.Load()
	totalFree = m.totalFree.Load()
	return totalAlloc, totalFree, totalAlloc - totalFree
}
