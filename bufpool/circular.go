// File: bufpool/circular.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CircularManager: one large SharedBuffer mapped twice consecutively so
// reads/writes of length <= capacity are always contiguous across the wrap.
// Offered to downstream as a continuously advancing BufferChunk whose
// address moves forward modulo the region. Intended for streaming sinks
// (e.g. a bridge's outbound byte stream) rather than discrete-message
// producers, per spec.md §4.1.

package bufpool

import (
	"sync"

	"github.com/hioload-flow/flowcore/buffer"
)

// CircularManager implements the circular BufferManager variant.
type CircularManager struct {
	mu       sync.Mutex
	region   buffer.SharedBuffer // doubly-mapped, capacity*2 bytes backing
	capacity int
	offset   int // current read offset, [0, capacity)
	filled   int // bytes available to read, <= capacity
}

var _ Manager = (*CircularManager)(nil)

// NewCircularManager constructs an uninitialized circular manager.
func NewCircularManager() *CircularManager { return &CircularManager{} }

// Init allocates a doubled backing region of args.BufferSize*2 bytes (via
// args.Allocator, HeapAllocator by default) and wires it as a circular
// SharedBuffer of capacity args.BufferSize.
func (m *CircularManager) Init(args Args) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	alloc := args.Allocator
	if alloc == nil {
		alloc = buffer.HeapAllocator
	}
	mem, err := alloc(args.BufferSize*2, args.NodeAffinity)
	if err != nil {
		return err
	}
	m.region = buffer.NewCircularSharedBuffer(mem, args.BufferSize)
	m.capacity = args.BufferSize
	m.offset = 0
	m.filled = 0
	return nil
}

// Empty reports whether no bytes are currently available to read.
func (m *CircularManager) Empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filled == 0
}

// Front returns a BufferChunk of up to `filled` bytes starting at the
// current read offset; because the region is doubly mapped, this view is
// always contiguous even when it straddles the physical wrap point.
func (m *CircularManager) Front() buffer.BufferChunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.filled == 0 {
		return buffer.Null()
	}
	view := m.region.Slice(m.offset, m.offset+m.filled)
	return buffer.NewChunk(view, buffer.Int8)
}

// Pop advances the read offset by numBytes modulo the region capacity.
func (m *CircularManager) Pop(numBytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if numBytes > m.filled {
		numBytes = m.filled
	}
	m.offset = (m.offset + numBytes) % m.capacity
	m.filled -= numBytes
}

// Push advances the fill count by the length of the returned buffer's
// backing region, signalling that new bytes have been written into the
// ring by the producer side. CircularManager has no discrete ready-queue,
// so Push does not return buf to a free list — it simply accounts for
// freshly written capacity becoming readable.
func (m *CircularManager) Push(buf buffer.ManagedBuffer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := buf.Shared.Length()
	if m.filled+n > m.capacity {
		n = m.capacity - m.filled
	}
	m.filled += n
}

// Capacity returns the ring's logical capacity in bytes.
func (m *CircularManager) Capacity() int { return m.capacity }
