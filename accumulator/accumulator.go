// File: accumulator/accumulator.go
// Package accumulator implements BufferAccumulator: a queue of
// BufferChunks plus a byte counter, amalgamating contiguous chunks and
// producing a front chunk of at least N contiguous bytes on demand,
// copying only when necessary.
//
// Grounded on Pothos's include/Pothos/Framework/BufferAccumulator.hpp
// (_queue/_bytesAvailable/require) and the teacher's ring-deque style in
// pool/ring.go.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package accumulator

import (
	"sync"

	"github.com/hioload-flow/flowcore/buffer"
	"github.com/hioload-flow/flowcore/flowerr"
)

// Accumulator is a per-input-port chunk queue. Every method takes the
// internal lock, so each call on its own is safe from any goroutine; the
// chunk returned by Front is only valid until the next mutator call, so the
// actor owning the port serializes Push/Pop/Require per spec.md §5's
// single-threaded actor model, while TotalBytesAvailable may be read by
// cross-actor eligibility checks.
type Accumulator struct {
	mu    sync.RWMutex
	queue []buffer.BufferChunk

	bytesAvailable int
	numaNode       int
	alloc          buffer.Allocator
}

// New constructs an empty accumulator. alloc backs the fresh buffer
// allocated by Require when a copy is unavoidable (nil uses
// buffer.HeapAllocator).
func New(alloc buffer.Allocator, numaNode int) *Accumulator {
	return &Accumulator{alloc: alloc, numaNode: numaNode}
}

// Empty reports whether zero bytes are available.
func (a *Accumulator) Empty() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bytesAvailable == 0
}

// TotalBytesAvailable returns the total bytes held across all chunks.
func (a *Accumulator) TotalBytesAvailable() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bytesAvailable
}

// Push enqueues chunk. If it is contiguous with the current tail (same
// underlying container, addresses meet), the tail is extended in place
// instead of growing the queue.
func (a *Accumulator) Push(chunk buffer.BufferChunk) {
	if chunk.IsNull() || chunk.Length() == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if n := len(a.queue); n > 0 && a.queue[n-1].ContiguousWith(chunk) {
		a.queue[n-1] = a.queue[n-1].Extend(chunk.Length())
	} else {
		a.queue = append(a.queue, chunk)
	}
	a.bytesAvailable += chunk.Length()
}

// Front returns the head chunk reference, valid until the next mutator
// call. Fails with a PortAccessError when the accumulator is empty.
func (a *Accumulator) Front() (buffer.BufferChunk, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.queue) == 0 {
		return buffer.BufferChunk{}, flowerr.PortAccess("accumulator: front() called while empty")
	}
	return a.queue[0], nil
}

// Pop drops numBytes from the front of the accumulator, possibly removing
// head chunks entirely.
func (a *Accumulator) Pop(numBytes int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	remaining := numBytes
	for remaining > 0 && len(a.queue) > 0 {
		head := a.queue[0]
		if head.Length() <= remaining {
			remaining -= head.Length()
			a.bytesAvailable -= head.Length()
			a.queue = a.queue[1:]
			continue
		}
		a.queue[0] = head.Slice(remaining, head.Length())
		a.bytesAvailable -= remaining
		remaining = 0
	}
}

// Require enforces a minimum contiguous front-chunk size: if the front
// chunk is shorter than numBytes, this copies the first numBytes bytes
// from successive chunks into a fresh pool buffer and replaces the head.
// This is the only place the core copies sample data, and only on
// explicit demand. Fails with a PortAccessError when the accumulator is
// empty, and with BufferCapacityError if it holds some bytes but fewer than
// numBytes in total.
func (a *Accumulator) Require(numBytes int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.queue) == 0 {
		return flowerr.PortAccess("accumulator: require() called while empty")
	}
	if a.queue[0].Length() >= numBytes {
		return nil
	}
	if a.bytesAvailable < numBytes {
		return flowerr.BufferCapacity("accumulator: require() exceeds total bytes available").
			WithContext("requested", numBytes).WithContext("available", a.bytesAvailable)
	}

	dtype := a.queue[0].DType
	shared, err := buffer.NewSharedBuffer(numBytes, a.numaNode, a.alloc)
	if err != nil {
		return err
	}
	merged := buffer.NewChunk(shared, dtype)
	dst := merged.Bytes()

	copied := 0
	consumedChunks := 0
	for copied < numBytes && consumedChunks < len(a.queue) {
		cur := a.queue[consumedChunks]
		n := cur.Length()
		if copied+n > numBytes {
			n = numBytes - copied
		}
		copy(dst[copied:copied+n], cur.Bytes()[:n])
		copied += n
		consumedChunks++
	}

	// Replace the consumed prefix with: [merged, remainder-of-last-chunk...]
	lastIdx := consumedChunks - 1
	last := a.queue[lastIdx]
	rest := a.queue[consumedChunks:]
	newQueue := make([]buffer.BufferChunk, 0, len(rest)+2)
	newQueue = append(newQueue, merged)
	if leftover := last.Length() - (copied - sumLenBefore(a.queue[:lastIdx])); leftover > 0 {
		newQueue = append(newQueue, last.Slice(last.Length()-leftover, last.Length()))
	}
	newQueue = append(newQueue, rest...)
	a.queue = newQueue
	return nil
}

func sumLenBefore(chunks []buffer.BufferChunk) int {
	total := 0
	for _, c := range chunks {
		total += c.Length()
	}
	return total
}

// UniqueManagedBufferCount reports how many distinct ManagedBuffers are
// enqueued. Expensive: for debug/stats purposes only, per the original
// Pothos BufferAccumulator.hpp contract.
func (a *Accumulator) UniqueManagedBufferCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	seen := make(map[*buffer.ManagedBuffer]struct{}, len(a.queue))
	for _, c := range a.queue {
		if c.Managed != nil {
			seen[c.Managed] = struct{}{}
		}
	}
	return len(seen)
}

// Clear empties the accumulator, discarding all pending chunks.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queue = nil
	a.bytesAvailable = 0
}
