// File: bufpool/manager.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package bufpool

import "github.com/hioload-flow/flowcore/buffer"

// Args configures a BufferManager. NodeAffinity is a NUMA node hint (-1 for
// "don't care"); Allocator overrides the backing-memory allocator (nil uses
// buffer.HeapAllocator).
type Args struct {
	BufferSize   int
	NumBuffers   int
	NodeAffinity int
	Allocator    buffer.Allocator
}

// Manager is the BufferManager capability set from spec.md §4.1:
// {Init(args), Empty(), Front() -> BufferChunk, Pop(nBytes), Push(ManagedBuffer)}.
//
// Invariant: a manager must not issue a buffer while any previous issuance
// of the same slab index is live; Pop and Push serialize through the owning
// port's actor (enforced by the actor package, not by this interface —
// Manager implementations are internally thread-safe to accommodate Push
// arriving as a cross-actor Token message).
type Manager interface {
	buffer.ManagerRef

	Init(args Args) error
	Empty() bool
	Front() buffer.BufferChunk
	Pop(numBytes int)
}
