// File: buffer/managed.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ManagedBuffer is a SharedBuffer borrowed from a BufferManager. Exactly one
// manager owns a managed buffer for its lifetime; when the last holder drops
// it, the buffer is pushed back into the manager if it carries one, or its
// memory is released outright if its manager reference is nil.
//
// The manager reference is an ordinary (strong) interface value: an issued
// ManagedBuffer keeps its manager, and with it the manager's pool,
// reachable for as long as the buffer itself is held.

package buffer

import "sync/atomic"

// ManagerRef is the minimal capability a BufferManager exposes back to the
// ManagedBuffers it issued: accept a returned buffer. Implemented by the
// bufpool package's managers.
type ManagerRef interface {
	// Push returns buf to the manager's ready pool. Called at most once per
	// issuance, when the last holder releases the buffer.
	Push(buf ManagedBuffer)
}

type managedState struct {
	refs atomic.Int64
}

// ManagedBuffer wraps a SharedBuffer with slab identity and a reference to
// the manager that issued it.
type ManagedBuffer struct {
	Shared    SharedBuffer
	SlabIndex int

	manager ManagerRef
	state   *managedState
}

// NewManagedBuffer constructs a managed buffer with a single outstanding
// reference, owned by manager.
func NewManagedBuffer(shared SharedBuffer, slabIndex int, manager ManagerRef) ManagedBuffer {
	st := &managedState{}
	st.refs.Store(1)
	return ManagedBuffer{Shared: shared, SlabIndex: slabIndex, manager: manager, state: st}
}

// IsNull reports whether this ManagedBuffer carries no backing state.
func (m ManagedBuffer) IsNull() bool { return m.state == nil }

// Retain increments the reference count and returns the same value for
// chaining, mirroring SharedBuffer.Retain.
func (m ManagedBuffer) Retain() ManagedBuffer {
	if m.state != nil {
		m.state.refs.Add(1)
	}
	return m
}

// Release decrements the reference count. At zero: if the manager reference
// is non-nil, the buffer (with its reference count reset to one) is pushed
// back into the manager; otherwise the underlying SharedBuffer is released.
func (m ManagedBuffer) Release() {
	if m.state == nil {
		return
	}
	if m.state.refs.Add(-1) != 0 {
		return
	}
	if m.manager != nil {
		m.state.refs.Store(1)
		m.manager.Push(m)
		return
	}
	m.Shared.Release()
}

// Manager returns the (possibly nil) owning manager reference.
func (m ManagedBuffer) Manager() ManagerRef { return m.manager }
