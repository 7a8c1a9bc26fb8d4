// File: buffer/chunk.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// BufferChunk is a typed, offsetable view over a SharedBuffer/ManagedBuffer:
// base address, length in bytes, element dtype, and element count derived
// from dtype. Supports slicing, dtype conversion (producing a new-domain
// buffer) and a null state.

package buffer

// BufferChunk is the unit of data exchanged between ports.
type BufferChunk struct {
	shared  SharedBuffer
	DType   DType
	Managed *ManagedBuffer // optional provenance/refcount owner
	Next    *BufferChunk   // optional continuation for scatter-style chunks
}

// Null returns the empty BufferChunk.
func Null() BufferChunk { return BufferChunk{} }

// NewChunk wraps a SharedBuffer window with a dtype.
func NewChunk(shared SharedBuffer, dtype DType) BufferChunk {
	return BufferChunk{shared: shared, DType: dtype}
}

// NewManagedChunk wraps a ManagedBuffer's SharedBuffer with a dtype, keeping
// the ManagedBuffer reachable for refcount/provenance purposes.
func NewManagedChunk(mb ManagedBuffer, dtype DType) BufferChunk {
	m := mb
	return BufferChunk{shared: mb.Shared, DType: dtype, Managed: &m}
}

// IsNull reports whether this chunk carries no backing memory.
func (b BufferChunk) IsNull() bool { return b.shared.IsNull() }

// Address returns the chunk's (informational) base address.
func (b BufferChunk) Address() uintptr { return b.shared.Address() }

// Length returns the chunk length in bytes.
func (b BufferChunk) Length() int { return b.shared.Length() }

// Elements returns the element count: Length() / DType.Size().
func (b BufferChunk) Elements() int {
	sz := b.DType.Size()
	if sz <= 0 {
		return 0
	}
	return b.Length() / sz
}

// Bytes returns the raw byte view.
func (b BufferChunk) Bytes() []byte {
	if b.IsNull() {
		return nil
	}
	return b.shared.Bytes()
}

// Shared exposes the underlying SharedBuffer view.
func (b BufferChunk) Shared() SharedBuffer { return b.shared }

// Slice returns a byte-range sub-chunk [from, to) of this chunk, sharing the
// same dtype and provenance.
func (b BufferChunk) Slice(from, to int) BufferChunk {
	out := b
	out.shared = b.shared.Slice(from, to)
	return out
}

// SliceElements returns an element-range sub-chunk [fromElem, toElem),
// converting to byte offsets using DType.Size().
func (b BufferChunk) SliceElements(fromElem, toElem int) BufferChunk {
	sz := b.DType.Size()
	return b.Slice(fromElem*sz, toElem*sz)
}

// ContiguousWith reports whether o directly follows b in the same
// container — i.e. whether BufferAccumulator.Push may coalesce them instead
// of enqueuing a new chunk.
func (b BufferChunk) ContiguousWith(o BufferChunk) bool {
	if b.IsNull() || o.IsNull() {
		return false
	}
	return b.shared.c == o.shared.c && b.Address()+uintptr(b.Length()) == o.Address()
}

// Extend grows this chunk's visible length to cover a contiguous follower
// previously verified with ContiguousWith; the result aliases the same
// container, no copy performed.
func (b BufferChunk) Extend(extraBytes int) BufferChunk {
	out := b
	out.shared.length += extraBytes
	return out
}
