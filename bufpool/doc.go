// File: bufpool/doc.go
// Package bufpool implements BufferManager: a polymorphic pool that issues
// ManagedBuffers to an OutputPort and accepts returns from downstream. Three
// variants are provided — generic slab, circular (streaming sinks), and
// custom-allocator — matching spec.md §4.1.
//
// Grounded on the teacher's pool/slab_pool.go (ring-deque slab allocator)
// and pool/numapool.go (caller-supplied NUMAAllocator injection), and on
// the original Pothos GenericBufferManager.cpp pop()/push() reuse-in-place
// logic (original_source/lib/Framework/Builtin/GenericBufferManager.cpp).
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package bufpool
