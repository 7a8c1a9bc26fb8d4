// File: bufpool/custom.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The custom-allocator variant is a plain SlabManager whose buffers are
// allocated by a caller-supplied function, applied through InitCustom; the
// closure's captured state must outlive the manager, per spec.md §4.1.

package bufpool

import "github.com/hioload-flow/flowcore/buffer"

// NewCustomManager returns a new, uninitialized SlabManager. allocFn is not
// stored: the returned manager allocates with whatever Args.Allocator its
// Init receives, so the custom allocator takes effect only through
// InitCustom (or an Init call whose Args.Allocator is allocFn).
func NewCustomManager(allocFn buffer.Allocator) *SlabManager {
	return NewSlabManager()
}

// InitCustom is a convenience wrapper over Init that forces args.Allocator
// to allocFn, so callers cannot accidentally bypass the custom allocator.
func InitCustom(m *SlabManager, args Args, allocFn buffer.Allocator) error {
	args.Allocator = allocFn
	return m.Init(args)
}
