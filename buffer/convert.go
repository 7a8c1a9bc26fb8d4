// File: buffer/convert.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// DType conversion: BufferChunk.Convert allocates a new-domain buffer sized
// srcElements*newDtype.Size() and invokes a registered conversion kernel
// keyed by (srcDtype, dstDtype). The core does not legislate saturate vs
// truncate policy — that is the registered kernel's decision — but ships a
// handful of default numeric kernels mirroring Pothos's built-in
// conversions (comms/math/TestScale.cpp, TestRotate.cpp in original_source).

package buffer

import (
	"fmt"
	"math"
	"sync"
)

// ConvertFunc converts srcElements elements from src into dst. dst is sized
// for exactly srcElements elements of the destination dtype; src holds
// exactly srcElements elements of the source dtype.
type ConvertFunc func(dst, src []byte, srcElements int)

type convertKey struct{ src, dst string }

var (
	convertMu  sync.RWMutex
	convertReg = map[convertKey]ConvertFunc{}
)

// RegisterConversion installs (or replaces) the kernel used for src->dst
// conversions. Safe for concurrent use; writes take a process-wide
// RWMutex exclusively, lookups take its shared read lock (RLock) so they do
// not block one another, mirroring the plugin-registry concurrency policy
// in spec.md §9.
func RegisterConversion(src, dst DType, fn ConvertFunc) {
	convertMu.Lock()
	defer convertMu.Unlock()
	convertReg[convertKey{src.Name, dst.Name}] = fn
}

func lookupConversion(src, dst DType) (ConvertFunc, bool) {
	convertMu.RLock()
	defer convertMu.RUnlock()
	fn, ok := convertReg[convertKey{src.Name, dst.Name}]
	return fn, ok
}

// HasConversion reports whether a kernel is registered for src->dst, or
// whether the two dtypes are already byte-identical (in which case Convert
// needs no kernel). Callers wiring a connection (topology.Commit) use this
// to decide whether a DType mismatch is resolvable before committing.
func HasConversion(src, dst DType) bool {
	if src.Equal(dst) {
		return true
	}
	_, ok := lookupConversion(src, dst)
	return ok
}

// ErrNoConversion is returned when no kernel is registered for a dtype pair
// and the pair is not byte-identical.
type ErrNoConversion struct{ Src, Dst DType }

func (e *ErrNoConversion) Error() string {
	return fmt.Sprintf("buffer: no conversion kernel registered for %s -> %s", e.Src, e.Dst)
}

// Convert produces a new BufferChunk of dtype `to`, allocated via alloc
// (HeapAllocator if nil) on numaNode, filled by the registered kernel for
// (b.DType, to). If the dtypes are Equal, Convert returns b unchanged (no
// allocation). Returns *ErrNoConversion if no kernel is registered.
func (b BufferChunk) Convert(to DType, alloc Allocator, numaNode int) (BufferChunk, error) {
	if b.DType.Equal(to) {
		return b, nil
	}
	fn, ok := lookupConversion(b.DType, to)
	if !ok {
		return BufferChunk{}, &ErrNoConversion{Src: b.DType, Dst: to}
	}
	n := b.Elements()
	shared, err := NewSharedBuffer(n*to.Size(), numaNode, alloc)
	if err != nil {
		return BufferChunk{}, err
	}
	out := NewChunk(shared, to)
	fn(out.Bytes(), b.Bytes(), n)
	return out, nil
}

func init() {
	RegisterConversion(Int32, Float32, func(dst, src []byte, n int) {
		for i := 0; i < n; i++ {
			v := int32(le32(src[i*4:]))
			put32(dst[i*4:], math.Float32bits(float32(v)))
		}
	})
	RegisterConversion(Float32, Int32, func(dst, src []byte, n int) {
		for i := 0; i < n; i++ {
			f := math.Float32frombits(le32(src[i*4:]))
			// Saturate to int32 range rather than wrap on overflow.
			var v int32
			switch {
			case f >= math.MaxInt32:
				v = math.MaxInt32
			case f <= math.MinInt32:
				v = math.MinInt32
			default:
				v = int32(f)
			}
			put32(dst[i*4:], uint32(v))
		}
	})
	RegisterConversion(Complex64, Float32, func(dst, src []byte, n int) {
		// Complex -> real takes the real part by default, per spec.md §4.7.
		for i := 0; i < n; i++ {
			re := src[i*8 : i*8+4]
			copy(dst[i*4:i*4+4], re)
		}
	})
	RegisterConversion(Int16, Int32, func(dst, src []byte, n int) {
		for i := 0; i < n; i++ {
			v := int16(le16(src[i*2:]))
			put32(dst[i*4:], uint32(int32(v)))
		}
	})
	RegisterConversion(Int32, Int16, func(dst, src []byte, n int) {
		for i := 0; i < n; i++ {
			v := int32(le32(src[i*4:]))
			// Truncate (registered policy: truncating narrow, not saturating).
			put16(dst[i*2:], uint16(int16(v)))
		}
	})
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func put16(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
func put32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
