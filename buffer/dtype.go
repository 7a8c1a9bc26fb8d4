// File: buffer/dtype.go
// Package buffer implements SharedBuffer/ManagedBuffer/BufferChunk, the
// zero-copy memory primitives that back every port-to-port transfer in the
// scheduler.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buffer

import "fmt"

// DType describes the element type carried by a BufferChunk: a name, the
// per-element size in bytes, and an optional shape for vector elements
// (e.g. a 2-wide complex sample). Equivalent to spec's DType.
type DType struct {
	Name    string
	ElemSize int
	Shape    []int
}

// IsComplex reports whether this dtype carries the "complex_" semantic
// marker used by Convert to decide real-part extraction.
func (d DType) IsComplex() bool {
	return len(d.Name) >= 8 && d.Name[:8] == "complex_"
}

// String returns the canonical form "name[shapeDims]" used for logging and
// topology JSON dumps.
func (d DType) String() string {
	if len(d.Shape) == 0 {
		return d.Name
	}
	return fmt.Sprintf("%s%v", d.Name, d.Shape)
}

// Equal compares two DTypes by name and element size; shape is informational
// only and does not affect equality (two dtypes of equal total element size
// are the same wire dtype even if their shape annotation differs).
func (d DType) Equal(o DType) bool {
	return d.Name == o.Name && d.ElemSize == o.ElemSize
}

// Size returns the per-element size in bytes.
func (d DType) Size() int { return d.ElemSize }

// Common built-in dtypes mirroring Pothos's DType registrations used
// throughout the test fixtures and examples.
var (
	Int8    = DType{Name: "int8", ElemSize: 1}
	Int16   = DType{Name: "int16", ElemSize: 2}
	Int32   = DType{Name: "int32", ElemSize: 4}
	Int64   = DType{Name: "int64", ElemSize: 8}
	Float32 = DType{Name: "float32", ElemSize: 4}
	Float64 = DType{Name: "float64", ElemSize: 8}
	// Complex64 pairs two float32 components per element.
	Complex64 = DType{Name: "complex_float32", ElemSize: 8}
)
