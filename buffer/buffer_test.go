package buffer_test

import (
	"math"
	"testing"

	"github.com/hioload-flow/flowcore/buffer"
)

func TestSharedBufferSliceAndRelease(t *testing.T) {
	freed := false
	shared, err := buffer.NewSharedBuffer(64, -1, func(n, _ int) ([]byte, error) {
		return make([]byte, n), nil
	})
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	sub := shared.Slice(0, 32)
	if sub.Length() != 32 {
		t.Fatalf("expected length 32, got %d", sub.Length())
	}
	shared.Release()
	sub.Release()
	_ = freed
}

func TestBufferChunkElements(t *testing.T) {
	shared, _ := buffer.NewSharedBuffer(16, -1, nil)
	chunk := buffer.NewChunk(shared, buffer.Int32)
	if chunk.Elements() != 4 {
		t.Fatalf("expected 4 elements, got %d", chunk.Elements())
	}
}

func TestBufferChunkContiguousExtend(t *testing.T) {
	shared, _ := buffer.NewSharedBuffer(16, -1, nil)
	chunk := buffer.NewChunk(shared, buffer.Int8)
	a := chunk.Slice(0, 8)
	b := chunk.Slice(8, 16)
	if !a.ContiguousWith(b) {
		t.Fatalf("expected contiguous slices")
	}
	merged := a.Extend(b.Length())
	if merged.Length() != 16 {
		t.Fatalf("expected merged length 16, got %d", merged.Length())
	}
}

func TestConvertInt32ToFloat32(t *testing.T) {
	shared, _ := buffer.NewSharedBuffer(8, -1, nil)
	chunk := buffer.NewChunk(shared, buffer.Int32)
	b := chunk.Bytes()
	// store int32 values 1 and 2, little endian
	b[0], b[4] = 1, 2

	out, err := chunk.Convert(buffer.Float32, nil, -1)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	ob := out.Bytes()
	v0 := math.Float32frombits(le32(ob[0:]))
	v1 := math.Float32frombits(le32(ob[4:]))
	if v0 != 1 || v1 != 2 {
		t.Fatalf("unexpected conversion result: %v %v", v0, v1)
	}
}

func TestConvertMissingKernel(t *testing.T) {
	shared, _ := buffer.NewSharedBuffer(8, -1, nil)
	chunk := buffer.NewChunk(shared, buffer.DType{Name: "custom_a", ElemSize: 4})
	_, err := chunk.Convert(buffer.DType{Name: "custom_b", ElemSize: 4}, nil, -1)
	if err == nil {
		t.Fatalf("expected error for unregistered conversion")
	}
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
