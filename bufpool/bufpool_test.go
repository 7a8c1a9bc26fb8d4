package bufpool_test

import (
	"testing"

	"github.com/hioload-flow/flowcore/bufpool"
)

func TestSlabManagerPopReuseInPlace(t *testing.T) {
	m := bufpool.NewSlabManager()
	if err := m.Init(bufpool.Args{BufferSize: 1024, NumBuffers: 2, NodeAffinity: -1}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if m.Empty() {
		t.Fatalf("expected non-empty after init")
	}
	front := m.Front()
	if front.Length() != 1024 {
		t.Fatalf("expected 1024 bytes, got %d", front.Length())
	}
	m.Pop(100) // < half buffer size: reuse in place
	front = m.Front()
	if front.Length() != 924 {
		t.Fatalf("expected reuse-in-place length 924, got %d", front.Length())
	}
}

func TestSlabManagerPopRetiresBuffer(t *testing.T) {
	m := bufpool.NewSlabManager()
	if err := m.Init(bufpool.Args{BufferSize: 100, NumBuffers: 2, NodeAffinity: -1}); err != nil {
		t.Fatalf("init: %v", err)
	}
	m.Pop(60) // >= half: retires head buffer
	front := m.Front()
	if front.Length() != 100 {
		t.Fatalf("expected second buffer of full length 100, got %d", front.Length())
	}
}

func TestSlabManagerPushReturnsBuffer(t *testing.T) {
	m := bufpool.NewSlabManager()
	_ = m.Init(bufpool.Args{BufferSize: 64, NumBuffers: 1, NodeAffinity: -1})
	front := m.Front()
	if front.IsNull() {
		t.Fatalf("expected a buffer")
	}
	front.Managed.Release() // drops last ref -> Manager.Push -> back in ready deque
	if m.Empty() {
		t.Fatalf("expected buffer pushed back into ready deque")
	}
}

func TestCircularManagerInitStartsEmptyWithCapacity(t *testing.T) {
	m := bufpool.NewCircularManager()
	if err := m.Init(bufpool.Args{BufferSize: 16, NodeAffinity: -1}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !m.Empty() {
		t.Fatalf("expected empty initially")
	}
	if m.Capacity() != 16 {
		t.Fatalf("expected capacity 16, got %d", m.Capacity())
	}
}
