package accumulator_test

import (
	"testing"

	"github.com/hioload-flow/flowcore/accumulator"
	"github.com/hioload-flow/flowcore/buffer"
	"github.com/hioload-flow/flowcore/flowerr"
)

func newChunk(t *testing.T, n int) buffer.BufferChunk {
	t.Helper()
	shared, err := buffer.NewSharedBuffer(n, -1, nil)
	if err != nil {
		t.Fatalf("NewSharedBuffer: %v", err)
	}
	return buffer.NewChunk(shared, buffer.Int8)
}

func TestFrontOnEmptyReturnsPortAccessError(t *testing.T) {
	a := accumulator.New(nil, -1)
	_, err := a.Front()
	if err == nil {
		t.Fatalf("expected error on empty front()")
	}
	ferr, ok := err.(*flowerr.Error)
	if !ok || ferr.Code != flowerr.CodePortAccess {
		t.Fatalf("expected PortAccess error, got %v", err)
	}
}

func TestPushCoalescesContiguousChunks(t *testing.T) {
	a := accumulator.New(nil, -1)
	shared, err := buffer.NewSharedBuffer(16, -1, nil)
	if err != nil {
		t.Fatalf("NewSharedBuffer: %v", err)
	}
	whole := buffer.NewChunk(shared, buffer.Int8)
	first := whole.Slice(0, 8)
	second := whole.Slice(8, 16)

	a.Push(first)
	a.Push(second)

	if a.TotalBytesAvailable() != 16 {
		t.Fatalf("expected 16 bytes available, got %d", a.TotalBytesAvailable())
	}
	front, err := a.Front()
	if err != nil {
		t.Fatalf("Front: %v", err)
	}
	if front.Length() != 16 {
		t.Fatalf("expected chunks to coalesce into one 16-byte chunk, got length %d", front.Length())
	}
}

func TestPushKeepsNonContiguousChunksSeparate(t *testing.T) {
	a := accumulator.New(nil, -1)
	a.Push(newChunk(t, 8))
	a.Push(newChunk(t, 8))

	if a.TotalBytesAvailable() != 16 {
		t.Fatalf("expected 16 bytes available, got %d", a.TotalBytesAvailable())
	}
	front, err := a.Front()
	if err != nil {
		t.Fatalf("Front: %v", err)
	}
	if front.Length() != 8 {
		t.Fatalf("expected separate chunks (front length 8), got %d", front.Length())
	}
}

func TestPopAcrossChunkBoundary(t *testing.T) {
	a := accumulator.New(nil, -1)
	a.Push(newChunk(t, 8))
	a.Push(newChunk(t, 8))

	a.Pop(10) // drops first chunk entirely (8) plus 2 bytes of the second
	if a.TotalBytesAvailable() != 6 {
		t.Fatalf("expected 6 bytes remaining, got %d", a.TotalBytesAvailable())
	}
	front, err := a.Front()
	if err != nil {
		t.Fatalf("Front: %v", err)
	}
	if front.Length() != 6 {
		t.Fatalf("expected front length 6, got %d", front.Length())
	}
}

func TestRequireMergesEnoughBytesIntoFront(t *testing.T) {
	a := accumulator.New(nil, -1)
	a.Push(newChunk(t, 4))
	a.Push(newChunk(t, 4))
	a.Push(newChunk(t, 4))

	if err := a.Require(10); err != nil {
		t.Fatalf("Require: %v", err)
	}
	front, err := a.Front()
	if err != nil {
		t.Fatalf("Front: %v", err)
	}
	if front.Length() < 10 {
		t.Fatalf("require(10) followed by front().Length() should be >= 10, got %d", front.Length())
	}
	if a.TotalBytesAvailable() != 12 {
		t.Fatalf("expected total bytes unchanged at 12, got %d", a.TotalBytesAvailable())
	}
}

func TestRequireFailsWhenInsufficientTotal(t *testing.T) {
	a := accumulator.New(nil, -1)
	a.Push(newChunk(t, 4))

	err := a.Require(10)
	if err == nil {
		t.Fatalf("expected error when requiring more bytes than available")
	}
	ferr, ok := err.(*flowerr.Error)
	if !ok || ferr.Code != flowerr.CodeBufferCapacity {
		t.Fatalf("expected BufferCapacity error, got %v", err)
	}
}

func TestUniqueManagedBufferCount(t *testing.T) {
	pool := newTestManager()
	a := accumulator.New(nil, -1)

	mb1 := buffer.NewManagedBuffer(mustShared(t, 8), 0, pool)
	mb2 := buffer.NewManagedBuffer(mustShared(t, 8), 1, pool)

	a.Push(buffer.NewManagedChunk(mb1, buffer.Int8))
	a.Push(buffer.NewManagedChunk(mb2, buffer.Int8))

	if got := a.UniqueManagedBufferCount(); got != 2 {
		t.Fatalf("expected 2 unique managed buffers, got %d", got)
	}
}

func mustShared(t *testing.T, n int) buffer.SharedBuffer {
	t.Helper()
	shared, err := buffer.NewSharedBuffer(n, -1, nil)
	if err != nil {
		t.Fatalf("NewSharedBuffer: %v", err)
	}
	return shared
}

type noopManager struct{}

func (noopManager) Push(buf buffer.ManagedBuffer) {}

func newTestManager() buffer.ManagerRef { return noopManager{} }
