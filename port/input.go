// File: port/input.go
// Package port implements InputPort/OutputPort: per-block endpoints
// carrying a BufferAccumulator (input) or BufferManager handle (output), a
// message queue, pending labels, domain identity, reserve count, and
// back-pressure token credit to upstream (spec.md §4.3).
//
// Grounded on protocol/connection.go's WSConnection inbox/outbox channel
// pair and bytesReceived/framesSent atomic counters, repointed from WS
// frames to BufferChunks/Labels/messages.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package port

import (
	"sync"
	"sync/atomic"

	"github.com/hioload-flow/flowcore/accumulator"
	"github.com/hioload-flow/flowcore/buffer"
	"github.com/hioload-flow/flowcore/label"
)

// InputPort is a per-block input endpoint.
type InputPort struct {
	Name   string
	DType  buffer.DType
	Domain string

	acc *accumulator.Accumulator

	mu     sync.Mutex
	labels label.List

	msgMu sync.Mutex
	msgs  []any

	reserveBytes   int
	totalElements  int64
	bytesConsumed  int64
	msgsConsumed   int64
}

// NewInputPort constructs an InputPort backed by a fresh Accumulator.
func NewInputPort(name string, dtype buffer.DType, domain string, alloc buffer.Allocator, numaNode int) *InputPort {
	return &InputPort{
		Name:   name,
		DType:  dtype,
		Domain: domain,
		acc:    accumulator.New(alloc, numaNode),
	}
}

// SetReserve sets the minimum byte count the port demands before it is
// eligible: "downstream says don't deliver less than this" (spec.md §4.3).
func (p *InputPort) SetReserve(n int) { p.reserveBytes = n }

// ReserveBytes returns the configured reserve threshold.
func (p *InputPort) ReserveBytes() int { return p.reserveBytes }

// TotalElements returns the monotonically increasing consumed-element count.
func (p *InputPort) TotalElements() int64 { return atomic.LoadInt64(&p.totalElements) }

// Accumulator exposes the underlying BufferAccumulator for actor-level push
// (LabeledBuffers message delivery).
func (p *InputPort) Accumulator() *accumulator.Accumulator { return p.acc }

// Ready reports eligibility rule 2 (spec.md §4.5): at least reserveBytes
// bytes buffered, or a pending message.
func (p *InputPort) Ready() bool {
	if p.acc.TotalBytesAvailable() >= p.reserveBytes {
		return true
	}
	return p.HasMessage()
}

// Buffer returns the current front BufferChunk, valid until the next
// Consume call.
func (p *InputPort) Buffer() (buffer.BufferChunk, error) {
	if p.reserveBytes > 0 {
		if err := p.acc.Require(p.reserveBytes); err != nil {
			return buffer.BufferChunk{}, err
		}
	}
	return p.acc.Front()
}

// Consume advances totalElements by n/DType.Size(), pops n bytes from the
// accumulator, and ages out labels whose end index has passed.
func (p *InputPort) Consume(n int) {
	p.acc.Pop(n)
	sz := p.DType.Size()
	if sz <= 0 {
		sz = 1
	}
	newTotal := atomic.AddInt64(&p.totalElements, int64(n/sz))
	p.mu.Lock()
	p.labels.AgeOut(newTotal)
	p.mu.Unlock()
	atomic.AddInt64(&p.bytesConsumed, int64(n))
}

// Labels returns the pending labels visible within the current front chunk.
// The visible window is sized off the front chunk's own length, not the
// accumulator's total queued bytes: non-contiguous chunks behind the front
// one are not yet part of what Buffer()/Front() actually returns (spec.md
// §4.3: "range over labels whose index lies within the visible front chunk").
func (p *InputPort) Labels() []label.Label {
	sz := p.DType.Size()
	if sz <= 0 {
		sz = 1
	}
	var frontElems int64
	if front, err := p.acc.Front(); err == nil {
		frontElems = int64(front.Length() / sz)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.labels.Visible(atomic.LoadInt64(&p.totalElements), frontElems)
}

// RemoveLabel erases l by identity from the pending-label list.
func (p *InputPort) RemoveLabel(l label.Label) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.labels.Remove(l)
}

// PushLabel enqueues an incoming label (called by the owning actor when
// delivering a LabeledBuffers message).
func (p *InputPort) PushLabel(l label.Label) {
	p.mu.Lock()
	p.labels.Push(l)
	p.mu.Unlock()
}

// HasMessage reports whether a message is queued.
func (p *InputPort) HasMessage() bool {
	p.msgMu.Lock()
	defer p.msgMu.Unlock()
	return len(p.msgs) > 0
}

// PopMessage dequeues the oldest pending message.
func (p *InputPort) PopMessage() (any, bool) {
	p.msgMu.Lock()
	defer p.msgMu.Unlock()
	if len(p.msgs) == 0 {
		return nil, false
	}
	m := p.msgs[0]
	p.msgs = p.msgs[1:]
	atomic.AddInt64(&p.msgsConsumed, 1)
	return m, true
}

// PushMessage enqueues an incoming async message (called by the owning
// actor on AsyncMessage delivery).
func (p *InputPort) PushMessage(obj any) {
	p.msgMu.Lock()
	p.msgs = append(p.msgs, obj)
	p.msgMu.Unlock()
}

// Stats returns consumed byte/message counters for WorkStats sampling.
func (p *InputPort) Stats() (bytesConsumed, msgsConsumed int64) {
	return atomic.LoadInt64(&p.bytesConsumed), atomic.LoadInt64(&p.msgsConsumed)
}
