// File: port/output.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package port

import (
	"sync"
	"sync/atomic"

	"github.com/hioload-flow/flowcore/bufpool"
	"github.com/hioload-flow/flowcore/buffer"
	"github.com/hioload-flow/flowcore/label"
)

// Receiver is the downstream actor's mailbox, as seen from an upstream
// OutputPort. Produce/PostBuffer/PostMessage hand data to Receiver instead
// of touching the downstream InputPort directly, so delivery always
// crosses the actor boundary as a typed message queued on the receiving
// actor's single-consumer inbox (spec.md §4.5: LabeledBuffers,
// AsyncMessage, Bump) — the actor package's WorkerActor implements this.
type Receiver interface {
	// DeliverBuffer enqueues a LabeledBuffers message: chunk plus any
	// labels riding with it, destined for input.
	DeliverBuffer(input *InputPort, chunk buffer.BufferChunk, labels []label.Label)
	// DeliverMessage enqueues an AsyncMessage destined for input.
	DeliverMessage(input *InputPort, obj any)
	// Bump requests the receiving actor re-evaluate eligibility.
	Bump()
}

// subscriber is a downstream InputPort plus its owning actor and the
// back-pressure token credit this OutputPort currently holds for it.
type subscriber struct {
	input    *InputPort
	notifier Receiver
	credit   atomic.Int64
}

// OutputPort is a per-block output endpoint.
type OutputPort struct {
	Name   string
	DType  buffer.DType
	Domain string

	manager bufpool.Manager

	mu      sync.Mutex
	pending label.List

	subMu sync.RWMutex
	subs  []*subscriber

	totalElements int64
	bytesProduced int64
	msgsProduced  int64
}

// NewOutputPort constructs an OutputPort backed by manager.
func NewOutputPort(name string, dtype buffer.DType, domain string, manager bufpool.Manager) *OutputPort {
	return &OutputPort{Name: name, DType: dtype, Domain: domain, manager: manager}
}

// Manager exposes the underlying BufferManager.
func (p *OutputPort) Manager() bufpool.Manager { return p.manager }

// TotalElements returns the monotonically increasing produced-element count.
func (p *OutputPort) TotalElements() int64 { return atomic.LoadInt64(&p.totalElements) }

// Subscribe registers a downstream InputPort with an initial token credit
// (normally the manager's NumBuffers, per spec.md §4.5).
func (p *OutputPort) Subscribe(input *InputPort, notifier Receiver, initialCredit int) {
	s := &subscriber{input: input, notifier: notifier}
	s.credit.Store(int64(initialCredit))
	p.subMu.Lock()
	p.subs = append(p.subs, s)
	p.subMu.Unlock()
}

// Unsubscribe removes a previously registered downstream InputPort.
func (p *OutputPort) Unsubscribe(input *InputPort) {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	for i, s := range p.subs {
		if s.input == input {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			return
		}
	}
}

// Ready reports eligibility rule 3 (spec.md §4.5): manager has a buffer
// available, or every subscriber has withheld a request (i.e. every
// subscriber's credit is positive — "downstream requested no element").
func (p *OutputPort) Ready() bool {
	if !p.manager.Empty() {
		return true
	}
	p.subMu.RLock()
	defer p.subMu.RUnlock()
	for _, s := range p.subs {
		if s.credit.Load() <= 0 {
			return false
		}
	}
	return true
}

// Token credits back one unit for the given downstream input, called when a
// ManagedBuffer returns across the actor boundary (spec.md §4.5 Token msg).
func (p *OutputPort) Token(input *InputPort) {
	p.subMu.RLock()
	defer p.subMu.RUnlock()
	for _, s := range p.subs {
		if s.input == input {
			s.credit.Add(1)
			return
		}
	}
}

// Buffer returns a mutable BufferChunk drawn from the manager; a null
// chunk means the manager is empty (not-ready).
func (p *OutputPort) Buffer() buffer.BufferChunk {
	return p.manager.Front()
}

// PostLabel queues a label to be bundled with the next Produce/PostBuffer.
func (p *OutputPort) PostLabel(l label.Label) {
	p.mu.Lock()
	p.pending.Push(l)
	p.mu.Unlock()
}

// Produce advances totalElements by n/DType.Size(), detaches n bytes from
// the front manager buffer, bundles any pending labels clipped to the
// detached span, and posts the result to every subscriber.
func (p *OutputPort) Produce(n int) {
	chunk := p.manager.Front()
	if chunk.IsNull() || chunk.Length() < n {
		return
	}
	detached := chunk.Slice(0, n)
	p.manager.Pop(n)

	sz := p.DType.Size()
	if sz <= 0 {
		sz = 1
	}
	elems := int64(n / sz)
	baseIndex := atomic.LoadInt64(&p.totalElements)
	atomic.AddInt64(&p.totalElements, elems)
	atomic.AddInt64(&p.bytesProduced, int64(n))

	p.mu.Lock()
	var flushed []label.Label
	for _, l := range p.pending.All() {
		if l.Index < baseIndex+elems {
			flushed = append(flushed, label.Clip(l, baseIndex+elems-l.Index))
		}
	}
	p.pending.AgeOut(baseIndex + elems)
	p.mu.Unlock()

	p.dispatch(detached, flushed)
}

// PostBuffer forwards an externally supplied chunk without copy; labels
// attached to the chunk's carrying list travel with it (callers pass the
// visible labels explicitly since BufferChunk itself carries no labels).
func (p *OutputPort) PostBuffer(chunk buffer.BufferChunk, labels []label.Label) {
	p.dispatch(chunk, labels)
}

// PostMessage sends an asynchronous object to every subscriber's actor.
func (p *OutputPort) PostMessage(obj any) {
	atomic.AddInt64(&p.msgsProduced, 1)
	p.subMu.RLock()
	defer p.subMu.RUnlock()
	for _, s := range p.subs {
		if s.notifier != nil {
			s.notifier.DeliverMessage(s.input, obj)
		} else {
			s.input.PushMessage(obj)
		}
	}
}

func (p *OutputPort) dispatch(chunk buffer.BufferChunk, labels []label.Label) {
	p.subMu.RLock()
	defer p.subMu.RUnlock()
	for _, s := range p.subs {
		s.credit.Add(-1)
		if s.notifier != nil {
			s.notifier.DeliverBuffer(s.input, chunk, labels)
			continue
		}
		s.input.Accumulator().Push(chunk)
		for _, l := range labels {
			s.input.PushLabel(l)
		}
	}
}

// Stats returns produced byte/message counters for WorkStats sampling.
func (p *OutputPort) Stats() (bytesProduced, msgsProduced int64) {
	return atomic.LoadInt64(&p.bytesProduced), atomic.LoadInt64(&p.msgsProduced)
}
