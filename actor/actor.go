// File: actor/actor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package actor

import (
	"sync"
	"time"

	"github.com/hioload-flow/flowcore/block"
	"github.com/hioload-flow/flowcore/bufpool"
	"github.com/hioload-flow/flowcore/buffer"
	"github.com/hioload-flow/flowcore/internal/sched"
	"github.com/hioload-flow/flowcore/label"
	"github.com/hioload-flow/flowcore/port"
)

const defaultInboxSize = 256

// tokenSource records where an InputPort's bytes come from, so Consume can
// return back-pressure tokens across the actor boundary.
type tokenSource struct {
	upstream   *Actor
	outputName string
}

// Actor is a WorkerActor: one per Block, exclusively owning that block's
// port state (spec.md §3 "Ownership summary"). Its inbox is processed by
// a single goroutine, so Block.Work is always called without locks
// (spec.md §5 "each actor is single-threaded").
type Actor struct {
	name string
	blk  block.Block

	inputs      []*port.InputPort
	inputByName map[string]*port.InputPort
	outputs     []*port.OutputPort
	outputByName map[string]*port.OutputPort

	tokenSrcMu  sync.Mutex
	tokenSrc    map[*port.InputPort]tokenSource

	inbox chan message
	stop  chan struct{}
	done  chan struct{}

	activated bool

	statsMu sync.Mutex
	stats   block.WorkStats

	maxTimeoutNs int64
}

// New constructs an Actor for blk with the given named ports. maxTimeoutNs
// is the soft ceiling communicated to Block.Work via WorkInfo (spec.md §5
// "work() may sleep for up to workInfo().maxTimeoutNs").
func New(blk block.Block, inputs []*port.InputPort, outputs []*port.OutputPort, maxTimeoutNs int64) *Actor {
	a := &Actor{
		name:         blk.Name(),
		blk:          blk,
		inputs:       inputs,
		inputByName:  make(map[string]*port.InputPort, len(inputs)),
		outputs:      outputs,
		outputByName: make(map[string]*port.OutputPort, len(outputs)),
		tokenSrc:     make(map[*port.InputPort]tokenSource),
		inbox:        make(chan message, defaultInboxSize),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
		maxTimeoutNs: maxTimeoutNs,
	}
	for _, in := range inputs {
		a.inputByName[in.Name] = in
	}
	for _, out := range outputs {
		a.outputByName[out.Name] = out
	}
	return a
}

// Name returns the owning block's name.
func (a *Actor) Name() string { return a.name }

// InputByName / OutputByName expose ports for topology wiring.
func (a *Actor) InputByName(name string) *port.InputPort   { return a.inputByName[name] }
func (a *Actor) OutputByName(name string) *port.OutputPort { return a.outputByName[name] }

// SetTokenSource records that input's bytes are sourced from upstream's
// named OutputPort, so Consume posts a Token message back across the
// actor boundary (spec.md §4.5 "Token (downstream ManagedBuffer returned)").
func (a *Actor) SetTokenSource(input *port.InputPort, upstream *Actor, outputName string) {
	a.tokenSrcMu.Lock()
	a.tokenSrc[input] = tokenSource{upstream: upstream, outputName: outputName}
	a.tokenSrcMu.Unlock()
}

// Start submits the actor's run loop onto pool. The loop occupies one
// pool worker for the actor's lifetime, matching spec.md §5's
// single-threaded-per-actor model atop a shared thread pool group.
func (a *Actor) Start(pool *sched.Pool) error {
	return pool.Submit(func() { a.run() })
}

// Bump implements port.Receiver: requests re-evaluation without payload.
func (a *Actor) Bump() {
	select {
	case a.inbox <- bumpMsg{}:
	default:
	}
}

// Yield implements block.Yielder: a Work call may request immediate
// re-evaluation by posting Bump to itself (spec.md §9).
func (a *Actor) Yield() { a.Bump() }

// DeliverBuffer implements port.Receiver: enqueues a LabeledBuffers
// message for the named input.
func (a *Actor) DeliverBuffer(input *port.InputPort, chunk buffer.BufferChunk, labels []label.Label) {
	a.inbox <- labeledBuffersMsg{portName: input.Name, chunk: chunk, labels: labels}
}

// DeliverMessage implements port.Receiver: enqueues an AsyncMessage.
func (a *Actor) DeliverMessage(input *port.InputPort, obj any) {
	a.inbox <- asyncMessageMsg{portName: input.Name, obj: obj}
}

// PostToken enqueues a Token message onto this (upstream) actor's inbox,
// called by a downstream actor after consuming bytes sourced from
// outputName.
func (a *Actor) PostToken(outputName string, input *port.InputPort) {
	select {
	case a.inbox <- tokenMsg{portName: outputName, input: input}:
	case <-a.stop:
	}
}

// AdvertiseManager enqueues a BufferManager message: a downstream actor
// telling this (upstream) actor which manager it uses.
func (a *Actor) AdvertiseManager(inputName string, manager bufpool.Manager) {
	select {
	case a.inbox <- bufferManagerMsg{portName: inputName, manager: manager}:
	case <-a.stop:
	}
}

// Activate transitions the actor to the activated state. Blocks until the
// transition has been processed by the run loop.
func (a *Actor) Activate() error { return a.send(func(r chan error) message { return activateMsg{reply: r} }) }

// Deactivate halts further Work calls but lets the run loop keep draining
// the inbox (spec.md §4.5 "Deactivate halts further work() calls but
// drains the inbox").
func (a *Actor) Deactivate() error { return a.send(func(r chan error) message { return deactivateMsg{reply: r} }) }

// Shutdown is terminal: once any in-flight Work returns, it deactivates the
// actor and stops the run loop. Port state (queued buffers, labels and
// messages) is not cleared; it stays as it was when the loop stopped.
func (a *Actor) Shutdown() error { return a.send(func(r chan error) message { return shutdownMsg{reply: r} }) }

func (a *Actor) send(build func(chan error) message) error {
	reply := make(chan error, 1)
	select {
	case a.inbox <- build(reply):
	case <-a.done:
		return nil
	}
	select {
	case err := <-reply:
		return err
	case <-a.done:
		return nil
	}
}

// OpaqueCall dispatches a registered call/slot/signal through the actor's
// serialized inbox, so it never races a concurrently running Work.
func (a *Actor) OpaqueCall(name string, args ...any) (any, error) {
	reply := make(chan opaqueCallResult, 1)
	select {
	case a.inbox <- opaqueCallMsg{name: name, args: args, reply: reply}:
	case <-a.done:
		return nil, nil
	}
	select {
	case res := <-reply:
		return res.value, res.err
	case <-a.done:
		return nil, nil
	}
}

// Stats returns a snapshot of the actor's WorkStats.
func (a *Actor) Stats() block.WorkStats {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	return a.stats
}

// Done returns a channel closed once the run loop has exited after
// Shutdown.
func (a *Actor) Done() <-chan struct{} { return a.done }

// Kill forcibly stops the run loop without draining the inbox or waiting
// for an in-flight Work to return — a hard-stop distinct from the
// cooperative Shutdown, used when an actor must be torn down regardless
// of its own responsiveness (e.g. topology teardown on a hung block).
func (a *Actor) Kill() {
	select {
	case <-a.stop:
	default:
		close(a.stop)
	}
}

const (
	minBackoff = time.Microsecond
	maxBackoff = 10 * time.Millisecond
)

// run is the actor's single-consumer loop: drain pending messages, then
// check eligibility and invoke Work at most once per pass. A Work call
// that consumes or produces nothing is treated as idle and backed off
// exponentially (grounded on the teacher's EventLoop backoffNs pattern),
// so a block that stays eligible without making progress does not spin
// the owning pool worker at full CPU.
func (a *Actor) run() {
	defer close(a.done)
	shuttingDown := false
	backoff := minBackoff

	for {
		if a.drainAvailable() {
			shuttingDown = true
		}

		if shuttingDown {
			return
		}

		if a.eligible() {
			if a.invokeWork() {
				backoff = minBackoff
			} else {
				select {
				case <-time.After(backoff):
				case msg := <-a.inbox:
					a.handle(msg)
					if _, ok := msg.(shutdownMsg); ok {
						shuttingDown = true
					}
				case <-a.stop:
					return
				}
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
			}
			continue
		}
		backoff = minBackoff

		select {
		case msg := <-a.inbox:
			a.handle(msg)
			if _, ok := msg.(shutdownMsg); ok {
				shuttingDown = true
			}
		case <-a.stop:
			return
		}
	}
}

// drainAvailable processes every message currently queued without
// blocking, batching control/data updates before the next eligibility
// check — mirroring the teacher's EventLoop batched-drain behavior.
// Returns true if a Shutdown message was processed.
func (a *Actor) drainAvailable() bool {
	for {
		select {
		case msg := <-a.inbox:
			a.handle(msg)
			if _, ok := msg.(shutdownMsg); ok {
				return true
			}
		default:
			return false
		}
	}
}

func (a *Actor) handle(msg message) {
	switch m := msg.(type) {
	case bumpMsg:
		// no-op payload; its purpose is only to wake the eligibility check.
	case labeledBuffersMsg:
		if in := a.inputByName[m.portName]; in != nil {
			in.Accumulator().Push(m.chunk)
			for _, l := range m.labels {
				in.PushLabel(l)
			}
		}
	case asyncMessageMsg:
		if in := a.inputByName[m.portName]; in != nil {
			in.PushMessage(m.obj)
		}
	case tokenMsg:
		if out := a.outputByName[m.portName]; out != nil {
			out.Token(m.input)
		}
	case bufferManagerMsg:
		// Advertisement is informational only: the actor neither stores
		// nor acts on the advertised manager.
	case activateMsg:
		a.activated = true
		m.reply <- nil
	case deactivateMsg:
		a.activated = false
		m.reply <- nil
	case shutdownMsg:
		a.activated = false
		m.reply <- nil
	case opaqueCallMsg:
		v, err := a.blk.OpaqueCallMethod(m.name, m.args...)
		m.reply <- opaqueCallResult{value: v, err: err}
	}
}

// eligible implements spec.md §4.5's four rules. Rule 4 ("no prior Work
// invocation in flight") holds structurally: run is single-goroutine, so
// invokeWork never overlaps itself.
func (a *Actor) eligible() bool {
	if !a.activated {
		return false
	}
	for _, in := range a.inputs {
		if !in.Ready() {
			return false
		}
	}
	for _, out := range a.outputs {
		if !out.Ready() {
			return false
		}
	}
	return true
}

// invokeWork calls Block.Work once and reports whether it made progress
// (consumed or produced at least one byte/message), used by run to decide
// whether to back off before the next eligibility check.
func (a *Actor) invokeWork() bool {
	info := a.buildWorkInfo()

	bytesBefore := make([]int64, len(a.inputs))
	msgsBefore := make([]int64, len(a.inputs))
	for i, in := range a.inputs {
		bytesBefore[i], msgsBefore[i] = in.Stats()
	}
	outBytesBefore := make([]int64, len(a.outputs))
	outMsgsBefore := make([]int64, len(a.outputs))
	for i, out := range a.outputs {
		outBytesBefore[i], outMsgsBefore[i] = out.Stats()
	}

	start := time.Now()
	err := a.blk.Work(info)
	elapsed := time.Since(start)

	a.statsMu.Lock()
	a.stats.NumWorkCalls++
	a.stats.TotalTimeWork += elapsed
	a.stats.LastActivity = start
	a.statsMu.Unlock()

	progress := false
	for i, in := range a.inputs {
		consumed, msgs := in.Stats()
		dBytes := consumed - bytesBefore[i]
		dMsgs := msgs - msgsBefore[i]
		a.statsMu.Lock()
		a.stats.BytesConsumed += dBytes
		a.stats.MsgsConsumed += dMsgs
		a.statsMu.Unlock()
		a.maybeReturnToken(in, dBytes)
		if dBytes > 0 || dMsgs > 0 {
			progress = true
		}
	}
	for i, out := range a.outputs {
		produced, msgs := out.Stats()
		dBytes := produced - outBytesBefore[i]
		dMsgs := msgs - outMsgsBefore[i]
		a.statsMu.Lock()
		a.stats.BytesProduced += dBytes
		a.stats.MsgsProduced += dMsgs
		a.statsMu.Unlock()
		if dBytes > 0 || dMsgs > 0 {
			progress = true
		}
	}

	if err != nil {
		// An error from Work does not tear down the graph. It is neither
		// stored in WorkStats nor returned to any caller; the actor only
		// posts a Bump to itself so eligibility is checked again.
		a.Bump()
	}

	return progress
}

func (a *Actor) maybeReturnToken(in *port.InputPort, consumedDelta int64) {
	if consumedDelta <= 0 {
		return
	}
	a.tokenSrcMu.Lock()
	src, ok := a.tokenSrc[in]
	a.tokenSrcMu.Unlock()
	if ok {
		src.upstream.PostToken(src.outputName, in)
	}
}

func (a *Actor) buildWorkInfo() block.WorkInfo {
	info := block.WorkInfo{MaxTimeoutNs: a.maxTimeoutNs}

	minAll := -1
	minIn := -1
	minOut := -1

	for _, in := range a.inputs {
		avail := in.Accumulator().TotalBytesAvailable()
		sz := in.DType.Size()
		if sz <= 0 {
			sz = 1
		}
		elems := avail / sz
		if minIn < 0 || elems < minIn {
			minIn = elems
		}
		if minAll < 0 || elems < minAll {
			minAll = elems
		}
	}
	for _, out := range a.outputs {
		chunk := out.Buffer()
		sz := out.DType.Size()
		if sz <= 0 {
			sz = 1
		}
		elems := chunk.Length() / sz
		if minOut < 0 || elems < minOut {
			minOut = elems
		}
		if minAll < 0 || elems < minAll {
			minAll = elems
		}
	}

	if minIn < 0 {
		minIn = 0
	}
	if minOut < 0 {
		minOut = 0
	}
	if minAll < 0 {
		minAll = 0
	}

	info.MinInElements = minIn
	info.MinOutElements = minOut
	info.MinElements = minAll
	info.MinAllElements = minAll
	info.MinAllInElements = minIn
	info.MinAllOutElements = minOut
	return info
}
