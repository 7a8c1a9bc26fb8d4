// File: topology/topology.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Topology owns a set of Flows between named blocks and reconciles the
// desired set against the previously committed one on Commit (spec.md
// §4.6). Grounded on facade/hioload.go's construct-then-wire orchestration
// style: a guarded struct built up by sequential setup calls, diagnostics
// via plain log.Printf.
package topology

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hioload-flow/flowcore/actor"
	"github.com/hioload-flow/flowcore/block"
	"github.com/hioload-flow/flowcore/buffer"
	"github.com/hioload-flow/flowcore/flowerr"
	"github.com/hioload-flow/flowcore/internal/sched"
	"github.com/hioload-flow/flowcore/port"
)

// RuntimeConfig mirrors the teacher's facade.Config shape: a plain struct
// with a DefaultRuntimeConfig constructor, covering the knobs Topology
// needs to run its own thread pool and convert-block allocations.
type RuntimeConfig struct {
	NumThreads int
	NUMANode   int
	Allocator  buffer.Allocator
}

// DefaultRuntimeConfig returns sane defaults for a single-process topology.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{NumThreads: 4, NUMANode: -1}
}

type blockEntry struct {
	actor   *actor.Actor
	started bool
	active  bool
}

type committedEdge struct {
	flow    Flow
	convert *actor.Actor // non-nil if a conversion block bridges this edge
	convIn  *port.InputPort
	convOut *port.OutputPort

	domainCopy    *actor.Actor // non-nil if a domain-copy block bridges this edge
	domainCopyIn  *port.InputPort
	domainCopyOut *port.OutputPort

	outActor *actor.Actor
	outPort  *port.OutputPort
	in       *port.InputPort
	inActor  *actor.Actor
}

// portRef names a leaf block's port, the resolution target of a self/inN
// or self/outN hierarchical reference (spec.md §4.6).
type portRef struct {
	blockID  string
	portName string
}

// Topology is itself usable as a Block when nested (spec.md §4.6
// "Hierarchical topologies"): its external input ports are named inN,
// outputs outN, internal self-connections reference self.
type Topology struct {
	mu sync.Mutex

	cfg  *RuntimeConfig
	pool *sched.Pool

	blocks map[string]*blockEntry
	subs   map[string]*Topology

	selfInputs  map[string]portRef
	selfOutputs map[string]portRef

	desired   map[Flow]struct{}
	committed map[Flow]*committedEdge
}

// New constructs an empty Topology running its actors on pool.
func New(pool *sched.Pool, cfg *RuntimeConfig) *Topology {
	if cfg == nil {
		cfg = DefaultRuntimeConfig()
	}
	return &Topology{
		cfg:         cfg,
		pool:        pool,
		blocks:      make(map[string]*blockEntry),
		subs:        make(map[string]*Topology),
		selfInputs:  make(map[string]portRef),
		selfOutputs: make(map[string]portRef),
		desired:     make(map[Flow]struct{}),
		committed:   make(map[Flow]*committedEdge),
	}
}

// AddBlock registers a leaf actor under id. The actor's run loop is
// submitted to the pool immediately; it only starts calling Work once
// Commit activates it.
func (t *Topology) AddBlock(id string, a *actor.Actor) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.blocks[id]; exists {
		return flowerr.Configuration(fmt.Sprintf("block id %q already registered", id))
	}
	if err := a.Start(t.pool); err != nil {
		return err
	}
	t.blocks[id] = &blockEntry{actor: a, started: true}
	return nil
}

// AddSubTopology nests sub under id, so Flatten can walk into it.
func (t *Topology) AddSubTopology(id string, sub *Topology) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.subs[id]; exists {
		return flowerr.Configuration(fmt.Sprintf("sub-topology id %q already registered", id))
	}
	t.subs[id] = sub
	return nil
}

// ExposeInput names one of this Topology's own "inN" ports, resolving it to
// a leaf block's input port for flattening.
func (t *Topology) ExposeInput(selfName, leafBlockID, leafPortName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selfInputs[selfName] = portRef{leafBlockID, leafPortName}
}

// ExposeOutput names one of this Topology's own "outN" ports.
func (t *Topology) ExposeOutput(selfName, leafBlockID, leafPortName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selfOutputs[selfName] = portRef{leafBlockID, leafPortName}
}

// Connect appends a desired Flow (spec.md §4.6). Ids are validated against
// registered blocks/sub-topologies, except "self".
func (t *Topology) Connect(srcID, srcPort, dstID, dstPort string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.validateEndpoint(srcID); err != nil {
		return err
	}
	if err := t.validateEndpoint(dstID); err != nil {
		return err
	}
	t.desired[Flow{srcID, srcPort, dstID, dstPort}] = struct{}{}
	return nil
}

// Disconnect removes a previously Connect-ed Flow from the desired set.
func (t *Topology) Disconnect(srcID, srcPort, dstID, dstPort string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.desired, Flow{srcID, srcPort, dstID, dstPort})
}

func (t *Topology) validateEndpoint(id string) error {
	if id == "self" {
		return nil
	}
	if _, ok := t.blocks[id]; ok {
		return nil
	}
	if _, ok := t.subs[id]; ok {
		return nil
	}
	return flowerr.Configuration(fmt.Sprintf("unknown block id %q", id))
}

// Flatten walks the hierarchy and emits a flat Flow set over leaf blocks
// only (spec.md §4.6); Commit always operates on this flattened form.
func (t *Topology) Flatten() []Flow {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flattenLocked()
}

func (t *Topology) flattenLocked() []Flow {
	flat := make([]Flow, 0, len(t.desired))
	for f := range t.desired {
		srcID, srcPort := t.resolveOut(f.SrcID, f.SrcPort)
		dstID, dstPort := t.resolveIn(f.DstID, f.DstPort)
		flat = append(flat, Flow{srcID, srcPort, dstID, dstPort})
	}
	for _, sub := range t.subs {
		flat = append(flat, sub.flattenLocked()...)
	}
	return flat
}

func (t *Topology) resolveOut(id, p string) (string, string) {
	if id == "self" {
		if ref, ok := t.selfOutputs[p]; ok {
			return ref.blockID, ref.portName
		}
	}
	if sub, ok := t.subs[id]; ok {
		if ref, ok := sub.selfOutputs[p]; ok {
			return ref.blockID, ref.portName
		}
	}
	return id, p
}

func (t *Topology) resolveIn(id, p string) (string, string) {
	if id == "self" {
		if ref, ok := t.selfInputs[p]; ok {
			return ref.blockID, ref.portName
		}
	}
	if sub, ok := t.subs[id]; ok {
		if ref, ok := sub.selfInputs[p]; ok {
			return ref.blockID, ref.portName
		}
	}
	return id, p
}

func (t *Topology) findBlock(id string) *blockEntry {
	if e, ok := t.blocks[id]; ok {
		return e
	}
	for _, sub := range t.subs {
		if e := sub.findBlock(id); e != nil {
			return e
		}
	}
	return nil
}

// Commit diffs the flattened desired set against the previously committed
// one and applies the three-step settle algorithm (spec.md §4.6).
func (t *Topology) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	flat := t.flattenLocked()
	desiredSet := make(map[Flow]struct{}, len(flat))
	for _, f := range flat {
		desiredSet[f] = struct{}{}
	}

	var removed, added []Flow
	for f := range t.committed {
		if _, ok := desiredSet[f]; !ok {
			removed = append(removed, f)
		}
	}
	for f := range desiredSet {
		if _, ok := t.committed[f]; !ok {
			added = append(added, f)
		}
	}

	// Step 1: tear down removed edges.
	for _, f := range removed {
		t.teardown(f)
	}

	// Step 2: wire added edges.
	for _, f := range added {
		if err := t.wire(f); err != nil {
			return err
		}
	}

	// Step 3: settle activation reachability.
	return t.settle()
}

// teardown unwinds whatever chain wire built for f — the real output port,
// an optional conversion block, an optional domain-copy block, the real
// input port — unsubscribing each stage from its immediate predecessor and
// killing any block this edge inserted.
func (t *Topology) teardown(f Flow) {
	edge, ok := t.committed[f]
	if !ok {
		return
	}

	prev := edge.outPort
	if edge.convert != nil {
		prev.Unsubscribe(edge.convIn)
		prev = edge.convOut
	}
	if edge.domainCopy != nil {
		prev.Unsubscribe(edge.domainCopyIn)
		prev = edge.domainCopyOut
	}
	prev.Unsubscribe(edge.in)

	if edge.convert != nil {
		edge.convert.Kill()
	}
	if edge.domainCopy != nil {
		edge.domainCopy.Kill()
	}

	delete(t.committed, f)
}

func (t *Topology) wire(f Flow) error {
	srcEntry := t.findBlock(f.SrcID)
	dstEntry := t.findBlock(f.DstID)
	if srcEntry == nil {
		return flowerr.Configuration(fmt.Sprintf("commit: unknown source block %q", f.SrcID))
	}
	if dstEntry == nil {
		return flowerr.Configuration(fmt.Sprintf("commit: unknown destination block %q", f.DstID))
	}

	out := srcEntry.actor.OutputByName(f.SrcPort)
	if out == nil {
		return flowerr.PortAccess(fmt.Sprintf("commit: %s has no output port %q", f.SrcID, f.SrcPort))
	}
	in := dstEntry.actor.InputByName(f.DstPort)
	if in == nil {
		return flowerr.PortAccess(fmt.Sprintf("commit: %s has no input port %q", f.DstID, f.DstPort))
	}

	edge := &committedEdge{flow: f, outActor: srcEntry.actor, outPort: out, in: in, inActor: dstEntry.actor}

	upstreamActor := srcEntry.actor
	upstreamOutputName := f.SrcPort
	currentOut := out

	if !out.DType.Equal(in.DType) {
		if !buffer.HasConversion(out.DType, in.DType) {
			return flowerr.DTypeMismatch(fmt.Sprintf("commit: %s.%s (%s) -> %s.%s (%s): no registered conversion", f.SrcID, f.SrcPort, out.DType, f.DstID, f.DstPort, in.DType))
		}
		conv := newConvertBlock(fmt.Sprintf("convert:%s.%s->%s.%s", f.SrcID, f.SrcPort, f.DstID, f.DstPort), out.DType, in.DType, currentOut.Domain, in.Domain, t.cfg.Allocator, t.cfg.NUMANode)
		convActor := actor.New(conv, []*port.InputPort{conv.in}, []*port.OutputPort{conv.out}, 0)
		currentOut.Subscribe(conv.in, convActor, creditFor(currentOut))
		convActor.SetTokenSource(conv.in, upstreamActor, upstreamOutputName)
		if err := convActor.Start(t.pool); err != nil {
			return err
		}
		if err := convActor.Activate(); err != nil {
			return err
		}
		edge.convert = convActor
		edge.convIn = conv.in
		edge.convOut = conv.out

		upstreamActor = convActor
		upstreamOutputName = "out"
		currentOut = conv.out
	}

	// spec.md §4.3: "if an InputPort's domain differs from the connected
	// OutputPort's domain, the plumbing inserts an implicit copy into a
	// fresh manager owned by the input side." Checked against whatever is
	// now upstream of in (the real OutputPort, or the conversion block's
	// output if one was just inserted).
	if currentOut.Domain != in.Domain {
		dc := newDomainCopyBlock(fmt.Sprintf("domaincopy:%s.%s->%s.%s", f.SrcID, f.SrcPort, f.DstID, f.DstPort), in.DType, currentOut.Domain, in.Domain, t.cfg.Allocator, t.cfg.NUMANode)
		dcActor := actor.New(dc, []*port.InputPort{dc.in}, []*port.OutputPort{dc.out}, 0)
		currentOut.Subscribe(dc.in, dcActor, creditFor(currentOut))
		dcActor.SetTokenSource(dc.in, upstreamActor, upstreamOutputName)
		if err := dcActor.Start(t.pool); err != nil {
			return err
		}
		if err := dcActor.Activate(); err != nil {
			return err
		}
		edge.domainCopy = dcActor
		edge.domainCopyIn = dc.in
		edge.domainCopyOut = dc.out

		upstreamActor = dcActor
		upstreamOutputName = "out"
		currentOut = dc.out
	}

	currentOut.Subscribe(in, dstEntry.actor, creditFor(currentOut))
	dstEntry.actor.SetTokenSource(in, upstreamActor, upstreamOutputName)

	if reserve := in.ReserveBytes(); reserve == 0 {
		in.SetReserve(in.DType.Size())
	}

	t.committed[f] = edge
	return nil
}

// creditFor derives an OutputPort's initial subscriber credit from its
// manager's buffer count (spec.md §4.6 "wire subscription"), falling back
// to 1 when the manager doesn't expose a buffer count.
func creditFor(out *port.OutputPort) int {
	type statser interface{ Stats() (int64, int64, int64) }
	if s, ok := out.Manager().(statser); ok {
		totalAlloc, _, _ := s.Stats()
		if totalAlloc > 0 {
			return int(totalAlloc)
		}
	}
	return 1
}

// settle starts not-yet-started actors, then sends Activate to every
// reachable actor and Deactivate to every actor that has no committed edge
// touching it (spec.md §4.6 step 3).
func (t *Topology) settle() error {
	reachable := make(map[*actor.Actor]bool)
	for _, e := range t.committed {
		reachable[e.outActor] = true
		reachable[e.inActor] = true
		if e.convert != nil {
			reachable[e.convert] = true
		}
		if e.domainCopy != nil {
			reachable[e.domainCopy] = true
		}
	}

	var allEntries []*blockEntry
	t.collectBlocks(&allEntries)

	for _, be := range allEntries {
		if !be.started {
			if err := be.actor.Start(t.pool); err != nil {
				return err
			}
			be.started = true
		}
	}

	for _, be := range allEntries {
		want := reachable[be.actor]
		if want && !be.active {
			if err := be.actor.Activate(); err != nil {
				return err
			}
			be.active = true
		} else if !want && be.active {
			if err := be.actor.Deactivate(); err != nil {
				log.Printf("topology: deactivate %s: %v", be.actor.Name(), err)
			}
			be.active = false
		}
	}
	return nil
}

// collectBlocks appends every leaf blockEntry reachable from t, recursing
// into sub-topologies. Callers hold t.mu; collectBlocks takes each sub's
// own mu only for the duration of that sub's traversal.
func (t *Topology) collectBlocks(out *[]*blockEntry) {
	for _, be := range t.blocks {
		*out = append(*out, be)
	}
	for _, sub := range t.subs {
		sub.mu.Lock()
		sub.collectBlocks(out)
		sub.mu.Unlock()
	}
}

// WaitInactive returns true once every actor has been idle (no Work
// invocation) for idleSec continuous seconds, or false if timeoutSec
// elapses first (spec.md §4.6).
func (t *Topology) WaitInactive(idleSec, timeoutSec float64) bool {
	idleFor := time.Duration(idleSec * float64(time.Second))
	timeout := time.Duration(timeoutSec * float64(time.Second))
	deadline := time.Now().Add(timeout)
	poll := idleFor / 10
	if poll <= 0 {
		poll = time.Millisecond
	}

	for {
		if t.allIdleSince(idleFor) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(poll)
	}
}

func (t *Topology) allIdleSince(idleFor time.Duration) bool {
	var entries []*blockEntry
	t.mu.Lock()
	t.collectBlocks(&entries)
	t.mu.Unlock()

	now := time.Now()
	for _, be := range entries {
		last := be.actor.Stats().LastActivity
		if last.IsZero() {
			continue
		}
		if now.Sub(last) < idleFor {
			return false
		}
	}
	return true
}

// Close forcibly stops every actor owned by this topology, including any
// inserted conversion blocks and nested sub-topologies — a hard teardown
// for callers retiring a topology entirely (distinct from Commit-ing an
// empty desired set, which deactivates cooperatively per spec.md §5).
func (t *Topology) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.committed {
		if e.convert != nil {
			e.convert.Kill()
		}
		if e.domainCopy != nil {
			e.domainCopy.Kill()
		}
	}
	for _, be := range t.blocks {
		be.actor.Kill()
	}
	for _, sub := range t.subs {
		sub.Close()
	}
}

var _ block.Block = (*Topology)(nil)

// Name satisfies block.Block for hierarchical nesting.
func (t *Topology) Name() string { return "topology" }

// InputPortInfo/OutputPortInfo expose this topology's own self ports.
func (t *Topology) InputPortInfo() []block.PortInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	infos := make([]block.PortInfo, 0, len(t.selfInputs))
	for name := range t.selfInputs {
		infos = append(infos, block.PortInfo{Name: name})
	}
	return infos
}

func (t *Topology) OutputPortInfo() []block.PortInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	infos := make([]block.PortInfo, 0, len(t.selfOutputs))
	for name := range t.selfOutputs {
		infos = append(infos, block.PortInfo{Name: name})
	}
	return infos
}

// OpaqueCallMethod is unused; a nested Topology is driven through Commit,
// not through Block.Work.
func (t *Topology) OpaqueCallMethod(name string, args ...any) (any, error) {
	return nil, fmt.Errorf("topology: no such call %q", name)
}

func (t *Topology) Activate() error   { return nil }
func (t *Topology) Work(block.WorkInfo) error { return nil }
func (t *Topology) Deactivate() error { return nil }
