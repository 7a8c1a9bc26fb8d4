// File: block/block.go
// Package block defines the Block capability set (spec.md §3, §9 "Deep
// polymorphism of blocks"): instead of a class hierarchy, a Block is a
// value implementing {inputPortInfo, outputPortInfo, opaqueCallMethod,
// activate, work, deactivate}. Registered block factories produce these
// values; the runtime (actor package) holds them behind this uniform
// interface.
//
// Grounded on the teacher's api/handler.go capability-interface style
// (small, uniformly named methods a concrete type opts into) and
// facade/hioload.go's activate/work/deactivate orchestration.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package block

import (
	"time"

	"github.com/hioload-flow/flowcore/buffer"
)

// PortInfo is purely descriptive port metadata (spec.md §3).
type PortInfo struct {
	Name         string
	IsSignalSlot bool
	DType        buffer.DType
}

// WorkInfo is recomputed before every Work call with the element counts
// available/requested across a block's indexed ports (spec.md §3).
type WorkInfo struct {
	InputPointers  [][]byte
	OutputPointers [][]byte

	MinElements    int
	MinInElements  int
	MinOutElements int

	MinAllElements    int
	MinAllInElements  int
	MinAllOutElements int

	MaxTimeoutNs int64
}

// WorkStats holds the monotonically growing counters sampled by the
// owning WorkerActor after each invocation (spec.md §3).
type WorkStats struct {
	BytesConsumed int64
	BytesProduced int64
	MsgsConsumed  int64
	MsgsProduced  int64

	NumWorkCalls int64

	TotalTimeWork    time.Duration
	TotalTimePreWork time.Duration
	TotalTimePostWork time.Duration

	LastActivity time.Time
}

// Block is the capability set every processing node implements. A block
// author writes Work without locks: the owning WorkerActor guarantees a
// single in-flight invocation per block (spec.md §4.5 eligibility rule 4).
type Block interface {
	// Name identifies the block instance for topology/debug purposes.
	Name() string

	// InputPortInfo / OutputPortInfo describe the block's indexed ports.
	InputPortInfo() []PortInfo
	OutputPortInfo() []PortInfo

	// OpaqueCallMethod invokes a registered call/slot/signal by name,
	// spec.md §3's "registered call/slot/signal surface".
	OpaqueCallMethod(name string, args ...any) (any, error)

	// Activate/Deactivate bracket a run; Work is invoked repeatedly in
	// between whenever the owning actor computes eligibility.
	Activate() error
	Work(info WorkInfo) error
	Deactivate() error
}

// Yielder lets a Work implementation request an immediate re-evaluation
// without consuming input — spec.md §9's "signal blocks" that must wake
// spontaneously. *actor.Actor implements this interface; the actor does not
// hand that reference to its block.
type Yielder interface {
	Yield()
}
