// File: actor/message.go
// Package actor implements WorkerActor: one per block, owning the
// block's port state, processing inbound port messages, deciding
// eligibility, and invoking Block.Work (spec.md §4.5).
//
// Grounded on the teacher's internal/concurrency/eventloop.go (batched,
// single-consumer handler-list dispatch over a channel inbox) and
// internal/concurrency/executor.go's worker/stop lifecycle, generalized
// from raw api.Event values to the typed message taxonomy below.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package actor

import (
	"github.com/hioload-flow/flowcore/buffer"
	"github.com/hioload-flow/flowcore/bufpool"
	"github.com/hioload-flow/flowcore/label"
	"github.com/hioload-flow/flowcore/port"
)

// message is the sealed set of types an Actor's inbox accepts, matching
// spec.md §4.5's taxonomy: LabeledBuffers, AsyncMessage, Token,
// BufferManager, Bump, Activate, Deactivate, Shutdown, OpaqueCall.
type message interface{ isActorMessage() }

// labeledBuffersMsg carries an upstream produce: a chunk plus any labels
// riding with it, destined for a specific named input port.
type labeledBuffersMsg struct {
	portName string
	chunk    buffer.BufferChunk
	labels   []label.Label
}

func (labeledBuffersMsg) isActorMessage() {}

// asyncMessageMsg carries an upstream postMessage object.
type asyncMessageMsg struct {
	portName string
	obj      any
}

func (asyncMessageMsg) isActorMessage() {}

// tokenMsg notifies this actor's named OutputPort that a downstream
// ManagedBuffer returned, crediting back one unit of back-pressure token.
type tokenMsg struct {
	portName string
	input    *port.InputPort
}

func (tokenMsg) isActorMessage() {}

// bufferManagerMsg lets a downstream actor advertise its BufferManager to
// this (upstream) actor, e.g. so a domain-matching copy stage can target
// the downstream's own manager directly.
type bufferManagerMsg struct {
	portName string
	manager  bufpool.Manager
}

func (bufferManagerMsg) isActorMessage() {}

// bumpMsg requests re-evaluation of eligibility with no payload; blocks
// request this via Yield to advance without consuming input (spec.md §9).
type bumpMsg struct{}

func (bumpMsg) isActorMessage() {}

// activateMsg/deactivateMsg/shutdownMsg drive the actor's lifecycle.
type activateMsg struct{ reply chan error }

func (activateMsg) isActorMessage() {}

type deactivateMsg struct{ reply chan error }

func (deactivateMsg) isActorMessage() {}

type shutdownMsg struct{ reply chan error }

func (shutdownMsg) isActorMessage() {}

// opaqueCallMsg dispatches a registered call/slot/signal through the
// actor's serialized inbox so it never races with an in-flight Work.
type opaqueCallMsg struct {
	name  string
	args  []any
	reply chan opaqueCallResult
}

func (opaqueCallMsg) isActorMessage() {}

type opaqueCallResult struct {
	value any
	err   error
}
