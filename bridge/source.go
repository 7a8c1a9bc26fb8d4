// File: bridge/source.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package bridge

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net"
	"sync"

	"github.com/hioload-flow/flowcore/archive"
	"github.com/hioload-flow/flowcore/block"
	"github.com/hioload-flow/flowcore/bufpool"
	"github.com/hioload-flow/flowcore/buffer"
	"github.com/hioload-flow/flowcore/label"
	"github.com/hioload-flow/flowcore/port"
	"github.com/hioload-flow/flowcore/wire"
)

// sourceEvent is a decoded frame waiting to be dispatched from the
// actor's own Work call, keeping every OutputPort mutation inside the
// owning actor's single goroutine even though the frame arrived on a
// background reader.
type sourceEvent struct {
	kind   wire.Type
	chunk  buffer.BufferChunk
	label  label.Label
	msg    any
}

// SourceBridge is the receiving end of a cross-process flow: it accepts
// framed data over conn and republishes it on a single OutputPort.
type SourceBridge struct {
	block.Base
	out   *port.OutputPort
	dtype buffer.DType
	conn  net.Conn

	events chan sourceEvent
	done   chan struct{}
	wg     sync.WaitGroup

	pendingLabels []label.Label
}

// NewSourceBridge constructs a SourceBridge reading framed dtype-typed
// data from conn and posting it on an output port named "out0".
func NewSourceBridge(name string, dtype buffer.DType, conn net.Conn) *SourceBridge {
	mgr := bufpool.NewSlabManager()
	_ = mgr.Init(bufpool.Args{BufferSize: 1, NumBuffers: 1})
	s := &SourceBridge{
		Base:   block.Base{BlockName: name},
		dtype:  dtype,
		conn:   conn,
		events: make(chan sourceEvent, 64),
		done:   make(chan struct{}),
	}
	s.out = port.NewOutputPort("out0", dtype, "bridge", mgr)
	return s
}

func (s *SourceBridge) OutputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "out0", DType: s.dtype}}
}

// OutputPort exposes the underlying port for wiring by topology.Connect or,
// in tests, by direct Subscribe.
func (s *SourceBridge) OutputPort() *port.OutputPort { return s.out }

// Subscribe registers a downstream input directly on this bridge's output
// port, a convenience equal to SourceBridge.OutputPort().Subscribe(...).
func (s *SourceBridge) Subscribe(input *port.InputPort, notifier port.Receiver, credit int) {
	s.out.Subscribe(input, notifier, credit)
}

// Activate performs the handshake and starts the background frame reader.
func (s *SourceBridge) Activate() error {
	if _, err := openComms(s.conn, s.dtype); err != nil {
		return err
	}
	s.wg.Add(1)
	go s.readLoop()
	return nil
}

func (s *SourceBridge) readLoop() {
	defer s.wg.Done()
	for {
		f, err := wire.ReadFrame(s.conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Printf("bridge: SourceBridge %s read error: %v", s.BlockName, err)
			}
			return
		}
		ev, ok := decodeEvent(f, s.dtype)
		if !ok {
			continue
		}
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

func decodeEvent(f *wire.Frame, dtype buffer.DType) (sourceEvent, bool) {
	switch f.Type {
	case wire.TypeBuffer:
		shared, err := buffer.NewSharedBuffer(len(f.Payload), -1, buffer.HeapAllocator)
		if err != nil {
			log.Printf("bridge: failed to allocate incoming buffer: %v", err)
			return sourceEvent{}, false
		}
		copy(shared.Bytes(), f.Payload)
		return sourceEvent{kind: wire.TypeBuffer, chunk: buffer.NewChunk(shared, dtype)}, true
	case wire.TypeLabel:
		obj, err := archive.LoadObject(archive.NewIStreamArchiver(bytes.NewReader(f.Payload)))
		if err != nil {
			log.Printf("bridge: failed to decode label frame: %v", err)
			return sourceEvent{}, false
		}
		l, ok := obj.(label.Label)
		if !ok {
			return sourceEvent{}, false
		}
		return sourceEvent{kind: wire.TypeLabel, label: l}, true
	case wire.TypeMessage:
		obj, err := archive.LoadObject(archive.NewIStreamArchiver(bytes.NewReader(f.Payload)))
		if err != nil {
			log.Printf("bridge: failed to decode message frame: %v", err)
			return sourceEvent{}, false
		}
		return sourceEvent{kind: wire.TypeMessage, msg: obj}, true
	default:
		return sourceEvent{}, false
	}
}

// Work handles at most one decoded event per call, posting it to the output
// port (a label event is held back instead). Buffer events carry along any
// labels that arrived (as separate L frames) since the previous
// buffer event, matching the producer side's "labels ride with the next
// Produce/PostBuffer" convention.
func (s *SourceBridge) Work(info block.WorkInfo) error {
	select {
	case ev := <-s.events:
		switch ev.kind {
		case wire.TypeBuffer:
			labels := s.pendingLabels
			s.pendingLabels = nil
			s.out.PostBuffer(ev.chunk, labels)
		case wire.TypeLabel:
			s.pendingLabels = append(s.pendingLabels, ev.label)
		case wire.TypeMessage:
			s.out.PostMessage(ev.msg)
		}
	default:
	}
	return nil
}

// Deactivate stops the reader goroutine and closes the connection.
func (s *SourceBridge) Deactivate() error {
	close(s.done)
	err := s.conn.Close()
	s.wg.Wait()
	return err
}
