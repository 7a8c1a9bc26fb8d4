// File: bridge/sink.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package bridge

import (
	"bytes"
	"net"

	"github.com/hioload-flow/flowcore/archive"
	"github.com/hioload-flow/flowcore/block"
	"github.com/hioload-flow/flowcore/buffer"
	"github.com/hioload-flow/flowcore/flowerr"
	"github.com/hioload-flow/flowcore/port"
	"github.com/hioload-flow/flowcore/wire"
)

// SinkBridge is the sending end of a cross-process flow: it drains a
// single InputPort and writes its buffers, labels, and async messages as
// framed data onto conn.
type SinkBridge struct {
	block.Base
	in    *port.InputPort
	dtype buffer.DType
	conn  net.Conn
}

// NewSinkBridge constructs a SinkBridge writing dtype-typed data arriving
// on an input port named "in0" to conn.
func NewSinkBridge(name string, dtype buffer.DType, conn net.Conn) *SinkBridge {
	s := &SinkBridge{Base: block.Base{BlockName: name}, dtype: dtype, conn: conn}
	s.in = port.NewInputPort("in0", dtype, "bridge", nil, -1)
	s.in.SetReserve(dtype.Size())
	return s
}

func (s *SinkBridge) InputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "in0", DType: s.dtype}}
}

// InputPort exposes the underlying port for wiring by topology.Connect or,
// in tests, for direct accumulator pushes.
func (s *SinkBridge) InputPort() *port.InputPort { return s.in }

// Activate performs the handshake before any frame is forwarded.
func (s *SinkBridge) Activate() error {
	_, err := openComms(s.conn, s.dtype)
	return err
}

// Work drains every pending message, then forwards up to MinInElements
// elements from the input's front chunk as a single B frame, preceded by an
// L frame for each label visible on that chunk.
func (s *SinkBridge) Work(info block.WorkInfo) error {
	for {
		obj, ok := s.in.PopMessage()
		if !ok {
			break
		}
		if err := s.writeObject(wire.TypeMessage, obj); err != nil {
			return flowerr.Proxy("bridge: failed to write message frame").WithContext("cause", err.Error())
		}
	}

	if info.MinInElements <= 0 {
		return nil
	}
	chunk, err := s.in.Buffer()
	if err != nil {
		return nil
	}
	n := info.MinInElements * s.dtype.Size()
	if chunk.Length() < n {
		n = chunk.Length()
	}
	if n <= 0 {
		return nil
	}

	for _, l := range s.in.Labels() {
		if err := s.writeObject(wire.TypeLabel, l); err != nil {
			return flowerr.Proxy("bridge: failed to write label frame").WithContext("cause", err.Error())
		}
	}

	if err := wire.WriteFrame(s.conn, &wire.Frame{Type: wire.TypeBuffer, Payload: chunk.Slice(0, n).Bytes()}); err != nil {
		return flowerr.Proxy("bridge: failed to write buffer frame").WithContext("cause", err.Error())
	}
	s.in.Consume(n)
	return nil
}

func (s *SinkBridge) writeObject(t wire.Type, obj any) error {
	var buf bytes.Buffer
	if err := archive.SaveObject(archive.NewOStreamArchiver(&buf), obj); err != nil {
		return err
	}
	return wire.WriteFrame(s.conn, &wire.Frame{Type: t, Payload: buf.Bytes()})
}

// Deactivate closes the connection.
func (s *SinkBridge) Deactivate() error {
	return s.conn.Close()
}
