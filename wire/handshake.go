// File: wire/handshake.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// H-frame handshake: both peers exchange an H frame carrying protocol
// version and dtype (spec.md §6), mirroring the WS handshake's
// version/feature negotiation in protocol/handshake.go (read one message,
// validate fields, fail fast with a named error — no multi-round
// negotiation).
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hioload-flow/flowcore/buffer"
)

// ProtocolVersion is this module's wire protocol version. A peer
// advertising a different major version is rejected.
const ProtocolVersion uint16 = 1

var (
	// ErrVersionMismatch is returned when a peer's handshake advertises an
	// incompatible protocol version.
	ErrVersionMismatch = errors.New("wire: handshake protocol version mismatch")
	// ErrNotHandshake is returned when the first frame read isn't an H
	// frame.
	ErrNotHandshake = errors.New("wire: expected handshake frame")
)

// Handshake is the negotiated contents of an H frame.
type Handshake struct {
	Version uint16
	DType   buffer.DType
}

// encodeHandshake packs version + dtype name + element size into an H
// frame payload: uint16 version, uint16 name length, name bytes, uint16
// elem size.
func encodeHandshake(hs Handshake) []byte {
	name := []byte(hs.DType.Name)
	buf := make([]byte, 2+2+len(name)+2)
	binary.BigEndian.PutUint16(buf[0:2], hs.Version)
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(name)))
	copy(buf[4:4+len(name)], name)
	binary.BigEndian.PutUint16(buf[4+len(name):], uint16(hs.DType.ElemSize))
	return buf
}

func decodeHandshake(payload []byte) (Handshake, error) {
	if len(payload) < 4 {
		return Handshake{}, fmt.Errorf("wire: handshake payload too short")
	}
	version := binary.BigEndian.Uint16(payload[0:2])
	nameLen := int(binary.BigEndian.Uint16(payload[2:4]))
	if len(payload) < 4+nameLen+2 {
		return Handshake{}, fmt.Errorf("wire: handshake payload truncated")
	}
	name := string(payload[4 : 4+nameLen])
	elemSize := int(binary.BigEndian.Uint16(payload[4+nameLen:]))
	return Handshake{Version: version, DType: buffer.DType{Name: name, ElemSize: elemSize}}, nil
}

// WriteHandshake sends this side's H frame.
func WriteHandshake(w io.Writer, dtype buffer.DType) error {
	return WriteFrame(w, &Frame{Type: TypeHeader, Payload: encodeHandshake(Handshake{Version: ProtocolVersion, DType: dtype})})
}

// ReadHandshake reads the peer's H frame and validates its version
// against ours. Returns the peer's negotiated dtype.
func ReadHandshake(r io.Reader) (Handshake, error) {
	f, err := ReadFrame(r)
	if err != nil {
		return Handshake{}, err
	}
	if f.Type != TypeHeader {
		return Handshake{}, ErrNotHandshake
	}
	hs, err := decodeHandshake(f.Payload)
	if err != nil {
		return Handshake{}, err
	}
	if hs.Version != ProtocolVersion {
		return Handshake{}, fmt.Errorf("%w: peer=%d local=%d", ErrVersionMismatch, hs.Version, ProtocolVersion)
	}
	return hs, nil
}
