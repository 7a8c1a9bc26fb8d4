// File: wire/frame.go
// Package wire implements the length-prefixed frame codec for
// cross-process flows (spec.md §6): each frame is
// { uint16 type, uint32 length, bytes[length] }, type one of
// M(essage)=0x4D, L(abel)=0x4C, B(uffer)=0x42, D(type)=0x44,
// H(andshake)=0x48, P(ayload)=0x50.
//
// Grounded on protocol/frame_codec.go's DecodeFrameFromBytes/
// EncodeFrameToBytes shape: a byte-slice decoder that returns
// (frame, consumedBytes, err) with a nil frame and zero consumed meaning
// "incomplete, read more", letting a caller accumulate from a stream
// without a separate buffered-reader state machine.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package wire

import (
	"encoding/binary"
	"errors"
	"io"
)

// Type identifies a frame's payload kind.
type Type uint16

const (
	TypeMessage Type = 0x4D // M
	TypeLabel   Type = 0x4C // L
	TypeBuffer  Type = 0x42 // B
	TypeDType   Type = 0x44 // D
	TypeHeader  Type = 0x48 // H
	TypePayload Type = 0x50 // P
)

func (t Type) String() string {
	switch t {
	case TypeMessage:
		return "M"
	case TypeLabel:
		return "L"
	case TypeBuffer:
		return "B"
	case TypeDType:
		return "D"
	case TypeHeader:
		return "H"
	case TypePayload:
		return "P"
	default:
		return "?"
	}
}

// frameHeaderSize is uint16 type + uint32 length, per spec.md §6.
const frameHeaderSize = 2 + 4

// MaxFramePayload bounds a single frame's payload, mirroring the teacher's
// MaxFramePayload guard against resource exhaustion from a hostile or
// corrupt length field.
const MaxFramePayload = 64 << 20 // 64 MiB

var (
	// ErrFrameTooLarge reports a length field exceeding MaxFramePayload.
	ErrFrameTooLarge = errors.New("wire: frame payload exceeds maximum allowed size")
)

// Frame is one decoded wire frame.
type Frame struct {
	Type    Type
	Payload []byte
}

// DecodeFrame parses raw into a Frame, returning consumed bytes. A nil
// frame with consumed=0 and err=nil means raw holds an incomplete frame;
// the caller should read more and retry.
func DecodeFrame(raw []byte) (*Frame, int, error) {
	if len(raw) < frameHeaderSize {
		return nil, 0, nil
	}
	typ := Type(binary.BigEndian.Uint16(raw[0:2]))
	length := binary.BigEndian.Uint32(raw[2:6])
	if length > MaxFramePayload {
		return nil, 0, ErrFrameTooLarge
	}
	total := frameHeaderSize + int(length)
	if len(raw) < total {
		return nil, 0, nil
	}
	payload := make([]byte, length)
	copy(payload, raw[frameHeaderSize:total])
	return &Frame{Type: typ, Payload: payload}, total, nil
}

// EncodeFrame serializes f into a freshly allocated byte slice.
func EncodeFrame(f *Frame) ([]byte, error) {
	if len(f.Payload) > MaxFramePayload {
		return nil, ErrFrameTooLarge
	}
	buf := make([]byte, frameHeaderSize+len(f.Payload))
	binary.BigEndian.PutUint16(buf[0:2], uint16(f.Type))
	binary.BigEndian.PutUint32(buf[2:6], uint32(len(f.Payload)))
	copy(buf[frameHeaderSize:], f.Payload)
	return buf, nil
}

// WriteFrame encodes and writes f to w.
func WriteFrame(w io.Writer, f *Frame) error {
	buf, err := EncodeFrame(f)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// ReadFrame reads exactly one frame from r, blocking until the header and
// full payload have arrived.
func ReadFrame(r io.Reader) (*Frame, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	typ := Type(binary.BigEndian.Uint16(hdr[0:2]))
	length := binary.BigEndian.Uint32(hdr[2:6])
	if length > MaxFramePayload {
		return nil, ErrFrameTooLarge
	}
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
	}
	return &Frame{Type: typ, Payload: payload}, nil
}
