// File: archive/archive.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package archive implements the bit-exact binary serialization format
// from spec.md §6: integers <=32 bits as little-endian int32, 64-bit as
// int64, strings as int32 length + UTF-8 bytes, polymorphic types
// prefixed by a registered-class hash. Grounded on
// include/Pothos/Archive/StreamArchiver.hpp's OStreamArchiver/
// IStreamArchiver split (one type writes, the other reads, both driven by
// the same Save/Load pair per registered Object).
package archive

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrUnsupportedObject is returned when Save/Load is asked to handle a Go
// value with no registered ArchiveEntry and no built-in primitive case.
var ErrUnsupportedObject = errors.New("archive: unsupported object type")

// OStreamArchiver serializes values to an output stream in the archive's
// bit-exact binary format.
type OStreamArchiver struct {
	w io.Writer
}

// NewOStreamArchiver wraps w for writing.
func NewOStreamArchiver(w io.Writer) *OStreamArchiver { return &OStreamArchiver{w: w} }

// WriteBytes writes a raw byte slice with no length prefix.
func (o *OStreamArchiver) WriteBytes(b []byte) error {
	_, err := o.w.Write(b)
	return err
}

// WriteInt32 writes v as little-endian int32, the format for any integer
// of 32 bits or fewer.
func (o *OStreamArchiver) WriteInt32(v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	return o.WriteBytes(buf[:])
}

// WriteInt64 writes v as little-endian int64.
func (o *OStreamArchiver) WriteInt64(v int64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return o.WriteBytes(buf[:])
}

// WriteFloat32 writes v as its IEEE-754 bit pattern, little-endian.
func (o *OStreamArchiver) WriteFloat32(v float32) error {
	return o.WriteInt32(int32(floatBitsTo32(v)))
}

// WriteFloat64 writes v as its IEEE-754 bit pattern, little-endian.
func (o *OStreamArchiver) WriteFloat64(v float64) error {
	return o.WriteInt64(int64(floatBitsTo64(v)))
}

// WriteString writes an int32 byte-length prefix followed by the UTF-8
// bytes of s.
func (o *OStreamArchiver) WriteString(s string) error {
	if err := o.WriteInt32(int32(len(s))); err != nil {
		return err
	}
	return o.WriteBytes([]byte(s))
}

// WriteBool writes v as a single byte: 1 for true, 0 for false.
func (o *OStreamArchiver) WriteBool(v bool) error {
	b := byte(0)
	if v {
		b = 1
	}
	return o.WriteBytes([]byte{b})
}

// IStreamArchiver deserializes values from an input stream written by an
// OStreamArchiver.
type IStreamArchiver struct {
	r io.Reader
}

// NewIStreamArchiver wraps r for reading.
func NewIStreamArchiver(r io.Reader) *IStreamArchiver { return &IStreamArchiver{r: r} }

// ReadBytes reads exactly len(b) bytes into b.
func (a *IStreamArchiver) ReadBytes(b []byte) error {
	_, err := io.ReadFull(a.r, b)
	return err
}

func (a *IStreamArchiver) ReadInt32() (int32, error) {
	var buf [4]byte
	if err := a.ReadBytes(buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

func (a *IStreamArchiver) ReadInt64() (int64, error) {
	var buf [8]byte
	if err := a.ReadBytes(buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}

func (a *IStreamArchiver) ReadFloat32() (float32, error) {
	v, err := a.ReadInt32()
	if err != nil {
		return 0, err
	}
	return float32FromBits(uint32(v)), nil
}

func (a *IStreamArchiver) ReadFloat64() (float64, error) {
	v, err := a.ReadInt64()
	if err != nil {
		return 0, err
	}
	return float64FromBits(uint64(v)), nil
}

func (a *IStreamArchiver) ReadString() (string, error) {
	n, err := a.ReadInt32()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (a *IStreamArchiver) ReadBool() (bool, error) {
	var buf [1]byte
	if err := a.ReadBytes(buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}
