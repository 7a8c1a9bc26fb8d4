// File: archive/register.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// init() registers this module's own polymorphic Objects, mirroring the
// per-type ArchiveEntryT<T> instantiations the teacher's archive relies on
// (there, one per translation unit at static-init time; here, one init()
// in this package since Go has no equivalent static-initializer-across-TUs
// ordering to lean on).
package archive

import (
	"github.com/hioload-flow/flowcore/buffer"
	"github.com/hioload-flow/flowcore/label"
)

func init() {
	Register("Pothos/BufferChunk", buffer.BufferChunk{}, saveBufferChunk, loadBufferChunk)
	Register("Pothos/Label", label.Label{}, saveLabel, loadLabel)
	Register("Pothos/Packet", buffer.Packet{}, savePacket, loadPacket)
}

func saveBufferChunk(ar *OStreamArchiver, v any) error {
	chunk := v.(buffer.BufferChunk)
	if err := ar.WriteString(chunk.DType.Name); err != nil {
		return err
	}
	if err := ar.WriteInt32(int32(chunk.DType.ElemSize)); err != nil {
		return err
	}
	b := chunk.Bytes()
	if err := ar.WriteInt32(int32(len(b))); err != nil {
		return err
	}
	return ar.WriteBytes(b)
}

func loadBufferChunk(ar *IStreamArchiver) (any, error) {
	name, err := ar.ReadString()
	if err != nil {
		return nil, err
	}
	elemSize, err := ar.ReadInt32()
	if err != nil {
		return nil, err
	}
	n, err := ar.ReadInt32()
	if err != nil {
		return nil, err
	}
	raw := make([]byte, n)
	if err := ar.ReadBytes(raw); err != nil {
		return nil, err
	}
	shared, err := buffer.NewSharedBuffer(len(raw), -1, buffer.HeapAllocator)
	if err != nil {
		return nil, err
	}
	copy(shared.Bytes(), raw)
	return buffer.NewChunk(shared, buffer.DType{Name: name, ElemSize: int(elemSize)}), nil
}

func saveLabel(ar *OStreamArchiver, v any) error {
	l := v.(label.Label)
	if err := ar.WriteString(l.ID); err != nil {
		return err
	}
	if err := ar.WriteInt64(l.Index); err != nil {
		return err
	}
	if err := ar.WriteInt64(l.Width); err != nil {
		return err
	}
	return SaveObject(ar, l.Data)
}

func loadLabel(ar *IStreamArchiver) (any, error) {
	id, err := ar.ReadString()
	if err != nil {
		return nil, err
	}
	index, err := ar.ReadInt64()
	if err != nil {
		return nil, err
	}
	width, err := ar.ReadInt64()
	if err != nil {
		return nil, err
	}
	data, err := LoadObject(ar)
	if err != nil {
		return nil, err
	}
	return label.Label{ID: id, Data: data, Index: index, Width: width}, nil
}

func savePacket(ar *OStreamArchiver, v any) error {
	p := v.(buffer.Packet)
	if err := saveBufferChunk(ar, p.Payload); err != nil {
		return err
	}
	if err := SaveObject(ar, metadataToAny(p.Metadata)); err != nil {
		return err
	}
	if err := ar.WriteInt32(int32(len(p.Labels))); err != nil {
		return err
	}
	for _, l := range p.Labels {
		if err := saveLabel(ar, l); err != nil {
			return err
		}
	}
	return nil
}

func loadPacket(ar *IStreamArchiver) (any, error) {
	payload, err := loadBufferChunk(ar)
	if err != nil {
		return nil, err
	}
	metaObj, err := LoadObject(ar)
	if err != nil {
		return nil, err
	}
	n, err := ar.ReadInt32()
	if err != nil {
		return nil, err
	}
	labels := make([]label.Label, n)
	for i := range labels {
		l, err := loadLabel(ar)
		if err != nil {
			return nil, err
		}
		labels[i] = l.(label.Label)
	}
	meta, _ := metaObj.(map[string]any)
	return buffer.Packet{Payload: payload.(buffer.BufferChunk), Metadata: meta, Labels: labels}, nil
}

// metadataToAny adapts a nil-safe map[string]any so SaveObject's tagMap
// case always sees a well-formed (possibly empty) map rather than a nil
// interface holding a nil map, which would otherwise encode as tagNil.
func metadataToAny(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
