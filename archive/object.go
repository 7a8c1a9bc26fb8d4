// File: archive/object.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// SaveObject/LoadObject implement the polymorphic envelope described in
// spec.md §6: a one-byte tag identifies a built-in primitive or container
// shape inline; a polymorphic tag is followed by the registered class's
// 64-bit hash and then its Save/Load body. Round-tripping any of these
// (primitive numeric, string, Buffer, Label, Packet, container) is
// spec.md §8's testable property.
package archive

import "fmt"

type objectTag byte

const (
	tagInt32 objectTag = iota
	tagInt64
	tagFloat32
	tagFloat64
	tagString
	tagBool
	tagSlice
	tagMap
	tagPolymorphic
	tagNil
)

// SaveObject writes v in the polymorphic envelope format: a tag byte, then
// the value. Primitive Go types and container shapes ([]any, map[string]any)
// are recognized directly; anything else must have been registered via
// Register, or ErrUnsupportedObject is returned.
func SaveObject(ar *OStreamArchiver, v any) error {
	switch val := v.(type) {
	case nil:
		return ar.WriteBytes([]byte{byte(tagNil)})
	case int32:
		return writeTagged(ar, tagInt32, func() error { return ar.WriteInt32(val) })
	case int:
		return writeTagged(ar, tagInt32, func() error { return ar.WriteInt32(int32(val)) })
	case int64:
		return writeTagged(ar, tagInt64, func() error { return ar.WriteInt64(val) })
	case float32:
		return writeTagged(ar, tagFloat32, func() error { return ar.WriteFloat32(val) })
	case float64:
		return writeTagged(ar, tagFloat64, func() error { return ar.WriteFloat64(val) })
	case string:
		return writeTagged(ar, tagString, func() error { return ar.WriteString(val) })
	case bool:
		return writeTagged(ar, tagBool, func() error { return ar.WriteBool(val) })
	case []any:
		return writeTagged(ar, tagSlice, func() error {
			if err := ar.WriteInt32(int32(len(val))); err != nil {
				return err
			}
			for _, elem := range val {
				if err := SaveObject(ar, elem); err != nil {
					return err
				}
			}
			return nil
		})
	case map[string]any:
		return writeTagged(ar, tagMap, func() error {
			if err := ar.WriteInt32(int32(len(val))); err != nil {
				return err
			}
			for k, elem := range val {
				if err := ar.WriteString(k); err != nil {
					return err
				}
				if err := SaveObject(ar, elem); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		e, err := findByType(v)
		if err != nil {
			return err
		}
		return writeTagged(ar, tagPolymorphic, func() error {
			if err := ar.WriteInt64(int64(e.hash)); err != nil {
				return err
			}
			return e.save(ar, v)
		})
	}
}

func writeTagged(ar *OStreamArchiver, tag objectTag, body func() error) error {
	if err := ar.WriteBytes([]byte{byte(tag)}); err != nil {
		return err
	}
	return body()
}

// LoadObject reads a value previously written by SaveObject.
func LoadObject(ar *IStreamArchiver) (any, error) {
	var tagBuf [1]byte
	if err := ar.ReadBytes(tagBuf[:]); err != nil {
		return nil, err
	}
	switch objectTag(tagBuf[0]) {
	case tagNil:
		return nil, nil
	case tagInt32:
		return ar.ReadInt32()
	case tagInt64:
		return ar.ReadInt64()
	case tagFloat32:
		return ar.ReadFloat32()
	case tagFloat64:
		return ar.ReadFloat64()
	case tagString:
		return ar.ReadString()
	case tagBool:
		return ar.ReadBool()
	case tagSlice:
		n, err := ar.ReadInt32()
		if err != nil {
			return nil, err
		}
		out := make([]any, n)
		for i := range out {
			elem, err := LoadObject(ar)
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil
	case tagMap:
		n, err := ar.ReadInt32()
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, n)
		for i := int32(0); i < n; i++ {
			k, err := ar.ReadString()
			if err != nil {
				return nil, err
			}
			elem, err := LoadObject(ar)
			if err != nil {
				return nil, err
			}
			out[k] = elem
		}
		return out, nil
	case tagPolymorphic:
		h, err := ar.ReadInt64()
		if err != nil {
			return nil, err
		}
		e, err := findByHash(uint64(h))
		if err != nil {
			return nil, err
		}
		return e.load(ar)
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", ErrUnsupportedObject, tagBuf[0])
	}
}
