// Package keyformat implements prefixed binary keys for ordered key-value
// backends.
package keyformat

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"fmt"
)

const (
	sizeRaw    = -1
	sizeString = -2

	strEscape     = 0x00
	strEscapedNul = 0xff
	strTerminator = 0x00
)

// KeyFormat is a key formatting helper to be used together with key-value
// backends for constructing keys.
//
// Supported element types are uint64, fixed-size binary marshalers, a
// single trailing variable-sized []byte and any number of strings. Strings
// are NUL-terminated (with embedded NULs escaped) so that keys keep the
// lexicographic order of their string elements and prefix iteration works
// on element boundaries.
type KeyFormat struct {
	prefix byte
	layout []int
}

// New constructs a new key format.
func New(prefix byte, layout ...interface{}) *KeyFormat {
	kf := &KeyFormat{
		prefix: prefix,
		layout: make([]int, len(layout)),
	}

	hasRaw := false
	for i, item := range layout {
		size := getSize(item)
		if hasRaw {
			panic("key format: variable-sized []byte must be the last element")
		}
		if size == sizeRaw {
			hasRaw = true
		}
		kf.layout[i] = size
	}
	return kf
}

// Prefix returns the one-byte prefix of the key format.
func (k *KeyFormat) Prefix() byte {
	return k.prefix
}

// Encode encodes values into a key.
//
// You can pass either the same amount of values as specified in the layout
// or less. In case less values are specified this will generate a shorter
// key containing only the specified values, usable as an iteration prefix.
func (k *KeyFormat) Encode(values ...interface{}) []byte {
	if len(values) > len(k.layout) {
		panic("key format: number of values greater than layout")
	}

	var buf bytes.Buffer
	buf.WriteByte(k.prefix)
	for i, v := range values {
		switch k.layout[i] {
		case sizeString:
			s, ok := v.(string)
			if !ok {
				panic(fmt.Sprintf("key format: expected string, got %T", v))
			}
			encodeString(&buf, s)
			continue
		case sizeRaw:
			b, ok := v.([]byte)
			if !ok {
				panic(fmt.Sprintf("key format: expected []byte, got %T", v))
			}
			buf.Write(b)
			continue
		}

		switch t := v.(type) {
		case uint64:
			// Big endian so keys sort correctly in range queries.
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], t)
			buf.Write(b[:])
		case *uint64:
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], *t)
			buf.Write(b[:])
		case encoding.BinaryMarshaler:
			data, err := t.MarshalBinary()
			if err != nil {
				panic(fmt.Sprintf("key format: failed to marshal: %s", err))
			}
			if len(data) != k.layout[i] {
				panic("key format: marshaled element has unexpected size")
			}
			buf.Write(data)
		default:
			panic(fmt.Sprintf("key format: unsupported type: %T", t))
		}
	}
	return buf.Bytes()
}

// Decode decodes a key into its individual values.
//
// Returns false and doesn't modify the passed values if the key prefix
// doesn't match or the key is malformed.
func (k *KeyFormat) Decode(data []byte, values ...interface{}) bool {
	if len(data) == 0 || data[0] != k.prefix {
		return false
	}
	if len(values) > len(k.layout) {
		panic("key format: number of values greater than layout")
	}

	decoded := make([]func(), 0, len(values))
	rest := data[1:]
	for i, v := range values {
		size := k.layout[i]
		switch size {
		case sizeString:
			s, n, ok := decodeString(rest)
			if !ok {
				return false
			}
			rest = rest[n:]
			t, ok := v.(*string)
			if !ok {
				panic(fmt.Sprintf("key format: expected *string, got %T", v))
			}
			decoded = append(decoded, func() { *t = s })
			continue
		case sizeRaw:
			size = len(rest)
		}

		if len(rest) < size {
			return false
		}
		buf := rest[:size]
		rest = rest[size:]

		switch t := v.(type) {
		case *uint64:
			decoded = append(decoded, func() { *t = binary.BigEndian.Uint64(buf) })
		case *[]byte:
			decoded = append(decoded, func() {
				*t = make([]byte, len(buf))
				copy(*t, buf)
			})
		case encoding.BinaryUnmarshaler:
			decoded = append(decoded, func() {
				if err := t.UnmarshalBinary(buf); err != nil {
					panic(fmt.Sprintf("key format: failed to unmarshal: %s", err))
				}
			})
		default:
			panic(fmt.Sprintf("key format: unsupported type: %T", t))
		}
	}

	for _, fn := range decoded {
		fn()
	}
	return true
}

func getSize(l interface{}) int {
	switch t := l.(type) {
	case uint64, *uint64:
		return 8
	case string:
		return sizeString
	case []byte:
		return sizeRaw
	case encoding.BinaryMarshaler:
		// Make sure that the type supports both marshalling and unmarshalling.
		_ = l.(encoding.BinaryUnmarshaler)

		data, _ := t.MarshalBinary()
		return len(data)
	default:
		panic(fmt.Sprintf("key format: unsupported type: %T", l))
	}
}

func encodeString(buf *bytes.Buffer, s string) {
	for i := 0; i < len(s); i++ {
		buf.WriteByte(s[i])
		if s[i] == strEscape {
			buf.WriteByte(strEscapedNul)
		}
	}
	buf.WriteByte(strEscape)
	buf.WriteByte(strTerminator)
}

func decodeString(data []byte) (string, int, bool) {
	var out []byte
	for i := 0; i < len(data); i++ {
		if data[i] != strEscape {
			out = append(out, data[i])
			continue
		}
		if i+1 >= len(data) {
			return "", 0, false
		}
		switch data[i+1] {
		case strEscapedNul:
			out = append(out, strEscape)
			i++
		case strTerminator:
			return string(out), i + 2, true
		default:
			return "", 0, false
		}
	}
	return "", 0, false
}
