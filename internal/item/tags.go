package item

import "bytes"

type TagType uint8

const (
	TagBool TagType = iota + 1
	TagString
	TagInt32
	TagBytes
)

func (t TagType) String() string {
	switch t {
	case TagBool:
		return "bool"
	case TagString:
		return "string"
	case TagInt32:
		return "int32"
	case TagBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Tag is one typed value in a Tags container.
type Tag struct {
	Type  TagType `json:"type"`
	Bool  bool    `json:"bool,omitempty"`
	Str   string  `json:"str,omitempty"`
	Int   int32   `json:"int,omitempty"`
	Bytes []byte  `json:"bytes,omitempty"`
}

func (t Tag) Equal(o Tag) bool {
	if t.Type != o.Type {
		return false
	}
	switch t.Type {
	case TagBool:
		return t.Bool == o.Bool
	case TagString:
		return t.Str == o.Str
	case TagInt32:
		return t.Int == o.Int
	case TagBytes:
		return bytes.Equal(t.Bytes, o.Bytes)
	}
	return true
}

// Tags is a persistent data container keyed by namespaced strings. Reads are
// typed: asking for a key with the wrong type behaves like a missing key.
type Tags map[string]Tag

func (t Tags) Has(key string, typ TagType) bool {
	v, ok := t[key]
	return ok && v.Type == typ
}

func (t Tags) Bool(key string) (bool, bool) {
	v, ok := t[key]
	if !ok || v.Type != TagBool {
		return false, false
	}
	return v.Bool, true
}

func (t Tags) Str(key string) (string, bool) {
	v, ok := t[key]
	if !ok || v.Type != TagString {
		return "", false
	}
	return v.Str, true
}

func (t Tags) Int32(key string) (int32, bool) {
	v, ok := t[key]
	if !ok || v.Type != TagInt32 {
		return 0, false
	}
	return v.Int, true
}

func (t Tags) Bytes(key string) ([]byte, bool) {
	v, ok := t[key]
	if !ok || v.Type != TagBytes {
		return nil, false
	}
	return v.Bytes, true
}

func (t Tags) SetBool(key string, v bool)     { t[key] = Tag{Type: TagBool, Bool: v} }
func (t Tags) SetString(key string, v string) { t[key] = Tag{Type: TagString, Str: v} }
func (t Tags) SetInt32(key string, v int32)   { t[key] = Tag{Type: TagInt32, Int: v} }

func (t Tags) SetBytes(key string, v []byte) {
	t[key] = Tag{Type: TagBytes, Bytes: bytes.Clone(v)}
}

func (t Tags) Delete(key string) { delete(t, key) }

func (t Tags) Clone() Tags {
	if t == nil {
		return nil
	}
	out := make(Tags, len(t))
	for k, v := range t {
		if v.Bytes != nil {
			v.Bytes = bytes.Clone(v.Bytes)
		}
		out[k] = v
	}
	return out
}

func (t Tags) Equal(o Tags) bool {
	if len(t) != len(o) {
		return false
	}
	for k, v := range t {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
