package nested

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// FromAny converts a native Go value into a Node tree. Maps become Map
// nodes (keys sorted for determinism, since Go map order is random),
// slices and arrays become List nodes, and everything else becomes a
// Scalar. []byte stays a scalar. A value that already is a Node is
// returned as is.
func FromAny(v any) Node {
	switch t := v.(type) {
	case nil:
		return NewScalar(nil)
	case Node:
		return t
	case []byte:
		return NewScalar(t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			m.Set(k, FromAny(t[k]))
		}
		return m
	case []any:
		l := NewList()
		for _, e := range t {
			l.Append(FromAny(e))
		}
		return l
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		for _, k := range rv.MapKeys() {
			ks := fmt.Sprint(k.Interface())
			keys = append(keys, ks)
			byKey[ks] = rv.MapIndex(k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			m.Set(k, FromAny(byKey[k].Interface()))
		}
		return m
	case reflect.Slice, reflect.Array:
		l := NewList()
		for i := 0; i < rv.Len(); i++ {
			l.Append(FromAny(rv.Index(i).Interface()))
		}
		return l
	case reflect.Pointer:
		if rv.IsNil() {
			return NewScalar(nil)
		}
		return FromAny(rv.Elem().Interface())
	}
	return NewScalar(v)
}

// ToAny converts a Node tree back into native Go containers: Map nodes
// become map[string]any, List nodes become []any, scalars unwrap to
// their value. Absent placeholders become nil.
func ToAny(n Node) any {
	switch v := n.(type) {
	case *Map:
		out := make(map[string]any, v.Len())
		v.Range(func(k string, c Node) bool {
			out[k] = ToAny(c)
			return true
		})
		return out
	case *List:
		out := make([]any, 0, v.Len())
		v.Range(func(_ int, c Node) bool {
			out = append(out, ToAny(c))
			return true
		})
		return out
	case *Scalar:
		if IsAbsent(v) {
			return nil
		}
		return v.Value()
	}
	return nil
}

// DecodeJSON parses JSON into a Node tree, preserving object key order.
// Numbers decode as float64, following encoding/json.
func DecodeJSON(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	n, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("nested: decode json: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("nested: decode json: trailing data")
	}
	return n, nil
}

func decodeValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return NewScalar(tok), nil
	}
	switch delim {
	case '{':
		m := NewMap()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v is not a string", keyTok)
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			m.Set(key, v)
		}
		if _, err := dec.Token(); err != nil { // closing brace
			return nil, err
		}
		return m, nil
	case '[':
		l := NewList()
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			l.Append(v)
		}
		if _, err := dec.Token(); err != nil { // closing bracket
			return nil, err
		}
		return l, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %v", delim)
}

// MarshalJSON encodes the map as a JSON object in key insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var marshalErr error
	m.Range(func(k string, v Node) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(k)
		if err != nil {
			marshalErr = err
			return false
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(v)
		if err != nil {
			marshalErr = err
			return false
		}
		buf.Write(vb)
		return true
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes the list as a JSON array.
func (l *List) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	var marshalErr error
	l.Range(func(i int, v Node) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		vb, err := json.Marshal(v)
		if err != nil {
			marshalErr = err
			return false
		}
		buf.Write(vb)
		return true
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalJSON encodes the scalar value; Absent encodes as null.
func (s *Scalar) MarshalJSON() ([]byte, error) {
	if IsAbsent(s) {
		return []byte("null"), nil
	}
	return json.Marshal(s.val)
}

func (m *Map) String() string { return compactString(m) }

func (l *List) String() string { return compactString(l) }

func (s *Scalar) String() string {
	if IsAbsent(s) {
		return "<absent>"
	}
	return fmt.Sprint(s.Value())
}

func compactString(n Node) string {
	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Sprintf("%v", ToAny(n))
	}
	return string(b)
}

// AsReadable renders a structure as indented JSON for inspection. Values
// that cannot be marshaled fall back to their fmt representation.
func AsReadable(n Node) string {
	b, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", ToAny(n))
	}
	return string(b)
}
