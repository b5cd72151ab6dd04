package coerce

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// SliceOption adjusts ToSlice behavior.
type SliceOption func(*sliceOptions)

type sliceOptions struct {
	flatten bool
	dropNil bool
	unique  bool
	values  bool
}

// WithFlatten flattens nested slices recursively.
func WithFlatten() SliceOption {
	return func(o *sliceOptions) { o.flatten = true }
}

// WithDropNil removes nil elements.
func WithDropNil() SliceOption {
	return func(o *sliceOptions) { o.dropNil = true }
}

// WithUnique removes duplicate comparable elements, keeping first
// occurrences; non-comparable elements are always kept.
func WithUnique() SliceOption {
	return func(o *sliceOptions) { o.unique = true }
}

// WithValues unpacks maps into their values instead of wrapping the map
// as a single element.
func WithValues() SliceOption {
	return func(o *sliceOptions) { o.values = true }
}

// ToSlice converts v into a []any: nil becomes an empty slice, slices
// and arrays convert element-wise, maps wrap as a single element (or
// unpack with WithValues), everything else wraps as a single element.
func ToSlice(v any, opts ...SliceOption) []any {
	var o sliceOptions
	for _, opt := range opts {
		opt(&o)
	}

	out := baseSlice(v, o)
	if o.flatten {
		out = flattenSlice(out)
	}
	if o.dropNil {
		kept := out[:0]
		for _, e := range out {
			if e != nil {
				kept = append(kept, e)
			}
		}
		out = kept
	}
	if o.unique {
		out = uniqueSlice(out)
	}
	return out
}

func baseSlice(v any, o sliceOptions) []any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case []any:
		out := make([]any, len(t))
		copy(out, t)
		return out
	case []byte:
		return []any{t}
	case string:
		return []any{t}
	case map[string]any:
		if o.values {
			out := make([]any, 0, len(t))
			for _, e := range t {
				out = append(out, e)
			}
			return out
		}
		return []any{t}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out
	case reflect.Map:
		if o.values {
			out := make([]any, 0, rv.Len())
			for _, k := range rv.MapKeys() {
				out = append(out, rv.MapIndex(k).Interface())
			}
			return out
		}
	}
	return []any{v}
}

func flattenSlice(in []any) []any {
	out := make([]any, 0, len(in))
	for _, e := range in {
		switch t := e.(type) {
		case []any:
			out = append(out, flattenSlice(t)...)
		default:
			rv := reflect.ValueOf(e)
			if e != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
				if _, isBytes := e.([]byte); !isBytes {
					out = append(out, flattenSlice(baseSlice(e, sliceOptions{}))...)
					continue
				}
			}
			out = append(out, e)
		}
	}
	return out
}

func uniqueSlice(in []any) []any {
	seen := make(map[any]struct{}, len(in))
	out := make([]any, 0, len(in))
	for _, e := range in {
		if e == nil || !reflect.TypeOf(e).Comparable() {
			out = append(out, e)
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// ToStringMap converts v into a map[string]any: string-keyed maps pass
// through (other key types render with ToString), structs and JSON text
// round-trip through encoding/json.
func ToStringMap(v any) (map[string]any, error) {
	switch t := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out, nil
	case string:
		return decodeMap([]byte(t))
	case []byte:
		return decodeMap(t)
	case json.RawMessage:
		return decodeMap(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		for _, k := range rv.MapKeys() {
			out[ToString(k.Interface())] = rv.MapIndex(k).Interface()
		}
		return out, nil
	case reflect.Struct:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("coerce: %w: %T to map: %v", ErrInvalid, v, err)
		}
		return decodeMap(data)
	case reflect.Pointer:
		if rv.IsNil() {
			return map[string]any{}, nil
		}
		return ToStringMap(rv.Elem().Interface())
	}
	return nil, fmt.Errorf("coerce: %w: %T to map", ErrInvalid, v)
}

func decodeMap(data []byte) (map[string]any, error) {
	out, err := Decode[map[string]any](data)
	if err != nil {
		return nil, fmt.Errorf("coerce: %w: not a JSON object: %v", ErrInvalid, err)
	}
	return out, nil
}
