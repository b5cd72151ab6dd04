package nested

import (
	"fmt"
	"sort"
)

// MergeOption adjusts how Merge combines structures.
type MergeOption func(*mergeOptions)

type mergeOptions struct {
	overwrite bool
	keySuffix bool
	less      func(a, b Node) bool
}

// WithOverwrite makes later values win on duplicate map keys. When both
// the existing and the incoming value are maps they merge recursively
// instead.
func WithOverwrite() MergeOption {
	return func(o *mergeOptions) { o.overwrite = true }
}

// WithKeySuffix stores duplicate map keys under numbered keys (key1,
// key2, ...) instead of collecting their values into a list.
func WithKeySuffix() MergeOption {
	return func(o *mergeOptions) { o.keySuffix = true }
}

// WithSort sorts merged lists with less. Only applies when merging
// lists.
func WithSort(less func(a, b Node) bool) MergeOption {
	return func(o *mergeOptions) { o.less = less }
}

// Merge combines structures of the same kind into a new structure.
// Inputs are deep-copied, never shared.
//
// Maps merge entry by entry. By default a duplicate key collects its
// values into a list; WithOverwrite and WithKeySuffix select the other
// policies. Lists concatenate in order, optionally sorted with WithSort.
//
// Mixed kinds or scalar inputs fail with ErrType. An empty input yields
// an empty map.
func Merge(nodes []Node, opts ...MergeOption) (Node, error) {
	var o mergeOptions
	for _, opt := range opts {
		opt(&o)
	}
	if len(nodes) == 0 {
		return NewMap(), nil
	}

	switch nodes[0].(type) {
	case *Map:
		maps := make([]*Map, len(nodes))
		for i, n := range nodes {
			m, ok := n.(*Map)
			if !ok {
				return nil, fmt.Errorf("nested: merge: %w: mixed kinds (%s at %d)",
					ErrType, kindOf(n), i)
			}
			maps[i] = m
		}
		return mergeMaps(maps, o), nil
	case *List:
		lists := make([]*List, len(nodes))
		for i, n := range nodes {
			l, ok := n.(*List)
			if !ok {
				return nil, fmt.Errorf("nested: merge: %w: mixed kinds (%s at %d)",
					ErrType, kindOf(n), i)
			}
			lists[i] = l
		}
		return mergeLists(lists, o), nil
	}
	return nil, fmt.Errorf("nested: merge: %w: inputs must be maps or lists, got %s",
		ErrType, kindOf(nodes[0]))
}

func mergeMaps(maps []*Map, o mergeOptions) *Map {
	out := NewMap()
	counters := make(map[string]int)
	for _, m := range maps {
		m.Range(func(k string, v Node) bool {
			existing, ok := out.Get(k)
			switch {
			case !ok:
				out.Set(k, v.Clone())
			case o.overwrite:
				em, eok := existing.(*Map)
				vm, vok := v.(*Map)
				if eok && vok {
					DeepUpdate(em, vm.Clone().(*Map))
				} else {
					out.Set(k, v.Clone())
				}
			case o.keySuffix:
				counters[k]++
				out.Set(fmt.Sprintf("%s%d", k, counters[k]), v.Clone())
			default:
				if list, isList := existing.(*List); isList {
					list.Append(v.Clone())
				} else {
					out.Set(k, NewList(existing, v.Clone()))
				}
			}
			return true
		})
	}
	return out
}

func mergeLists(lists []*List, o mergeOptions) *List {
	out := NewList()
	for _, l := range lists {
		l.Range(func(_ int, v Node) bool {
			out.Append(v.Clone())
			return true
		})
	}
	if o.less != nil {
		sort.SliceStable(out.elems, func(i, j int) bool {
			return o.less(out.elems[i], out.elems[j])
		})
	}
	return out
}

// DeepUpdate merges src into dst in place: entries whose values are maps
// on both sides merge recursively, every other entry is replaced with
// the src value. Subtrees of src are shared into dst, not copied.
func DeepUpdate(dst, src *Map) {
	src.Range(func(k string, v Node) bool {
		if existing, ok := dst.Get(k); ok {
			em, eok := existing.(*Map)
			vm, vok := v.(*Map)
			if eok && vok {
				DeepUpdate(em, vm)
				return true
			}
		}
		dst.Set(k, v)
		return true
	})
}
