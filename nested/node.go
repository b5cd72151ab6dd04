// Package nested provides a typed tree model for heterogeneous nested data
// and path-based operations over it.
//
// A structure is a tree of three node kinds: Map (ordered string-keyed
// mapping), List (sequence), and Scalar (leaf wrapping an arbitrary Go
// value). Operations navigate structures with a Path, a sequence of steps
// where each step is either a mapping key or a sequence index.
//
// Features:
//   - Get, Set, Insert, Pop with optional fallback values
//   - Automatic creation of intermediate containers during writes
//   - Predicate filtering that rebuilds structures without matching leaves
//   - Flatten/Unflatten between trees and composite-keyed maps
//   - Merging of multiple structures with duplicate-key policies
//   - Conversion to and from native Go containers and JSON
//
// Mutating operations (Set, Insert, Pop) modify the structure in place.
// Reading operations (Get, Filter, Flatten) never modify their input.
// Structures are not safe for concurrent mutation; see the note package
// for a synchronized container. Cyclic structures are not detected and
// will not terminate.
package nested

import (
	"reflect"
)

// Kind identifies the three node kinds of a nested structure.
type Kind uint8

const (
	KindScalar Kind = iota
	KindMap
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	}
	return "unknown"
}

// Node is one node of a nested structure: a *Map, a *List, or a *Scalar.
// The interface is sealed; no other implementations exist.
type Node interface {
	Kind() Kind

	// Clone returns a deep copy. Scalar leaves are immutable and shared.
	Clone() Node

	node()
}

// Map is an ordered mapping node. Keys preserve insertion order, so
// traversal, flattening, and merging are deterministic.
type Map struct {
	keys []string
	vals map[string]Node
}

// NewMap returns an empty mapping node.
func NewMap() *Map {
	return &Map{vals: make(map[string]Node)}
}

func (m *Map) Kind() Kind { return KindMap }

func (m *Map) node() {}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Node, bool) {
	if m == nil || m.vals == nil {
		return nil, false
	}
	v, ok := m.vals[key]
	return v, ok
}

// Set stores value under key, appending the key if it is new.
func (m *Map) Set(key string, value Node) {
	if m.vals == nil {
		m.vals = make(map[string]Node)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = value
}

// Delete removes key and returns its value.
func (m *Map) Delete(key string) (Node, bool) {
	if m == nil || m.vals == nil {
		return nil, false
	}
	v, ok := m.vals[key]
	if !ok {
		return nil, false
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key string, value Node) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.vals[k]) {
			return
		}
	}
}

func (m *Map) Clone() Node {
	if m == nil {
		return NewMap()
	}
	out := &Map{
		keys: make([]string, len(m.keys)),
		vals: make(map[string]Node, len(m.vals)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.vals {
		out.vals[k] = v.Clone()
	}
	return out
}

// List is a sequence node.
type List struct {
	elems []Node
}

// NewList returns a sequence node holding elems.
func NewList(elems ...Node) *List {
	return &List{elems: elems}
}

func (l *List) Kind() Kind { return KindList }

func (l *List) node() {}

// Len returns the number of elements.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.elems)
}

// Get returns the element at index i.
func (l *List) Get(i int) (Node, bool) {
	if l == nil || i < 0 || i >= len(l.elems) {
		return nil, false
	}
	return l.elems[i], true
}

// Set replaces the element at index i. It reports false when i is out of
// range; use Append or the package-level Set to grow a list.
func (l *List) Set(i int, value Node) bool {
	if l == nil || i < 0 || i >= len(l.elems) {
		return false
	}
	l.elems[i] = value
	return true
}

// Append adds elements to the end of the list.
func (l *List) Append(values ...Node) {
	l.elems = append(l.elems, values...)
}

// Remove deletes the element at index i, shifting later elements down,
// and returns the removed element.
func (l *List) Remove(i int) (Node, bool) {
	if l == nil || i < 0 || i >= len(l.elems) {
		return nil, false
	}
	v := l.elems[i]
	l.elems = append(l.elems[:i], l.elems[i+1:]...)
	return v, true
}

// Range calls fn for each element in order until fn returns false.
func (l *List) Range(fn func(i int, value Node) bool) {
	if l == nil {
		return
	}
	for i, v := range l.elems {
		if !fn(i, v) {
			return
		}
	}
}

// grow pads the list with Absent placeholders to at least n elements.
func (l *List) grow(n int) {
	for len(l.elems) < n {
		l.elems = append(l.elems, Absent)
	}
}

func (l *List) Clone() Node {
	if l == nil {
		return NewList()
	}
	out := &List{elems: make([]Node, len(l.elems))}
	for i, v := range l.elems {
		out.elems[i] = v.Clone()
	}
	return out
}

// Scalar is a leaf node wrapping an arbitrary Go value. Scalars are
// immutable; Clone returns the receiver.
type Scalar struct {
	val any
}

// NewScalar returns a leaf node wrapping v. Use FromAny to convert native
// containers; NewScalar does not descend into maps or slices.
func NewScalar(v any) *Scalar {
	return &Scalar{val: v}
}

func (s *Scalar) Kind() Kind { return KindScalar }

func (s *Scalar) node() {}

// Value returns the wrapped Go value.
func (s *Scalar) Value() any {
	if s == nil {
		return nil
	}
	return s.val
}

func (s *Scalar) Clone() Node { return s }

type absentMarker struct{}

// Absent is the placeholder stored in list positions that Set and Insert
// skip over when extending a list beyond its length. It reads as a scalar
// and encodes to JSON null.
var Absent Node = &Scalar{val: absentMarker{}}

// IsAbsent reports whether n is the extension placeholder.
func IsAbsent(n Node) bool {
	s, ok := n.(*Scalar)
	if !ok || s == nil {
		return false
	}
	_, ok = s.val.(absentMarker)
	return ok
}

// Equal reports deep semantic equality. Maps compare as key sets, not by
// insertion order. Scalar values compare with reflect.DeepEqual, so
// numeric values of different Go types are unequal.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case *Map:
		bv := b.(*Map)
		if av.Len() != bv.Len() {
			return false
		}
		equal := true
		av.Range(func(k string, v Node) bool {
			other, ok := bv.Get(k)
			if !ok || !Equal(v, other) {
				equal = false
				return false
			}
			return true
		})
		return equal
	case *List:
		bv := b.(*List)
		if av.Len() != bv.Len() {
			return false
		}
		for i, v := range av.elems {
			if !Equal(v, bv.elems[i]) {
				return false
			}
		}
		return true
	case *Scalar:
		bv := b.(*Scalar)
		return reflect.DeepEqual(av.Value(), bv.Value())
	}
	return false
}

// length returns the child count of a container, or 0 for scalars.
func length(n Node) int {
	switch v := n.(type) {
	case *Map:
		return v.Len()
	case *List:
		return v.Len()
	}
	return 0
}
