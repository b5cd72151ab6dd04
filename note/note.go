// Package note provides a thread-safe container around a nested structure
// with path-based accessors.
//
// A Note owns a map-rooted tree from the nested package and serializes all
// access behind a RWMutex. Reads hand out deep copies, so callers can hold
// results without synchronization; writes go through Set, Insert, Update,
// and Pop.
package note

import (
	"fmt"
	"sync"

	"github.com/Davincible/n-utils/nested"
)

// Note is a synchronized nested-data container rooted at a map.
type Note struct {
	mu   sync.RWMutex
	root *nested.Map
}

// New returns an empty Note.
func New() *Note {
	return &Note{root: nested.NewMap()}
}

// FromMap returns a Note initialized from a native map.
func FromMap(m map[string]any) *Note {
	root, _ := nested.FromAny(m).(*nested.Map)
	if root == nil {
		root = nested.NewMap()
	}
	return &Note{root: root}
}

// FromJSON returns a Note parsed from a JSON object, preserving key order.
func FromJSON(data []byte) (*Note, error) {
	n, err := nested.DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("note: %w", err)
	}
	root, ok := n.(*nested.Map)
	if !ok {
		return nil, fmt.Errorf("note: %w: JSON root is %s, want object",
			nested.ErrType, n.Kind())
	}
	return &Note{root: root}, nil
}

// Get returns a deep copy of the node at path. An empty path copies the
// whole content. The fallback, when supplied, is returned as given on any
// lookup failure.
func (n *Note) Get(path nested.Path, fallback ...nested.Node) (nested.Node, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	node, err := nested.Get(n.root, path)
	if err != nil {
		if len(fallback) > 0 {
			return fallback[0], nil
		}
		return nil, err
	}
	return node.Clone(), nil
}

// GetAny returns the value at path converted to native Go containers.
func (n *Note) GetAny(path nested.Path, fallback ...any) (any, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return nested.GetAny(n.root, path, fallback...)
}

// Set stores value at path, creating intermediate containers as needed.
func (n *Note) Set(path nested.Path, value nested.Node) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return nested.Set(n.root, path, value)
}

// SetAny converts value with nested.FromAny and stores it at path.
func (n *Note) SetAny(path nested.Path, value any) error {
	return n.Set(path, nested.FromAny(value))
}

// Insert stores value at path; like nested.Insert it overwrites or
// extends, never shifts.
func (n *Note) Insert(path nested.Path, value nested.Node) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return nested.Insert(n.root, path, value)
}

// Pop removes and returns the node at path. The caller owns the returned
// subtree.
func (n *Note) Pop(path nested.Path, fallback ...nested.Node) (nested.Node, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	return nested.Pop(n.root, path, fallback...)
}

// Update combines value with the existing node at path: lists extend,
// maps take the entries of value, and a missing target is set to value
// (scalars are wrapped in a list first). Any other combination fails with
// a type error. An empty path updates the root map.
func (n *Note) Update(path nested.Path, value nested.Node) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	existing, err := nested.Get(n.root, path)
	if err != nil {
		if _, ok := value.(*nested.Scalar); ok {
			value = nested.NewList(value)
		}
		return nested.Set(n.root, path, value.Clone())
	}

	switch target := existing.(type) {
	case *nested.List:
		add, ok := value.(*nested.List)
		if !ok {
			target.Append(value.Clone())
			return nil
		}
		add.Range(func(_ int, elem nested.Node) bool {
			target.Append(elem.Clone())
			return true
		})
		return nil
	case *nested.Map:
		add, ok := value.(*nested.Map)
		if !ok {
			return fmt.Errorf("note: update %q: %w: cannot combine map with %s",
				path.String(), nested.ErrType, value.Kind())
		}
		add.Range(func(k string, v nested.Node) bool {
			target.Set(k, v.Clone())
			return true
		})
		return nil
	}
	return fmt.Errorf("note: update %q: %w: target is %s",
		path.String(), nested.ErrType, existing.Kind())
}

// Keys returns the top-level keys in insertion order.
func (n *Note) Keys() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.root.Keys()
}

// FlatKeys returns the composite keys of the flattened content. The
// separator defaults to nested.DefaultSeparator.
func (n *Note) FlatKeys(sep ...string) []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	opts := []nested.FlattenOption{}
	if len(sep) > 0 {
		opts = append(opts, nested.WithSeparator(sep[0]))
	}
	flat, err := nested.Flatten(n.root, opts...)
	if err != nil {
		return nil
	}
	return flat.Keys()
}

// Flatten returns the flattened content as a single-level map. Values are
// deep copies.
func (n *Note) Flatten(opts ...nested.FlattenOption) (*nested.Map, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	flat, err := nested.Flatten(n.root, opts...)
	if err != nil {
		return nil, err
	}
	return flat.Clone().(*nested.Map), nil
}

// Len returns the number of top-level entries.
func (n *Note) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.root.Len()
}

// Clear removes all content.
func (n *Note) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.root = nested.NewMap()
}

// ToMap returns the content as native Go containers.
func (n *Note) ToMap() map[string]any {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out, _ := nested.ToAny(n.root).(map[string]any)
	return out
}

// Snapshot returns a deep copy of the content tree.
func (n *Note) Snapshot() *nested.Map {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.root.Clone().(*nested.Map)
}

// MarshalJSON encodes the content as a JSON object in key order.
func (n *Note) MarshalJSON() ([]byte, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.root.MarshalJSON()
}

// UnmarshalJSON replaces the content with the parsed JSON object.
func (n *Note) UnmarshalJSON(data []byte) error {
	parsed, err := FromJSON(data)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.root = parsed.root
	return nil
}

func (n *Note) String() string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.root.String()
}
