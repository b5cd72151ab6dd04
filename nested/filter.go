package nested

import "fmt"

// Filter returns a new structure containing only the leaves of root for
// which keep returns true. Containers are rebuilt recursively; a
// container whose filtered result is empty is dropped from its parent,
// including containers that were empty to begin with. List order is
// preserved and gaps are closed.
//
// The root must be a map or list; a scalar root fails with ErrType.
// Filter never modifies root. Scalar leaves in the result are shared
// with the input. Panics raised by keep propagate to the caller.
func Filter(root Node, keep func(Node) bool) (Node, error) {
	switch root.(type) {
	case *Map, *List:
		return filterContainer(root, keep), nil
	}
	return nil, fmt.Errorf("nested: filter: %w: root is %s, want map or list",
		ErrType, kindOf(root))
}

func filterContainer(n Node, keep func(Node) bool) Node {
	switch v := n.(type) {
	case *Map:
		out := NewMap()
		v.Range(func(k string, c Node) bool {
			if kept, ok := filterChild(c, keep); ok {
				out.Set(k, kept)
			}
			return true
		})
		return out
	case *List:
		out := NewList()
		v.Range(func(_ int, c Node) bool {
			if kept, ok := filterChild(c, keep); ok {
				out.Append(kept)
			}
			return true
		})
		return out
	}
	return n
}

func filterChild(c Node, keep func(Node) bool) (Node, bool) {
	switch c.(type) {
	case *Map, *List:
		sub := filterContainer(c, keep)
		if length(sub) == 0 {
			return nil, false
		}
		return sub, true
	}
	if keep(c) {
		return c, true
	}
	return nil, false
}
