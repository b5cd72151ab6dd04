package nested

import "fmt"

// Get returns the node at path. An empty path returns root itself.
//
// Every step must resolve: keys must be present, indices must be in
// range, and the node kind must match the step kind. The first step that
// fails produces an error wrapping ErrNotFound, ErrType, or ErrBadPath
// and naming the step position. If a fallback is supplied, any failure
// returns the fallback with a nil error instead.
//
// Get never modifies root.
func Get(root Node, path Path, fallback ...Node) (Node, error) {
	cur := root
	for i, step := range path {
		next, err := child(cur, step)
		if err != nil {
			if len(fallback) > 0 {
				return fallback[0], nil
			}
			return nil, stepError("get", path, i, err)
		}
		cur = next
	}
	return cur, nil
}

// GetAny returns the node at path converted to a native Go value via
// ToAny. The fallback, when supplied, is returned as given.
func GetAny(root Node, path Path, fallback ...any) (any, error) {
	n, err := Get(root, path)
	if err != nil {
		if len(fallback) > 0 {
			return fallback[0], nil
		}
		return nil, err
	}
	return ToAny(n), nil
}

// child resolves a single step against a node.
func child(n Node, step Step) (Node, error) {
	switch v := n.(type) {
	case *Map:
		if step.IsIndex() {
			return nil, fmt.Errorf("%w: index %d into map", ErrType, step.Index())
		}
		c, ok := v.Get(step.Key())
		if !ok {
			return nil, fmt.Errorf("%w: key %q", ErrNotFound, step.Key())
		}
		return c, nil
	case *List:
		if !step.IsIndex() {
			return nil, fmt.Errorf("%w: key %q into list", ErrType, step.Key())
		}
		i := step.Index()
		if i < 0 {
			return nil, fmt.Errorf("%w: negative index %d", ErrBadPath, i)
		}
		c, ok := v.Get(i)
		if !ok {
			return nil, fmt.Errorf("%w: index %d out of range (len %d)", ErrNotFound, i, v.Len())
		}
		return c, nil
	case *Scalar:
		return nil, fmt.Errorf("%w: cannot descend into scalar", ErrType)
	case nil:
		return nil, fmt.Errorf("%w: nil node", ErrType)
	}
	return nil, fmt.Errorf("%w: unsupported node %T", ErrType, n)
}
