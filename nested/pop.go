package nested

import "fmt"

// Pop removes and returns the node at path, modifying root in place.
// Removing a map key deletes the entry; removing a list element shifts
// later elements down to close the gap.
//
// When the path does not resolve, Pop returns the fallback if one is
// supplied, otherwise an error wrapping ErrNotFound, ErrType, or
// ErrBadPath. An empty path fails with ErrEmptyPath regardless of
// fallback.
func Pop(root Node, path Path, fallback ...Node) (Node, error) {
	if len(path) == 0 {
		return nil, opError("pop", path, ErrEmptyPath)
	}
	parent := root
	for i := 0; i < len(path)-1; i++ {
		next, err := child(parent, path[i])
		if err != nil {
			if len(fallback) > 0 {
				return fallback[0], nil
			}
			return nil, stepError("pop", path, i, err)
		}
		parent = next
	}

	last := len(path) - 1
	step := path[last]
	var err error
	switch v := parent.(type) {
	case *Map:
		if step.IsIndex() {
			err = fmt.Errorf("%w: index %d into map", ErrType, step.Index())
			break
		}
		if removed, ok := v.Delete(step.Key()); ok {
			return removed, nil
		}
		err = fmt.Errorf("%w: key %q", ErrNotFound, step.Key())
	case *List:
		if !step.IsIndex() {
			err = fmt.Errorf("%w: key %q into list", ErrType, step.Key())
			break
		}
		if step.Index() < 0 {
			err = fmt.Errorf("%w: negative index %d", ErrBadPath, step.Index())
			break
		}
		if removed, ok := v.Remove(step.Index()); ok {
			return removed, nil
		}
		err = fmt.Errorf("%w: index %d out of range (len %d)", ErrNotFound, step.Index(), v.Len())
	default:
		err = fmt.Errorf("%w: cannot remove from %s", ErrType, kindOf(parent))
	}

	if len(fallback) > 0 {
		return fallback[0], nil
	}
	return nil, stepError("pop", path, last, err)
}
