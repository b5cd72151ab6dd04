package nested

import "fmt"

// Set stores value at path, modifying root in place.
//
// Missing intermediate containers are created with the kind implied by
// the following step: a key step creates a map, an index step creates a
// list. Writing past the end of a list extends it, filling skipped
// positions with Absent. Existing values at the final position are
// overwritten.
//
// Set never changes the kind of an existing node: a step whose kind does
// not match the node, or any step that descends into a scalar, fails
// with an error wrapping ErrType. Absent placeholders are the exception
// and are replaced like missing entries. An empty path fails with
// ErrEmptyPath; root must be a container matching the first step.
func Set(root Node, path Path, value Node) error {
	return setPath("set", root, path, value)
}

// Insert stores value at path, creating intermediate containers as
// needed. It is equivalent to Set: inserting at a list index overwrites
// or extends, it never shifts later elements.
func Insert(root Node, path Path, value Node) error {
	return setPath("insert", root, path, value)
}

func setPath(op string, root Node, path Path, value Node) error {
	if len(path) == 0 {
		return opError(op, path, ErrEmptyPath)
	}
	parent, err := descend(op, root, path)
	if err != nil {
		return err
	}
	return assign(op, parent, path, value)
}

// descend resolves all steps but the last, creating missing containers,
// and returns the parent of the final step.
func descend(op string, root Node, path Path) (Node, error) {
	cur := root
	for i := 0; i < len(path)-1; i++ {
		step, next := path[i], path[i+1]
		switch v := cur.(type) {
		case *Map:
			if step.IsIndex() {
				return nil, stepError(op, path, i,
					fmt.Errorf("%w: index %d into map", ErrType, step.Index()))
			}
			c, ok := v.Get(step.Key())
			if !ok || IsAbsent(c) {
				c = containerFor(next)
				v.Set(step.Key(), c)
			}
			cur = c
		case *List:
			if !step.IsIndex() {
				return nil, stepError(op, path, i,
					fmt.Errorf("%w: key %q into list", ErrType, step.Key()))
			}
			idx := step.Index()
			if idx < 0 {
				return nil, stepError(op, path, i,
					fmt.Errorf("%w: negative index %d", ErrBadPath, idx))
			}
			v.grow(idx + 1)
			c, _ := v.Get(idx)
			if IsAbsent(c) {
				c = containerFor(next)
				v.Set(idx, c)
			}
			cur = c
		case *Scalar:
			return nil, stepError(op, path, i,
				fmt.Errorf("%w: cannot descend into scalar", ErrType))
		default:
			return nil, stepError(op, path, i,
				fmt.Errorf("%w: unsupported node %T", ErrType, cur))
		}
	}
	return cur, nil
}

// assign writes value into parent at the final step of path.
func assign(op string, parent Node, path Path, value Node) error {
	last := len(path) - 1
	step := path[last]
	switch v := parent.(type) {
	case *Map:
		if step.IsIndex() {
			return stepError(op, path, last,
				fmt.Errorf("%w: index %d into map", ErrType, step.Index()))
		}
		v.Set(step.Key(), value)
	case *List:
		if !step.IsIndex() {
			return stepError(op, path, last,
				fmt.Errorf("%w: key %q into list", ErrType, step.Key()))
		}
		idx := step.Index()
		if idx < 0 {
			return stepError(op, path, last,
				fmt.Errorf("%w: negative index %d", ErrBadPath, idx))
		}
		v.grow(idx + 1)
		v.Set(idx, value)
	default:
		return stepError(op, path, last,
			fmt.Errorf("%w: cannot assign into %s", ErrType, kindOf(parent)))
	}
	return nil
}

// containerFor returns a fresh container matching the kind the step
// expects to descend into.
func containerFor(step Step) Node {
	if step.IsIndex() {
		return NewList()
	}
	return NewMap()
}

func kindOf(n Node) string {
	if n == nil {
		return "nil"
	}
	return n.Kind().String()
}
