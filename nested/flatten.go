package nested

import "fmt"

// FlattenOption adjusts flattening and unflattening behavior.
type FlattenOption func(*flattenOptions)

type flattenOptions struct {
	sep      string
	maxDepth int
	prefix   Path
}

// WithSeparator sets the string that joins and splits composite keys.
// The default is DefaultSeparator.
func WithSeparator(sep string) FlattenOption {
	return func(o *flattenOptions) { o.sep = sep }
}

// WithMaxDepth stops flattening after depth levels; nodes at the limit
// are kept whole as values. Zero means no limit.
func WithMaxDepth(depth int) FlattenOption {
	return func(o *flattenOptions) { o.maxDepth = depth }
}

// WithPrefix prepends prefix to every flattened path.
func WithPrefix(prefix Path) FlattenOption {
	return func(o *flattenOptions) { o.prefix = prefix.Clone() }
}

func applyFlattenOptions(opts []FlattenOption) flattenOptions {
	o := flattenOptions{sep: DefaultSeparator}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// PathValue pairs a structured path with the node found there.
type PathValue struct {
	Path  Path
	Value Node
}

// Flatten converts a nested structure into a single-level map whose keys
// are composite strings joined by the separator. Leaves are scalars,
// empty containers, and nodes at the depth limit; values are shared with
// the input, not copied. Entries follow traversal order: map insertion
// order and list index order.
//
// Keys that themselves contain the separator produce colliding composite
// keys; pick a separator that cannot occur in keys when round-tripping.
// A scalar root fails with ErrType.
func Flatten(root Node, opts ...FlattenOption) (*Map, error) {
	o := applyFlattenOptions(opts)
	pairs, err := flattenPairs(root, o)
	if err != nil {
		return nil, err
	}
	out := NewMap()
	for _, pv := range pairs {
		out.Set(pv.Path.String(o.sep), pv.Value)
	}
	return out, nil
}

// FlattenPaths is Flatten with structured keys: it returns ordered
// path-value pairs instead of joining each path into a string, so keys
// containing the separator stay unambiguous.
func FlattenPaths(root Node, opts ...FlattenOption) ([]PathValue, error) {
	o := applyFlattenOptions(opts)
	return flattenPairs(root, o)
}

func flattenPairs(root Node, o flattenOptions) ([]PathValue, error) {
	switch root.(type) {
	case *Map, *List:
	default:
		return nil, fmt.Errorf("nested: flatten: %w: root is %s, want map or list",
			ErrType, kindOf(root))
	}
	if length(root) == 0 {
		return nil, nil
	}
	var pairs []PathValue
	flattenWalk(o.prefix, root, 0, o.maxDepth, func(p Path, n Node) {
		pairs = append(pairs, PathValue{Path: p, Value: n})
	})
	return pairs, nil
}

func flattenWalk(prefix Path, n Node, depth, maxDepth int, emit func(Path, Node)) {
	if n.Kind() == KindScalar || length(n) == 0 || (maxDepth > 0 && depth >= maxDepth) {
		emit(prefix, n)
		return
	}
	switch v := n.(type) {
	case *Map:
		v.Range(func(k string, c Node) bool {
			flattenWalk(prefix.Child(Key(k)), c, depth+1, maxDepth, emit)
			return true
		})
	case *List:
		v.Range(func(i int, c Node) bool {
			flattenWalk(prefix.Child(Index(i)), c, depth+1, maxDepth, emit)
			return true
		})
	}
}

// Unflatten rebuilds a nested structure from a flattened map by parsing
// each composite key into a path (all-digit segments become indices) and
// replaying Set in entry order. The root kind is taken from the first
// step of the first key; an empty input yields an empty map.
//
// Unflatten(Flatten(x)) is equal to x when x was flattened without a
// depth limit and no key contains the separator.
func Unflatten(flat *Map, opts ...FlattenOption) (Node, error) {
	o := applyFlattenOptions(opts)
	pairs := make([]PathValue, 0, flat.Len())
	var err error
	flat.Range(func(key string, value Node) bool {
		path := ParsePath(key, o.sep)
		if len(path) == 0 {
			err = fmt.Errorf("nested: unflatten key %q: %w", key, ErrBadPath)
			return false
		}
		pairs = append(pairs, PathValue{Path: path, Value: value})
		return true
	})
	if err != nil {
		return nil, err
	}
	return UnflattenPaths(pairs)
}

// UnflattenPaths rebuilds a nested structure from ordered path-value
// pairs, the structured-key counterpart of Unflatten.
func UnflattenPaths(pairs []PathValue) (Node, error) {
	if len(pairs) == 0 {
		return NewMap(), nil
	}
	var root Node = NewMap()
	if pairs[0].Path[0].IsIndex() {
		root = NewList()
	}
	for _, pv := range pairs {
		if len(pv.Path) == 0 {
			return nil, fmt.Errorf("nested: unflatten: %w: empty path", ErrBadPath)
		}
		if err := Set(root, pv.Path, pv.Value); err != nil {
			return nil, fmt.Errorf("nested: unflatten %q: %w", pv.Path.String(), err)
		}
	}
	return root, nil
}
