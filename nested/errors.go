package nested

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a key or index that does not resolve.
	ErrNotFound = errors.New("path not found")

	// ErrType indicates a step applied to a node of the wrong kind, such
	// as an index into a map or any step into a scalar.
	ErrType = errors.New("type mismatch")

	// ErrEmptyPath indicates a mutating operation called with no steps.
	ErrEmptyPath = errors.New("empty path")

	// ErrBadPath indicates a malformed step, such as a negative index.
	ErrBadPath = errors.New("invalid path")
)

// PathError reports a failed path operation, identifying the first step
// that did not resolve.
type PathError struct {
	Op   string
	Path Path
	Step int // index of the failing step; -1 when not step-specific
	Err  error
}

func (e *PathError) Error() string {
	if e.Step >= 0 && e.Step < len(e.Path) {
		return fmt.Sprintf("nested: %s %q: step %d (%s): %v",
			e.Op, e.Path.String(), e.Step, e.Path[e.Step], e.Err)
	}
	return fmt.Sprintf("nested: %s %q: %v", e.Op, e.Path.String(), e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// stepError builds a PathError for the step at index i.
func stepError(op string, path Path, i int, err error) *PathError {
	return &PathError{Op: op, Path: path.Clone(), Step: i, Err: err}
}

// opError builds a PathError not tied to a single step.
func opError(op string, path Path, err error) *PathError {
	return &PathError{Op: op, Path: path.Clone(), Step: -1, Err: err}
}
