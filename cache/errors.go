package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a closed cache.
	ErrClosed = errors.New("cache is closed")

	// ErrInvalidTTL is returned when a negative TTL is supplied.
	ErrInvalidTTL = errors.New("invalid TTL")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// SnapshotError reports a failed snapshot operation with its path.
type SnapshotError struct {
	Op   string
	Path string
	Err  error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("cache: snapshot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}

func wrapSnapshot(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &SnapshotError{Op: op, Path: path, Err: err}
}
