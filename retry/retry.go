// Package retry runs failing operations again with exponential
// backoff, optional jitter, and per-attempt timeouts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Options controls the retry loop. The zero value uses the defaults
// from DefaultOptions.
type Options struct {
	// Attempts is the total number of tries including the first.
	Attempts int

	// InitialDelay is the wait before the second try.
	InitialDelay time.Duration

	// BackoffFactor multiplies the delay after every failed try.
	BackoffFactor float64

	// MaxDelay caps the grown delay.
	MaxDelay time.Duration

	// Jitter randomizes each delay by the given fraction, so 0.1
	// spreads it within plus or minus ten percent.
	Jitter float64

	// Timeout bounds each individual try through its context. Zero
	// means no per-try deadline.
	Timeout time.Duration

	// RetryIf decides whether an error is worth another try. Nil
	// retries every error.
	RetryIf func(err error) bool

	// OnRetry runs after each failed try that will be retried.
	OnRetry func(attempt int, err error)
}

// DefaultOptions returns the default retry parameters.
func DefaultOptions() Options {
	return Options{
		Attempts:      3,
		InitialDelay:  100 * time.Millisecond,
		BackoffFactor: 2,
		MaxDelay:      30 * time.Second,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.Attempts < 1 {
		o.Attempts = def.Attempts
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = def.InitialDelay
	}
	if o.BackoffFactor < 1 {
		o.BackoffFactor = def.BackoffFactor
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = def.MaxDelay
	}
	if o.Jitter < 0 {
		o.Jitter = 0
	}
	if o.Jitter > 1 {
		o.Jitter = 1
	}
	return o
}

// Error reports an exhausted or aborted retry loop.
type Error struct {
	Attempts int
	Last     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("retry: %d attempt(s) failed: %v", e.Attempts, e.Last)
}

func (e *Error) Unwrap() error {
	return e.Last
}

// Do runs fn until it succeeds or the options give up.
func Do(ctx context.Context, fn func(ctx context.Context) error, opts Options) error {
	_, err := DoValue(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, opts)
	return err
}

// DoValue runs fn until it succeeds or the options give up, returning
// its value. The context cancels waits between tries; with a Timeout
// set it also bounds each try.
func DoValue[T any](ctx context.Context, fn func(ctx context.Context) (T, error), opts Options) (T, error) {
	var zero T
	opts = opts.normalized()

	delay := opts.InitialDelay
	var lastErr error

	for attempt := 1; ; attempt++ {
		v, err := runOnce(ctx, fn, opts.Timeout)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt >= opts.Attempts {
			return zero, &Error{Attempts: attempt, Last: lastErr}
		}
		if opts.RetryIf != nil && !opts.RetryIf(err) {
			return zero, &Error{Attempts: attempt, Last: lastErr}
		}
		if opts.OnRetry != nil {
			opts.OnRetry(attempt, err)
		}

		if err := sleepContext(ctx, withJitter(delay, opts.Jitter)); err != nil {
			return zero, &Error{Attempts: attempt, Last: errors.Join(lastErr, err)}
		}
		delay = nextDelay(delay, opts.BackoffFactor, opts.MaxDelay)
	}
}

func runOnce[T any](ctx context.Context, fn func(ctx context.Context) (T, error), timeout time.Duration) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}

	tryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(tryCtx)
}

func nextDelay(current time.Duration, factor float64, max time.Duration) time.Duration {
	next := time.Duration(float64(current) * factor)
	if next > max || next <= 0 {
		return max
	}
	return next
}

// withJitter spreads the delay within plus or minus the jitter
// fraction.
func withJitter(d time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return d
	}
	spread := (rand.Float64()*2 - 1) * jitter
	out := time.Duration(float64(d) * (1 + spread))
	if out < 0 {
		return 0
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
