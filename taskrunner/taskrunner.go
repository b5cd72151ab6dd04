// Package taskrunner executes groups of tasks concurrently with bounded
// parallelism, optional throttling, and per-task retries. Runner collects
// named errors from a heterogeneous set of tasks; Collect and Batches are
// its generic counterparts for mapping a function over inputs.
package taskrunner

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/Davincible/n-utils/limiter"
	"github.com/Davincible/n-utils/retry"
)

// Task represents a single named unit of work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithMaxConcurrent bounds how many tasks run at the same time. Zero or
// negative means unbounded.
func WithMaxConcurrent(n int) Option {
	return func(r *Runner) { r.maxConcurrent = n }
}

// WithThrottle paces task starts through the given throttle.
func WithThrottle(t *limiter.Throttle) Option {
	return func(r *Runner) { r.throttle = t }
}

// WithRetry retries each failing task with the given retry options.
func WithRetry(opts retry.Options) Option {
	return func(r *Runner) { r.retry = &opts }
}

// Runner executes tasks concurrently. A single Runner may be reused;
// concurrent Run calls share its concurrency bound.
type Runner struct {
	maxConcurrent int
	throttle      *limiter.Throttle
	retry         *retry.Options

	sem *semaphore.Weighted
}

// NewRunner creates a Runner from the given options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxConcurrent > 0 {
		r.sem = semaphore.NewWeighted(int64(r.maxConcurrent))
	}
	return r
}

// Run executes all tasks and returns the errors of the ones that failed,
// each prefixed with its task name. The slice is nil when every task
// succeeded; ordering follows completion, not submission.
//
// Run launches no new tasks once ctx is done; tasks that never ran
// report the context error under their name.
func (r *Runner) Run(ctx context.Context, tasks []Task) []error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}

	for i, task := range tasks {
		task := task
		name := task.Name
		if name == "" {
			name = fmt.Sprintf("task %d", i)
		}

		// Both gates fail immediately once ctx is done, so canceled
		// runs drain quickly with one named error per unstarted task.
		if err := r.gate(ctx); err != nil {
			record(name, err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.sem != nil {
				defer r.sem.Release(1)
			}
			if err := r.invoke(ctx, task.Run); err != nil {
				record(name, err)
			}
		}()
	}

	wg.Wait()

	return errs
}

// gate waits for the throttle and acquires a concurrency slot. The slot
// is held by the task goroutine and released when it finishes.
func (r *Runner) gate(ctx context.Context) error {
	if r.throttle != nil {
		if err := r.throttle.Wait(ctx); err != nil {
			return err
		}
	}
	if r.sem != nil {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) invoke(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.retry == nil {
		return fn(ctx)
	}
	return retry.Do(ctx, fn, *r.retry)
}

// Collect applies fn to every input concurrently and returns the results
// in input order. The first error cancels the remaining work and is
// returned with the index of the failing input; results are discarded on
// error. Options bound concurrency and add throttling or retries, as for
// a Runner.
func Collect[I, O any](ctx context.Context, inputs []I, fn func(ctx context.Context, in I) (O, error), opts ...Option) ([]O, error) {
	return collect(ctx, NewRunner(opts...), inputs, fn)
}

func collect[I, O any](ctx context.Context, r *Runner, inputs []I, fn func(ctx context.Context, in I) (O, error)) ([]O, error) {
	out := make([]O, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	if r.maxConcurrent > 0 {
		g.SetLimit(r.maxConcurrent)
	}

	var launchErr error
	for i, in := range inputs {
		i, in := i, in
		if r.throttle != nil {
			if err := r.throttle.Wait(gctx); err != nil {
				// Canceled: either the parent context is done or an
				// earlier input already failed. g.Wait sorts it out.
				launchErr = err
				break
			}
		}
		g.Go(func() error {
			v, err := invokeValue(gctx, r, func(ctx context.Context) (O, error) {
				return fn(ctx, in)
			})
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			out[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if launchErr != nil {
		return nil, launchErr
	}
	return out, nil
}

func invokeValue[T any](ctx context.Context, r *Runner, fn func(ctx context.Context) (T, error)) (T, error) {
	if r.retry == nil {
		return fn(ctx)
	}
	return retry.DoValue(ctx, fn, *r.retry)
}

// Batches splits inputs into consecutive groups of size and processes
// the groups one after another, applying fn concurrently within each
// group. It returns the per-batch results in order. On error the
// completed batches are returned together with the error, which names
// the failing batch.
func Batches[I, O any](ctx context.Context, inputs []I, size int, fn func(ctx context.Context, in I) (O, error), opts ...Option) ([][]O, error) {
	if size <= 0 {
		return nil, fmt.Errorf("taskrunner: batch size %d, want at least 1", size)
	}

	r := NewRunner(opts...)
	batches := make([][]O, 0, (len(inputs)+size-1)/size)
	for start := 0; start < len(inputs); start += size {
		end := start + size
		if end > len(inputs) {
			end = len(inputs)
		}
		results, err := collect(ctx, r, inputs[start:end], fn)
		if err != nil {
			return batches, fmt.Errorf("taskrunner: batch %d: %w", len(batches), err)
		}
		batches = append(batches, results)
	}
	return batches, nil
}
