package limiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle smooths call rates with a token bucket.
type Throttle struct {
	lim *rate.Limiter
}

// NewThrottle allows one call per interval with no burst.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{lim: rate.NewLimiter(rate.Every(interval), 1)}
}

// NewThrottleRate allows perSecond calls with the given burst.
func NewThrottleRate(perSecond float64, burst int) *Throttle {
	return &Throttle{lim: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a call is allowed or the context is done.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.lim.Wait(ctx)
}

// Allow reports whether a call may proceed right now, consuming a
// token when so.
func (t *Throttle) Allow() bool {
	return t.lim.Allow()
}

// Do waits for a slot and then runs fn.
func (t *Throttle) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := t.lim.Wait(ctx); err != nil {
		return err
	}
	return fn(ctx)
}

// Func wraps fn so every call goes through the throttle.
func (t *Throttle) Func(fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return t.Do(ctx, fn)
	}
}
