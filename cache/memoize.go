package cache

import (
	"context"

	"github.com/Davincible/n-utils/coerce"
)

// Memoize wraps fn so that results are cached by argument. The key
// function derives the cache key; when nil, coerce.Key of the argument
// is used. Concurrent calls with the same key share one execution.
// Errors are not cached, so a failed call is retried on the next
// invocation.
func Memoize[K comparable, V any](c *Cache[V], keyFn func(K) string, fn func(ctx context.Context, arg K) (V, error)) func(ctx context.Context, arg K) (V, error) {
	if keyFn == nil {
		keyFn = func(arg K) string { return coerce.Key(arg) }
	}

	return func(ctx context.Context, arg K) (V, error) {
		return c.GetOrCompute(ctx, keyFn(arg), func(ctx context.Context) (V, error) {
			return fn(ctx, arg)
		})
	}
}
