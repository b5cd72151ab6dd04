// Package cache provides a generic in-memory cache with TTL expiry,
// LRU eviction, coalesced computation of missing values, optional
// snapshot persistence, and Prometheus metrics.
package cache

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Item represents a cached entry with metadata.
type Item[T any] struct {
	Value       T
	CreatedAt   time.Time
	ExpiresAt   time.Time
	LastAccess  time.Time
	AccessCount int64
}

// Expired reports whether the item has passed its expiry time. Items
// with a zero ExpiresAt never expire.
func (it *Item[T]) Expired(now time.Time) bool {
	return !it.ExpiresAt.IsZero() && now.After(it.ExpiresAt)
}

// ComputeFunc produces a value for a missing key.
type ComputeFunc[T any] func(ctx context.Context) (T, error)

// Cache is a thread-safe in-memory cache.
type Cache[T any] struct {
	cfg     *Config
	log     *slog.Logger
	metrics *metrics

	mu     sync.RWMutex
	items  map[string]*Item[T]
	closed bool

	hits        int64
	misses      int64
	evictions   int64
	expirations int64

	group  singleflight.Group
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Stats is a point-in-time snapshot of the cache counters.
type Stats struct {
	Items       int
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
}

// New creates a cache from the given config. A nil config uses
// DefaultConfig. When a snapshot path is configured the previous
// snapshot is restored, and background loops are started for cleanup
// and periodic snapshots.
func New[T any](cfg *Config) (*Cache[T], error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	c := &Cache[T]{
		cfg:     cfg,
		log:     log,
		metrics: newMetrics(cfg.MetricsNamespace, cfg.MetricsRegisterer),
		items:   make(map[string]*Item[T]),
		stopCh:  make(chan struct{}),
	}

	if cfg.SnapshotPath != "" {
		if err := c.loadSnapshot(); err != nil {
			log.Warn("cache: snapshot restore failed", "path", cfg.SnapshotPath, "error", err)
		}
	}

	if cfg.CleanupInterval > 0 {
		c.wg.Add(1)
		go c.cleanupLoop()
	}
	if cfg.SnapshotPath != "" && cfg.SnapshotInterval > 0 {
		c.wg.Add(1)
		go c.snapshotLoop()
	}

	return c, nil
}

// Set stores a value. An optional TTL overrides the configured
// default; a TTL of zero means the entry never expires.
func (c *Cache[T]) Set(key string, value T, ttl ...time.Duration) error {
	d := c.cfg.DefaultTTL
	if len(ttl) > 0 {
		d = ttl[0]
	}
	if d < 0 {
		return ErrInvalidTTL
	}

	now := time.Now()
	var expires time.Time
	if d > 0 {
		expires = now.Add(d)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if _, exists := c.items[key]; !exists && c.cfg.MaxItems > 0 && len(c.items) >= c.cfg.MaxItems {
		c.evictOldestLocked()
	}

	c.items[key] = &Item[T]{
		Value:      value,
		CreatedAt:  now,
		ExpiresAt:  expires,
		LastAccess: now,
	}
	c.metrics.setSize(len(c.items))

	return nil
}

// Get retrieves an item from the cache. Expired entries are removed
// and reported as missing.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return zero, false
	}

	item, ok := c.items[key]
	if !ok {
		c.misses++
		c.metrics.miss()
		return zero, false
	}
	if item.Expired(now) {
		delete(c.items, key)
		c.expirations++
		c.misses++
		c.metrics.expire()
		c.metrics.miss()
		c.metrics.setSize(len(c.items))
		return zero, false
	}

	item.LastAccess = now
	item.AccessCount++
	c.hits++
	c.metrics.hit()

	return item.Value, true
}

// GetItem returns a copy of the full item for key, including metadata.
// Unlike Get it does not update the access time.
func (c *Cache[T]) GetItem(key string) (Item[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok || item.Expired(time.Now()) {
		return Item[T]{}, false
	}
	return *item, true
}

// GetOrCompute returns the cached value for key, computing and storing
// it when missing. Concurrent calls for the same key share a single
// computation. The context cancels the wait, not the computation
// itself, so a late result still populates the cache for later calls.
func (c *Cache[T]) GetOrCompute(ctx context.Context, key string, fn ComputeFunc[T]) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	var zero T
	start := time.Now()
	ch := c.group.DoChan(key, func() (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Set(key, v); err != nil {
			c.log.Debug("cache: store after compute failed", "key", key, "error", err)
		}
		return v, nil
	})

	select {
	case res := <-ch:
		c.metrics.observeCompute(time.Since(start))
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-c.stopCh:
		return zero, ErrClosed
	}
}

// Delete removes a key, reporting whether it was present.
func (c *Cache[T]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[key]; !ok {
		return false
	}
	delete(c.items, key)
	c.metrics.setSize(len(c.items))
	return true
}

// Clear removes all entries.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*Item[T])
	c.metrics.setSize(0)
}

// Len returns the number of entries, including expired ones not yet
// swept.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Keys returns all keys in sorted order.
func (c *Cache[T]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

// Entries returns a copy of all unexpired items with their metadata.
func (c *Cache[T]) Entries() map[string]Item[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	out := make(map[string]Item[T], len(c.items))
	for key, item := range c.items {
		if item.Expired(now) {
			continue
		}
		out[key] = *item
	}

	return out
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[T]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		Items:       len(c.items),
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}
}

// Close stops the background loops and, when a snapshot path is
// configured, writes a final snapshot. Closing twice is a no-op.
func (c *Cache[T]) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stopCh)
	c.wg.Wait()

	if c.cfg.SnapshotPath != "" {
		return c.saveSnapshot()
	}
	return nil
}

// evictOldestLocked removes the least recently accessed entry. The
// caller must hold the write lock.
func (c *Cache[T]) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for key, item := range c.items {
		if !found || item.LastAccess.Before(oldest) {
			oldestKey = key
			oldest = item.LastAccess
			found = true
		}
	}
	if found {
		delete(c.items, oldestKey)
		c.evictions++
		c.metrics.evict()
	}
}

// RemoveExpired sweeps all expired entries and returns how many were
// removed. The background cleanup loop calls this on its interval.
func (c *Cache[T]) RemoveExpired() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, item := range c.items {
		if item.Expired(now) {
			delete(c.items, key)
			c.expirations++
			c.metrics.expire()
			removed++
		}
	}
	if removed > 0 {
		c.metrics.setSize(len(c.items))
	}

	return removed
}

// cleanupLoop sweeps expired items on the configured interval.
// Intended to be run in a background goroutine.
func (c *Cache[T]) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := c.RemoveExpired(); n > 0 {
				c.log.Debug("cache: swept expired entries", "count", n)
			}
		case <-c.stopCh:
			return
		}
	}
}

func (c *Cache[T]) snapshotLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.saveSnapshot(); err != nil {
				c.log.Error("cache: periodic snapshot failed", "path", c.cfg.SnapshotPath, "error", err)
			}
		case <-c.stopCh:
			return
		}
	}
}
