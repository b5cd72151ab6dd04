package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestCache(t *testing.T, cfg *Config) *Cache[string] {
	t.Helper()

	if cfg == nil {
		cfg = &Config{MaxItems: 100}
	}
	c, err := New[string](cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	return c
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"zero value", &Config{}, false},
		{"negative max items", &Config{MaxItems: -1}, true},
		{"negative default TTL", &Config{DefaultTTL: -time.Second}, true},
		{"negative cleanup interval", &Config{CleanupInterval: -time.Second}, true},
		{"negative snapshot interval", &Config{SnapshotInterval: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestCacheSetGet(t *testing.T) {
	c := newTestCache(t, nil)

	if err := c.Set("greeting", "hello"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok := c.Get("greeting")
	if !ok {
		t.Fatal("Get() not found, want found")
	}
	if got != "hello" {
		t.Errorf("Get() = %q, want %q", got, "hello")
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() found missing key")
	}

	if err := c.Set("greeting", "hi"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, _ := c.Get("greeting"); got != "hi" {
		t.Errorf("Get() after overwrite = %q, want %q", got, "hi")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := newTestCache(t, nil)

	if err := c.Set("short", "gone soon", 20*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set("forever", "stays", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, ok := c.Get("short"); !ok {
		t.Error("value expired before its TTL")
	}

	time.Sleep(40 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("got expired value, want not found")
	}
	if _, ok := c.Get("forever"); !ok {
		t.Error("zero TTL entry expired, want it kept")
	}
}

func TestCacheInvalidTTL(t *testing.T) {
	c := newTestCache(t, nil)

	if err := c.Set("k", "v", -time.Second); !errors.Is(err, ErrInvalidTTL) {
		t.Errorf("Set() error = %v, want ErrInvalidTTL", err)
	}
}

func TestCacheEviction(t *testing.T) {
	c := newTestCache(t, &Config{MaxItems: 3})

	for _, key := range []string{"a", "b", "c"} {
		if err := c.Set(key, key); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Touch a and b so c becomes the least recently used.
	c.Get("a")
	c.Get("b")
	time.Sleep(5 * time.Millisecond)

	if err := c.Set("d", "d"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, ok := c.Get("c"); ok {
		t.Error("least recently used entry survived eviction")
	}
	for _, key := range []string{"a", "b", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("entry %q evicted, want it kept", key)
		}
	}
	if got := c.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}

func TestCacheStats(t *testing.T) {
	c := newTestCache(t, &Config{MaxItems: 2})

	c.Set("a", "a")
	c.Get("a")
	c.Get("a")
	c.Get("missing")
	c.Set("b", "b", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	c.Get("b")

	stats := c.Stats()
	want := Stats{Items: 1, Hits: 2, Misses: 2, Expirations: 1}
	if !reflect.DeepEqual(stats, want) {
		t.Errorf("Stats() = %+v, want %+v", stats, want)
	}
}

func TestCacheKeysSorted(t *testing.T) {
	c := newTestCache(t, nil)

	for _, key := range []string{"zebra", "apple", "mango"} {
		c.Set(key, key)
	}

	got := c.Keys()
	want := []string{"apple", "mango", "zebra"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestCacheDeleteClear(t *testing.T) {
	c := newTestCache(t, nil)

	c.Set("a", "a")
	c.Set("b", "b")

	if !c.Delete("a") {
		t.Error("Delete() = false, want true")
	}
	if c.Delete("a") {
		t.Error("Delete() of removed key = true, want false")
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Get() found deleted key")
	}

	c.Clear()
	if got := c.Len(); got != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", got)
	}
}

func TestCacheGetItem(t *testing.T) {
	c := newTestCache(t, nil)

	c.Set("k", "v")
	c.Get("k")
	c.Get("k")

	item, ok := c.GetItem("k")
	if !ok {
		t.Fatal("GetItem() not found, want found")
	}
	if item.Value != "v" {
		t.Errorf("GetItem().Value = %q, want %q", item.Value, "v")
	}
	if item.AccessCount != 2 {
		t.Errorf("GetItem().AccessCount = %d, want 2", item.AccessCount)
	}
	if item.CreatedAt.IsZero() {
		t.Error("GetItem().CreatedAt is zero")
	}

	if _, ok := c.GetItem("missing"); ok {
		t.Error("GetItem() found missing key")
	}
}

func TestCacheEntries(t *testing.T) {
	c := newTestCache(t, nil)

	c.Set("a", "1")
	c.Set("b", "2", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	entries := c.Entries()
	if len(entries) != 1 {
		t.Fatalf("Entries() has %d items, want 1 (expired excluded)", len(entries))
	}
	item, ok := entries["a"]
	if !ok || item.Value != "1" {
		t.Errorf("Entries()[a] = %+v, %v, want value 1", item, ok)
	}

	// The copy is detached from the cache.
	item.Value = "changed"
	entries["a"] = item
	if got, _ := c.Get("a"); got != "1" {
		t.Errorf("Get(a) = %q after mutating the copy, want 1", got)
	}
}

func TestCacheClose(t *testing.T) {
	c, err := New[string](&Config{MaxItems: 10})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	c.Set("k", "v")

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}

	if err := c.Set("k2", "v2"); !errors.Is(err, ErrClosed) {
		t.Errorf("Set() after Close() error = %v, want ErrClosed", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("Get() after Close() found value, want not found")
	}
}

func TestGetOrCompute(t *testing.T) {
	c := newTestCache(t, nil)

	var calls atomic.Int64
	compute := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "computed", nil
	}

	got, err := c.GetOrCompute(context.Background(), "k", compute)
	if err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}
	if got != "computed" {
		t.Errorf("GetOrCompute() = %q, want %q", got, "computed")
	}

	// Second call must hit the cache.
	if _, err := c.GetOrCompute(context.Background(), "k", compute); err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("compute ran %d times, want 1", n)
	}
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	c := newTestCache(t, nil)

	wantErr := errors.New("backend down")
	var calls atomic.Int64

	fail := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "", wantErr
	}

	if _, err := c.GetOrCompute(context.Background(), "k", fail); !errors.Is(err, wantErr) {
		t.Fatalf("GetOrCompute() error = %v, want %v", err, wantErr)
	}
	if _, err := c.GetOrCompute(context.Background(), "k", fail); !errors.Is(err, wantErr) {
		t.Fatalf("GetOrCompute() error = %v, want %v", err, wantErr)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("compute ran %d times, want 2 (errors must not be cached)", n)
	}
}

func TestGetOrComputeCoalesces(t *testing.T) {
	c := newTestCache(t, nil)

	var calls atomic.Int64
	slow := func(ctx context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		return "shared", nil
	}

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := c.GetOrCompute(context.Background(), "k", slow)
			if err == nil && got != "shared" {
				err = errors.New("unexpected value " + got)
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("worker %d: %v", i, err)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("compute ran %d times, want 1", n)
	}
}

func TestGetOrComputeContextCancel(t *testing.T) {
	c := newTestCache(t, nil)

	release := make(chan struct{})
	blocked := func(ctx context.Context) (string, error) {
		<-release
		return "late", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(ctx, "k", blocked)
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("GetOrCompute() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("GetOrCompute() did not return after cancellation")
	}

	close(release)
}

func TestCacheSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.snapshot")
	cfg := &Config{MaxItems: 10, SnapshotPath: path}

	c1, err := New[string](cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c1.Set("keep", "value", 0)
	c1.Set("expiring", "soon", 10*time.Millisecond)
	if err := c1.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	c2, err := New[string](cfg)
	if err != nil {
		t.Fatalf("New() after snapshot error = %v", err)
	}
	defer c2.Close()

	if got, ok := c2.Get("keep"); !ok || got != "value" {
		t.Errorf("Get() after restore = %q, %v, want %q, true", got, ok, "value")
	}
	if _, ok := c2.Get("expiring"); ok {
		t.Error("restored entry that expired on disk")
	}
}

func TestCacheSnapshotCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.snapshot")
	if err := os.WriteFile(path, []byte("not msgpack"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	c, err := New[string](&Config{MaxItems: 10, SnapshotPath: path})
	if err != nil {
		t.Fatalf("New() with corrupt snapshot error = %v, want nil", err)
	}
	defer c.Close()

	if got := c.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}

func TestCacheBackgroundCleanup(t *testing.T) {
	c := newTestCache(t, &Config{MaxItems: 10, CleanupInterval: 20 * time.Millisecond})

	c.Set("short", "v", 10*time.Millisecond)
	c.Set("long", "v", time.Hour)

	deadline := time.Now().Add(time.Second)
	for c.Len() > 1 {
		if time.Now().After(deadline) {
			t.Fatal("cleanup loop never swept the expired entry")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, ok := c.Get("long"); !ok {
		t.Error("cleanup removed a live entry")
	}
}

func TestCacheMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestCache(t, &Config{
		MaxItems:          1,
		MetricsNamespace:  "nutils_test",
		MetricsRegisterer: reg,
	})

	c.Set("a", "a")
	c.Get("a")
	c.Get("missing")
	c.Set("b", "b")

	if got := testutil.ToFloat64(c.metrics.hits); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.metrics.misses); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.metrics.evictions); got != 1 {
		t.Errorf("evictions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.metrics.itemCount); got != 1 {
		t.Errorf("itemCount = %v, want 1", got)
	}
}

func TestCacheMetricsDisabled(t *testing.T) {
	c := newTestCache(t, &Config{MaxItems: 10})

	if c.metrics != nil {
		t.Fatal("metrics enabled without a namespace")
	}

	// Must not panic with metrics disabled.
	c.Set("a", "a")
	c.Get("a")
	c.Get("missing")
	c.Delete("a")
	c.Clear()
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := newTestCache(t, &Config{MaxItems: 1000})

	const (
		writers = 10
		rounds  = 50
	)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				key := string(rune('a' + i))
				c.Set(key, key)
				c.Get(key)
				c.Keys()
				c.Stats()
			}
		}(i)
	}
	wg.Wait()

	if got := c.Len(); got != writers {
		t.Errorf("Len() = %d, want %d", got, writers)
	}
}
