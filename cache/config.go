package cache

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config holds the cache settings.
type Config struct {
	// MaxItems caps the number of entries. When full, the least
	// recently used entry is evicted. Zero means unbounded.
	MaxItems int

	// DefaultTTL applies to entries stored without an explicit TTL.
	// Zero means entries never expire.
	DefaultTTL time.Duration

	// CleanupInterval is how often expired entries are swept. Zero
	// disables the background sweep; expired entries are still
	// dropped lazily on access.
	CleanupInterval time.Duration

	// SnapshotPath enables persistence. When set, the cache is
	// restored from this file on startup and written back on Close.
	SnapshotPath string

	// SnapshotInterval is how often the snapshot is written in the
	// background. Zero means only on Close.
	SnapshotInterval time.Duration

	// MetricsNamespace enables Prometheus metrics under the given
	// namespace. Empty disables metrics.
	MetricsNamespace string

	// MetricsRegisterer receives the cache collectors. Nil means the
	// default registerer.
	MetricsRegisterer prometheus.Registerer

	// Logger is used for background loop diagnostics. Nil means the
	// default logger.
	Logger *slog.Logger
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxItems:         10_000,
		DefaultTTL:       time.Hour,
		CleanupInterval:  time.Minute,
		SnapshotInterval: 5 * time.Minute,
	}
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.MaxItems < 0 {
		return fmt.Errorf("%w: negative max items %d", ErrInvalidConfig, c.MaxItems)
	}
	if c.DefaultTTL < 0 {
		return fmt.Errorf("%w: negative default TTL %s", ErrInvalidConfig, c.DefaultTTL)
	}
	if c.CleanupInterval < 0 {
		return fmt.Errorf("%w: negative cleanup interval %s", ErrInvalidConfig, c.CleanupInterval)
	}
	if c.SnapshotInterval < 0 {
		return fmt.Errorf("%w: negative snapshot interval %s", ErrInvalidConfig, c.SnapshotInterval)
	}
	return nil
}
