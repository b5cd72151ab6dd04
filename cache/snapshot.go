package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Davincible/n-utils/fileutil"
)

const snapshotVersion = 1

// snapshotItem is the persisted form of a cache entry. Access
// bookkeeping is not persisted; restored entries start fresh.
type snapshotItem[T any] struct {
	Value     T         `msgpack:"value"`
	CreatedAt time.Time `msgpack:"created_at"`
	ExpiresAt time.Time `msgpack:"expires_at"`
}

type snapshotFile[T any] struct {
	Version int                        `msgpack:"version"`
	SavedAt time.Time                  `msgpack:"saved_at"`
	Items   map[string]snapshotItem[T] `msgpack:"items"`
}

// saveSnapshot writes all live entries to the configured snapshot
// path. Expired entries are skipped.
func (c *Cache[T]) saveSnapshot() error {
	now := time.Now()

	c.mu.RLock()
	snap := snapshotFile[T]{
		Version: snapshotVersion,
		SavedAt: now,
		Items:   make(map[string]snapshotItem[T], len(c.items)),
	}
	for key, item := range c.items {
		if item.Expired(now) {
			continue
		}
		snap.Items[key] = snapshotItem[T]{
			Value:     item.Value,
			CreatedAt: item.CreatedAt,
			ExpiresAt: item.ExpiresAt,
		}
	}
	c.mu.RUnlock()

	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return wrapSnapshot("encode", c.cfg.SnapshotPath, err)
	}
	if err := fileutil.AtomicWrite(c.cfg.SnapshotPath, data, 0o644); err != nil {
		return wrapSnapshot("write", c.cfg.SnapshotPath, err)
	}

	c.log.Debug("cache: snapshot saved", "path", c.cfg.SnapshotPath, "items", len(snap.Items))

	return nil
}

// loadSnapshot restores entries from the configured snapshot path. A
// missing file is not an error. Entries that expired while the
// snapshot sat on disk are dropped.
func (c *Cache[T]) loadSnapshot() error {
	data, err := fileutil.SafeRead(c.cfg.SnapshotPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return wrapSnapshot("read", c.cfg.SnapshotPath, err)
	}

	var snap snapshotFile[T]
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return wrapSnapshot("decode", c.cfg.SnapshotPath, err)
	}
	if snap.Version != snapshotVersion {
		return wrapSnapshot("decode", c.cfg.SnapshotPath,
			fmt.Errorf("unsupported snapshot version %d", snap.Version))
	}

	now := time.Now()
	restored := 0

	c.mu.Lock()
	for key, si := range snap.Items {
		item := &Item[T]{
			Value:      si.Value,
			CreatedAt:  si.CreatedAt,
			ExpiresAt:  si.ExpiresAt,
			LastAccess: now,
		}
		if item.Expired(now) {
			continue
		}
		c.items[key] = item
		restored++
	}
	c.mu.Unlock()

	c.metrics.setSize(c.Len())
	c.log.Debug("cache: snapshot restored", "path", c.cfg.SnapshotPath, "items", restored)

	return nil
}
