package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce absorbs editor save bursts before reloading.
const watchDebounce = 100 * time.Millisecond

// Watch reloads the config whenever one of its files changes. The
// parent directories are watched so atomic replace-by-rename saves are
// seen. onChange, when not nil, runs after every reload attempt with
// its error. Watching stops when the context is done.
func (c *Config) Watch(ctx context.Context, onChange func(err error)) error {
	if len(c.src.files) == 0 {
		return fmt.Errorf("config: nothing to watch, no file layers")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}

	watched := make(map[string]bool, len(c.src.files))
	dirs := make(map[string]bool)
	for _, file := range c.src.files {
		abs, err := filepath.Abs(file)
		if err != nil {
			watcher.Close()
			return fmt.Errorf("config: resolve %s: %w", file, err)
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("config: watch %s: %w", dir, err)
		}
	}

	go c.watchLoop(ctx, watcher, watched, onChange)

	return nil
}

func (c *Config) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, watched map[string]bool, onChange func(error)) {
	defer watcher.Close()

	// Nil until a relevant event arms the debounce.
	var reloadC <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			c.log.Debug("config: change detected", "file", event.Name, "op", event.Op.String())
			reloadC = time.After(watchDebounce)

		case <-reloadC:
			reloadC = nil
			err := c.reload()
			if err != nil {
				c.log.Warn("config: reload failed", "error", err)
			}
			if onChange != nil {
				onChange(err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.log.Warn("config: watcher error", "error", err)

		case <-ctx.Done():
			return
		}
	}
}
