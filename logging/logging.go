// Package logging configures log/slog loggers and carries them through
// contexts.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Option adjusts Setup behavior.
type Option func(*options)

type options struct {
	level      slog.Level
	levelSet   bool
	json       bool
	output     io.Writer
	filePath   string
	addSource  bool
	setDefault bool
}

// WithLevel sets the minimum level by name: debug, info, warn, or error.
// Unknown names keep the default. Without this option the LOG_LEVEL
// environment variable applies, then info.
func WithLevel(level string) Option {
	return func(o *options) {
		if l, ok := parseLevel(level); ok {
			o.level = l
			o.levelSet = true
		}
	}
}

// WithJSON switches from text to JSON output.
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithOutput directs log records to w instead of stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithFile additionally appends log records to path, creating parent
// directories.
func WithFile(path string) Option {
	return func(o *options) { o.filePath = path }
}

// WithSource records the file and line of each log call.
func WithSource() Option {
	return func(o *options) { o.addSource = true }
}

// AsDefault installs the logger as the slog default.
func AsDefault() Option {
	return func(o *options) { o.setDefault = true }
}

// Setup builds a slog.Logger from the options.
func Setup(opts ...Option) (*slog.Logger, error) {
	o := options{level: slog.LevelInfo, output: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.levelSet {
		if l, ok := parseLevel(os.Getenv("LOG_LEVEL")); ok {
			o.level = l
		}
	}

	out := o.output
	if o.filePath != "" {
		if err := os.MkdirAll(filepath.Dir(o.filePath), 0o755); err != nil {
			return nil, fmt.Errorf("logging: create log dir: %w", err)
		}
		f, err := os.OpenFile(o.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logging: open log file: %w", err)
		}
		out = io.MultiWriter(out, f)
	}

	hopts := &slog.HandlerOptions{Level: o.level, AddSource: o.addSource}
	var handler slog.Handler
	if o.json {
		handler = slog.NewJSONHandler(out, hopts)
	} else {
		handler = slog.NewTextHandler(out, hopts)
	}

	logger := slog.New(handler)
	if o.setDefault {
		slog.SetDefault(logger)
	}
	return logger, nil
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}

type ctxKey struct{}

// Into stores logger in the context.
func Into(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From returns the logger stored in the context, or the slog default.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return logger
		}
	}
	return slog.Default()
}

// With returns a context whose logger carries the extra attributes.
func With(ctx context.Context, args ...any) context.Context {
	return Into(ctx, From(ctx).With(args...))
}
