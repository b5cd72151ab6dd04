package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Davincible/n-utils/nested"
)

// secretsDir is where container runtimes mount file-based secrets.
var secretsDir = "/run/secrets"

// Env reads an environment variable, falls back to the _FILE version
// if not set, and as a third check reads from a secrets file under
// /run/secrets/{KEY}.
func Env(key string, fallback ...string) string {
	def := ""
	if len(fallback) > 0 {
		def = fallback[0]
	}

	if value := os.Getenv(key); len(value) != 0 {
		return value
	}

	if filePath := os.Getenv(key + "_FILE"); len(filePath) != 0 {
		content, err := os.ReadFile(filePath)
		if err != nil {
			slog.Warn("config: reading file for env var failed", "var", key+"_FILE", "error", err)
			return def
		}
		if value := strings.TrimSpace(string(content)); len(value) != 0 {
			return value
		}
	}

	if secretPath := filepath.Join(secretsDir, key); regularFileExists(secretPath) {
		content, err := os.ReadFile(secretPath)
		if err != nil {
			slog.Warn("config: reading secret file failed", "path", secretPath, "error", err)
			return def
		}
		if value := strings.TrimSpace(string(content)); len(value) != 0 {
			return value
		}
	}

	return def
}

// EnvInt64 reads an environment variable as an int64, with the same
// fallbacks as Env.
func EnvInt64[T int | int64](key string, fallback ...T) int64 {
	if valueStr := Env(key); len(valueStr) != 0 {
		if parsed, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return parsed
		}
	}

	if len(fallback) > 0 {
		return int64(fallback[0])
	}
	return 0
}

// EnvInt reads an environment variable as an int, with the same
// fallbacks as Env.
func EnvInt(key string, fallback ...int) int {
	return int(EnvInt64(key, fallback...))
}

// EnvInt64Slice reads a comma-separated environment variable as a
// slice of int64, with the same fallbacks as Env.
func EnvInt64Slice(key string, fallback ...int64) []int64 {
	if valueStr := Env(key); len(valueStr) != 0 {
		parts := strings.Split(valueStr, ",")
		values := make([]int64, 0, len(parts))
		for _, part := range parts {
			if parsed, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				values = append(values, parsed)
			}
		}
		return values
	}

	if len(fallback) > 0 {
		return fallback
	}
	return nil
}

// envLayer builds a map layer from all environment variables with the
// given prefix. PREFIX_A__B=v becomes {a: {b: v}} with "__" as the
// nesting separator. Keys are lowercased. A _FILE suffix reads the
// value from the named file.
func envLayer(prefix, sep string) *nested.Map {
	if sep == "" {
		sep = "__"
	}
	want := prefix
	if want != "" && !strings.HasSuffix(want, "_") {
		want += "_"
	}

	layer := nested.NewMap()
	for _, entry := range os.Environ() {
		name, raw, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, want) {
			continue
		}

		key := strings.TrimPrefix(name, want)
		if key == "" {
			continue
		}

		value := raw
		if trimmed, isFile := strings.CutSuffix(key, "_FILE"); isFile && trimmed != "" {
			content, err := os.ReadFile(raw)
			if err != nil {
				slog.Warn("config: reading file for env var failed", "var", name, "error", err)
				continue
			}
			key = trimmed
			value = strings.TrimSpace(string(content))
		}

		path := envPath(key, sep)
		if len(path) == 0 {
			continue
		}
		if err := nested.Set(layer, path, nested.NewScalar(coerceEnvValue(value))); err != nil {
			slog.Warn("config: env var does not fit the tree", "var", name, "error", err)
		}
	}

	return layer
}

// envPath converts DB__POOL_SIZE into the path db, pool_size. Digit
// segments address list elements. Empty segments invalidate the whole
// variable.
func envPath(key, sep string) nested.Path {
	raw := nested.ParsePath(key, sep)
	path := make(nested.Path, 0, len(raw))
	for _, step := range raw {
		if step.IsIndex() {
			path = append(path, step)
			continue
		}
		if step.Key() == "" {
			return nil
		}
		path = append(path, nested.Key(strings.ToLower(step.Key())))
	}
	return path
}

// coerceEnvValue interprets booleans and numbers so env overrides
// compare equal to file values.
func coerceEnvValue(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// regularFileExists checks if a file exists and is not a directory.
func regularFileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
