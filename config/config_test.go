package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadPrecedence(t *testing.T) {
	path := writeTemp(t, "app.json", `{
		"server": {"port": 2000, "from_file": true},
		"name": "file-name"
	}`)

	t.Setenv("NUTILSPREC_SERVER__PORT", "3000")

	cfg, err := Load(
		WithDefaults(map[string]any{
			"server": map[string]any{"port": 1000, "host": "default-host"},
			"name":   "default-name",
		}),
		WithFile(path),
		WithEnv("NUTILSPREC"),
	)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.Int("server.port"); got != 3000 {
		t.Errorf("env override lost: server.port = %d, want 3000", got)
	}
	if got := cfg.String("server.host"); got != "default-host" {
		t.Errorf("default lost: server.host = %q, want %q", got, "default-host")
	}
	if got := cfg.String("name"); got != "file-name" {
		t.Errorf("file override lost: name = %q, want %q", got, "file-name")
	}
	if !cfg.Bool("server.from_file") {
		t.Error("file-only key missing")
	}
}

func TestLoadFileFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "app.json", `{"server": {"host": "localhost", "port": 8080}}`},
		{"toml", "app.toml", "[server]\nhost = \"localhost\"\nport = 8080\n"},
		{"yaml", "app.yaml", "server:\n  host: localhost\n  port: 8080\n"},
		{"yml", "app.yml", "server:\n  host: localhost\n  port: 8080\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(WithFile(writeTemp(t, tt.file, tt.content)))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got := cfg.String("server.host"); got != "localhost" {
				t.Errorf("server.host = %q, want %q", got, "localhost")
			}
			if got := cfg.Int("server.port"); got != 8080 {
				t.Errorf("server.port = %d, want 8080", got)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(WithFile(filepath.Join(t.TempDir(), "absent.json")))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		if _, err := Load(WithFile(writeTemp(t, "app.ini", "a=1"))); err == nil {
			t.Error("Load() error = nil, want unsupported extension error")
		}
	})

	t.Run("non-mapping root", func(t *testing.T) {
		_, err := Load(WithFile(writeTemp(t, "app.json", `[1, 2, 3]`)))
		if !errors.Is(err, ErrBadValue) {
			t.Errorf("Load() error = %v, want ErrBadValue", err)
		}
	})

	t.Run("malformed content", func(t *testing.T) {
		if _, err := Load(WithFile(writeTemp(t, "app.yaml", "a: [unclosed"))); err == nil {
			t.Error("Load() error = nil, want parse error")
		}
	})
}

func TestGet(t *testing.T) {
	cfg, err := Load(WithDefaults(map[string]any{
		"server": map[string]any{"port": 8080},
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := cfg.Get("server.port"); err != nil {
		t.Errorf("Get() error = %v", err)
	}

	if _, err := cfg.Get("server.missing"); !errors.Is(err, ErrMissingKey) {
		t.Errorf("Get() error = %v, want ErrMissingKey", err)
	}

	got, err := cfg.Get("server.missing", "fallback")
	if err != nil || got != "fallback" {
		t.Errorf("Get() with fallback = %v, %v, want %q, nil", got, err, "fallback")
	}

	if !cfg.Has("server.port") {
		t.Error("Has(server.port) = false, want true")
	}
	if cfg.Has("server.missing") {
		t.Error("Has(server.missing) = true, want false")
	}
}

func TestTypedGetters(t *testing.T) {
	path := writeTemp(t, "app.json", `{
		"name": "svc",
		"port": 8080,
		"ratio": 0.75,
		"debug": true,
		"timeout": "1d12h",
		"grace": 90,
		"tags": ["a", "b"],
		"hosts": "one, two ,three"
	}`)

	cfg, err := Load(WithFile(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.String("name"); got != "svc" {
		t.Errorf("String() = %q, want %q", got, "svc")
	}
	if got := cfg.String("missing", "dflt"); got != "dflt" {
		t.Errorf("String() fallback = %q, want %q", got, "dflt")
	}
	if got := cfg.Int("port"); got != 8080 {
		t.Errorf("Int() = %d, want 8080", got)
	}
	if got := cfg.Int("missing", 7); got != 7 {
		t.Errorf("Int() fallback = %d, want 7", got)
	}
	if got := cfg.Int64("port"); got != 8080 {
		t.Errorf("Int64() = %d, want 8080", got)
	}
	if got := cfg.Float("ratio"); got != 0.75 {
		t.Errorf("Float() = %v, want 0.75", got)
	}
	if got := cfg.Bool("debug"); !got {
		t.Error("Bool() = false, want true")
	}
	if got := cfg.Duration("timeout"); got != 36*time.Hour {
		t.Errorf("Duration() = %s, want 36h", got)
	}
	if got := cfg.Duration("grace"); got != 90*time.Second {
		t.Errorf("Duration() from number = %s, want 90s", got)
	}
	if got := cfg.Duration("missing", time.Minute); got != time.Minute {
		t.Errorf("Duration() fallback = %s, want 1m", got)
	}
	if got := cfg.StringSlice("tags"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("StringSlice() = %v, want [a b]", got)
	}
	if got := cfg.StringSlice("hosts"); !reflect.DeepEqual(got, []string{"one", "two", "three"}) {
		t.Errorf("StringSlice() from string = %v, want [one two three]", got)
	}
}

func TestSet(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := cfg.Set("server.host", "localhost"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := cfg.String("server.host"); got != "localhost" {
		t.Errorf("String() after Set() = %q, want %q", got, "localhost")
	}
}

func TestSub(t *testing.T) {
	cfg, err := Load(WithDefaults(map[string]any{
		"server": map[string]any{"host": "localhost", "port": 8080},
		"name":   "svc",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	sub, ok := cfg.Sub("server")
	if !ok {
		t.Fatal("Sub(server) = false, want true")
	}
	if got := sub.String("host"); got != "localhost" {
		t.Errorf("sub String(host) = %q, want %q", got, "localhost")
	}

	// The sub config is detached from its parent.
	if err := sub.Set("host", "changed"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := cfg.String("server.host"); got != "localhost" {
		t.Errorf("parent mutated through sub: server.host = %q", got)
	}

	if _, ok := cfg.Sub("name"); ok {
		t.Error("Sub(name) over a scalar = true, want false")
	}
	if _, ok := cfg.Sub("missing"); ok {
		t.Error("Sub(missing) = true, want false")
	}
}

func TestToMap(t *testing.T) {
	cfg, err := Load(WithDefaults(map[string]any{
		"a": map[string]any{"b": 1},
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := cfg.ToMap()
	inner, ok := got["a"].(map[string]any)
	if !ok {
		t.Fatalf("ToMap()[a] = %T, want map", got["a"])
	}
	if inner["b"] != 1 {
		t.Errorf("ToMap()[a][b] = %v (%T), want 1", inner["b"], inner["b"])
	}
}
