// Package config loads layered configuration from defaults, files,
// and environment variables into a nested tree with typed access.
//
// Later layers override earlier ones: defaults, then files in the
// order given, then environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Davincible/n-utils/coerce"
	"github.com/Davincible/n-utils/fileutil"
	"github.com/Davincible/n-utils/nested"
)

// Separator splits config lookup paths into nested keys.
const Separator = "."

var (
	// ErrMissingKey is returned when a key is not present.
	ErrMissingKey = errors.New("missing key")

	// ErrBadValue is returned when a value cannot be used as
	// requested, for example a non-mapping file root.
	ErrBadValue = errors.New("bad value")
)

// Option configures Load.
type Option func(*loader)

type loader struct {
	defaults  map[string]any
	files     []string
	envOn     bool
	envPrefix string
	envSep    string
	logger    *slog.Logger
}

// WithDefaults seeds the lowest-precedence layer.
func WithDefaults(defaults map[string]any) Option {
	return func(l *loader) {
		l.defaults = defaults
	}
}

// WithFile adds a file layer. The format follows the extension: .json,
// .toml, .yaml or .yml. Later files override earlier ones.
func WithFile(path string) Option {
	return func(l *loader) {
		l.files = append(l.files, path)
	}
}

// WithEnv adds the highest-precedence layer from environment
// variables. Variables named PREFIX_A__B override the key "a.b"; the
// nesting separator defaults to "__". A variable with a _FILE suffix
// has its value read from the named file.
func WithEnv(prefix string) Option {
	return func(l *loader) {
		l.envOn = true
		l.envPrefix = prefix
	}
}

// WithEnvSeparator overrides the nesting separator used by WithEnv.
func WithEnvSeparator(sep string) Option {
	return func(l *loader) {
		l.envSep = sep
	}
}

// WithLogger sets the logger used for reload diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(l *loader) {
		l.logger = log
	}
}

// Config is a thread-safe view over the merged configuration tree.
type Config struct {
	src loader
	log *slog.Logger

	mu          sync.RWMutex
	root        *nested.Map
	secretPaths []string
}

// Load builds a config from the given layers.
func Load(opts ...Option) (*Config, error) {
	l := loader{envSep: "__"}
	for _, opt := range opts {
		opt(&l)
	}

	log := l.logger
	if log == nil {
		log = slog.Default()
	}

	c := &Config{src: l, log: log}
	if err := c.reload(); err != nil {
		return nil, err
	}

	return c, nil
}

// reload rebuilds the tree from all layers.
func (c *Config) reload() error {
	root := nested.NewMap()

	if c.src.defaults != nil {
		layer, err := asMap(nested.FromAny(c.src.defaults), "defaults")
		if err != nil {
			return err
		}
		nested.DeepUpdate(root, layer)
	}

	for _, path := range c.src.files {
		layer, err := readFile(path)
		if err != nil {
			return err
		}
		nested.DeepUpdate(root, layer)
	}

	if c.src.envOn {
		nested.DeepUpdate(root, envLayer(c.src.envPrefix, c.src.envSep))
	}

	c.mu.Lock()
	c.root = root
	c.mu.Unlock()

	return nil
}

// readFile parses one config file into a map layer.
func readFile(path string) (*nested.Map, error) {
	data, err := fileutil.SafeRead(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		node, err := nested.DecodeJSON(data)
		if err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		return asMap(node, path)
	case ".toml":
		var m map[string]any
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		return asMap(nested.FromAny(m), path)
	case ".yaml", ".yml":
		var m map[string]any
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		return asMap(nested.FromAny(m), path)
	default:
		return nil, fmt.Errorf("config: %s: unsupported extension %q", path, filepath.Ext(path))
	}
}

func asMap(n nested.Node, source string) (*nested.Map, error) {
	m, ok := n.(*nested.Map)
	if !ok {
		return nil, fmt.Errorf("config: %s: top level must be a mapping: %w", source, ErrBadValue)
	}
	return m, nil
}

// Get returns the value at a dotted path. The optional fallback is
// returned when the path does not resolve.
func (c *Config) Get(path string, fallback ...any) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, err := nested.GetAny(c.root, nested.ParsePath(path, Separator), fallback...)
	if err != nil {
		if errors.Is(err, nested.ErrNotFound) {
			return nil, fmt.Errorf("config: key %q: %w", path, ErrMissingKey)
		}
		return nil, fmt.Errorf("config: key %q: %w", path, err)
	}

	return v, nil
}

// Has reports whether a path resolves to a value.
func (c *Config) Has(path string) bool {
	_, err := c.Get(path)
	return err == nil
}

// String returns the value at path coerced to a string.
func (c *Config) String(path string, fallback ...string) string {
	v, err := c.Get(path)
	if err != nil {
		if len(fallback) > 0 {
			return fallback[0]
		}
		return ""
	}
	return coerce.ToString(v)
}

// Int returns the value at path coerced to an int.
func (c *Config) Int(path string, fallback ...int) int {
	return int(c.Int64(path, int64sOf(fallback)...))
}

// Int64 returns the value at path coerced to an int64.
func (c *Config) Int64(path string, fallback ...int64) int64 {
	if v, err := c.Get(path); err == nil {
		if n, err := coerce.ToInt64(v); err == nil {
			return n
		}
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return 0
}

// Float returns the value at path coerced to a float64.
func (c *Config) Float(path string, fallback ...float64) float64 {
	if v, err := c.Get(path); err == nil {
		if f, err := coerce.ToFloat64(v); err == nil {
			return f
		}
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return 0
}

// Bool returns the value at path coerced to a bool.
func (c *Config) Bool(path string, fallback ...bool) bool {
	if v, err := c.Get(path); err == nil {
		if b, err := coerce.ToBool(v); err == nil {
			return b
		}
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return false
}

// Duration returns the value at path coerced to a duration. Strings
// accept a day suffix ("2d12h") and bare numbers are seconds.
func (c *Config) Duration(path string, fallback ...time.Duration) time.Duration {
	if v, err := c.Get(path); err == nil {
		if d, err := coerce.ToDuration(v); err == nil {
			return d
		}
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return 0
}

// StringSlice returns the value at path as a string slice. A plain
// string is split on commas; list values are coerced element-wise.
func (c *Config) StringSlice(path string, fallback ...[]string) []string {
	v, err := c.Get(path)
	if err != nil {
		if len(fallback) > 0 {
			return fallback[0]
		}
		return nil
	}

	if s, ok := v.(string); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}

	elems := coerce.ToSlice(v)
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = coerce.ToString(e)
	}
	return out
}

// Set writes a value at a dotted path, creating intermediate maps as
// needed. A reload triggered by Watch discards values set this way.
func (c *Config) Set(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := nested.Set(c.root, nested.ParsePath(path, Separator), nested.FromAny(value)); err != nil {
		return fmt.Errorf("config: set %q: %w", path, err)
	}
	return nil
}

// Sub returns a detached config rooted at the mapping under path.
func (c *Config) Sub(path string) (*Config, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n, err := nested.Get(c.root, nested.ParsePath(path, Separator))
	if err != nil {
		return nil, false
	}
	m, ok := n.(*nested.Map)
	if !ok {
		return nil, false
	}

	return &Config{log: c.log, root: m.Clone().(*nested.Map)}, true
}

// ToMap returns the whole tree as plain Go values.
func (c *Config) ToMap() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, _ := nested.ToAny(c.root).(map[string]any)
	return m
}

func int64sOf(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}
