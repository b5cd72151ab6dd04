package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Davincible/n-utils/validate"
)

// Field declares one schema entry for Apply.
type Field struct {
	// Name is the dotted path of the field.
	Name string

	// Required makes Apply fail when the field is absent and no
	// Default fills it.
	Required bool

	// Default is written when the field is absent.
	Default any

	// Validate runs against the resolved value when present.
	Validate validate.Validator

	// Secret marks the field for masking in Redacted.
	Secret bool
}

// Schema is an ordered list of field declarations.
type Schema []Field

// redactedPlaceholder replaces secret values in Redacted output.
const redactedPlaceholder = "**********"

// Apply fills defaults, enforces required fields, and runs per-field
// validators. All failures are reported together. Secret fields are
// remembered for Redacted.
func (c *Config) Apply(schema Schema) error {
	var errs []error
	var secrets []string

	for _, field := range schema {
		if field.Secret {
			secrets = append(secrets, field.Name)
		}

		value, err := c.Get(field.Name)
		if err != nil {
			if field.Default != nil {
				if err := c.Set(field.Name, field.Default); err != nil {
					errs = append(errs, fmt.Errorf("config: default for %q: %w", field.Name, err))
				}
				continue
			}
			if field.Required {
				errs = append(errs, fmt.Errorf("config: field %q: %w", field.Name, ErrMissingKey))
			}
			continue
		}

		if field.Validate != nil {
			r := field.Validate.Validate(value)
			r.Field = field.Name
			if err := r.Err(); err != nil {
				errs = append(errs, fmt.Errorf("config: %w", err))
			}
		}
	}

	c.mu.Lock()
	c.secretPaths = secrets
	c.mu.Unlock()

	return errors.Join(errs...)
}

// Redacted returns the tree as plain Go values with secret fields
// masked. Fields are marked secret by a previous Apply.
func (c *Config) Redacted() map[string]any {
	c.mu.RLock()
	secrets := append([]string(nil), c.secretPaths...)
	c.mu.RUnlock()

	m := c.ToMap()
	for _, path := range secrets {
		maskPath(m, path)
	}
	return m
}

// maskPath replaces the value at a dotted path inside a plain map when
// present.
func maskPath(m map[string]any, path string) {
	steps := splitDots(path)
	cur := m
	for i, step := range steps {
		if i == len(steps)-1 {
			if _, ok := cur[step]; ok {
				cur[step] = redactedPlaceholder
			}
			return
		}
		next, ok := cur[step].(map[string]any)
		if !ok {
			return
		}
		cur = next
	}
}

func splitDots(path string) []string {
	parts := strings.Split(path, Separator)
	steps := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			steps = append(steps, p)
		}
	}
	return steps
}
