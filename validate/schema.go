package validate

import (
	"sort"

	"github.com/Davincible/n-utils/nested"
)

// Schema validates a mapping field by field. Fields are required
// unless their validator is wrapped in Optional. Keys not named in the
// schema fail validation unless AllowExtra is set.
type Schema struct {
	Fields     map[string]Validator
	AllowExtra bool
}

// Validate implements Validator, so schemas nest.
func (s Schema) Validate(v any) Result {
	m, ok := mapValue(v)
	if !ok {
		return Invalidf("expected a mapping, got %T", normalize(v))
	}

	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []string
	for _, name := range names {
		validator := s.Fields[name]

		value, present := m[name]
		if !present {
			if _, opt := validator.(optional); !opt {
				errs = append(errs, name+": required field is missing")
			}
			continue
		}

		if r := validator.Validate(value); !r.OK {
			for _, msg := range r.Errors {
				errs = append(errs, name+": "+msg)
			}
		}
	}

	if !s.AllowExtra {
		extra := make([]string, 0)
		for key := range m {
			if _, known := s.Fields[key]; !known {
				extra = append(extra, key)
			}
		}
		sort.Strings(extra)
		for _, key := range extra {
			errs = append(errs, key+": unexpected field")
		}
	}

	if len(errs) > 0 {
		return Invalid(errs...)
	}
	return Valid()
}

// mapValue accepts both plain maps and tree maps.
func mapValue(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case *nested.Map:
		mm, ok := nested.ToAny(m).(map[string]any)
		return mm, ok
	}
	return nil, false
}
