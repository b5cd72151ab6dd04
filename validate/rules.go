package validate

import (
	"math"
	"net/url"
	"reflect"
	"regexp"
	"time"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Required fails on nil, empty strings, and empty containers.
func Required() Validator {
	return Func(func(v any) Result {
		switch val := normalize(v).(type) {
		case nil:
			return Invalid("required value is missing")
		case string:
			if val == "" {
				return Invalid("required value is empty")
			}
		case []any:
			if len(val) == 0 {
				return Invalid("required value is empty")
			}
		case map[string]any:
			if len(val) == 0 {
				return Invalid("required value is empty")
			}
		}
		return Valid()
	})
}

// TypeOf checks the dynamic type of the value. Supported kinds are
// string, bool, int, float, number, list, and map. Integer-valued
// floats count as int, matching how JSON decodes numbers.
func TypeOf(kind string) Validator {
	return Func(func(v any) Result {
		val := normalize(v)
		ok := false
		switch kind {
		case "string":
			_, ok = val.(string)
		case "bool":
			_, ok = val.(bool)
		case "int":
			if f, isNum := numValue(val); isNum {
				ok = f == math.Trunc(f)
			}
		case "float", "number":
			_, ok = numValue(val)
		case "list":
			_, ok = val.([]any)
		case "map":
			_, ok = val.(map[string]any)
		default:
			return Invalidf("unknown type %q", kind)
		}
		if !ok {
			return Invalidf("expected %s, got %T", kind, val)
		}
		return Valid()
	})
}

// Range checks that a numeric value lies within the inclusive bounds.
// A nil bound is unbounded on that side.
func Range(min, max *float64) Validator {
	return Func(func(v any) Result {
		f, ok := numValue(normalize(v))
		if !ok {
			return Invalidf("expected a number, got %T", normalize(v))
		}
		if min != nil && f < *min {
			return Invalidf("%v is below minimum %v", f, *min)
		}
		if max != nil && f > *max {
			return Invalidf("%v is above maximum %v", f, *max)
		}
		return Valid()
	})
}

// Min checks a numeric lower bound.
func Min(min float64) Validator {
	return Range(&min, nil)
}

// Max checks a numeric upper bound.
func Max(max float64) Validator {
	return Range(nil, &max)
}

// Length checks the length of a string (in runes), list, or map. A
// negative max means no upper bound.
func Length(min, max int) Validator {
	return Func(func(v any) Result {
		var n int
		switch val := normalize(v).(type) {
		case string:
			n = utf8.RuneCountInString(val)
		case []any:
			n = len(val)
		case map[string]any:
			n = len(val)
		default:
			return Invalidf("value of type %T has no length", val)
		}
		if n < min {
			return Invalidf("length %d is below minimum %d", n, min)
		}
		if max >= 0 && n > max {
			return Invalidf("length %d is above maximum %d", n, max)
		}
		return Valid()
	})
}

// Pattern checks a string against a regular expression.
func Pattern(expr string) Validator {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Func(func(any) Result {
			return Invalidf("invalid pattern %q: %v", expr, err)
		})
	}
	return Func(func(v any) Result {
		s, ok := normalize(v).(string)
		if !ok {
			return Invalidf("expected a string, got %T", normalize(v))
		}
		if !re.MatchString(s) {
			return Invalidf("%q does not match %q", s, expr)
		}
		return Valid()
	})
}

// Email checks for a plausible email address.
func Email() Validator {
	return Func(func(v any) Result {
		s, ok := normalize(v).(string)
		if !ok {
			return Invalidf("expected a string, got %T", normalize(v))
		}
		if !emailPattern.MatchString(s) {
			return Invalidf("%q is not a valid email address", s)
		}
		return Valid()
	})
}

// URL checks for an absolute http or https URL.
func URL() Validator {
	return Func(func(v any) Result {
		s, ok := normalize(v).(string)
		if !ok {
			return Invalidf("expected a string, got %T", normalize(v))
		}
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Invalidf("%q is not a valid URL", s)
		}
		return Valid()
	})
}

// Choice checks membership in a fixed set of values. Numbers compare
// by value, so 2 matches 2.0.
func Choice(values ...any) Validator {
	return Func(func(v any) Result {
		val := normalize(v)
		for _, want := range values {
			if looseEqual(val, want) {
				return Valid()
			}
		}
		return Invalidf("%v is not one of the allowed values", val)
	})
}

// Date checks that a string parses with the given layout. An empty
// layout means RFC 3339.
func Date(layout string) Validator {
	if layout == "" {
		layout = time.RFC3339
	}
	return Func(func(v any) Result {
		s, ok := normalize(v).(string)
		if !ok {
			return Invalidf("expected a string, got %T", normalize(v))
		}
		if _, err := time.Parse(layout, s); err != nil {
			return Invalidf("%q is not a valid date: %v", s, err)
		}
		return Valid()
	})
}

// numValue extracts a float64 from any numeric type. Strings and
// booleans are not numbers here.
func numValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func looseEqual(a, b any) bool {
	if fa, ok := numValue(a); ok {
		if fb, ok := numValue(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}
