// Package coerce converts loosely-typed values between scalars, slices,
// maps, durations, and JSON. Conversions are permissive where a sensible
// reading exists and fail with an error wrapping ErrInvalid otherwise.
package coerce

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalid indicates a value that cannot be coerced to the requested
// type.
var ErrInvalid = errors.New("cannot coerce value")

// ToString renders v as a string: strings and byte slices pass through,
// numbers and booleans format compactly, errors and Stringers use their
// own rendering, nil becomes the empty string.
func ToString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint8:
		return strconv.FormatUint(uint64(t), 10)
	case uint16:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprintf("%+v", v)
}

// Key renders v as a map key. It differs from ToString in one way: nil
// becomes "nil" instead of the empty string, so distinct untyped values
// never collapse onto the empty key.
func Key(v any) string {
	if v == nil {
		return "nil"
	}
	return ToString(v)
}

// ToInt64 converts numbers, numeric strings, and booleans to int64.
// Floating-point values truncate toward zero.
func ToInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case uint:
		return int64(t), nil
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return 0, fmt.Errorf("coerce: %w: %d overflows int64", ErrInvalid, t)
		}
		return int64(t), nil
	case float32:
		return int64(t), nil
	case float64:
		return int64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), nil
		}
		return 0, fmt.Errorf("coerce: %w: %q is not numeric", ErrInvalid, t)
	}
	return 0, fmt.Errorf("coerce: %w: %T to int64", ErrInvalid, v)
}

// ToInt64In converts like ToInt64 and enforces inclusive bounds.
func ToInt64In(v any, lo, hi int64) (int64, error) {
	n, err := ToInt64(v)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("coerce: %w: %d outside [%d, %d]", ErrInvalid, n, lo, hi)
	}
	return n, nil
}

// ToInt is ToInt64 narrowed to int.
func ToInt(v any) (int, error) {
	n, err := ToInt64(v)
	if err != nil {
		return 0, err
	}
	if n < math.MinInt || n > math.MaxInt {
		return 0, fmt.Errorf("coerce: %w: %d overflows int", ErrInvalid, n)
	}
	return int(n), nil
}

// ToFloat64 converts numbers, numeric strings, and booleans to float64.
func ToFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case float32:
		return float64(t), nil
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int8:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint:
		return float64(t), nil
	case uint8:
		return float64(t), nil
	case uint16:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("coerce: %w: %q is not numeric", ErrInvalid, t)
		}
		return f, nil
	}
	return 0, fmt.Errorf("coerce: %w: %T to float64", ErrInvalid, v)
}

// ToBool converts booleans, numbers (non-zero is true), and the usual
// truthy strings: true/yes/on/1/t/y and their negations. The empty
// string is false.
func ToBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "on", "1", "t", "y":
			return true, nil
		case "false", "no", "off", "0", "f", "n", "":
			return false, nil
		}
		return false, fmt.Errorf("coerce: %w: %q is not a boolean", ErrInvalid, t)
	case nil:
		return false, nil
	}
	if f, err := ToFloat64(v); err == nil {
		return f != 0, nil
	}
	return false, fmt.Errorf("coerce: %w: %T to bool", ErrInvalid, v)
}
