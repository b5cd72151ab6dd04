package coerce

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dayPattern matches a leading day count ("2d", "1.5d6h") that
// time.ParseDuration does not understand.
var dayPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)d(.*)$`)

// ToDuration converts v to a time.Duration. Numbers are seconds, strings
// accept time.ParseDuration syntax extended with a day unit ("36h",
// "2d", "1.5d6h30m"), and bare numeric strings are seconds.
func ToDuration(v any) (time.Duration, error) {
	switch t := v.(type) {
	case time.Duration:
		return t, nil
	case string:
		return parseDuration(t)
	}
	if f, err := ToFloat64(v); err == nil {
		return time.Duration(f * float64(time.Second)), nil
	}
	return 0, fmt.Errorf("coerce: %w: %T to duration", ErrInvalid, v)
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("coerce: %w: empty duration", ErrInvalid)
	}

	if m := dayPattern.FindStringSubmatch(s); m != nil {
		days, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("coerce: %w: bad day count in %q", ErrInvalid, s)
		}
		total := time.Duration(days * 24 * float64(time.Hour))
		if rest := m[2]; rest != "" {
			d, err := time.ParseDuration(rest)
			if err != nil {
				return 0, fmt.Errorf("coerce: %w: %q: %v", ErrInvalid, s, err)
			}
			total += d
		}
		return total, nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(f * float64(time.Second)), nil
	}
	return 0, fmt.Errorf("coerce: %w: %q is not a duration", ErrInvalid, s)
}
