package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/Davincible/n-utils/nested"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		wantOK bool
	}{
		{"string", "hello", true},
		{"zero int", 0, true},
		{"false", false, true},
		{"nil", nil, false},
		{"empty string", "", false},
		{"empty list", []any{}, false},
		{"empty map", map[string]any{}, false},
		{"populated list", []any{1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Required().Validate(tt.value); got.OK != tt.wantOK {
				t.Errorf("Required().Validate(%v).OK = %v, want %v (errors: %v)",
					tt.value, got.OK, tt.wantOK, got.Errors)
			}
		})
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name   string
		kind   string
		value  any
		wantOK bool
	}{
		{"string ok", "string", "x", true},
		{"string not ok", "string", 1, false},
		{"bool ok", "bool", true, true},
		{"int ok", "int", 42, true},
		{"int accepts integral float", "int", float64(42), true},
		{"int rejects fraction", "int", 42.5, false},
		{"float ok", "float", 3.14, true},
		{"number accepts int", "number", 7, true},
		{"number rejects string", "number", "7", false},
		{"list ok", "list", []any{1}, true},
		{"map ok", "map", map[string]any{"a": 1}, true},
		{"unknown kind", "blob", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeOf(tt.kind).Validate(tt.value); got.OK != tt.wantOK {
				t.Errorf("TypeOf(%q).Validate(%v).OK = %v, want %v",
					tt.kind, tt.value, got.OK, tt.wantOK)
			}
		})
	}
}

func TestRange(t *testing.T) {
	lo, hi := 1.0, 10.0

	tests := []struct {
		name     string
		min, max *float64
		value    any
		wantOK   bool
	}{
		{"inside", &lo, &hi, 5, true},
		{"at lower bound", &lo, &hi, 1, true},
		{"at upper bound", &lo, &hi, 10, true},
		{"below", &lo, &hi, 0, false},
		{"above", &lo, &hi, 11, false},
		{"no lower bound", nil, &hi, -100, true},
		{"no upper bound", &lo, nil, 1e9, true},
		{"not a number", &lo, &hi, "5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Range(tt.min, tt.max).Validate(tt.value); got.OK != tt.wantOK {
				t.Errorf("Range().Validate(%v).OK = %v, want %v", tt.value, got.OK, tt.wantOK)
			}
		})
	}

	if got := Min(3).Validate(2); got.OK {
		t.Error("Min(3).Validate(2).OK = true, want false")
	}
	if got := Max(3).Validate(2); !got.OK {
		t.Errorf("Max(3).Validate(2).OK = false, want true (errors: %v)", got.Errors)
	}
}

func TestLength(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		value    any
		wantOK   bool
	}{
		{"string in range", 1, 5, "abc", true},
		{"string too short", 2, 5, "a", false},
		{"string too long", 0, 2, "abc", false},
		{"runes not bytes", 1, 2, "hé", true}, // 3 bytes, 2 runes
		{"unbounded max", 1, -1, strings.Repeat("x", 1000), true},
		{"list", 1, 2, []any{1, 2}, true},
		{"map too small", 2, 5, map[string]any{"a": 1}, false},
		{"no length", 0, 5, 42, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Length(tt.min, tt.max).Validate(tt.value); got.OK != tt.wantOK {
				t.Errorf("Length(%d, %d).Validate(%v).OK = %v, want %v",
					tt.min, tt.max, tt.value, got.OK, tt.wantOK)
			}
		})
	}
}

func TestPattern(t *testing.T) {
	v := Pattern(`^v\d+\.\d+$`)

	if got := v.Validate("v1.2"); !got.OK {
		t.Errorf("Validate(v1.2) failed: %v", got.Errors)
	}
	if got := v.Validate("1.2"); got.OK {
		t.Error("Validate(1.2).OK = true, want false")
	}
	if got := v.Validate(12); got.OK {
		t.Error("Validate(12).OK = true, want false")
	}

	bad := Pattern(`[unclosed`)
	if got := bad.Validate("anything"); got.OK {
		t.Error("invalid pattern validated successfully, want failure")
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		value  any
		wantOK bool
	}{
		{"user@example.com", true},
		{"first.last+tag@sub.example.org", true},
		{"not-an-email", false},
		{"@example.com", false},
		{"user@", false},
		{"user@host", false},
		{42, false},
	}

	for _, tt := range tests {
		if got := Email().Validate(tt.value); got.OK != tt.wantOK {
			t.Errorf("Email().Validate(%v).OK = %v, want %v", tt.value, got.OK, tt.wantOK)
		}
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		value  any
		wantOK bool
	}{
		{"https://example.com/path?q=1", true},
		{"http://localhost:8080", true},
		{"ftp://example.com", false},
		{"example.com", false},
		{"https://", false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := URL().Validate(tt.value); got.OK != tt.wantOK {
			t.Errorf("URL().Validate(%v).OK = %v, want %v", tt.value, got.OK, tt.wantOK)
		}
	}
}

func TestChoice(t *testing.T) {
	v := Choice("debug", "info", "warn", "error")

	if got := v.Validate("info"); !got.OK {
		t.Errorf("Validate(info) failed: %v", got.Errors)
	}
	if got := v.Validate("trace"); got.OK {
		t.Error("Validate(trace).OK = true, want false")
	}

	nums := Choice(1, 2, 3)
	if got := nums.Validate(float64(2)); !got.OK {
		t.Errorf("Validate(2.0) against ints failed: %v", got.Errors)
	}
}

func TestDate(t *testing.T) {
	if got := Date("2006-01-02").Validate("2024-03-01"); !got.OK {
		t.Errorf("Validate(2024-03-01) failed: %v", got.Errors)
	}
	if got := Date("2006-01-02").Validate("01/03/2024"); got.OK {
		t.Error("wrong layout validated successfully")
	}
	if got := Date("").Validate("2024-03-01T10:30:00Z"); !got.OK {
		t.Errorf("RFC 3339 default failed: %v", got.Errors)
	}
}

func TestCombinators(t *testing.T) {
	t.Run("all collects errors", func(t *testing.T) {
		v := All(TypeOf("string"), Length(5, -1))
		got := v.Validate(42)
		if got.OK {
			t.Fatal("All().OK = true, want false")
		}
		if len(got.Errors) != 2 {
			t.Errorf("All() errors = %v, want 2 entries", got.Errors)
		}
	})

	t.Run("any passes on first match", func(t *testing.T) {
		v := Any(TypeOf("int"), TypeOf("string"))
		if got := v.Validate("x"); !got.OK {
			t.Errorf("Any() failed: %v", got.Errors)
		}
		if got := v.Validate(true); got.OK {
			t.Error("Any().OK = true for bool, want false")
		}
	})

	t.Run("when gates on condition", func(t *testing.T) {
		isString := func(v any) bool { _, ok := v.(string); return ok }
		v := When(isString, Length(3, -1))
		if got := v.Validate("ab"); got.OK {
			t.Error("When() skipped matching value")
		}
		if got := v.Validate(1); !got.OK {
			t.Errorf("When() validated non-matching value: %v", got.Errors)
		}
	})
}

func TestValidatesTreeNodes(t *testing.T) {
	if got := TypeOf("string").Validate(nested.NewScalar("x")); !got.OK {
		t.Errorf("scalar node failed string check: %v", got.Errors)
	}
	if got := Length(1, 2).Validate(nested.NewList(nested.NewScalar(1))); !got.OK {
		t.Errorf("list node failed length check: %v", got.Errors)
	}
}

func TestResultErr(t *testing.T) {
	if err := Valid().Err(); err != nil {
		t.Errorf("Valid().Err() = %v, want nil", err)
	}

	r := Invalid("too small", "wrong type")
	r.Field = "port"
	err := r.Err()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Err() = %v, want ErrInvalid", err)
	}
	want := "port: too small; wrong type"
	if !strings.Contains(err.Error(), want) {
		t.Errorf("Err() = %q, want it to contain %q", err.Error(), want)
	}
}
