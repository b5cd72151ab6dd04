package coerce

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestToString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "s", "s"},
		{"bytes", []byte("b"), "b"},
		{"nil", nil, ""},
		{"int", 42, "42"},
		{"negative int64", int64(-7), "-7"},
		{"uint", uint(9), "9"},
		{"float drops trailing zeros", 1.50, "1.5"},
		{"float integer", float64(3), "3"},
		{"bool", true, "true"},
		{"error", errors.New("boom"), "boom"},
		{"stringer", time.Second, "1s"},
		{"fallback", struct{ A int }{1}, "{A:1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToString(tt.in); got != tt.want {
				t.Errorf("ToString(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKey(t *testing.T) {
	if got := Key(nil); got != "nil" {
		t.Errorf("Key(nil) = %q, want %q", got, "nil")
	}
	if got := Key(7); got != "7" {
		t.Errorf("Key(7) = %q, want %q", got, "7")
	}
	if got := Key(""); got != "" {
		t.Errorf("Key(\"\") = %q, want empty", got)
	}
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int64
		wantErr bool
	}{
		{"int", 5, 5, false},
		{"int64", int64(-3), -3, false},
		{"uint32", uint32(7), 7, false},
		{"float truncates", 3.9, 3, false},
		{"negative float truncates", -3.9, -3, false},
		{"numeric string", "12", 12, false},
		{"float string", " 2.7 ", 2, false},
		{"bool true", true, 1, false},
		{"bool false", false, 0, false},
		{"bad string", "abc", 0, true},
		{"nil", nil, 0, true},
		{"struct", struct{}{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInt64(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToInt64(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("error = %v, want ErrInvalid", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ToInt64(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestToInt64In(t *testing.T) {
	if _, err := ToInt64In(15, 0, 10); !errors.Is(err, ErrInvalid) {
		t.Errorf("ToInt64In(15, 0, 10) error = %v, want ErrInvalid", err)
	}
	if got, err := ToInt64In("7", 0, 10); err != nil || got != 7 {
		t.Errorf("ToInt64In(7) = %d, %v, want 7, nil", got, err)
	}
}

func TestToFloat64(t *testing.T) {
	tests := []struct {
		in      any
		want    float64
		wantErr bool
	}{
		{1.5, 1.5, false},
		{3, 3, false},
		{"2.25", 2.25, false},
		{true, 1, false},
		{"x", 0, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			got, err := ToFloat64(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToFloat64(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ToFloat64(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestToBool(t *testing.T) {
	truthy := []any{true, "true", "YES", "on", "1", "y", 1, 2.5}
	for _, v := range truthy {
		if got, err := ToBool(v); err != nil || !got {
			t.Errorf("ToBool(%v) = %v, %v, want true, nil", v, got, err)
		}
	}

	falsy := []any{false, "false", "No", "off", "0", "", nil, 0}
	for _, v := range falsy {
		if got, err := ToBool(v); err != nil || got {
			t.Errorf("ToBool(%v) = %v, %v, want false, nil", v, got, err)
		}
	}

	if _, err := ToBool("maybe"); !errors.Is(err, ErrInvalid) {
		t.Errorf("ToBool(maybe) error = %v, want ErrInvalid", err)
	}
}
