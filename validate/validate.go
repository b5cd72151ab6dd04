// Package validate provides composable value validators and schema
// validation for dynamic data such as decoded JSON or configuration
// trees.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Davincible/n-utils/nested"
)

// ErrInvalid is wrapped by Result.Err for failed validations.
var ErrInvalid = errors.New("validation failed")

// Result is the outcome of one validation.
type Result struct {
	OK     bool
	Field  string
	Errors []string
}

// Valid returns a passing result.
func Valid() Result {
	return Result{OK: true}
}

// Invalid returns a failing result with the given messages.
func Invalid(msgs ...string) Result {
	return Result{Errors: msgs}
}

// Invalidf returns a failing result with a formatted message.
func Invalidf(format string, args ...any) Result {
	return Result{Errors: []string{fmt.Sprintf(format, args...)}}
}

// Err materializes the result as an error, nil when it passed.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	msg := strings.Join(r.Errors, "; ")
	if r.Field != "" {
		msg = r.Field + ": " + msg
	}
	if msg == "" {
		msg = "invalid value"
	}
	return fmt.Errorf("%w: %s", ErrInvalid, msg)
}

// Validator checks a single value.
type Validator interface {
	Validate(v any) Result
}

// Func adapts a function to the Validator interface.
type Func func(v any) Result

func (f Func) Validate(v any) Result {
	return f(v)
}

// All passes when every validator passes, collecting all errors
// otherwise.
func All(vs ...Validator) Validator {
	return Func(func(v any) Result {
		var errs []string
		for _, validator := range vs {
			if r := validator.Validate(v); !r.OK {
				errs = append(errs, r.Errors...)
			}
		}
		if len(errs) > 0 {
			return Invalid(errs...)
		}
		return Valid()
	})
}

// Any passes when at least one validator passes.
func Any(vs ...Validator) Validator {
	return Func(func(v any) Result {
		var errs []string
		for _, validator := range vs {
			r := validator.Validate(v)
			if r.OK {
				return Valid()
			}
			errs = append(errs, r.Errors...)
		}
		if len(errs) == 0 {
			return Valid()
		}
		return Invalid(errs...)
	})
}

// When applies the validator only to values matching cond.
func When(cond func(v any) bool, validator Validator) Validator {
	return Func(func(v any) Result {
		if !cond(v) {
			return Valid()
		}
		return validator.Validate(v)
	})
}

// Optional marks a schema field as allowed to be missing. Present
// values are still validated.
func Optional(validator Validator) Validator {
	return optional{inner: validator}
}

type optional struct {
	inner Validator
}

func (o optional) Validate(v any) Result {
	return o.inner.Validate(v)
}

// normalize unwraps tree nodes so validators see plain Go values.
func normalize(v any) any {
	if n, ok := v.(nested.Node); ok {
		return nested.ToAny(n)
	}
	return v
}
