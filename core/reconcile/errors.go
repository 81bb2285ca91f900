package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound marks a missing related entity (e.g., a basket constituent
// that no vendor has delivered yet). It is fatal for the referencing record
// only; batch callers separate it from plain validation rejects so the
// record can be retried once the dependency arrives.
var ErrNotFound = errors.New("entity not found")

// FieldError describes one violated field on an incoming record. Operators
// use the field name to fix the vendor data, so it must name the exact
// field, never a generic message.
type FieldError struct {
	// Field is the record field that failed (e.g. "source",
	// "identifiers[0].value").
	Field string `json:"field"`

	// Message explains the violation.
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationResult accumulates field errors across a whole record. The
// record is rejected as a unit if any error accumulated; there is no
// partial merge.
type ValidationResult struct {
	errs []FieldError
}

// Addf records a violation for the given field.
func (v *ValidationResult) Addf(field, format string, args ...any) {
	v.errs = append(v.errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Add records an already-built field error.
func (v *ValidationResult) Add(err FieldError) {
	v.errs = append(v.errs, err)
}

// OK reports whether no violations accumulated.
func (v *ValidationResult) OK() bool {
	return len(v.errs) == 0
}

// Errors returns the accumulated violations in the order they were added.
func (v *ValidationResult) Errors() []FieldError {
	return v.errs
}

func (v *ValidationResult) Error() string {
	parts := make([]string, 0, len(v.errs))
	for _, e := range v.errs {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
