package record

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is the sentinel returned when a lookup or matcher resolves to
// no record. Callers wrap it with the lookup key so the message can be
// surfaced as-is, and test for it with errors.Is.
var ErrNotFound = errors.New("record not found")

// FieldError describes one violated field constraint.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every violated constraint for one operation.
// Validation is eager: all fields are checked and all violations collected,
// never just the first one.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Reason
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
}

// orNil collapses an empty ValidationError to nil so callers can return it
// directly.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
