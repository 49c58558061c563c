package common

import (
	"sort"
	"strings"
)

// ValidationError carries per-field validation messages so the HTTP layer can
// render a 422 response with the offending fields. It is a value-style error:
// build it with NewValidationError and grow it with Add.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a message for the given field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no field has accumulated a message.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error"
	}
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation error: " + strings.Join(fields, ", ")
}
