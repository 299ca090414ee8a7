// Package validation carries field-level validation failures from
// services up to the request boundary, where they are rendered as a
// 400 response keyed by field name.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// NonFieldErrors is the key used for failures that are not attributable
// to a single input field, such as credential mismatches.
const NonFieldErrors = "non_field_errors"

// Errors maps a field name to the messages reported against it.
type Errors map[string][]string

// Add records a message against a field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// AddNonField records a failure not tied to any single field.
func (e Errors) AddNonField(message string) {
	e.Add(NonFieldErrors, message)
}

// Has reports whether any message was recorded against the field.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Error implements the error interface so Errors can travel through
// error returns and be recovered with errors.As.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e[field], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
