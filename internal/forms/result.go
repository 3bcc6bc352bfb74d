// package forms decodes submitted form payloads into typed structs and validates them.
//
// Every decode returns a [Result], which is either Valid(data) or Invalid(field errors).
// Decoding checks the CSRF token before any field is looked at.
package forms

import "sort"

// FieldErrors maps a form field to its validation messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Fields returns the failing field names in sorted order.
func (e FieldErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Result is the outcome of decoding and validating a form.
type Result[T any] struct {
	data   T
	errors FieldErrors
}

// Valid wraps successfully validated data.
func Valid[T any](data T) Result[T] {
	return Result[T]{data: data}
}

// Invalid wraps field errors. An empty map still yields an invalid result.
func Invalid[T any](errs FieldErrors) Result[T] {
	if len(errs) == 0 {
		errs = FieldErrors{"form": {"Invalid form submission."}}
	}
	return Result[T]{errors: errs}
}

// Valid reports whether the form passed validation.
func (r Result[T]) Valid() bool { return len(r.errors) == 0 }

// Data returns the decoded form. It is the zero value for an invalid result.
func (r Result[T]) Data() T { return r.data }

// Errors returns the field errors of an invalid result, or nil.
func (r Result[T]) Errors() FieldErrors { return r.errors }
