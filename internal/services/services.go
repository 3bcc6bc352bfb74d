package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/mixtape/internal/forms"
	"github.com/desertthunder/mixtape/internal/shared"
)

// ValidationError carries the field errors of a rejected form.
type ValidationError struct {
	Errors forms.FieldErrors
}

// NewValidationError builds a [ValidationError] with a single message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: forms.FieldErrors{field: {message}}}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("form validation failed: %s", strings.Join(e.Errors.Fields(), ", "))
}

// Unwrap lets callers match validation failures with [shared.ErrInvalidInput].
func (e *ValidationError) Unwrap() error { return shared.ErrInvalidInput }

// AsValidationError extracts a [ValidationError] from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}

// ErrMissingUploadURL is returned in legacy upload mode when storage produced no URL.
// It does not wrap [shared.ErrUploadFailed] and surfaces as an internal error.
var ErrMissingUploadURL = errors.New("upload response has no url")
