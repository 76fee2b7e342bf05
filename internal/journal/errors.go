package journal

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-together/internal/config"
)

var (
	ErrNotFound      = errors.New(config.ErrNotFound)
	ErrValidation    = errors.New(config.ErrValidation)
	ErrCapsuleLocked = errors.New(config.ErrCapsuleLocked)
	ErrNotOnboarded  = errors.New(config.ErrNotOnboarded)
	ErrPhotoTooLarge = errors.New(config.ErrPhotoTooLarge)
)

// Validation reasons.
const (
	ReasonRequired = "required"
	ReasonTooLong  = "too_long"
	ReasonInvalid  = "invalid"
	ReasonNotAfter = "not_after_today"
)

// ValidationError names the offending field. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", config.ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
