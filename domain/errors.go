package domain

import (
	"errors"
	"strings"
)

// Sentinel errors shared across the stores. Handlers map these onto
// inline form messages; anything else is treated as a connectivity
// problem and shown as a page banner.
var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so login failures never reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrUsernameTaken = errors.New("username already exists")

	ErrNotFound = errors.New("record not found")
)

// ValidationError collects everything wrong with a submitted record.
// A write that produces one performs no database work.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// Validation builds a ValidationError, or nil when there are no problems.
func Validation(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// IsValidation reports whether err is a field validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
