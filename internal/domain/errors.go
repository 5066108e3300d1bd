package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStudentNotFound is returned when a referenced student does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrAdminNotFound is returned when a referenced admin does not exist.
	ErrAdminNotFound = errors.New("admin not found")
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuestionNotFound indicates a quiz question ID is unknown.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuoteNotFound indicates a quote ID is unknown.
	ErrQuoteNotFound = errors.New("quote not found")
	// ErrProgressNotFound indicates no progress record exists for the key.
	ErrProgressNotFound = errors.New("progress record not found")
	// ErrEmailTaken is returned when creating an account with a duplicate email.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnknownLevel is returned by ParseLevel for unrecognized input.
	ErrUnknownLevel = errors.New("unknown quiz level")
)

// ValidationError reports a missing or malformed request field.
// It is reported to the caller before any mutation happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing required field %q", e.Field)
	}
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// MissingField builds a ValidationError for an absent required field.
func MissingField(field string) error {
	return &ValidationError{Field: field}
}

// InvalidField builds a ValidationError for a malformed field.
func InvalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
