// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidAmount is returned when a monetary amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInvalidCurrencyCode is returned when a currency code is not one of
	// the supported codes.
	ErrInvalidCurrencyCode = errors.New("unsupported currency code")

	// ErrInvalidTransactionType is returned when a transaction type is not valid.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrInvalidTransactionStatus is returned when a transaction status is not valid.
	ErrInvalidTransactionStatus = errors.New("invalid transaction status")

	// ErrInvalidTransactionTarget is returned when a transaction does not
	// reference exactly one of an account or a card.
	ErrInvalidTransactionTarget = errors.New("transaction must reference exactly one of account or card")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError provides field-level context for a validation failure.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError wrapping ErrValidation
// unless a more specific error is supplied.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}
