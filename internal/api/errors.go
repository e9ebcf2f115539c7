package api

import (
	"errors"
	"net/http"

	"github.com/openbank/openbank-api/internal/api/shared"
	"github.com/openbank/openbank-api/internal/domain"
	"github.com/openbank/openbank-api/internal/platform/rates"
	"github.com/openbank/openbank-api/internal/service"
	"github.com/openbank/openbank-api/internal/service/auth"
	"github.com/openbank/openbank-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotAccountOwner):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrAccountNotFound),
		errors.Is(err, store.ErrCardNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrUsernameExists),
		errors.Is(err, store.ErrAccountExists),
		errors.Is(err, store.ErrCardExists):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrSameCurrency),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrCardMinimumFunding),
		errors.Is(err, service.ErrUSDAccountRequired),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidCurrencyCode),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Rates cache not yet primed
	case errors.Is(err, rates.ErrRatesUnavailable):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, service.ErrNotAccountOwner):
		return "You do not own this account"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrAccountNotFound):
		return "Account not found"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, store.ErrUsernameExists):
		return "Username already taken"

	case errors.Is(err, store.ErrAccountExists):
		return "An account of this currency already exists"

	case errors.Is(err, store.ErrCardExists):
		return "A card already exists for this user"

	case errors.Is(err, service.ErrInsufficientFunds):
		return "Insufficient funds"

	case errors.Is(err, service.ErrSameCurrency):
		return "Conversion requires two different currencies"

	case errors.Is(err, service.ErrInvalidAmount):
		return "Amount must be greater than zero"

	case errors.Is(err, service.ErrCardMinimumFunding):
		return "Card funding amount is below the minimum"

	case errors.Is(err, service.ErrUSDAccountRequired):
		return "A USD account is required"

	case errors.Is(err, domain.ErrInvalidCurrencyCode):
		return "Unsupported currency code"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	case errors.Is(err, rates.ErrRatesUnavailable):
		return "Exchange rates are temporarily unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps an error to a status code and safe message, then writes
// the response and logs the underlying error. An explicit non-empty message
// overrides the mapped one.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
