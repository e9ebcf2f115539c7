// Package service implements the business logic of the bank: account
// creation, transfers, currency conversion, card operations and user
// registration.
package service

import "errors"

// Typed failures surfaced by ledger and card operations. The HTTP layer maps
// these onto status codes; none are retried internally.
var (
	// ErrInsufficientFunds is returned when an account balance cannot cover
	// the requested amount (plus fee, where the operation charges one).
	ErrInsufficientFunds = errors.New("insufficient funds in the account")

	// ErrSameCurrency is returned when a conversion is requested between
	// identical currency codes.
	ErrSameCurrency = errors.New("conversion between the same currency types is not allowed")

	// ErrInvalidAmount is returned when an operation requires a positive amount.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrCardMinimumFunding is returned when card creation is requested with
	// less than the $1 issuance fee plus $1 minimum card balance.
	ErrCardMinimumFunding = errors.New("card funding amount must be at least 2")

	// ErrUSDAccountRequired is returned when a card operation is attempted
	// by a user without a USD account.
	ErrUSDAccountRequired = errors.New("USD account required for card operations")

	// ErrNotAccountOwner is returned when an operation references an account
	// not owned by the authenticated user.
	ErrNotAccountOwner = errors.New("account is not owned by this user")

	// ErrNumberGenerationFailed is returned when a unique account or card
	// number could not be generated within the retry budget.
	ErrNumberGenerationFailed = errors.New("failed to generate a unique number")
)
