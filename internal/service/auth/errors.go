package auth

import "errors"

// Authentication errors.
var (
	// ErrInvalidToken is returned when a token fails signature or claim
	// validation for any reason other than expiry.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token's expiry time has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid is returned when a token's not-before time is in
	// the future.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrInvalidCredentials is returned when a username/password pair does
	// not match a stored user.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
