// Package auth provides token issuance/validation and password hashing.
package auth

import (
	"context"

	"github.com/google/uuid"
)

// Claims holds the validated claims extracted from a token.
type Claims struct {
	UserID    uuid.UUID
	ExpiresAt int64
	IssuedAt  int64
}

// JWTService defines the interface for generating and validating auth tokens.
type JWTService interface {
	// GenerateToken creates a signed token carrying the user's ID.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken verifies a token and returns its claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}
