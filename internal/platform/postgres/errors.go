// Package postgres provides PostgreSQL implementations of the store interfaces.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const uniqueViolationCode = "23505" // PostgreSQL unique violation error code

// isUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation. When constraint is non-empty, the violation must be
// on that named constraint; this lets callers distinguish an account-number
// collision from a duplicate (owner, code) pair.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return false
	}
	if constraint == "" {
		return true
	}
	return pgErr.ConstraintName == constraint
}
