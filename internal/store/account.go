package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/openbank/openbank-api/internal/domain"
)

// AccountStore defines the interface for account data persistence.
//
// Uniqueness of account numbers and of (owner, currency code) pairs is
// enforced by the store itself: Create returns ErrAccountNumberExists or
// ErrAccountExists on conflict so that callers can retry number generation
// instead of racing a separate existence check.
type AccountStore interface {
	// Create saves a new account to the store.
	// Returns ErrAccountNumberExists if the account number collides, and
	// ErrAccountExists if the owner already holds an account for the code.
	Create(ctx context.Context, account *domain.Account) error

	// GetByCodeAndOwner retrieves the owner's account for a currency code.
	// Returns ErrAccountNotFound if no such account exists.
	GetByCodeAndOwner(ctx context.Context, code string, ownerID uuid.UUID) (*domain.Account, error)

	// GetByNumber retrieves an account by its unique account number.
	// Returns ErrAccountNotFound if no such account exists.
	GetByNumber(ctx context.Context, accountNumber int64) (*domain.Account, error)

	// GetByCodeAndNumber retrieves an account by currency code and number.
	// Returns ErrAccountNotFound if no such account exists.
	GetByCodeAndNumber(ctx context.Context, code string, accountNumber int64) (*domain.Account, error)

	// ExistsByCodeAndOwner reports whether the owner holds an account for
	// the currency code.
	ExistsByCodeAndOwner(ctx context.Context, code string, ownerID uuid.UUID) (bool, error)

	// ListByOwner returns all accounts owned by the user, oldest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error)

	// GetForUpdate retrieves an account by ID and locks its row for the
	// duration of the surrounding transaction. Must be called within a
	// transaction obtained via WithTx.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// UpdateBalance persists a new balance for the account.
	// Returns ErrAccountNotFound if the account does not exist.
	UpdateBalance(ctx context.Context, id uuid.UUID, balance float64) error

	// WithTx returns a new AccountStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AccountStore
}
