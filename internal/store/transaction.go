package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/openbank/openbank-api/internal/domain"
)

// TransactionPageSize is the fixed page size for transaction history queries.
const TransactionPageSize = 10

// TransactionStore defines the interface for persisting and querying
// immutable transaction records.
type TransactionStore interface {
	// Create persists a transaction record. Records are immutable once
	// created; there is no update operation.
	Create(ctx context.Context, tx *domain.Transaction) error

	// ListByOwner returns a page of the user's transactions ordered by
	// creation time ascending. Pages are zero-indexed.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page int) ([]*domain.Transaction, error)

	// ListByAccount returns a page of transactions recorded against the
	// account for the given owner, ordered by creation time ascending.
	ListByAccount(ctx context.Context, accountID, ownerID uuid.UUID, page int) ([]*domain.Transaction, error)

	// ListByCard returns a page of transactions recorded against the card
	// for the given owner, ordered by creation time ascending.
	ListByCard(ctx context.Context, cardID, ownerID uuid.UUID, page int) ([]*domain.Transaction, error)

	// WithTx returns a new TransactionStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TransactionStore
}
