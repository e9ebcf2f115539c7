package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/openbank/openbank-api/internal/domain"
)

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card to the store.
	// Returns ErrCardNumberExists if the card number collides, and
	// ErrCardExists if the owner already holds a card.
	Create(ctx context.Context, card *domain.Card) error

	// GetByOwner retrieves the card owned by the user.
	// Returns ErrCardNotFound if the user has no card.
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Card, error)

	// GetForUpdate retrieves the owner's card and locks its row for the
	// duration of the surrounding transaction. Must be called within a
	// transaction obtained via WithTx.
	GetForUpdate(ctx context.Context, ownerID uuid.UUID) (*domain.Card, error)

	// UpdateBalance persists a new balance for the card.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateBalance(ctx context.Context, id uuid.UUID, balance float64) error

	// WithTx returns a new CardStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CardStore
}
