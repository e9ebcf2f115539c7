package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/openbank/openbank-api/internal/domain"
	"github.com/openbank/openbank-api/internal/store"
)

const cardColumns = `id, card_number, card_holder, balance, cvv, pin, billing_address, issued_at, expires_at, owner_id, updated_at`

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db store.DBTX
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresCardStore(db store.DBTX) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresCardStore{db: db}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// Create implements store.CardStore.Create
// Card-number and owner uniqueness are enforced by database constraints.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (id, card_number, card_holder, balance, cvv, pin,
			billing_address, issued_at, expires_at, owner_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		card.ID,
		card.CardNumber,
		card.CardHolder,
		card.Balance,
		card.CVV,
		card.PIN,
		card.BillingAddress,
		card.IssuedAt,
		card.ExpiresAt,
		card.OwnerID,
		card.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "cards_card_number_key") {
			return store.ErrCardNumberExists
		}
		if isUniqueViolation(err, "cards_owner_id_key") {
			return store.ErrCardExists
		}
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// GetByOwner implements store.CardStore.GetByOwner
func (s *PostgresCardStore) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE owner_id = $1`
	return s.scanCard(s.db.QueryRowContext(ctx, query, ownerID))
}

// GetForUpdate implements store.CardStore.GetForUpdate
func (s *PostgresCardStore) GetForUpdate(ctx context.Context, ownerID uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE owner_id = $1 FOR UPDATE`
	return s.scanCard(s.db.QueryRowContext(ctx, query, ownerID))
}

// UpdateBalance implements store.CardStore.UpdateBalance
func (s *PostgresCardStore) UpdateBalance(ctx context.Context, id uuid.UUID, balance float64) error {
	query := `UPDATE cards SET balance = $1, updated_at = NOW() WHERE id = $2`
	result, err := s.db.ExecContext(ctx, query, balance, id)
	if err != nil {
		return fmt.Errorf("failed to update card balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrCardNotFound
	}

	return nil
}

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{db: tx}
}

func (s *PostgresCardStore) scanCard(row *sql.Row) (*domain.Card, error) {
	var card domain.Card
	err := row.Scan(
		&card.ID,
		&card.CardNumber,
		&card.CardHolder,
		&card.Balance,
		&card.CVV,
		&card.PIN,
		&card.BillingAddress,
		&card.IssuedAt,
		&card.ExpiresAt,
		&card.OwnerID,
		&card.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}
	return &card, nil
}
