package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/openbank/openbank-api/internal/domain"
	"github.com/openbank/openbank-api/internal/store"
)

const transactionColumns = `id, amount, tx_fee, type, status, account_id, card_id, owner_id, created_at`

// PostgresTransactionStore implements the store.TransactionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTransactionStore struct {
	db store.DBTX
}

// NewPostgresTransactionStore creates a new PostgreSQL implementation of the
// TransactionStore interface.
func NewPostgresTransactionStore(db store.DBTX) *PostgresTransactionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresTransactionStore{db: db}
}

// Ensure PostgresTransactionStore implements store.TransactionStore interface
var _ store.TransactionStore = (*PostgresTransactionStore)(nil)

// Create implements store.TransactionStore.Create
func (s *PostgresTransactionStore) Create(ctx context.Context, tx *domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO transactions (id, amount, tx_fee, type, status, account_id,
			card_id, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		tx.ID,
		tx.Amount,
		tx.TxFee,
		string(tx.Type),
		string(tx.Status),
		tx.AccountID,
		tx.CardID,
		tx.OwnerID,
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// ListByOwner implements store.TransactionStore.ListByOwner
func (s *PostgresTransactionStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, page int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE owner_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	return s.listTransactions(ctx, query, ownerID, store.TransactionPageSize, pageOffset(page))
}

// ListByAccount implements store.TransactionStore.ListByAccount
func (s *PostgresTransactionStore) ListByAccount(ctx context.Context, accountID, ownerID uuid.UUID, page int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 AND owner_id = $2
		ORDER BY created_at ASC
		LIMIT $3 OFFSET $4
	`
	return s.listTransactions(ctx, query, accountID, ownerID, store.TransactionPageSize, pageOffset(page))
}

// ListByCard implements store.TransactionStore.ListByCard
func (s *PostgresTransactionStore) ListByCard(ctx context.Context, cardID, ownerID uuid.UUID, page int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE card_id = $1 AND owner_id = $2
		ORDER BY created_at ASC
		LIMIT $3 OFFSET $4
	`
	return s.listTransactions(ctx, query, cardID, ownerID, store.TransactionPageSize, pageOffset(page))
}

// WithTx implements store.TransactionStore.WithTx
func (s *PostgresTransactionStore) WithTx(tx *sql.Tx) store.TransactionStore {
	return &PostgresTransactionStore{db: tx}
}

func pageOffset(page int) int {
	if page < 0 {
		page = 0
	}
	return page * store.TransactionPageSize
}

func (s *PostgresTransactionStore) listTransactions(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.Amount,
			&tx.TxFee,
			&tx.Type,
			&tx.Status,
			&tx.AccountID,
			&tx.CardID,
			&tx.OwnerID,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}
