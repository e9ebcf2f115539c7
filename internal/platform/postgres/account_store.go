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

const accountColumns = `id, account_number, account_name, balance, code, symbol, label, owner_id, created_at, updated_at`

// PostgresAccountStore implements the store.AccountStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAccountStore struct {
	db store.DBTX
}

// NewPostgresAccountStore creates a new PostgreSQL implementation of the
// AccountStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresAccountStore(db store.DBTX) *PostgresAccountStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresAccountStore{db: db}
}

// Ensure PostgresAccountStore implements store.AccountStore interface
var _ store.AccountStore = (*PostgresAccountStore)(nil)

// Create implements store.AccountStore.Create
// Account-number and (owner, code) uniqueness are enforced by database
// constraints rather than a prior existence check, so concurrent creations
// cannot race past each other.
func (s *PostgresAccountStore) Create(ctx context.Context, account *domain.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO accounts (id, account_number, account_name, balance, code,
			symbol, label, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.AccountNumber,
		account.AccountName,
		account.Balance,
		account.Code,
		account.Symbol,
		account.Label,
		account.OwnerID,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "accounts_account_number_key") {
			return store.ErrAccountNumberExists
		}
		if isUniqueViolation(err, "accounts_owner_id_code_key") {
			return store.ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByCodeAndOwner implements store.AccountStore.GetByCodeAndOwner
func (s *PostgresAccountStore) GetByCodeAndOwner(ctx context.Context, code string, ownerID uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1 AND owner_id = $2`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, code, ownerID))
}

// GetByNumber implements store.AccountStore.GetByNumber
func (s *PostgresAccountStore) GetByNumber(ctx context.Context, accountNumber int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, accountNumber))
}

// GetByCodeAndNumber implements store.AccountStore.GetByCodeAndNumber
func (s *PostgresAccountStore) GetByCodeAndNumber(ctx context.Context, code string, accountNumber int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1 AND account_number = $2`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, code, accountNumber))
}

// ExistsByCodeAndOwner implements store.AccountStore.ExistsByCodeAndOwner
func (s *PostgresAccountStore) ExistsByCodeAndOwner(ctx context.Context, code string, ownerID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE code = $1 AND owner_id = $2)`
	if err := s.db.QueryRowContext(ctx, query, code, ownerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return exists, nil
}

// ListByOwner implements store.AccountStore.ListByOwner
func (s *PostgresAccountStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// GetForUpdate implements store.AccountStore.GetForUpdate
// The FOR UPDATE lock serializes concurrent balance mutations on the same
// account row for the duration of the surrounding transaction.
func (s *PostgresAccountStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, id))
}

// UpdateBalance implements store.AccountStore.UpdateBalance
func (s *PostgresAccountStore) UpdateBalance(ctx context.Context, id uuid.UUID, balance float64) error {
	query := `UPDATE accounts SET balance = $1, updated_at = NOW() WHERE id = $2`
	result, err := s.db.ExecContext(ctx, query, balance, id)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrAccountNotFound
	}

	return nil
}

// WithTx implements store.AccountStore.WithTx
func (s *PostgresAccountStore) WithTx(tx *sql.Tx) store.AccountStore {
	return &PostgresAccountStore{db: tx}
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresAccountStore) scanAccount(row *sql.Row) (*domain.Account, error) {
	account, err := scanAccountRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func scanAccountRow(row rowScanner) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID,
		&account.AccountNumber,
		&account.AccountName,
		&account.Balance,
		&account.Code,
		&account.Symbol,
		&account.Label,
		&account.OwnerID,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &account, nil
}
