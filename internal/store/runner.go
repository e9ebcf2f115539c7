package store

import (
	"context"
	"database/sql"
)

// TxRunner executes a function within a single storage transaction boundary.
// Services depend on this interface rather than *sql.DB directly so that
// tests can substitute a runner that skips the database.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn TxFn) error
}

// SQLRunner is the production TxRunner backed by a *sql.DB.
type SQLRunner struct {
	db *sql.DB
}

// Ensure SQLRunner implements TxRunner
var _ TxRunner = (*SQLRunner)(nil)

// NewSQLRunner creates a TxRunner over the given database handle.
func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

// RunInTransaction implements TxRunner.
func (r *SQLRunner) RunInTransaction(ctx context.Context, fn TxFn) error {
	return RunInTransaction(ctx, r.db, fn)
}
