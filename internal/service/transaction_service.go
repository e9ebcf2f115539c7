package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/openbank/openbank-api/internal/domain"
	"github.com/openbank/openbank-api/internal/store"
)

// TransactionService serves paginated transaction history. Pages are
// zero-indexed with the fixed store.TransactionPageSize; ordering is oldest
// first, matching how statements are read.
type TransactionService struct {
	transactions store.TransactionStore
	logger       *slog.Logger
}

// NewTransactionService creates a new TransactionService.
// It returns an error if the transaction store is nil.
func NewTransactionService(transactions store.TransactionStore, logger *slog.Logger) (*TransactionService, error) {
	if transactions == nil {
		return nil, domain.NewValidationError("transactions", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TransactionService{
		transactions: transactions,
		logger:       logger.With(slog.String("component", "transaction_service")),
	}, nil
}

// History returns a page of the user's transactions across all accounts
// and cards. Negative pages are treated as the first page.
func (s *TransactionService) History(ctx context.Context, ownerID uuid.UUID, page int) ([]*domain.Transaction, error) {
	return s.transactions.ListByOwner(ctx, ownerID, clampPage(page))
}

// AccountHistory returns a page of transactions recorded against one of the
// user's accounts. Transactions belonging to other users are never returned.
func (s *TransactionService) AccountHistory(ctx context.Context, ownerID, accountID uuid.UUID, page int) ([]*domain.Transaction, error) {
	return s.transactions.ListByAccount(ctx, accountID, ownerID, clampPage(page))
}

// CardHistory returns a page of transactions recorded against one of the
// user's cards.
func (s *TransactionService) CardHistory(ctx context.Context, ownerID, cardID uuid.UUID, page int) ([]*domain.Transaction, error) {
	return s.transactions.ListByCard(ctx, cardID, ownerID, clampPage(page))
}

func clampPage(page int) int {
	if page < 0 {
		return 0
	}
	return page
}
