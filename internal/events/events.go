// Package events defines transaction events emitted after committed ledger
// operations, and the emitter interface used to publish them.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openbank/openbank-api/internal/domain"
)

// TransactionEvent describes a committed balance-affecting operation.
// Events are emitted after the database transaction commits; emission is
// fire-and-forget and never fails the originating operation.
type TransactionEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Operation names the ledger operation that produced the transactions,
	// e.g. "transfer", "conversion", "card_create".
	Operation string `json:"operation"`

	// OwnerID identifies the user who initiated the operation.
	OwnerID uuid.UUID `json:"owner_id"`

	// TransactionIDs are the IDs of the transaction records the operation
	// produced, in the order they were written.
	TransactionIDs []uuid.UUID `json:"transaction_ids"`

	// Amount is the primary amount of the operation.
	Amount float64 `json:"amount"`

	// CreatedAt is the timestamp when the event was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewTransactionEvent creates an event for a committed operation from its
// recorded transactions.
func NewTransactionEvent(operation string, ownerID uuid.UUID, amount float64, transactions ...*domain.Transaction) *TransactionEvent {
	ids := make([]uuid.UUID, 0, len(transactions))
	for _, tx := range transactions {
		ids = append(ids, tx.ID)
	}
	return &TransactionEvent{
		ID:             uuid.New(),
		Operation:      operation,
		OwnerID:        ownerID,
		TransactionIDs: ids,
		Amount:         amount,
		CreatedAt:      time.Now().UTC(),
	}
}

// EventEmitter publishes transaction events to interested consumers.
type EventEmitter interface {
	// EmitEvent publishes the given event. Implementations must not block
	// the caller for longer than the context allows.
	EmitEvent(ctx context.Context, event *TransactionEvent) error
}
