package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbank/openbank-api/internal/domain"
)

type recordingHandler struct {
	events []*TransactionEvent
	err    error
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *TransactionEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func TestNewTransactionEvent(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	tx1, err := domain.NewAccountTransaction(owner, uuid.New(), 50, 0.5, domain.TransactionTypeWithdraw)
	require.NoError(t, err)
	tx2, err := domain.NewAccountTransaction(owner, uuid.New(), 50, 0, domain.TransactionTypeDeposit)
	require.NoError(t, err)

	event := NewTransactionEvent("transfer", owner, 50, tx1, tx2)

	assert.Equal(t, "transfer", event.Operation)
	assert.Equal(t, owner, event.OwnerID)
	assert.Equal(t, []uuid.UUID{tx1.ID, tx2.ID}, event.TransactionIDs)
	assert.InDelta(t, 50.0, event.Amount, 1e-9)
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()

	t.Run("dispatches to all handlers", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(nil)
		first := &recordingHandler{}
		second := &recordingHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event := NewTransactionEvent("conversion", uuid.New(), 100)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Len(t, first.events, 1)
		assert.Len(t, second.events, 1)
	})

	t.Run("a failing handler does not stop the others", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(nil)
		failing := &recordingHandler{err: errors.New("handler down")}
		healthy := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(healthy)

		err := emitter.EmitEvent(context.Background(), NewTransactionEvent("transfer", uuid.New(), 10))
		assert.EqualError(t, err, "handler down")
		assert.Len(t, healthy.events, 1)
	})

	t.Run("no handlers is a no-op", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(nil)
		assert.NoError(t, emitter.EmitEvent(context.Background(), NewTransactionEvent("transfer", uuid.New(), 10)))
	})
}
