package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountTransaction(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	account := uuid.New()

	tx, err := NewAccountTransaction(owner, account, 50, 0.5, TransactionTypeWithdraw)
	require.NoError(t, err)

	assert.Equal(t, TransactionStatusCompleted, tx.Status)
	assert.True(t, tx.AccountID.Valid)
	assert.Equal(t, account, tx.AccountID.UUID)
	assert.False(t, tx.CardID.Valid)
}

func TestNewCardTransaction(t *testing.T) {
	t.Parallel()

	tx, err := NewCardTransaction(uuid.New(), uuid.New(), 9, 0, TransactionTypeCredit)
	require.NoError(t, err)

	assert.True(t, tx.CardID.Valid)
	assert.False(t, tx.AccountID.Valid)
}

func TestTransactionValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Transaction {
		tx, err := NewAccountTransaction(uuid.New(), uuid.New(), 50, 0, TransactionTypeDeposit)
		require.NoError(t, err)
		return tx
	}

	t.Run("rejects unknown type", func(t *testing.T) {
		t.Parallel()
		tx := valid()
		tx.Type = "REFUND"
		assert.ErrorIs(t, tx.Validate(), ErrInvalidTransactionType)
	})

	t.Run("rejects negative fee", func(t *testing.T) {
		t.Parallel()
		tx := valid()
		tx.TxFee = -0.5
		assert.ErrorIs(t, tx.Validate(), ErrNegativeFee)
	})

	t.Run("rejects both targets set", func(t *testing.T) {
		t.Parallel()
		tx := valid()
		tx.CardID = uuid.NullUUID{UUID: uuid.New(), Valid: true}
		assert.ErrorIs(t, tx.Validate(), ErrInvalidTransactionTarget)
	})

	t.Run("rejects no target set", func(t *testing.T) {
		t.Parallel()
		tx := valid()
		tx.AccountID = uuid.NullUUID{}
		assert.ErrorIs(t, tx.Validate(), ErrInvalidTransactionTarget)
	})
}
