package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Transaction validation errors
var (
	ErrEmptyTransactionID    = errors.New("transaction ID cannot be empty")
	ErrEmptyTransactionOwner = errors.New("transaction owner cannot be empty")
	ErrNegativeFee           = errors.New("transaction fee cannot be negative")
)

// TransactionType classifies a balance-affecting event.
type TransactionType string

// Transaction types.
const (
	TransactionTypeWithdraw   TransactionType = "WITHDRAW"
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeDebit      TransactionType = "DEBIT"
	TransactionTypeCredit     TransactionType = "CREDIT"
	TransactionTypeConversion TransactionType = "CONVERSION"
)

// IsValid reports whether the transaction type is one of the defined values.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeWithdraw, TransactionTypeDeposit, TransactionTypeDebit,
		TransactionTypeCredit, TransactionTypeConversion:
		return true
	}
	return false
}

// TransactionStatus describes the settlement state of a transaction.
// Every operation commits in a single unit of work, so transactions are
// written COMPLETED; PENDING and FAILED exist for the wire format but have
// no transition path at this layer.
type TransactionStatus string

// Transaction statuses.
const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// IsValid reports whether the transaction status is one of the defined values.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed:
		return true
	}
	return false
}

// Transaction is an immutable record of a balance-affecting event.
// It references exactly one of an account or a card, plus the owning user.
type Transaction struct {
	ID        uuid.UUID         `json:"tx_id"`
	Amount    float64           `json:"amount"`
	TxFee     float64           `json:"tx_fee"`
	Type      TransactionType   `json:"type"`
	Status    TransactionStatus `json:"status"`
	AccountID uuid.NullUUID     `json:"account_id,omitempty"`
	CardID    uuid.NullUUID     `json:"card_id,omitempty"`
	OwnerID   uuid.UUID         `json:"-"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewAccountTransaction creates a COMPLETED transaction against an account.
func NewAccountTransaction(ownerID, accountID uuid.UUID, amount, txFee float64, txType TransactionType) (*Transaction, error) {
	tx := &Transaction{
		ID:        uuid.New(),
		Amount:    amount,
		TxFee:     txFee,
		Type:      txType,
		Status:    TransactionStatusCompleted,
		AccountID: uuid.NullUUID{UUID: accountID, Valid: true},
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	return tx, nil
}

// NewCardTransaction creates a COMPLETED transaction against a card.
func NewCardTransaction(ownerID, cardID uuid.UUID, amount, txFee float64, txType TransactionType) (*Transaction, error) {
	tx := &Transaction{
		ID:        uuid.New(),
		Amount:    amount,
		TxFee:     txFee,
		Type:      txType,
		Status:    TransactionStatusCompleted,
		CardID:    uuid.NullUUID{UUID: cardID, Valid: true},
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	return tx, nil
}

// Validate checks if the Transaction has valid data.
// Returns an error if any field fails validation.
func (t *Transaction) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTransactionID
	}

	if t.OwnerID == uuid.Nil {
		return ErrEmptyTransactionOwner
	}

	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}

	if !t.Status.IsValid() {
		return ErrInvalidTransactionStatus
	}

	if t.TxFee < 0 {
		return ErrNegativeFee
	}

	if t.AccountID.Valid == t.CardID.Valid {
		return ErrInvalidTransactionTarget
	}

	return nil
}
