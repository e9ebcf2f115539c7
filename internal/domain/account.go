package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Account validation errors
var (
	ErrEmptyAccountID       = errors.New("account ID cannot be empty")
	ErrEmptyAccountOwner    = errors.New("account owner cannot be empty")
	ErrInvalidAccountNumber = errors.New("account number must be 10 digits")
	ErrNegativeBalance      = errors.New("account balance cannot be negative")
)

// AccountNumberDigits is the fixed width of generated account numbers.
const AccountNumberDigits = 10

// Account is a per-currency balance-holding entity owned by a single user.
// A user holds at most one account per currency code; the account number is
// unique system-wide and enforced by the store.
type Account struct {
	ID            uuid.UUID `json:"account_id"`
	AccountNumber int64     `json:"account_number"`
	AccountName   string    `json:"account_name"`
	Balance       float64   `json:"balance"`
	Code          string    `json:"code"`
	Symbol        string    `json:"symbol"`
	Label         string    `json:"label"`
	OwnerID       uuid.UUID `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewAccount creates a new Account for the given owner and currency.
// The account number must already be generated by the caller; the starting
// balance and display label are fixed by the bank's account-opening policy.
func NewAccount(ownerID uuid.UUID, accountName string, accountNumber int64, code, symbol string, balance float64) (*Account, error) {
	label, ok := CurrencyLabel(code)
	if !ok {
		return nil, ErrInvalidCurrencyCode
	}

	now := time.Now().UTC()
	account := &Account{
		ID:            uuid.New(),
		AccountNumber: accountNumber,
		AccountName:   accountName,
		Balance:       balance,
		Code:          code,
		Symbol:        symbol,
		Label:         label,
		OwnerID:       ownerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	return account, nil
}

// Validate checks if the Account has valid data.
// Returns an error if any field fails validation.
func (a *Account) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyAccountID
	}

	if a.OwnerID == uuid.Nil {
		return ErrEmptyAccountOwner
	}

	if _, ok := CurrencyLabel(a.Code); !ok {
		return ErrInvalidCurrencyCode
	}

	// Generated numbers always use the full 10-digit width with a nonzero
	// leading digit, so both bounds are hard.
	if a.AccountNumber < 1_000_000_000 || a.AccountNumber > 9_999_999_999 {
		return ErrInvalidAccountNumber
	}

	if a.Balance < 0 {
		return ErrNegativeBalance
	}

	return nil
}
