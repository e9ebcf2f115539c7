package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	account, err := NewAccount(owner, "Ada Lovelace", 1234567890, "USD", "$", 1000)
	require.NoError(t, err)

	assert.Equal(t, "United States Dollar", account.Label)
	assert.Equal(t, owner, account.OwnerID)
	assert.InDelta(t, 1000.0, account.Balance, 1e-9)
}

func TestNewAccountRejectsUnknownCurrency(t *testing.T) {
	t.Parallel()

	_, err := NewAccount(uuid.New(), "Ada Lovelace", 1234567890, "XXX", "?", 1000)
	assert.ErrorIs(t, err, ErrInvalidCurrencyCode)
}

func TestAccountValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Account)
		wantErr error
	}{
		{
			name:    "valid account",
			mutate:  func(a *Account) {},
			wantErr: nil,
		},
		{
			name:    "nil owner",
			mutate:  func(a *Account) { a.OwnerID = uuid.Nil },
			wantErr: ErrEmptyAccountOwner,
		},
		{
			name:    "number too long",
			mutate:  func(a *Account) { a.AccountNumber = 10_000_000_000 },
			wantErr: ErrInvalidAccountNumber,
		},
		{
			name:    "number too short",
			mutate:  func(a *Account) { a.AccountNumber = 999_999_999 },
			wantErr: ErrInvalidAccountNumber,
		},
		{
			name:    "non-positive number",
			mutate:  func(a *Account) { a.AccountNumber = 0 },
			wantErr: ErrInvalidAccountNumber,
		},
		{
			name:    "negative balance",
			mutate:  func(a *Account) { a.Balance = -1 },
			wantErr: ErrNegativeBalance,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			account, err := NewAccount(uuid.New(), "Ada Lovelace", 1234567890, "USD", "$", 1000)
			require.NoError(t, err)

			tc.mutate(account)
			err = account.Validate()
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
