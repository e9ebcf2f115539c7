package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbank/openbank-api/internal/domain"
	"github.com/openbank/openbank-api/internal/store"
)

type cardFixture struct {
	users    *memUserStore
	accounts *memAccountStore
	cards    *memCardStore
	txs      *memTransactionStore
	emitter  *captureEmitter
	svc      *CardService
}

func newCardFixture(t *testing.T) *cardFixture {
	t.Helper()

	f := &cardFixture{
		users:    newMemUserStore(),
		accounts: newMemAccountStore(),
		cards:    newMemCardStore(),
		txs:      newMemTransactionStore(),
		emitter:  &captureEmitter{},
	}

	svc, err := NewCardService(&mockRunner{}, f.users, f.accounts, f.cards, f.txs, f.emitter, nil)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *cardFixture) addUserWithUSD(t *testing.T, balance float64) (*domain.User, *domain.Account) {
	t.Helper()

	user, err := domain.NewUser("ada", "Ada", "Lovelace", "correct-horse-battery")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), user))

	account, err := domain.NewAccount(user.ID, user.FullName(), 1111111111, "USD", "$", balance)
	require.NoError(t, err)
	require.NoError(t, f.accounts.Create(context.Background(), account))

	return user, account
}

func TestCreateCard(t *testing.T) {
	t.Parallel()

	t.Run("issues the card and records three withdrawals", func(t *testing.T) {
		t.Parallel()
		f := newCardFixture(t)
		user, usd := f.addUserWithUSD(t, 100)

		card, err := f.svc.CreateCard(context.Background(), user.ID, 10)
		require.NoError(t, err)

		assert.Equal(t, user.FullName(), card.CardHolder)
		assert.Len(t, card.CVV, 3)
		assert.GreaterOrEqual(t, card.CardNumber, int64(1_000_000_000_000_000))

		// The full funding amount leaves the account; the fee stays with
		// the bank and the remainder becomes the card balance.
		assert.InDelta(t, 90.0, f.accounts.balance(usd.ID), 1e-9)
		assert.InDelta(t, 9.0, f.cards.balance(card.ID), 1e-9)

		records := f.txs.all()
		require.Len(t, records, 3)
		for _, record := range records {
			assert.Equal(t, domain.TransactionTypeWithdraw, record.Type)
			assert.InDelta(t, 0.0, record.TxFee, 1e-9)
		}
		assert.InDelta(t, 1.0, records[0].Amount, 1e-9)
		assert.InDelta(t, 9.0, records[1].Amount, 1e-9)
		assert.InDelta(t, 9.0, records[2].Amount, 1e-9)
		assert.True(t, records[0].AccountID.Valid)
		assert.True(t, records[1].AccountID.Valid)
		assert.True(t, records[2].CardID.Valid)

		assert.Equal(t, []string{"card_create"}, f.emitter.operations())
	})

	t.Run("rejects funding below the minimum before any mutation", func(t *testing.T) {
		t.Parallel()
		f := newCardFixture(t)
		user, usd := f.addUserWithUSD(t, 100)

		_, err := f.svc.CreateCard(context.Background(), user.ID, 1.5)
		assert.ErrorIs(t, err, ErrCardMinimumFunding)

		assert.InDelta(t, 100.0, f.accounts.balance(usd.ID), 1e-9)
		assert.Empty(t, f.txs.all())
	})

	t.Run("requires a USD account", func(t *testing.T) {
		t.Parallel()
		f := newCardFixture(t)
		user, err := domain.NewUser("grace", "Grace", "Hopper", "correct-horse-battery")
		require.NoError(t, err)
		require.NoError(t, f.users.Create(context.Background(), user))

		_, err = f.svc.CreateCard(context.Background(), user.ID, 10)
		assert.ErrorIs(t, err, ErrUSDAccountRequired)
	})

	t.Run("requires the account to cover the funding amount", func(t *testing.T) {
		t.Parallel()
		f := newCardFixture(t)
		user, usd := f.addUserWithUSD(t, 5)

		_, err := f.svc.CreateCard(context.Background(), user.ID, 10)
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		assert.InDelta(t, 5.0, f.accounts.balance(usd.ID), 1e-9)
		assert.Empty(t, f.txs.all())
	})

	t.Run("retries the whole attempt on a number collision", func(t *testing.T) {
		t.Parallel()
		f := newCardFixture(t)
		user, usd := f.addUserWithUSD(t, 100)
		f.cards.createErrs = []error{store.ErrCardNumberExists}

		card, err := f.svc.CreateCard(context.Background(), user.ID, 10)
		require.NoError(t, err)
		assert.InDelta(t, 9.0, card.Balance, 1e-9)

		// The aborted attempt leaves no balance changes or records behind;
		// only the successful attempt's effects are visible.
		assert.InDelta(t, 90.0, f.accounts.balance(usd.ID), 1e-9)
		assert.Len(t, f.txs.all(), 3)
		assert.Equal(t, []string{"card_create"}, f.emitter.operations())
	})

	t.Run("gives up after exhausting number attempts", func(t *testing.T) {
		t.Parallel()
		f := newCardFixture(t)
		user, usd := f.addUserWithUSD(t, 100)
		f.cards.createErrs = []error{
			store.ErrCardNumberExists, store.ErrCardNumberExists,
			store.ErrCardNumberExists, store.ErrCardNumberExists,
			store.ErrCardNumberExists,
		}

		_, err := f.svc.CreateCard(context.Background(), user.ID, 10)
		assert.ErrorIs(t, err, ErrNumberGenerationFailed)

		assert.InDelta(t, 100.0, f.accounts.balance(usd.ID), 1e-9)
		assert.Empty(t, f.txs.all())
		assert.Empty(t, f.emitter.operations())
	})

	t.Run("rejects a second card for the same user", func(t *testing.T) {
		t.Parallel()
		f := newCardFixture(t)
		user, _ := f.addUserWithUSD(t, 100)

		_, err := f.svc.CreateCard(context.Background(), user.ID, 10)
		require.NoError(t, err)

		_, err = f.svc.CreateCard(context.Background(), user.ID, 10)
		assert.ErrorIs(t, err, store.ErrCardExists)
	})
}

func TestCreditCard(t *testing.T) {
	t.Parallel()

	t.Run("moves funds from the account onto the card", func(t *testing.T) {
		t.Parallel()
		f := newCardFixture(t)
		user, usd := f.addUserWithUSD(t, 100)
		card, err := f.svc.CreateCard(context.Background(), user.ID, 10)
		require.NoError(t, err)

		tx, err := f.svc.CreditCard(context.Background(), user.ID, 20)
		require.NoError(t, err)

		assert.Equal(t, domain.TransactionTypeCredit, tx.Type)
		assert.InDelta(t, 20.0, tx.Amount, 1e-9)
		assert.InDelta(t, 70.0, f.accounts.balance(usd.ID), 1e-9)
		assert.InDelta(t, 29.0, f.cards.balance(card.ID), 1e-9)
	})

	t.Run("applies no sufficiency check on the account", func(t *testing.T) {
		t.Parallel()
		f := newCardFixture(t)
		user, usd := f.addUserWithUSD(t, 100)
		card, err := f.svc.CreateCard(context.Background(), user.ID, 10)
		require.NoError(t, err)

		// Crediting more than the account holds overdraws it.
		_, err = f.svc.CreditCard(context.Background(), user.ID, 200)
		require.NoError(t, err)

		assert.InDelta(t, -110.0, f.accounts.balance(usd.ID), 1e-9)
		assert.InDelta(t, 209.0, f.cards.balance(card.ID), 1e-9)
	})

	t.Run("fails when the user has no card", func(t *testing.T) {
		t.Parallel()
		f := newCardFixture(t)
		user, _ := f.addUserWithUSD(t, 100)

		_, err := f.svc.CreditCard(context.Background(), user.ID, 20)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})
}

func TestDebitCard(t *testing.T) {
	t.Parallel()

	t.Run("moves funds from the card back onto the account", func(t *testing.T) {
		t.Parallel()
		f := newCardFixture(t)
		user, usd := f.addUserWithUSD(t, 100)
		card, err := f.svc.CreateCard(context.Background(), user.ID, 10)
		require.NoError(t, err)

		tx, err := f.svc.DebitCard(context.Background(), user.ID, 5)
		require.NoError(t, err)

		assert.Equal(t, domain.TransactionTypeDebit, tx.Type)
		assert.InDelta(t, 95.0, f.accounts.balance(usd.ID), 1e-9)
		assert.InDelta(t, 4.0, f.cards.balance(card.ID), 1e-9)

		records := f.txs.all()
		// Three from creation plus the DEPOSIT/DEBIT pair.
		require.Len(t, records, 5)
		assert.Equal(t, domain.TransactionTypeDeposit, records[3].Type)
		assert.Equal(t, domain.TransactionTypeDebit, records[4].Type)
	})

	t.Run("applies no sufficiency check on the card", func(t *testing.T) {
		t.Parallel()
		f := newCardFixture(t)
		user, usd := f.addUserWithUSD(t, 100)
		card, err := f.svc.CreateCard(context.Background(), user.ID, 10)
		require.NoError(t, err)

		_, err = f.svc.DebitCard(context.Background(), user.ID, 50)
		require.NoError(t, err)

		assert.InDelta(t, 140.0, f.accounts.balance(usd.ID), 1e-9)
		assert.InDelta(t, -41.0, f.cards.balance(card.ID), 1e-9)
	})
}

func TestGetCard(t *testing.T) {
	t.Parallel()

	f := newCardFixture(t)
	user, _ := f.addUserWithUSD(t, 100)

	_, err := f.svc.GetCard(context.Background(), user.ID)
	assert.ErrorIs(t, err, store.ErrCardNotFound)

	created, err := f.svc.CreateCard(context.Background(), user.ID, 10)
	require.NoError(t, err)

	card, err := f.svc.GetCard(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, card.ID)

	_, err = f.svc.GetCard(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}
