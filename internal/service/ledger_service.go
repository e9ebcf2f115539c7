package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/openbank/openbank-api/internal/domain"
	"github.com/openbank/openbank-api/internal/events"
	"github.com/openbank/openbank-api/internal/platform/logger"
	"github.com/openbank/openbank-api/internal/store"
)

// Ledger fee and account-opening policy.
const (
	// OpeningBalance is credited to every newly created account. Opening
	// funds are not recorded in the transaction ledger.
	OpeningBalance = 1000

	// TransferFeeRate is the fraction of the transfer amount charged to the
	// sender. The same rate applies to currency conversions.
	TransferFeeRate = 0.01
)

// LedgerService validates and executes balance-affecting account operations.
// Every mutation runs inside a single storage transaction: the account
// writes and their paired transaction records commit or fail as one unit,
// with sender and receiver rows locked for the duration.
type LedgerService struct {
	runner       store.TxRunner
	users        store.UserStore
	accounts     store.AccountStore
	transactions store.TransactionStore
	rates        RateLookup
	emitter      events.EventEmitter
	logger       *slog.Logger
}

// NewLedgerService creates a new LedgerService.
// The emitter may be nil, in which case no events are published.
// It returns an error if any other required dependency is nil.
func NewLedgerService(
	runner store.TxRunner,
	users store.UserStore,
	accounts store.AccountStore,
	transactions store.TransactionStore,
	rates RateLookup,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*LedgerService, error) {
	if runner == nil {
		return nil, domain.NewValidationError("runner", "cannot be nil", domain.ErrValidation)
	}
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if accounts == nil {
		return nil, domain.NewValidationError("accounts", "cannot be nil", domain.ErrValidation)
	}
	if transactions == nil {
		return nil, domain.NewValidationError("transactions", "cannot be nil", domain.ErrValidation)
	}
	if rates == nil {
		return nil, domain.NewValidationError("rates", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LedgerService{
		runner:       runner,
		users:        users,
		accounts:     accounts,
		transactions: transactions,
		rates:        rates,
		emitter:      emitter,
		logger:       logger.With(slog.String("component", "ledger_service")),
	}, nil
}

// CreateAccount opens a new account for the user in the given currency.
//
// The legacy duplicate pre-check is retained as a logged warning only; the
// store's (owner, code) uniqueness constraint is the final arbiter and a
// violation surfaces as store.ErrAccountExists. Account numbers are
// generated randomly and retried on conflict with the store's unique
// constraint, so concurrent creations cannot race past each other.
func (s *LedgerService) CreateAccount(ctx context.Context, ownerID uuid.UUID, code, symbol string) (*domain.Account, error) {
	log := logger.FromContext(ctx)

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account owner: %w", err)
	}

	exists, err := s.accounts.ExistsByCodeAndOwner(ctx, code, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing account: %w", err)
	}
	if exists {
		log.Warn("account of this currency already exists for user",
			slog.String("code", code),
			slog.String("owner_id", ownerID.String()))
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		account, err := domain.NewAccount(
			ownerID,
			owner.FullName(),
			randomNumber(domain.AccountNumberDigits),
			code,
			symbol,
			OpeningBalance,
		)
		if err != nil {
			return nil, err
		}

		err = s.accounts.Create(ctx, account)
		if err == nil {
			log.Info("account created",
				slog.String("account_id", account.ID.String()),
				slog.String("code", code))
			return account, nil
		}
		if errors.Is(err, store.ErrAccountNumberExists) {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("%w: account number", ErrNumberGenerationFailed)
}

// Transfer moves funds from the sender's account in the given currency to
// the account identified by recipientAccountNumber.
//
// The receiver may belong to any user and any currency; the amount is
// credited at face value with no FX applied. A 1% fee is charged to the
// sender only, and the sender must cover amount plus fee. Exactly two
// transactions are recorded: a fee-bearing WITHDRAW for the sender and a
// fee-free DEPOSIT for the receiver. The sender's WITHDRAW is returned.
//
// The recipient number may resolve to the sender's own account; the balance
// then nets to just the fee while both transactions are still recorded.
func (s *LedgerService) Transfer(ctx context.Context, ownerID uuid.UUID, code string, recipientAccountNumber int64, amount float64) (*domain.Transaction, error) {
	var senderTx, receiverTx *domain.Transaction

	err := s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		accounts := s.accounts.WithTx(tx)
		transactions := s.transactions.WithTx(tx)

		sender, err := accounts.GetByCodeAndOwner(ctx, code, ownerID)
		if err != nil {
			return err
		}
		receiver, err := accounts.GetByNumber(ctx, recipientAccountNumber)
		if err != nil {
			return err
		}

		sender, receiver, err = lockAccountPair(ctx, accounts, sender, receiver)
		if err != nil {
			return err
		}

		total := amount * (1 + TransferFeeRate)
		if sender.Balance < total {
			return ErrInsufficientFunds
		}

		// When both sides are the same row the debit and credit must be
		// composed into one write; separate writes from the same locked
		// snapshot would let the credit erase the debit.
		if sender.ID == receiver.ID {
			if err := accounts.UpdateBalance(ctx, sender.ID, sender.Balance-total+amount); err != nil {
				return err
			}
		} else {
			if err := accounts.UpdateBalance(ctx, sender.ID, sender.Balance-total); err != nil {
				return err
			}
			if err := accounts.UpdateBalance(ctx, receiver.ID, receiver.Balance+amount); err != nil {
				return err
			}
		}

		senderTx, err = domain.NewAccountTransaction(
			ownerID, sender.ID, amount, amount*TransferFeeRate, domain.TransactionTypeWithdraw)
		if err != nil {
			return err
		}
		receiverTx, err = domain.NewAccountTransaction(
			receiver.OwnerID, receiver.ID, amount, 0, domain.TransactionTypeDeposit)
		if err != nil {
			return err
		}

		if err := transactions.Create(ctx, senderTx); err != nil {
			return err
		}
		return transactions.Create(ctx, receiverTx)
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.NewTransactionEvent("transfer", ownerID, amount, senderTx, receiverTx))
	return senderTx, nil
}

// ConvertCurrency moves funds between two accounts of the same user,
// applying the current exchange rate.
//
// Preconditions are checked in order: distinct currencies, ownership of both
// accounts, positive amount, then sufficient funds. The sufficiency
// pre-check deliberately uses the bare amount while the debit below includes
// the 1% fee; this mismatch is the documented contract of the operation.
// Two transactions are recorded: a fee-bearing CONVERSION on the source
// account and a fee-free DEPOSIT on the destination. The CONVERSION is
// returned.
func (s *LedgerService) ConvertCurrency(ctx context.Context, ownerID uuid.UUID, fromCode, toCode string, amount float64) (*domain.Transaction, error) {
	if fromCode == toCode {
		return nil, ErrSameCurrency
	}

	from, err := s.accounts.GetByCodeAndOwner(ctx, fromCode, ownerID)
	if err != nil {
		return nil, err
	}
	to, err := s.accounts.GetByCodeAndOwner(ctx, toCode, ownerID)
	if err != nil {
		return nil, err
	}

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if from.Balance < amount {
		return nil, ErrInsufficientFunds
	}

	rates, err := s.rates.Rates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up exchange rates: %w", err)
	}
	fromRate, ok := rates[fromCode]
	if !ok || fromRate == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCurrencyCode, fromCode)
	}
	toRate, ok := rates[toCode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCurrencyCode, toCode)
	}
	converted := amount * (toRate / fromRate)

	var fromTx, toTx *domain.Transaction

	err = s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		accounts := s.accounts.WithTx(tx)
		transactions := s.transactions.WithTx(tx)

		from, to, err = lockAccountPair(ctx, accounts, from, to)
		if err != nil {
			return err
		}

		if err := accounts.UpdateBalance(ctx, from.ID, from.Balance-amount*(1+TransferFeeRate)); err != nil {
			return err
		}
		if err := accounts.UpdateBalance(ctx, to.ID, to.Balance+converted); err != nil {
			return err
		}

		fromTx, err = domain.NewAccountTransaction(
			ownerID, from.ID, amount, amount*TransferFeeRate, domain.TransactionTypeConversion)
		if err != nil {
			return err
		}
		toTx, err = domain.NewAccountTransaction(
			ownerID, to.ID, converted, 0, domain.TransactionTypeDeposit)
		if err != nil {
			return err
		}

		if err := transactions.Create(ctx, fromTx); err != nil {
			return err
		}
		return transactions.Create(ctx, toTx)
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.NewTransactionEvent("conversion", ownerID, amount, fromTx, toTx))
	return fromTx, nil
}

// FindAccount retrieves an account by currency code and account number.
// Used by the transfer flow to let senders confirm the recipient.
func (s *LedgerService) FindAccount(ctx context.Context, code string, accountNumber int64) (*domain.Account, error) {
	return s.accounts.GetByCodeAndNumber(ctx, code, accountNumber)
}

// GetUserAccounts returns all accounts owned by the user.
func (s *LedgerService) GetUserAccounts(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	return s.accounts.ListByOwner(ctx, ownerID)
}

// ExchangeRates returns the latest cached exchange rates.
func (s *LedgerService) ExchangeRates(ctx context.Context) (map[string]float64, error) {
	return s.rates.Rates(ctx)
}

// emit publishes a transaction event after a committed operation.
// Emission is fire-and-forget: failures are logged, never returned.
func (s *LedgerService) emit(ctx context.Context, event *events.TransactionEvent) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit transaction event",
			slog.String("error", err.Error()),
			slog.String("operation", event.Operation),
			slog.String("event_id", event.ID.String()))
	}
}

// lockAccountPair re-reads two accounts under row locks in a deterministic
// order so that concurrent operations touching the same pair cannot
// deadlock. Returns the locked, current rows.
func lockAccountPair(ctx context.Context, accounts store.AccountStore, a, b *domain.Account) (*domain.Account, *domain.Account, error) {
	first, second := a, b
	if b.ID.String() < a.ID.String() {
		first, second = b, a
	}

	lockedFirst, err := accounts.GetForUpdate(ctx, first.ID)
	if err != nil {
		return nil, nil, err
	}
	lockedSecond, err := accounts.GetForUpdate(ctx, second.ID)
	if err != nil {
		return nil, nil, err
	}

	if first == a {
		return lockedFirst, lockedSecond, nil
	}
	return lockedSecond, lockedFirst, nil
}
