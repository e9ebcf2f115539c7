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
	"github.com/openbank/openbank-api/internal/store"
)

// Card issuance policy.
const (
	// CardIssueFee is retained by the bank when a card is created.
	CardIssueFee = 1

	// CardMinimumFunding must cover the issuance fee and leave at least
	// one unit of card balance.
	CardMinimumFunding = 2

	// cardFundingCurrency is the only currency cards are funded from.
	cardFundingCurrency = "USD"
)

// CardService applies the ledger invariants to a user's card: creation
// funded from the USD account, and credit/debit moves between the USD
// account and the card balance.
//
// Unlike transfers and conversions, card credit and debit perform no
// sufficiency checks on either side. That asymmetry matches the original
// card contract and is covered by tests rather than silently corrected.
type CardService struct {
	runner       store.TxRunner
	users        store.UserStore
	accounts     store.AccountStore
	cards        store.CardStore
	transactions store.TransactionStore
	emitter      events.EventEmitter
	logger       *slog.Logger
}

// NewCardService creates a new CardService.
// The emitter may be nil, in which case no events are published.
// It returns an error if any other required dependency is nil.
func NewCardService(
	runner store.TxRunner,
	users store.UserStore,
	accounts store.AccountStore,
	cards store.CardStore,
	transactions store.TransactionStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*CardService, error) {
	if runner == nil {
		return nil, domain.NewValidationError("runner", "cannot be nil", domain.ErrValidation)
	}
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if accounts == nil {
		return nil, domain.NewValidationError("accounts", "cannot be nil", domain.ErrValidation)
	}
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if transactions == nil {
		return nil, domain.NewValidationError("transactions", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CardService{
		runner:       runner,
		users:        users,
		accounts:     accounts,
		cards:        cards,
		transactions: transactions,
		emitter:      emitter,
		logger:       logger.With(slog.String("component", "card_service")),
	}, nil
}

// GetCard returns the user's card.
func (s *CardService) GetCard(ctx context.Context, ownerID uuid.UUID) (*domain.Card, error) {
	return s.cards.GetByOwner(ctx, ownerID)
}

// CreateCard issues a card funded from the user's USD account.
//
// The funding amount must be at least CardMinimumFunding: one unit covers
// the issuance fee and the remainder becomes the card balance. The USD
// account is debited by the full amount and three WITHDRAW transactions are
// recorded: the fee portion, the funding portion, and the card-side opening
// balance. All validation happens before any balance mutation.
func (s *CardService) CreateCard(ctx context.Context, ownerID uuid.UUID, amount float64) (*domain.Card, error) {
	if amount < CardMinimumFunding {
		return nil, ErrCardMinimumFunding
	}

	exists, err := s.accounts.ExistsByCodeAndOwner(ctx, cardFundingCurrency, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for USD account: %w", err)
	}
	if !exists {
		return nil, ErrUSDAccountRequired
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load card owner: %w", err)
	}

	// A number collision aborts the enclosing database transaction, so the
	// retry must wrap the whole transactional attempt, not the insert alone.
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		card, records, err := s.issueCard(ctx, ownerID, owner.FullName(), amount)
		if errors.Is(err, store.ErrCardNumberExists) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.emit(ctx, events.NewTransactionEvent("card_create", ownerID, amount, records...))
		return card, nil
	}

	return nil, fmt.Errorf("%w: card number", ErrNumberGenerationFailed)
}

// issueCard runs a single card-creation attempt in one storage transaction.
// A store.ErrCardNumberExists result means the generated number collided and
// the attempt rolled back cleanly; the caller retries with a fresh number.
func (s *CardService) issueCard(ctx context.Context, ownerID uuid.UUID, cardHolder string, amount float64) (*domain.Card, []*domain.Transaction, error) {
	card, err := domain.NewCard(
		ownerID,
		cardHolder,
		randomNumber(domain.CardNumberDigits),
		randomCVV(),
		amount-CardIssueFee,
	)
	if err != nil {
		return nil, nil, err
	}

	var records []*domain.Transaction

	err = s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		accounts := s.accounts.WithTx(tx)
		cards := s.cards.WithTx(tx)
		transactions := s.transactions.WithTx(tx)

		usd, err := accounts.GetByCodeAndOwner(ctx, cardFundingCurrency, ownerID)
		if err != nil {
			return err
		}
		usd, err = accounts.GetForUpdate(ctx, usd.ID)
		if err != nil {
			return err
		}

		if usd.Balance < amount {
			return ErrInsufficientFunds
		}

		if err := cards.Create(ctx, card); err != nil {
			return err
		}
		if err := accounts.UpdateBalance(ctx, usd.ID, usd.Balance-amount); err != nil {
			return err
		}

		feeTx, err := domain.NewAccountTransaction(
			ownerID, usd.ID, CardIssueFee, 0, domain.TransactionTypeWithdraw)
		if err != nil {
			return err
		}
		fundingTx, err := domain.NewAccountTransaction(
			ownerID, usd.ID, amount-CardIssueFee, 0, domain.TransactionTypeWithdraw)
		if err != nil {
			return err
		}
		cardTx, err := domain.NewCardTransaction(
			ownerID, card.ID, amount-CardIssueFee, 0, domain.TransactionTypeWithdraw)
		if err != nil {
			return err
		}

		records = []*domain.Transaction{feeTx, fundingTx, cardTx}
		for _, record := range records {
			if err := transactions.Create(ctx, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return card, records, nil
}

// CreditCard moves amount from the user's USD account onto the card.
// Records an account WITHDRAW and a card CREDIT; the card CREDIT is returned.
func (s *CardService) CreditCard(ctx context.Context, ownerID uuid.UUID, amount float64) (*domain.Transaction, error) {
	cardTx, err := s.moveFunds(ctx, ownerID, -amount, amount,
		domain.TransactionTypeWithdraw, domain.TransactionTypeCredit)
	if err != nil {
		return nil, err
	}
	return cardTx, nil
}

// DebitCard moves amount from the card back onto the user's USD account.
// Records an account DEPOSIT and a card DEBIT; the card DEBIT is returned.
func (s *CardService) DebitCard(ctx context.Context, ownerID uuid.UUID, amount float64) (*domain.Transaction, error) {
	cardTx, err := s.moveFunds(ctx, ownerID, amount, -amount,
		domain.TransactionTypeDeposit, domain.TransactionTypeDebit)
	if err != nil {
		return nil, err
	}
	return cardTx, nil
}

// moveFunds shifts balances between the USD account and the card and records
// the paired transactions. Deltas are signed; no sufficiency check is
// applied on either side.
func (s *CardService) moveFunds(
	ctx context.Context,
	ownerID uuid.UUID,
	accountDelta, cardDelta float64,
	accountTxType, cardTxType domain.TransactionType,
) (*domain.Transaction, error) {
	amount := cardDelta
	if amount < 0 {
		amount = -amount
	}

	var accountTx, cardTx *domain.Transaction

	err := s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		accounts := s.accounts.WithTx(tx)
		cards := s.cards.WithTx(tx)
		transactions := s.transactions.WithTx(tx)

		usd, err := accounts.GetByCodeAndOwner(ctx, cardFundingCurrency, ownerID)
		if err != nil {
			return err
		}
		usd, err = accounts.GetForUpdate(ctx, usd.ID)
		if err != nil {
			return err
		}
		card, err := cards.GetForUpdate(ctx, ownerID)
		if err != nil {
			return err
		}

		if err := accounts.UpdateBalance(ctx, usd.ID, usd.Balance+accountDelta); err != nil {
			return err
		}
		if err := cards.UpdateBalance(ctx, card.ID, card.Balance+cardDelta); err != nil {
			return err
		}

		accountTx, err = domain.NewAccountTransaction(ownerID, usd.ID, amount, 0, accountTxType)
		if err != nil {
			return err
		}
		cardTx, err = domain.NewCardTransaction(ownerID, card.ID, amount, 0, cardTxType)
		if err != nil {
			return err
		}

		if err := transactions.Create(ctx, accountTx); err != nil {
			return err
		}
		return transactions.Create(ctx, cardTx)
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.NewTransactionEvent("card_"+string(cardTxType), ownerID, amount, accountTx, cardTx))
	return cardTx, nil
}

// emit publishes a transaction event after a committed operation.
// Emission is fire-and-forget: failures are logged, never returned.
func (s *CardService) emit(ctx context.Context, event *events.TransactionEvent) {
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
