package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/openbank/openbank-api/internal/domain"
	"github.com/openbank/openbank-api/internal/events"
	"github.com/openbank/openbank-api/internal/store"
)

// mockRunner satisfies store.TxRunner without a database. The callback runs
// with a nil *sql.Tx; the in-memory stores ignore it.
type mockRunner struct {
	err error // returned instead of running the callback when set
}

func (r *mockRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	if r.err != nil {
		return r.err
	}
	return fn(ctx, nil)
}

// memUserStore is an in-memory store.UserStore.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (s *memUserStore) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return store.ErrUsernameExists
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUserStore) WithTx(tx *sql.Tx) store.UserStore { return s }

// memAccountStore is an in-memory store.AccountStore enforcing the same
// uniqueness rules as the Postgres schema.
type memAccountStore struct {
	mu       sync.Mutex
	accounts []*domain.Account

	// createErrs is consumed one error per Create call before normal
	// behavior resumes. Used to simulate number collisions.
	createErrs []error
}

func newMemAccountStore() *memAccountStore { return &memAccountStore{} }

func (s *memAccountStore) Create(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return err
		}
	}

	for _, a := range s.accounts {
		if a.AccountNumber == account.AccountNumber {
			return store.ErrAccountNumberExists
		}
		if a.OwnerID == account.OwnerID && a.Code == account.Code {
			return store.ErrAccountExists
		}
	}
	cp := *account
	s.accounts = append(s.accounts, &cp)
	return nil
}

func (s *memAccountStore) GetByCodeAndOwner(ctx context.Context, code string, ownerID uuid.UUID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Code == code && a.OwnerID == ownerID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (s *memAccountStore) GetByNumber(ctx context.Context, accountNumber int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.AccountNumber == accountNumber {
			cp := *a
			return &cp, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (s *memAccountStore) GetByCodeAndNumber(ctx context.Context, code string, accountNumber int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Code == code && a.AccountNumber == accountNumber {
			cp := *a
			return &cp, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (s *memAccountStore) ExistsByCodeAndOwner(ctx context.Context, code string, ownerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Code == code && a.OwnerID == ownerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memAccountStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Account
	for _, a := range s.accounts {
		if a.OwnerID == ownerID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memAccountStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (s *memAccountStore) UpdateBalance(ctx context.Context, id uuid.UUID, balance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ID == id {
			a.Balance = balance
			return nil
		}
	}
	return store.ErrAccountNotFound
}

func (s *memAccountStore) WithTx(tx *sql.Tx) store.AccountStore { return s }

// balance returns the stored balance for an account, for assertions.
func (s *memAccountStore) balance(id uuid.UUID) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ID == id {
			return a.Balance
		}
	}
	return 0
}

// memCardStore is an in-memory store.CardStore.
type memCardStore struct {
	mu    sync.Mutex
	cards []*domain.Card

	createErrs []error
}

func newMemCardStore() *memCardStore { return &memCardStore{} }

func (s *memCardStore) Create(ctx context.Context, card *domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return err
		}
	}

	for _, c := range s.cards {
		if c.CardNumber == card.CardNumber {
			return store.ErrCardNumberExists
		}
		if c.OwnerID == card.OwnerID {
			return store.ErrCardExists
		}
	}
	cp := *card
	s.cards = append(s.cards, &cp)
	return nil
}

func (s *memCardStore) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cards {
		if c.OwnerID == ownerID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.ErrCardNotFound
}

func (s *memCardStore) GetForUpdate(ctx context.Context, ownerID uuid.UUID) (*domain.Card, error) {
	return s.GetByOwner(ctx, ownerID)
}

func (s *memCardStore) UpdateBalance(ctx context.Context, id uuid.UUID, balance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cards {
		if c.ID == id {
			c.Balance = balance
			return nil
		}
	}
	return store.ErrCardNotFound
}

func (s *memCardStore) WithTx(tx *sql.Tx) store.CardStore { return s }

func (s *memCardStore) balance(id uuid.UUID) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cards {
		if c.ID == id {
			return c.Balance
		}
	}
	return 0
}

// memTransactionStore is an in-memory store.TransactionStore. Records keep
// insertion order, which matches created_at ascending in the tests.
type memTransactionStore struct {
	mu      sync.Mutex
	records []*domain.Transaction
}

func newMemTransactionStore() *memTransactionStore { return &memTransactionStore{} }

func (s *memTransactionStore) Create(ctx context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tx
	s.records = append(s.records, &cp)
	return nil
}

func (s *memTransactionStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, page int) ([]*domain.Transaction, error) {
	return s.list(page, func(t *domain.Transaction) bool {
		return t.OwnerID == ownerID
	})
}

func (s *memTransactionStore) ListByAccount(ctx context.Context, accountID, ownerID uuid.UUID, page int) ([]*domain.Transaction, error) {
	return s.list(page, func(t *domain.Transaction) bool {
		return t.OwnerID == ownerID && t.AccountID.Valid && t.AccountID.UUID == accountID
	})
}

func (s *memTransactionStore) ListByCard(ctx context.Context, cardID, ownerID uuid.UUID, page int) ([]*domain.Transaction, error) {
	return s.list(page, func(t *domain.Transaction) bool {
		return t.OwnerID == ownerID && t.CardID.Valid && t.CardID.UUID == cardID
	})
}

func (s *memTransactionStore) list(page int, match func(*domain.Transaction) bool) ([]*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var filtered []*domain.Transaction
	for _, t := range s.records {
		if match(t) {
			cp := *t
			filtered = append(filtered, &cp)
		}
	}
	start := page * store.TransactionPageSize
	if start >= len(filtered) {
		return nil, nil
	}
	end := start + store.TransactionPageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], nil
}

func (s *memTransactionStore) WithTx(tx *sql.Tx) store.TransactionStore { return s }

// all returns every stored record, for assertions.
func (s *memTransactionStore) all() []*domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Transaction, len(s.records))
	copy(out, s.records)
	return out
}

// stubRates is a fixed RateLookup.
type stubRates struct {
	rates map[string]float64
	err   error
}

func (s *stubRates) Rates(ctx context.Context) (map[string]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rates, nil
}

// captureEmitter records emitted events for assertions.
type captureEmitter struct {
	mu     sync.Mutex
	events []*events.TransactionEvent
}

func (e *captureEmitter) EmitEvent(ctx context.Context, event *events.TransactionEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *captureEmitter) operations() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var ops []string
	for _, ev := range e.events {
		ops = append(ops, ev.Operation)
	}
	return ops
}
