package rates

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrRatesUnavailable is returned when no refresh has succeeded yet, i.e.
// between process start and the first successful fetch.
var ErrRatesUnavailable = errors.New("exchange rates not yet available")

// Fetcher retrieves a fresh rate snapshot. Implemented by *Client.
type Fetcher interface {
	FetchLatest(ctx context.Context) (map[string]float64, error)
}

// Service owns the exchange-rate cache.
//
// Lifecycle: empty at process start, populated by the first refresh, then
// refreshed on a fixed interval. On refresh failure the last-known-good
// snapshot is retained and served; RefreshedAt exposes its age so callers
// can judge staleness.
type Service struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu          sync.RWMutex
	rates       map[string]float64
	refreshedAt time.Time
}

// NewService creates a rate lookup service backed by the given fetcher.
// If logger is nil, a default logger will be used.
func NewService(fetcher Fetcher, logger *slog.Logger) *Service {
	if fetcher == nil {
		panic("fetcher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: fetcher,
		logger:  logger.With(slog.String("component", "rates")),
	}
}

// Rates returns a copy of the latest rate snapshot.
// Returns ErrRatesUnavailable before the first successful refresh.
func (s *Service) Rates(ctx context.Context) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rates == nil {
		return nil, ErrRatesUnavailable
	}

	snapshot := make(map[string]float64, len(s.rates))
	for code, rate := range s.rates {
		snapshot[code] = rate
	}
	return snapshot, nil
}

// RefreshedAt returns the time of the last successful refresh, or the zero
// time if no refresh has succeeded yet.
func (s *Service) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}

// Refresh fetches a fresh snapshot and swaps it into the cache.
// On failure the previous snapshot is retained.
func (s *Service) Refresh(ctx context.Context) error {
	fetched, err := s.fetcher.FetchLatest(ctx)
	if err != nil {
		s.logger.Error("exchange rate refresh failed, keeping last known rates",
			slog.String("error", err.Error()))
		return err
	}

	s.mu.Lock()
	s.rates = fetched
	s.refreshedAt = time.Now().UTC()
	s.mu.Unlock()

	s.logger.Info("exchange rates refreshed", slog.Int("currencies", len(fetched)))
	return nil
}

// Run refreshes immediately and then on every tick of the interval until the
// context is cancelled. Intended to be started as a goroutine at startup.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	// First refresh happens right away so the ledger is usable at boot.
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("initial exchange rate refresh failed",
			slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("exchange rate refresher stopping")
			return
		case <-ticker.C:
			// Errors are logged inside Refresh; last known good stays served.
			_ = s.Refresh(ctx)
		}
	}
}
