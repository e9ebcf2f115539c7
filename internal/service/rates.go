package service

import "context"

// RateLookup supplies the current exchange rate per currency code.
// Implemented by the rates platform service; the ledger only ever reads the
// latest cached snapshot.
type RateLookup interface {
	// Rates returns the current rate for every supported currency.
	Rates(ctx context.Context) (map[string]float64, error)
}
