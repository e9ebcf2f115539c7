package rates

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	rates map[string]float64
	err   error
	calls int
}

func (f *stubFetcher) FetchLatest(ctx context.Context) (map[string]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rates, nil
}

func TestRatesUnavailableBeforeFirstRefresh(t *testing.T) {
	t.Parallel()

	svc := NewService(&stubFetcher{}, nil)

	_, err := svc.Rates(context.Background())
	assert.ErrorIs(t, err, ErrRatesUnavailable)
	assert.True(t, svc.RefreshedAt().IsZero())
}

func TestRefreshPopulatesCache(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{rates: map[string]float64{"USD": 1.0, "EUR": 0.9}}
	svc := NewService(fetcher, nil)

	require.NoError(t, svc.Refresh(context.Background()))

	rates, err := svc.Rates(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.9, rates["EUR"], 1e-9)
	assert.False(t, svc.RefreshedAt().IsZero())
}

func TestRatesReturnsACopy(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{rates: map[string]float64{"USD": 1.0}}
	svc := NewService(fetcher, nil)
	require.NoError(t, svc.Refresh(context.Background()))

	first, err := svc.Rates(context.Background())
	require.NoError(t, err)
	first["USD"] = 42

	second, err := svc.Rates(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, second["USD"], 1e-9)
}

func TestRefreshKeepsLastKnownGoodOnFailure(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{rates: map[string]float64{"USD": 1.0, "EUR": 0.9}}
	svc := NewService(fetcher, nil)
	require.NoError(t, svc.Refresh(context.Background()))
	refreshedAt := svc.RefreshedAt()

	fetcher.err = errors.New("upstream down")
	assert.Error(t, svc.Refresh(context.Background()))

	rates, err := svc.Rates(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.9, rates["EUR"], 1e-9)
	assert.Equal(t, refreshedAt, svc.RefreshedAt())
}
