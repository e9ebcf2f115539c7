// Package rates supplies current exchange rates per currency code.
//
// Rates are fetched from an external currency API on a fixed interval and
// served from an in-process cache. The ledger only ever reads the latest
// cached snapshot; it never blocks on a fetch.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/openbank/openbank-api/internal/domain"
)

// DefaultBaseURL is the production endpoint of the currency API.
const DefaultBaseURL = "https://api.currencyapi.com/v3/latest"

// Client fetches the latest exchange rates from the currency API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a currency API client. An empty baseURL selects the
// production endpoint.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// latestResponse mirrors the currency API payload shape:
// {"data": {"USD": {"value": 1.0}, ...}}
type latestResponse struct {
	Data map[string]struct {
		Value float64 `json:"value"`
	} `json:"data"`
}

// FetchLatest retrieves the current rate for every supported currency.
// Returns an error if the request fails or if any supported currency is
// missing from the response.
func (c *Client) FetchLatest(ctx context.Context) (map[string]float64, error) {
	url := fmt.Sprintf("%s?apikey=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("currency API returned status %d", resp.StatusCode)
	}

	var payload latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rates response: %w", err)
	}

	rates := make(map[string]float64, len(domain.SupportedCurrencies))
	for code := range domain.SupportedCurrencies {
		entry, ok := payload.Data[code]
		if !ok {
			return nil, fmt.Errorf("currency API response missing rate for %s", code)
		}
		rates[code] = entry.Value
	}

	return rates, nil
}
