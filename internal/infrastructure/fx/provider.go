// Package fx fetches and caches currency exchange rates for reporting
// conversions.
package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expenseally/backend/internal/infrastructure/config"
)

// maxResponseSize caps the provider response body (1MB)
const maxResponseSize = 1 * 1024 * 1024

var (
	// ErrProviderUnavailable indicates the rate provider could not be reached
	ErrProviderUnavailable = errors.New("fx: rate provider unavailable")

	// ErrProviderRequestFailed indicates the provider rejected the request
	ErrProviderRequestFailed = errors.New("fx: rate provider request failed")

	// ErrRateNotFound indicates no rate is known for a currency pair
	ErrRateNotFound = errors.New("fx: rate not found")
)

// RateQuote is one base currency's rates against other currencies.
type RateQuote struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// RateProvider fetches the latest exchange rates.
type RateProvider interface {
	FetchLatest(ctx context.Context, base string) (*RateQuote, error)
}

// HTTPRateProvider fetches rates from an exchangerate.host compatible
// JSON endpoint.
type HTTPRateProvider struct {
	providerURL string
	apiKey      string
	httpClient  *http.Client
}

// NewHTTPRateProvider creates a provider from configuration.
func NewHTTPRateProvider(cfg config.FXConfig) *HTTPRateProvider {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPRateProvider{
		providerURL: cfg.ProviderURL,
		apiKey:      cfg.APIKey,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// NewHTTPRateProviderWithClient creates a provider with a caller-supplied
// HTTP client.
func NewHTTPRateProviderWithClient(cfg config.FXConfig, client *http.Client) *HTTPRateProvider {
	p := NewHTTPRateProvider(cfg)
	p.httpClient = client
	return p
}

// FetchLatest retrieves the current rates for a base currency.
func (p *HTTPRateProvider) FetchLatest(ctx context.Context, base string) (*RateQuote, error) {
	if p.providerURL == "" {
		return nil, fmt.Errorf("%w: no provider URL configured", ErrProviderUnavailable)
	}

	endpoint, err := url.Parse(p.providerURL)
	if err != nil {
		return nil, fmt.Errorf("fx: invalid provider URL: %w", err)
	}

	query := endpoint.Query()
	query.Set("base", base)
	if p.apiKey != "" {
		query.Set("access_key", p.apiKey)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fx: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("fx: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrProviderRequestFailed, resp.StatusCode)
	}

	var payload struct {
		Base  string                     `json:"base"`
		Rates map[string]decimal.Decimal `json:"rates"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("fx: failed to decode response: %w", err)
	}
	if payload.Base == "" || len(payload.Rates) == 0 {
		return nil, fmt.Errorf("%w: empty rate table", ErrProviderRequestFailed)
	}

	return &RateQuote{
		Base:      payload.Base,
		Rates:     payload.Rates,
		FetchedAt: time.Now(),
	}, nil
}
