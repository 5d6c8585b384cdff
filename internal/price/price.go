// Package price looks up the XLM/USD rate with a TTL cache. The rate
// only ever feeds a display conversion, so this collaborator degrades
// instead of failing: stale cache first, hardcoded fallback last.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultAPIURL is CoinGecko's simple price endpoint for XLM.
	DefaultAPIURL = "https://api.coingecko.com/api/v3/simple/price?ids=stellar&vs_currencies=usd"
	// DefaultTTL keeps us inside the free-tier rate limits.
	DefaultTTL = 5 * time.Minute
)

// FallbackRate is served when no fetch ever succeeded.
var FallbackRate = decimal.RequireFromString("0.12")

// Feed caches the rate for a fixed TTL. State is explicit and owned by
// the caller, and the clock is injectable, so tests control "now".
type Feed struct {
	mu         sync.Mutex
	url        string
	ttl        time.Duration
	httpClient *http.Client
	now        func() time.Time

	rate      decimal.Decimal
	fetchedAt time.Time
}

func NewFeed(url string, ttl time.Duration) *Feed {
	if url == "" {
		url = DefaultAPIURL
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Feed{
		url:        url,
		ttl:        ttl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

// WithClock overrides the feed's clock, for tests.
func (f *Feed) WithClock(now func() time.Time) *Feed {
	f.now = now
	return f
}

// WithHTTPClient overrides the transport, for tests.
func (f *Feed) WithHTTPClient(hc *http.Client) *Feed {
	f.httpClient = hc
	return f
}

// Rate returns the current XLM/USD rate. It never returns an error:
// fetch failures fall back to the last cached value, then to
// FallbackRate.
func (f *Feed) Rate(ctx context.Context) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.fetchedAt.IsZero() && f.now().Sub(f.fetchedAt) < f.ttl {
		return f.rate
	}

	rate, err := f.fetch(ctx)
	if err != nil {
		if !f.fetchedAt.IsZero() {
			return f.rate
		}
		return FallbackRate
	}

	f.rate = rate
	f.fetchedAt = f.now()
	return rate
}

type coingeckoResponse struct {
	Stellar struct {
		USD float64 `json:"usd"`
	} `json:"stellar"`
}

func (f *Feed) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build price request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("fetch price: status %d", resp.StatusCode)
	}

	var data coingeckoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return decimal.Zero, fmt.Errorf("decode price: %w", err)
	}
	if data.Stellar.USD <= 0 {
		return decimal.Zero, fmt.Errorf("invalid price data")
	}
	return decimal.NewFromFloat(data.Stellar.USD), nil
}

// ConvertUSDToXLM converts a USD amount at the given rate, zero when
// either input is non-positive.
func ConvertUSDToXLM(usd, rate decimal.Decimal) decimal.Decimal {
	if !usd.IsPositive() || !rate.IsPositive() {
		return decimal.Zero
	}
	return usd.Div(rate).Round(7)
}

// ConvertXLMToUSD converts an XLM amount at the given rate, zero when
// either input is non-positive.
func ConvertXLMToUSD(xlm, rate decimal.Decimal) decimal.Decimal {
	if !xlm.IsPositive() || !rate.IsPositive() {
		return decimal.Zero
	}
	return xlm.Mul(rate).Round(2)
}
