package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRateCachesWithinTTL(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"stellar": {"usd": 0.25}}`))
	}))
	defer srv.Close()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	f := NewFeed(srv.URL, 5*time.Minute).
		WithHTTPClient(srv.Client()).
		WithClock(func() time.Time { return now })

	ctx := context.Background()
	if got := f.Rate(ctx); got.String() != "0.25" {
		t.Fatalf("rate = %s, want 0.25", got)
	}

	// Within the TTL: served from cache, no second fetch.
	now = now.Add(4 * time.Minute)
	f.Rate(ctx)
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected 1 fetch within TTL, got %d", calls)
	}

	// Past the TTL: refetched.
	now = now.Add(2 * time.Minute)
	f.Rate(ctx)
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected refetch after TTL, got %d calls", calls)
	}
}

func TestRateFallsBackToCachedValue(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"stellar": {"usd": 0.3}}`))
	}))
	defer srv.Close()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	f := NewFeed(srv.URL, time.Minute).
		WithHTTPClient(srv.Client()).
		WithClock(func() time.Time { return now })

	ctx := context.Background()
	f.Rate(ctx)

	fail.Store(true)
	now = now.Add(2 * time.Minute)
	if got := f.Rate(ctx); got.String() != "0.3" {
		t.Errorf("expected last cached rate on failure, got %s", got)
	}
}

func TestRateHardcodedFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFeed(srv.URL, time.Minute).WithHTTPClient(srv.Client())
	if got := f.Rate(context.Background()); !got.Equal(FallbackRate) {
		t.Errorf("expected fallback rate %s, got %s", FallbackRate, got)
	}
}

func TestRateRejectsInvalidPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stellar": {"usd": 0}}`))
	}))
	defer srv.Close()

	f := NewFeed(srv.URL, time.Minute).WithHTTPClient(srv.Client())
	if got := f.Rate(context.Background()); !got.Equal(FallbackRate) {
		t.Errorf("zero price must not be cached, got %s", got)
	}
}

func TestConversions(t *testing.T) {
	rate := decimal.RequireFromString("0.5")

	if got := ConvertXLMToUSD(decimal.NewFromInt(10), rate); got.String() != "5" {
		t.Errorf("ConvertXLMToUSD = %s, want 5", got)
	}
	if got := ConvertUSDToXLM(decimal.NewFromInt(5), rate); got.String() != "10" {
		t.Errorf("ConvertUSDToXLM = %s, want 10", got)
	}
	if got := ConvertXLMToUSD(decimal.Zero, rate); !got.IsZero() {
		t.Errorf("zero amount must convert to 0, got %s", got)
	}
	if got := ConvertUSDToXLM(decimal.NewFromInt(5), decimal.Zero); !got.IsZero() {
		t.Errorf("zero rate must convert to 0, got %s", got)
	}
}
