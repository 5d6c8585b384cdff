package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tipjar/internal/core"
	"tipjar/internal/store"
)

func draft(amount string) core.RecordDraft {
	return core.RecordDraft{
		Hash:   "deadbeef" + amount,
		Amount: decimal.RequireFromString(amount),
		From:   "GBMQJ3G5LDWODZKUUQWGGT6NIKMM7KL5NLHVIG53WLNLWB27Z4AKH3F4",
		Status: core.StatusSuccess,
	}
}

func TestAppendNewestFirst(t *testing.T) {
	s := New(50)
	ctx := context.Background()

	for _, amt := range []string{"1", "5", "10"} {
		if _, err := s.Append(ctx, draft(amt)); err != nil {
			t.Fatalf("append %s: %v", amt, err)
		}
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []string{"10", "5", "1"} {
		if records[i].Amount.String() != want {
			t.Errorf("records[%d].Amount = %s, want %s", i, records[i].Amount, want)
		}
	}
}

func TestCapacityEviction(t *testing.T) {
	s := New(50)
	ctx := context.Background()

	for i := 1; i <= 60; i++ {
		d := draft("1")
		d.Hash = fmt.Sprintf("hash-%02d", i)
		if _, err := s.Append(ctx, d); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	records, _ := s.List(ctx)
	if len(records) != 50 {
		t.Fatalf("expected exactly 50 retained records, got %d", len(records))
	}
	// Newest first: the most recent append leads, the 11th-oldest closes.
	if records[0].Hash != "hash-60" {
		t.Errorf("newest record is %s, want hash-60", records[0].Hash)
	}
	if records[49].Hash != "hash-11" {
		t.Errorf("oldest retained record is %s, want hash-11", records[49].Hash)
	}
}

func TestTimestampsMonotonic(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewWithClock(50, func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	})
	ctx := context.Background()

	var last time.Time
	for i := 0; i < 5; i++ {
		rec, err := s.Append(ctx, draft("2"))
		if err != nil {
			t.Fatal(err)
		}
		if rec.Timestamp.Before(last) {
			t.Fatalf("timestamp went backwards: %v < %v", rec.Timestamp, last)
		}
		last = rec.Timestamp
	}
}

func TestUniqueIDs(t *testing.T) {
	s := NewWithClock(50, func() time.Time {
		// Frozen clock: every record lands on the same instant.
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	})
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		rec, err := s.Append(ctx, draft("1"))
		if err != nil {
			t.Fatal(err)
		}
		if seen[rec.ID] {
			t.Fatalf("duplicate id %s", rec.ID)
		}
		seen[rec.ID] = true
	}
}

func TestClearIdempotent(t *testing.T) {
	s := New(50)
	ctx := context.Background()

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clearing empty store: %v", err)
	}

	s.Append(ctx, draft("3"))
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	records, _ := s.List(ctx)
	if len(records) != 0 {
		t.Fatalf("expected empty history after clear, got %d records", len(records))
	}
}

func TestFindByID(t *testing.T) {
	s := New(50)
	ctx := context.Background()

	rec, _ := s.Append(ctx, draft("7"))
	got, err := s.FindByID(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Hash != rec.Hash {
		t.Errorf("got hash %s, want %s", got.Hash, rec.Hash)
	}

	if _, err := s.FindByID(ctx, "missing"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendRejectsInvalidDraft(t *testing.T) {
	s := New(50)
	d := draft("1")
	d.Hash = ""
	if _, err := s.Append(context.Background(), d); err == nil {
		t.Fatal("expected validation error for empty hash")
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := New(50)
	ctx := context.Background()

	p, err := s.LoadProfile(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Creator" || len(p.QuickTips) != 3 {
		t.Fatalf("unexpected default profile: %+v", p)
	}

	p.Name = "OM KUMAR"
	p.Bio = "making things"
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, _ := s.LoadProfile(ctx)
	if got.Name != "OM KUMAR" || got.Bio != "making things" {
		t.Errorf("profile did not round-trip: %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not assigned on save")
	}

	if err := s.ClearProfile(ctx); err != nil {
		t.Fatal(err)
	}
	got, _ = s.LoadProfile(ctx)
	if got.Name != "Creator" {
		t.Errorf("expected default profile after clear, got %+v", got)
	}
}

var _ store.RecordRepository = (*Store)(nil)
var _ store.ProfileRepository = (*Store)(nil)
