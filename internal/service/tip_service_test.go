package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"tipjar/internal/core"
	"tipjar/internal/notify"
	"tipjar/internal/store"
	"tipjar/internal/store/memory"
)

type fakePublisher struct {
	events []*notify.TipEvent
	err    error
}

func (f *fakePublisher) PublishTipEvent(_ context.Context, event *notify.TipEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func draft(hash string, amount string) core.RecordDraft {
	return core.RecordDraft{
		Hash:      hash,
		Amount:    decimal.RequireFromString(amount),
		From:      "GABC",
		Recipient: "GDEF",
		Status:    core.StatusSuccess,
	}
}

func TestTipService_RecordTip(t *testing.T) {
	repo := memory.New(store.DefaultHistoryLimit)
	pub := &fakePublisher{}
	svc := NewTipService(repo, repo, pub)
	ctx := context.Background()

	rec, err := svc.RecordTip(ctx, draft("hash-1", "25"))
	if err != nil {
		t.Fatalf("RecordTip() error = %v", err)
	}
	if rec.ID == "" {
		t.Error("RecordTip() should return a record with an assigned ID")
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	event := pub.events[0]
	if event.RecordID != rec.ID {
		t.Errorf("event RecordID = %v, want %v", event.RecordID, rec.ID)
	}
	if event.TipCount != 1 {
		t.Errorf("event TipCount = %v, want 1", event.TipCount)
	}
	if event.Tier != "large" {
		t.Errorf("event Tier = %v, want large", event.Tier)
	}
	if event.Milestone != "" {
		t.Errorf("event Milestone = %v, want empty below first threshold", event.Milestone)
	}
}

func TestTipService_RecordTip_InvalidDraft(t *testing.T) {
	repo := memory.New(store.DefaultHistoryLimit)
	svc := NewTipService(repo, repo, &fakePublisher{})

	_, err := svc.RecordTip(context.Background(), core.RecordDraft{})
	if err == nil {
		t.Fatal("RecordTip() should reject an empty draft")
	}

	tips, _ := svc.ListTips(context.Background())
	if len(tips) != 0 {
		t.Errorf("invalid draft should not be stored, history has %d records", len(tips))
	}
}

func TestTipService_RecordTip_PublishFailureDoesNotFail(t *testing.T) {
	repo := memory.New(store.DefaultHistoryLimit)
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewTipService(repo, repo, pub)

	rec, err := svc.RecordTip(context.Background(), draft("hash-1", "5"))
	if err != nil {
		t.Fatalf("RecordTip() should succeed despite publish failure, got %v", err)
	}

	got, err := svc.FindTip(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("FindTip() error = %v", err)
	}
	if got.Hash != "hash-1" {
		t.Errorf("FindTip() Hash = %v, want hash-1", got.Hash)
	}
}

func TestTipService_RecordTip_NilPublisher(t *testing.T) {
	repo := memory.New(store.DefaultHistoryLimit)
	svc := NewTipService(repo, repo, nil)

	if _, err := svc.RecordTip(context.Background(), draft("hash-1", "5")); err != nil {
		t.Fatalf("RecordTip() with nil publisher error = %v", err)
	}
}

func TestTipService_MilestoneCrossing(t *testing.T) {
	repo := memory.New(store.DefaultHistoryLimit)
	pub := &fakePublisher{}
	svc := NewTipService(repo, repo, pub)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		if _, err := svc.RecordTip(ctx, draft(fmt.Sprintf("hash-%d", i), "1")); err != nil {
			t.Fatalf("RecordTip() #%d error = %v", i, err)
		}
	}

	if len(pub.events) != 10 {
		t.Fatalf("expected 10 events, got %d", len(pub.events))
	}
	for i, event := range pub.events[:9] {
		if event.Milestone != "" {
			t.Errorf("event %d Milestone = %v, want empty", i+1, event.Milestone)
		}
	}
	tenth := pub.events[9]
	if tenth.Milestone != "First Steps" {
		t.Errorf("10th event Milestone = %v, want First Steps", tenth.Milestone)
	}
	if tenth.MilestoneLevel != "bronze" {
		t.Errorf("10th event MilestoneLevel = %v, want bronze", tenth.MilestoneLevel)
	}
	if tenth.TipCount != 10 {
		t.Errorf("10th event TipCount = %v, want 10", tenth.TipCount)
	}
}

func TestTipService_ClearHistory(t *testing.T) {
	repo := memory.New(store.DefaultHistoryLimit)
	svc := NewTipService(repo, repo, nil)
	ctx := context.Background()

	if _, err := svc.RecordTip(ctx, draft("hash-1", "5")); err != nil {
		t.Fatalf("RecordTip() error = %v", err)
	}
	if err := svc.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory() error = %v", err)
	}

	tips, err := svc.ListTips(ctx)
	if err != nil {
		t.Fatalf("ListTips() error = %v", err)
	}
	if len(tips) != 0 {
		t.Errorf("history should be empty after clear, got %d records", len(tips))
	}
}

func TestTipService_Profile(t *testing.T) {
	repo := memory.New(store.DefaultHistoryLimit)
	svc := NewTipService(repo, repo, nil)
	ctx := context.Background()

	p, err := svc.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if p.Name != "Creator" {
		t.Errorf("default profile Name = %v, want Creator", p.Name)
	}

	p.Name = "Alice"
	p.Bio = "music and code"
	if err := svc.UpdateProfile(ctx, p); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	got, err := svc.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if got.Name != "Alice" || got.Bio != "music and code" {
		t.Errorf("Profile() = %+v, want saved values", got)
	}
}

func TestTipService_UpdateProfile_Invalid(t *testing.T) {
	repo := memory.New(store.DefaultHistoryLimit)
	svc := NewTipService(repo, repo, nil)

	p := core.DefaultProfile()
	p.QuickTips = []decimal.Decimal{decimal.NewFromInt(1)}

	if err := svc.UpdateProfile(context.Background(), p); err == nil {
		t.Error("UpdateProfile() should reject a profile with fewer than three quick tips")
	}
}

func TestTipService_Close(t *testing.T) {
	svc := NewTipService(nil, nil, nil)

	if err := svc.Close(); err != nil {
		t.Fatalf("Close should not return error with nil components: %v", err)
	}
}
