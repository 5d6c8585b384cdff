package notify

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tipjar/internal/core"
)

func TestNewTipEvent(t *testing.T) {
	rec := &core.Record{
		ID:        "rec-1",
		Hash:      "abc123",
		Amount:    decimal.NewFromInt(25),
		From:      "GABC",
		Timestamp: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}

	event := NewTipEvent(rec, 42)

	if event.RecordID != "rec-1" {
		t.Errorf("NewTipEvent() RecordID = %v, want rec-1", event.RecordID)
	}
	if !event.Amount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("NewTipEvent() Amount = %v, want 25", event.Amount)
	}
	if event.Tier != "large" {
		t.Errorf("NewTipEvent() Tier = %v, want large", event.Tier)
	}
	if event.TipCount != 42 {
		t.Errorf("NewTipEvent() TipCount = %v, want 42", event.TipCount)
	}
	if !event.Timestamp.Equal(rec.Timestamp) {
		t.Errorf("NewTipEvent() Timestamp = %v, want %v", event.Timestamp, rec.Timestamp)
	}
	if event.Milestone != "" || event.MilestoneLevel != "" {
		t.Error("NewTipEvent() milestone fields should start empty")
	}
}

func TestTipEvent_JSON(t *testing.T) {
	timestamp := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	event := &TipEvent{
		RecordID:       "rec-7",
		Amount:         decimal.RequireFromString("5.5"),
		From:           "GDEF",
		Tier:           "medium",
		TipCount:       10,
		Timestamp:      timestamp,
		Milestone:      "First Steps",
		MilestoneLevel: "bronze",
	}

	jsonBytes, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := TipEventFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("TipEventFromJSON() error = %v", err)
	}

	if parsed.RecordID != event.RecordID {
		t.Errorf("Parsed RecordID = %v, want %v", parsed.RecordID, event.RecordID)
	}
	if !parsed.Amount.Equal(event.Amount) {
		t.Errorf("Parsed Amount = %v, want %v", parsed.Amount, event.Amount)
	}
	if !parsed.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, event.Timestamp)
	}
	if parsed.Milestone != event.Milestone {
		t.Errorf("Parsed Milestone = %v, want %v", parsed.Milestone, event.Milestone)
	}
}

func TestTipEventFromJSON_Invalid(t *testing.T) {
	invalidJSON := []byte(`{"tip_count": "not_a_number"}`)

	_, err := TipEventFromJSON(invalidJSON)
	if err == nil {
		t.Error("TipEventFromJSON() should fail with invalid JSON")
	}
}
