package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{" 2.50 ", "2.5", true},
		{"10000", "10000", true},
		{"10000.01", "", false},
		{"0.009", "", false},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestTierOf(t *testing.T) {
	cases := []struct {
		in   string
		want Tier
	}{
		{"0.5", TierSmall},
		{"4.99", TierSmall},
		{"5", TierMedium},
		{"20", TierMedium},
		{"20.01", TierLarge},
		{"100", TierLarge},
	}
	for _, tc := range cases {
		if got := TierOf(decimal.RequireFromString(tc.in)); got != tc.want {
			t.Errorf("TierOf(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(decimal.RequireFromString("5.333333")); got.String() != "5.33" {
		t.Errorf("Round2(5.333333) = %s, want 5.33", got)
	}
	if got := Round2(decimal.RequireFromString("5.335")); got.String() != "5.34" {
		t.Errorf("Round2(5.335) = %s, want 5.34", got)
	}
}

func TestRecordDraftValidate(t *testing.T) {
	valid := RecordDraft{
		Hash:   "abc123",
		Amount: decimal.NewFromInt(5),
		From:   "GBMQJ3G5LDWODZKUUQWGGT6NIKMM7KL5NLHVIG53WLNLWB27Z4AKH3F4",
		Status: StatusSuccess,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid draft rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*RecordDraft)
		want   error
	}{
		{"empty hash", func(d *RecordDraft) { d.Hash = " " }, ErrEmptyHash},
		{"empty sender", func(d *RecordDraft) { d.From = "" }, ErrEmptySender},
		{"zero amount", func(d *RecordDraft) { d.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(d *RecordDraft) { d.Amount = decimal.NewFromInt(-1) }, ErrInvalidAmount},
		{"bad status", func(d *RecordDraft) { d.Status = "unknown" }, ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			if err := d.Validate(); err != tt.want {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
