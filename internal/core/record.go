package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusSuccess Status = "success"
	StatusPending Status = "pending"
	StatusFailed  Status = "failed"
)

type (
	Status string

	// RecordDraft is what the payment flow hands to the store: everything
	// except the store-assigned ID and Timestamp.
	RecordDraft struct {
		Hash      string
		Amount    decimal.Decimal
		From      string
		Recipient string
		Message   string
		Status    Status
	}

	// Record is a single completed tip payment in the local history log.
	// Records are immutable once stored; Timestamp is assigned by the
	// store and is the ordering key.
	Record struct {
		ID        string          `json:"id"`
		Hash      string          `json:"hash"`
		Amount    decimal.Decimal `json:"amount"`
		From      string          `json:"from"`
		Recipient string          `json:"recipient,omitempty"`
		Message   string          `json:"message,omitempty"`
		Status    Status          `json:"status"`
		Timestamp time.Time       `json:"timestamp"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyHash     = errors.New("empty transaction hash")
	ErrEmptySender   = errors.New("empty sender address")
	ErrInvalidStatus = errors.New("invalid status")
)

func (s Status) Valid() bool {
	switch s {
	case StatusSuccess, StatusPending, StatusFailed:
		return true
	}
	return false
}

func (d RecordDraft) Validate() error {
	if len(strings.TrimSpace(d.Hash)) == 0 {
		return ErrEmptyHash
	}
	if len(strings.TrimSpace(d.From)) == 0 {
		return ErrEmptySender
	}
	if !d.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if len(d.Message) > 200 {
		return errors.New("message too long (max 200 characters)")
	}
	if !d.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Tier classifies a single tip amount for messaging and analytics.
func (r Record) Tier() Tier {
	return TierOf(r.Amount)
}
