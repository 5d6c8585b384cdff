package notify

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"tipjar/internal/core"
)

// TipEvent is published after a tip lands in the history log. It carries
// enough to render a notification without another store round-trip; the
// record itself stays the store's business.
type TipEvent struct {
	RecordID  string          `json:"record_id"`
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	Tier      string          `json:"tier"`
	TipCount  int             `json:"tip_count"`
	Timestamp time.Time       `json:"timestamp"`

	// Set only when this tip crossed a milestone threshold.
	Milestone      string `json:"milestone,omitempty"`
	MilestoneLevel string `json:"milestone_level,omitempty"`
}

// NewTipEvent builds the event for a freshly appended record. tipCount is
// the history size after the append; milestone fields stay empty unless
// the caller detected a crossing.
func NewTipEvent(rec *core.Record, tipCount int) *TipEvent {
	return &TipEvent{
		RecordID:  rec.ID,
		Amount:    rec.Amount,
		From:      rec.From,
		Tier:      string(rec.Tier()),
		TipCount:  tipCount,
		Timestamp: rec.Timestamp,
	}
}

func (m *TipEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TipEventFromJSON(data []byte) (*TipEvent, error) {
	var msg TipEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
