package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Profile holds the creator-facing page settings: display name, bio,
// avatar and the three quick-tip buttons. Persisted as a single keyed
// blob next to the tip history.
type Profile struct {
	Name        string            `json:"name"`
	Bio         string            `json:"bio"`
	AvatarURL   string            `json:"avatar_url,omitempty"`
	QuickTips   []decimal.Decimal `json:"quick_tips"`
	SocialLinks map[string]string `json:"social_links,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at,omitempty"`
}

// DefaultProfile is returned whenever no profile has been saved yet.
func DefaultProfile() Profile {
	return Profile{
		Name: "Creator",
		QuickTips: []decimal.Decimal{
			decimal.NewFromInt(1),
			decimal.NewFromInt(5),
			decimal.NewFromInt(10),
		},
	}
}

// ValidateQuickTips checks the custom quick-tip preset: exactly three
// amounts, each within the tip bounds.
func ValidateQuickTips(tips []decimal.Decimal) bool {
	if len(tips) != 3 {
		return false
	}
	for _, tip := range tips {
		if !tip.IsPositive() || tip.GreaterThan(MaxTipAmount) {
			return false
		}
	}
	return true
}

func (p Profile) Validate() error {
	if len(p.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if len(p.Bio) > 500 {
		return errors.New("bio too long (max 500 characters)")
	}
	if len(p.QuickTips) > 0 && !ValidateQuickTips(p.QuickTips) {
		return ErrInvalidAmount
	}
	return nil
}
