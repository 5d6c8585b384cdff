// Package core provides the tip record domain types and amount handling.
//
// Amounts are XLM values carried as decimals end to end; display rounding
// is always half-up to two places so totals line up with what the ledger
// explorer shows.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Tip amount bounds enforced at the payment boundary. The store itself
// never re-validates amounts (records only exist for completed payments).
var (
	MinTipAmount = decimal.RequireFromString("0.01")
	MaxTipAmount = decimal.NewFromInt(10000)
)

const (
	TierSmall  Tier = "small"  // < 5 XLM
	TierMedium Tier = "medium" // 5-20 XLM inclusive
	TierLarge  Tier = "large"  // > 20 XLM
)

type Tier string

// ParseAmount converts a user-supplied amount string into a decimal XLM
// value. It accepts both dot and comma decimal separators and enforces
// the tip bounds.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("0")     -> error (below minimum)
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.LessThan(MinTipAmount) || d.GreaterThan(MaxTipAmount) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Round2 rounds an XLM amount half-up to two decimal places for display
// and aggregate reporting.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// TierOf buckets an amount into the small/medium/large tip tiers.
func TierOf(amount decimal.Decimal) Tier {
	switch {
	case amount.LessThan(decimal.NewFromInt(5)):
		return TierSmall
	case amount.LessThanOrEqual(decimal.NewFromInt(20)):
		return TierMedium
	default:
		return TierLarge
	}
}
