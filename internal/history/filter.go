// Package history produces display-ready subsets of the tip log:
// free-text search, date and amount range filters, and pagination.
// Filters never mutate their input and compose by pure intersection,
// so application order does not matter.
package history

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tipjar/internal/core"
)

// Search keeps records whose hash, sender or message contains the query,
// case-insensitively. An empty query returns the input unchanged.
func Search(records []core.Record, query string) []core.Record {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return records
	}

	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Hash), query) ||
			strings.Contains(strings.ToLower(r.From), query) ||
			strings.Contains(strings.ToLower(r.Message), query) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByDate keeps records whose timestamp falls inside the inclusive
// [from, to] range. A zero bound is open; two zero bounds are a no-op.
func FilterByDate(records []core.Record, from, to time.Time) []core.Record {
	if from.IsZero() && to.IsZero() {
		return records
	}

	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		if !from.IsZero() && r.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && r.Timestamp.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterByAmount keeps records whose amount falls inside the inclusive
// [min, max] range. A nil bound is open; two nil bounds are a no-op.
func FilterByAmount(records []core.Record, min, max *decimal.Decimal) []core.Record {
	if min == nil && max == nil {
		return records
	}

	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		if min != nil && r.Amount.LessThan(*min) {
			continue
		}
		if max != nil && r.Amount.GreaterThan(*max) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Filter bundles every supported criterion. Zero values are no-ops.
type Filter struct {
	Query     string
	DateFrom  time.Time
	DateTo    time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// Apply runs all filters, intersecting their results while preserving
// the input's relative order.
func (f Filter) Apply(records []core.Record) []core.Record {
	records = Search(records, f.Query)
	records = FilterByDate(records, f.DateFrom, f.DateTo)
	records = FilterByAmount(records, f.MinAmount, f.MaxAmount)
	return records
}
