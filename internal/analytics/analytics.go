// Package analytics derives aggregate views from a tip history snapshot.
//
// Every function here is total: an empty or nil record slice yields a
// well-defined zero result, never an error. Inputs are read-only
// snapshots and results are freshly constructed. Functions that scope by
// a period window take an explicit "now" so callers and tests control the
// clock.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"tipjar/internal/core"
)

const (
	Period7d  Period = "7d"
	Period30d Period = "30d"
	PeriodAll Period = "all"
)

// DefaultTopSupporters bounds the supporter ranking size.
const DefaultTopSupporters = 5

type (
	// Period is a rolling time range used to scope analytics.
	Period string

	// DayBucket is one calendar day of summed tips, labelled for charts.
	DayBucket struct {
		Date   string          `json:"date"`
		Amount decimal.Decimal `json:"amount"`
	}

	// Supporter is a distinct sender ranked by lifetime total.
	Supporter struct {
		Address string          `json:"address"`
		Total   decimal.Decimal `json:"total"`
		Count   int             `json:"count"`
	}

	// Trend compares the current period window against the preceding
	// window of equal length.
	Trend struct {
		Current       decimal.Decimal `json:"current"`
		Previous      decimal.Decimal `json:"previous"`
		Change        decimal.Decimal `json:"change"`
		PercentChange decimal.Decimal `json:"percent_change"`
	}

	// Distribution counts tips per amount tier.
	Distribution struct {
		Small  int `json:"small"`
		Medium int `json:"medium"`
		Large  int `json:"large"`
	}

	// BestDay is the single calendar day with the highest summed amount.
	BestDay struct {
		Date   string          `json:"date"`
		Amount decimal.Decimal `json:"amount"`
	}
)

// Valid reports whether p is one of the supported period selectors.
func (p Period) Valid() bool {
	switch p {
	case Period7d, Period30d, PeriodAll:
		return true
	}
	return false
}

// Days returns the window length in days. "all" is treated as a year,
// which comfortably covers a 50-record history.
func (p Period) Days() int {
	switch p {
	case Period7d:
		return 7
	case Period30d:
		return 30
	default:
		return 365
	}
}

// TotalTips sums all amounts, rounded to two decimal places.
func TotalTips(records []core.Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return core.Round2(total)
}

// AverageTip is total / count, zero when the history is empty.
func AverageTip(records []core.Record) decimal.Decimal {
	if len(records) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return core.Round2(total.Div(decimal.NewFromInt(int64(len(records)))))
}

// TipsByPeriod groups tips inside the period window by calendar day,
// oldest day first, summing amounts per day.
func TipsByPeriod(records []core.Record, period Period, now time.Time) []DayBucket {
	start := now.AddDate(0, 0, -period.Days())

	type dayTotal struct {
		day    time.Time
		amount decimal.Decimal
	}
	totals := make(map[string]*dayTotal)
	for _, r := range records {
		if r.Timestamp.Before(start) {
			continue
		}
		day := r.Timestamp.Truncate(24 * time.Hour)
		key := day.Format("2006-01-02")
		if t, ok := totals[key]; ok {
			t.amount = t.amount.Add(r.Amount)
		} else {
			totals[key] = &dayTotal{day: day, amount: r.Amount}
		}
	}

	days := make([]*dayTotal, 0, len(totals))
	for _, t := range totals {
		days = append(days, t)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].day.Before(days[j].day) })

	buckets := make([]DayBucket, len(days))
	for i, t := range days {
		buckets[i] = DayBucket{
			Date:   t.day.Format("Jan 2"),
			Amount: core.Round2(t.amount),
		}
	}
	return buckets
}

// TipTrends compares the current window against the immediately
// preceding window of equal length. PercentChange is zero when the
// previous window is empty.
func TipTrends(records []core.Record, period Period, now time.Time) Trend {
	currentStart := now.AddDate(0, 0, -period.Days())
	previousStart := currentStart.AddDate(0, 0, -period.Days())

	current := decimal.Zero
	previous := decimal.Zero
	for _, r := range records {
		ts := r.Timestamp
		switch {
		case !ts.Before(currentStart) && !ts.After(now):
			current = current.Add(r.Amount)
		case !ts.Before(previousStart) && ts.Before(currentStart):
			previous = previous.Add(r.Amount)
		}
	}

	current = core.Round2(current)
	previous = core.Round2(previous)
	change := current.Sub(previous)

	pct := decimal.Zero
	if previous.IsPositive() {
		pct = change.Div(previous).Mul(decimal.NewFromInt(100)).Round(1)
	}

	return Trend{
		Current:       current,
		Previous:      previous,
		Change:        change,
		PercentChange: pct,
	}
}

// TopSupporters ranks distinct senders by summed amount, descending.
// Ties keep the order in which an address first appears (stable sort).
// Records with an empty sender are skipped.
func TopSupporters(records []core.Record, limit int) []Supporter {
	if limit <= 0 {
		limit = DefaultTopSupporters
	}

	index := make(map[string]int)
	supporters := make([]Supporter, 0)
	for _, r := range records {
		if r.From == "" {
			continue
		}
		if i, ok := index[r.From]; ok {
			supporters[i].Total = supporters[i].Total.Add(r.Amount)
			supporters[i].Count++
			continue
		}
		index[r.From] = len(supporters)
		supporters = append(supporters, Supporter{Address: r.From, Total: r.Amount, Count: 1})
	}

	sort.SliceStable(supporters, func(i, j int) bool {
		return supporters[i].Total.GreaterThan(supporters[j].Total)
	})

	if len(supporters) > limit {
		supporters = supporters[:limit]
	}
	for i := range supporters {
		supporters[i].Total = core.Round2(supporters[i].Total)
	}
	return supporters
}

// TipDistribution buckets every record by its amount tier.
func TipDistribution(records []core.Record) Distribution {
	var d Distribution
	for _, r := range records {
		switch r.Tier() {
		case core.TierSmall:
			d.Small++
		case core.TierMedium:
			d.Medium++
		default:
			d.Large++
		}
	}
	return d
}

// UniqueSupporters counts distinct non-empty sender addresses.
func UniqueSupporters(records []core.Record) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.From != "" {
			seen[r.From] = struct{}{}
		}
	}
	return len(seen)
}

// BestPeriod finds the calendar day with the highest summed amount. The
// label carries the year to disambiguate across years. Returns the
// {"N/A", 0} sentinel on an empty history.
func BestPeriod(records []core.Record) BestDay {
	if len(records) == 0 {
		return BestDay{Date: "N/A", Amount: decimal.Zero}
	}

	totals := make(map[string]decimal.Decimal)
	for _, r := range records {
		key := r.Timestamp.Format("Jan 2, 2006")
		totals[key] = totals[key].Add(r.Amount)
	}

	best := BestDay{Date: "N/A", Amount: decimal.Zero}
	for date, amount := range totals {
		if amount.GreaterThan(best.Amount) {
			best = BestDay{Date: date, Amount: amount}
		}
	}
	best.Amount = core.Round2(best.Amount)
	return best
}
