package analytics

import (
	"sort"
	"strconv"
	"time"

	"tipjar/internal/core"
)

// Streak levels for badge styling.
const (
	StreakNone     = "none"
	StreakBronze   = "bronze"
	StreakSilver   = "silver"
	StreakGold     = "gold"
	StreakPlatinum = "platinum"
)

// Streak counts consecutive calendar days, ending today or yesterday,
// with at least one recorded tip. Multiple tips on one day count once:
// this is a day-count, not a tip-count. A most-recent tip older than
// yesterday breaks the streak to zero.
func Streak(records []core.Record, now time.Time) int {
	if len(records) == 0 {
		return 0
	}

	seen := make(map[time.Time]struct{})
	for _, r := range records {
		d := dateOnly(r.Timestamp)
		seen[d] = struct{}{}
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today := dateOnly(now)
	yesterday := today.AddDate(0, 0, -1)
	if !days[0].Equal(today) && !days[0].Equal(yesterday) {
		return 0
	}

	streak := 1
	for i := 0; i < len(days)-1; i++ {
		if days[i].AddDate(0, 0, -1).Equal(days[i+1]) {
			streak++
		} else {
			break
		}
	}
	return streak
}

// StreakMessage renders the engagement copy shown next to the badge.
func StreakMessage(streak int) string {
	switch {
	case streak == 0:
		return "Start your streak today!"
	case streak == 1:
		return "Day 1 - Great start!"
	case streak < 7:
		return strconv.Itoa(streak) + " day streak - Keep going!"
	case streak < 30:
		return strconv.Itoa(streak) + " day streak - On fire!"
	case streak < 100:
		return strconv.Itoa(streak) + " day streak - Legendary!"
	default:
		return strconv.Itoa(streak) + " day streak - UNBELIEVABLE!"
	}
}

// StreakLevel maps a streak length onto a badge level.
func StreakLevel(streak int) string {
	switch {
	case streak == 0:
		return StreakNone
	case streak < 3:
		return StreakBronze
	case streak < 7:
		return StreakSilver
	case streak < 30:
		return StreakGold
	default:
		return StreakPlatinum
	}
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
