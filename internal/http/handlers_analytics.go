package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tipjar/internal/analytics"
	"tipjar/internal/history"
)

const streakCacheKey = "streak"

// analyticsView is the full derived snapshot for one period selector.
type analyticsView struct {
	Period           analytics.Period             `json:"period"`
	Total            string                       `json:"total"`
	Average          string                       `json:"average"`
	Count            int                          `json:"count"`
	UniqueSupporters int                          `json:"unique_supporters"`
	ByDay            []analytics.DayBucket        `json:"by_day"`
	Trend            analytics.Trend              `json:"trend"`
	TopSupporters    []analytics.Supporter        `json:"top_supporters"`
	Distribution     analytics.Distribution       `json:"distribution"`
	BestDay          analytics.BestDay            `json:"best_day"`
	Milestones       analytics.MilestoneProgress  `json:"milestones"`
}

type streakView struct {
	Streak  int    `json:"streak"`
	Message string `json:"message"`
	Level   string `json:"level"`
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	period := analytics.Period(strings.TrimSpace(r.URL.Query().Get("period")))
	if period == "" {
		period = analytics.PeriodAll
	}
	if !period.Valid() {
		respondError(w, http.StatusBadRequest, "invalid period: must be one of 7d, 30d, all")
		return
	}

	if view, found := s.analyticsCache.Get(string(period)); found {
		slog.DebugContext(r.Context(), "Analytics cache hit", "period", period)
		respondJSON(w, http.StatusOK, view)
		return
	}

	records, err := s.tips.ListTips(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Tip list error", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load tips")
		return
	}

	now := time.Now().UTC()
	scoped := history.FilterByDate(records, now.AddDate(0, 0, -period.Days()), now)

	view := analyticsView{
		Period:           period,
		Total:            analytics.TotalTips(scoped).StringFixed(2),
		Average:          analytics.AverageTip(scoped).StringFixed(2),
		Count:            len(scoped),
		UniqueSupporters: analytics.UniqueSupporters(scoped),
		ByDay:            analytics.TipsByPeriod(records, period, now),
		Trend:            analytics.TipTrends(records, period, now),
		TopSupporters:    analytics.TopSupporters(scoped, analytics.DefaultTopSupporters),
		Distribution:     analytics.TipDistribution(scoped),
		BestDay:          analytics.BestPeriod(scoped),
		Milestones:       analytics.ProgressFor(len(records)),
	}

	s.analyticsCache.Set(string(period), view)
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	if view, found := s.streakCache.Get(streakCacheKey); found {
		respondJSON(w, http.StatusOK, view)
		return
	}

	records, err := s.tips.ListTips(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Tip list error", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load tips")
		return
	}

	streak := analytics.Streak(records, time.Now().UTC())
	view := streakView{
		Streak:  streak,
		Message: analytics.StreakMessage(streak),
		Level:   analytics.StreakLevel(streak),
	}

	s.streakCache.Set(streakCacheKey, view)
	respondJSON(w, http.StatusOK, view)
}
