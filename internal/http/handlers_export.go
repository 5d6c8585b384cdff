package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"tipjar/internal/analytics"
	"tipjar/internal/export"
	"tipjar/internal/history"
)

// handleExportCSV streams the (optionally filtered) history as a CSV
// download. Filters mirror the list endpoint.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	records, err := s.tips.ListTips(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Tip list error", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load tips")
		return
	}

	filter := history.Filter{
		Query:    sanitizeInput(r.URL.Query().Get("search")),
		DateFrom: queryDate(r, "from"),
		DateTo:   queryDate(r, "to"),
	}
	if min, ok := queryAmount(r, "min_amount"); ok {
		filter.MinAmount = min
	}
	if max, ok := queryAmount(r, "max_amount"); ok {
		filter.MaxAmount = max
	}
	filtered := filter.Apply(records)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tip-history-`+time.Now().UTC().Format("2006-01-02")+`.csv"`)

	if err := export.WriteCSV(w, filtered); err != nil {
		if errors.Is(err, export.ErrNoData) {
			w.Header().Del("Content-Disposition")
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "CSV export error", "error", err)
	}
}

// handleReport renders the printable HTML report. It always succeeds,
// even on an empty history.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	records, err := s.tips.ListTips(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Tip list error", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load tips")
		return
	}

	stats := export.ReportStats{
		Total:      analytics.TotalTips(records),
		Count:      len(records),
		Average:    analytics.AverageTip(records),
		Supporters: analytics.UniqueSupporters(records),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.WriteReport(w, records, stats, time.Now().UTC()); err != nil {
		slog.ErrorContext(r.Context(), "Report render error", "error", err)
	}
}
