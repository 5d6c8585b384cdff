package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"tipjar/internal/core"
	"tipjar/internal/history"
	"tipjar/internal/store"
)

// tipRequest is the browser's report of a completed payment. Amount
// arrives as a string to avoid float round-tripping.
type tipRequest struct {
	Hash      string `json:"hash"`
	Amount    string `json:"amount"`
	From      string `json:"from"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
	Status    string `json:"status"`
}

func (s *Server) handleTips(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateTip(w, r)
	case http.MethodGet:
		s.handleListTips(w, r)
	case http.MethodDelete:
		s.handleClearTips(w, r)
	default:
		methodNotAllowed(w, "GET, POST, DELETE")
	}
}

func (s *Server) handleCreateTip(w http.ResponseWriter, r *http.Request) {
	var req tipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(r.Context(), "Tip request decode error", "error", err)
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	status := core.Status(strings.TrimSpace(req.Status))
	if status == "" {
		status = core.StatusSuccess
	}

	draft := core.RecordDraft{
		Hash:      sanitizeInput(req.Hash),
		Amount:    amount,
		From:      sanitizeInput(req.From),
		Recipient: sanitizeInput(req.Recipient),
		Message:   sanitizeInput(req.Message),
		Status:    status,
	}

	rec, err := s.tips.RecordTip(r.Context(), draft)
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Tip append error", "error", err, "tx_hash", draft.Hash)
		respondError(w, http.StatusInternalServerError, "failed to record tip")
		return
	}

	s.invalidateViews()
	respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListTips(w http.ResponseWriter, r *http.Request) {
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
	page := history.Paginate(filtered, queryInt(r, "page", 1), queryInt(r, "page_size", history.DefaultPageSize))

	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleClearTips(w http.ResponseWriter, r *http.Request) {
	if err := s.tips.ClearHistory(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Tip clear error", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}

	s.invalidateViews()
	w.WriteHeader(http.StatusNoContent)
}

// handleTipByID serves GET /api/tips/{id}.
func (s *Server) handleTipByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/tips/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	rec, err := s.tips.FindTip(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "tip not found")
			return
		}
		slog.ErrorContext(r.Context(), "Tip lookup error", "error", err, "record_id", id)
		respondError(w, http.StatusInternalServerError, "failed to load tip")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// queryAmount parses a decimal query parameter into an optional bound.
func queryAmount(r *http.Request, key string) (*decimal.Decimal, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, false
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, false
	}
	return &d, true
}

// isValidationError distinguishes bad input from infrastructure failure.
func isValidationError(err error) bool {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyHash),
		errors.Is(err, core.ErrEmptySender),
		errors.Is(err, core.ErrInvalidStatus):
		return true
	}
	return strings.Contains(err.Error(), "too long")
}
