package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"tipjar/internal/core"
	"tipjar/internal/price"
	"tipjar/internal/stellar"
)

var decimalOne = decimal.NewFromInt(1)

// handleBalance proxies a native-balance lookup so the page never talks
// to Horizon with its own CORS rules.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		address = s.site.RecipientAddress
	}

	balance, err := s.ledger.GetBalance(r.Context(), address)
	if err != nil {
		slog.ErrorContext(r.Context(), "Balance lookup error", "error", err, "address", address)
		respondError(w, http.StatusBadGateway, "failed to load balance")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Address string `json:"address"`
		Balance string `json:"balance"`
	}{Address: address, Balance: balance.StringFixed(2)})
}

// handlePrice reports the cached XLM/USD rate. The feed never fails;
// at worst it serves the hardcoded fallback.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	rate := s.prices.Rate(r.Context())

	resp := struct {
		USDPerXLM string `json:"usd_per_xlm"`
		OneUSD    string `json:"one_usd_in_xlm"`
	}{
		USDPerXLM: rate.String(),
		OneUSD:    price.ConvertUSDToXLM(decimalOne, rate).String(),
	}

	respondJSON(w, http.StatusOK, resp)
}

type buildPaymentRequest struct {
	From   string `json:"from"`
	Amount string `json:"amount"`
}

// handleBuildPayment prepares an unsigned payment envelope for the
// browser wallet to sign. The destination is always the configured
// recipient.
func (s *Server) handleBuildPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req buildPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	from := strings.TrimSpace(req.From)
	if from == "" {
		respondError(w, http.StatusUnprocessableEntity, "sender address is required")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	envelope, err := s.ledger.BuildPayment(r.Context(), from, s.site.RecipientAddress, amount)
	if err != nil {
		if errors.Is(err, stellar.ErrAccountNotFunded) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Payment build error", "error", err, "sender", from)
		respondError(w, http.StatusBadGateway, "failed to build payment")
		return
	}

	respondJSON(w, http.StatusOK, envelope)
}

type submitPaymentRequest struct {
	SignedXDR string `json:"signed_xdr"`
}

// handleSubmitPayment relays a signed transaction to Horizon and returns
// its hash. Ledger rejections surface their result codes verbatim.
func (s *Server) handleSubmitPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req submitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SignedXDR) == "" {
		respondError(w, http.StatusUnprocessableEntity, "signed transaction is required")
		return
	}

	result, err := s.ledger.Submit(r.Context(), req.SignedXDR)
	if err != nil {
		var subErr *stellar.SubmissionError
		if errors.As(err, &subErr) {
			slog.WarnContext(r.Context(), "Transaction rejected",
				"tx_code", subErr.TransactionCode, "op_codes", subErr.OperationCodes)
			respondError(w, http.StatusUnprocessableEntity, subErr.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Transaction submit error", "error", err)
		respondError(w, http.StatusBadGateway, "failed to submit transaction")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Hash     string `json:"hash"`
		From     string `json:"from"`
		Explorer string `json:"explorer"`
	}{
		Hash:     result.Hash,
		From:     result.SourceAccount,
		Explorer: stellar.ExplorerLink(result.Hash),
	})
}
