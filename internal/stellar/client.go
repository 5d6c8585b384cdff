package stellar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Client talks to a Horizon server over its REST API.
type Client struct {
	horizonURL string
	passphrase string
	httpClient *http.Client
}

func NewClient(horizonURL, passphrase string) *Client {
	if horizonURL == "" {
		horizonURL = TestnetHorizonURL
	}
	if passphrase == "" {
		passphrase = TestnetPassphrase
	}
	return &Client{
		horizonURL: strings.TrimRight(horizonURL, "/"),
		passphrase: passphrase,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// WithHTTPClient overrides the transport, used by tests with httptest.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

type horizonAccount struct {
	Sequence string `json:"sequence"`
	Balances []struct {
		Balance   string `json:"balance"`
		AssetType string `json:"asset_type"`
	} `json:"balances"`
}

func (c *Client) loadAccount(ctx context.Context, address string) (*horizonAccount, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.horizonURL+"/accounts/"+url.PathEscape(address), nil)
	if err != nil {
		return nil, false, fmt.Errorf("build account request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("load account: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("load account: horizon returned %d", resp.StatusCode)
	}

	var acct horizonAccount
	if err := json.NewDecoder(resp.Body).Decode(&acct); err != nil {
		return nil, false, fmt.Errorf("decode account: %w", err)
	}
	return &acct, true, nil
}

// GetBalance returns the native XLM balance, zero when the account is
// not funded yet.
func (c *Client) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	acct, found, err := c.loadAccount(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		return decimal.Zero, nil
	}

	for _, b := range acct.Balances {
		if b.AssetType == "native" {
			bal, err := decimal.NewFromString(b.Balance)
			if err != nil {
				return decimal.Zero, fmt.Errorf("parse balance %q: %w", b.Balance, err)
			}
			return bal, nil
		}
	}
	return decimal.Zero, nil
}

// BuildPayment fetches the sender's current sequence number and returns
// the unsigned envelope the wallet will sign.
func (c *Client) BuildPayment(ctx context.Context, from, to string, amount decimal.Decimal) (*UnsignedPayment, error) {
	acct, found, err := c.loadAccount(ctx, from)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrAccountNotFunded
	}

	seq, err := strconv.ParseInt(acct.Sequence, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse sequence %q: %w", acct.Sequence, err)
	}

	return &UnsignedPayment{
		SourceAccount:     from,
		Sequence:          strconv.FormatInt(seq+1, 10),
		Destination:       to,
		Amount:            amount,
		FeeStroops:        BaseFeeStroops,
		Memo:              TipMemo,
		TimeoutSeconds:    TxTimeoutSeconds,
		NetworkPassphrase: c.passphrase,
	}, nil
}

type horizonTxResponse struct {
	Hash          string `json:"hash"`
	SourceAccount string `json:"source_account"`
	Extras        struct {
		ResultCodes struct {
			Transaction string   `json:"transaction"`
			Operations  []string `json:"operations"`
		} `json:"result_codes"`
	} `json:"extras"`
}

// Submit posts the signed XDR to Horizon. Rejections surface the result
// codes verbatim; retrying is the user's decision, never the client's.
func (c *Client) Submit(ctx context.Context, signedXDR string) (*SubmitResult, error) {
	form := url.Values{"tx": {signedXDR}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.horizonURL+"/transactions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit transaction: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read submit response: %w", err)
	}

	var tx horizonTxResponse
	if err := json.Unmarshal(body, &tx); err != nil {
		return nil, fmt.Errorf("decode submit response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if tx.Extras.ResultCodes.Transaction != "" {
			return nil, &SubmissionError{
				TransactionCode: tx.Extras.ResultCodes.Transaction,
				OperationCodes:  tx.Extras.ResultCodes.Operations,
			}
		}
		return nil, fmt.Errorf("submit transaction: horizon returned %d", resp.StatusCode)
	}

	return &SubmitResult{Hash: tx.Hash, SourceAccount: tx.SourceAccount}, nil
}

var _ Ledger = (*Client)(nil)
