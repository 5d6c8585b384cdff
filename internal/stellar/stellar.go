// Package stellar is the ledger collaborator boundary. The core only
// needs three operations from the chain — balance lookup, building an
// unsigned payment, submitting a signed one — and records nothing but
// their final outcome. Signing itself stays in the browser wallet.
package stellar

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Testnet defaults; both are configurable.
const (
	TestnetHorizonURL = "https://horizon-testnet.stellar.org"
	TestnetPassphrase = "Test SDF Network ; September 2015"
)

const (
	// BaseFeeStroops is the per-operation fee offered with each payment.
	BaseFeeStroops = 100
	// TxTimeoutSeconds bounds how long a built transaction stays valid.
	TxTimeoutSeconds = 180
	// TipMemo tags every tip payment on-chain.
	TipMemo = "Stellar Tip Jar"
)

// ErrAccountNotFunded means the sender does not exist on the ledger yet
// (testnet accounts must be funded by friendbot first).
var ErrAccountNotFunded = errors.New("account needs to be funded with testnet XLM first")

// SubmissionError carries Horizon's result codes for a rejected
// transaction, verbatim, for user display.
type SubmissionError struct {
	TransactionCode string
	OperationCodes  []string
}

func (e *SubmissionError) Error() string {
	if len(e.OperationCodes) > 0 {
		return fmt.Sprintf("transaction failed: %s %v", e.TransactionCode, e.OperationCodes)
	}
	return fmt.Sprintf("transaction failed: %s", e.TransactionCode)
}

// UnsignedPayment is the envelope handed to the wallet for signing. The
// page-side SDK turns it into XDR; the server never holds a key.
type UnsignedPayment struct {
	SourceAccount     string          `json:"source_account"`
	Sequence          string          `json:"sequence"`
	Destination       string          `json:"destination"`
	Amount            decimal.Decimal `json:"amount"`
	FeeStroops        int             `json:"fee_stroops"`
	Memo              string          `json:"memo"`
	TimeoutSeconds    int             `json:"timeout_seconds"`
	NetworkPassphrase string          `json:"network_passphrase"`
}

// SubmitResult is the only thing the core ever learns about a payment.
type SubmitResult struct {
	Hash          string `json:"hash"`
	SourceAccount string `json:"from"`
}

// Ledger is the capability the tip jar needs from the chain.
type Ledger interface {
	// GetBalance returns the native XLM balance, zero for unfunded accounts.
	GetBalance(ctx context.Context, address string) (decimal.Decimal, error)
	// BuildPayment prepares an unsigned payment envelope. Fails with
	// ErrAccountNotFunded when the sender is absent from the ledger.
	BuildPayment(ctx context.Context, from, to string, amount decimal.Decimal) (*UnsignedPayment, error)
	// Submit posts a signed transaction and returns its hash, or a
	// *SubmissionError carrying the ledger's result codes.
	Submit(ctx context.Context, signedXDR string) (*SubmitResult, error)
}

// ShortenAddress abbreviates a Stellar public key for display.
func ShortenAddress(address string) string {
	if address == "" {
		return ""
	}
	if len(address) <= 8 {
		return address
	}
	return address[:4] + "..." + address[len(address)-4:]
}

// ExplorerLink builds a stellar.expert testnet link for a transaction.
func ExplorerLink(hash string) string {
	return "https://stellar.expert/explorer/testnet/tx/" + hash
}
