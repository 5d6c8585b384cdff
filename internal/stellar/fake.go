package stellar

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/shopspring/decimal"
)

// FakeLedger is a Ledger double for development and tests: balances come
// from a fixed map and Submit mints a realistic-looking random hash. It
// never reaches the network and must never back the production wire-up.
type FakeLedger struct {
	Balances map[string]decimal.Decimal
	// Source reported for submitted transactions.
	Source string
}

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{Balances: make(map[string]decimal.Decimal)}
}

func (f *FakeLedger) GetBalance(_ context.Context, address string) (decimal.Decimal, error) {
	if bal, ok := f.Balances[address]; ok {
		return bal, nil
	}
	return decimal.Zero, nil
}

func (f *FakeLedger) BuildPayment(_ context.Context, from, to string, amount decimal.Decimal) (*UnsignedPayment, error) {
	if _, ok := f.Balances[from]; !ok {
		return nil, ErrAccountNotFunded
	}
	return &UnsignedPayment{
		SourceAccount:     from,
		Sequence:          "1",
		Destination:       to,
		Amount:            amount,
		FeeStroops:        BaseFeeStroops,
		Memo:              TipMemo,
		TimeoutSeconds:    TxTimeoutSeconds,
		NetworkPassphrase: TestnetPassphrase,
	}, nil
}

func (f *FakeLedger) Submit(_ context.Context, _ string) (*SubmitResult, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return &SubmitResult{Hash: hex.EncodeToString(buf), SourceAccount: f.Source}, nil
}

var _ Ledger = (*FakeLedger)(nil)
