package stellar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const funded = "GBMQJ3G5LDWODZKUUQWGGT6NIKMM7KL5NLHVIG53WLNLWB27Z4AKH3F4"

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, TestnetPassphrase).WithHTTPClient(srv.Client())
}

func accountHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, funded) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status": 404}`))
			return
		}
		w.Write([]byte(`{
			"sequence": "4113023891406848",
			"balances": [
				{"balance": "120.5000000", "asset_type": "native"},
				{"balance": "3.0000000", "asset_type": "credit_alphanum4"}
			]
		}`))
	}
}

func TestGetBalance(t *testing.T) {
	c := testClient(t, accountHandler(t))

	bal, err := c.GetBalance(context.Background(), funded)
	if err != nil {
		t.Fatal(err)
	}
	if bal.String() != "120.5" {
		t.Errorf("balance = %s, want 120.5", bal)
	}
}

func TestGetBalanceUnfundedIsZero(t *testing.T) {
	c := testClient(t, accountHandler(t))

	bal, err := c.GetBalance(context.Background(), "GUNFUNDED")
	if err != nil {
		t.Fatalf("unfunded account must not error: %v", err)
	}
	if !bal.IsZero() {
		t.Errorf("balance = %s, want 0", bal)
	}
}

func TestBuildPayment(t *testing.T) {
	c := testClient(t, accountHandler(t))

	env, err := c.BuildPayment(context.Background(), funded, "GCREATOR", decimal.NewFromInt(5))
	if err != nil {
		t.Fatal(err)
	}
	if env.Sequence != "4113023891406849" {
		t.Errorf("sequence = %s, want current+1", env.Sequence)
	}
	if env.Memo != TipMemo || env.TimeoutSeconds != TxTimeoutSeconds {
		t.Errorf("envelope defaults wrong: %+v", env)
	}
	if env.NetworkPassphrase != TestnetPassphrase {
		t.Errorf("passphrase = %q", env.NetworkPassphrase)
	}
}

func TestBuildPaymentUnfunded(t *testing.T) {
	c := testClient(t, accountHandler(t))

	_, err := c.BuildPayment(context.Background(), "GUNFUNDED", "GCREATOR", decimal.NewFromInt(5))
	if !errors.Is(err, ErrAccountNotFunded) {
		t.Fatalf("expected ErrAccountNotFunded, got %v", err)
	}
}

func TestSubmit(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transactions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.FormValue("tx") != "SIGNEDXDR" {
			t.Errorf("tx form value = %q", r.FormValue("tx"))
		}
		w.Write([]byte(`{"hash": "abcd1234", "source_account": "` + funded + `"}`))
	})

	res, err := c.Submit(context.Background(), "SIGNEDXDR")
	if err != nil {
		t.Fatal(err)
	}
	if res.Hash != "abcd1234" || res.SourceAccount != funded {
		t.Errorf("result = %+v", res)
	}
}

func TestSubmitRejected(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{
			"extras": {"result_codes": {"transaction": "tx_failed", "operations": ["op_underfunded"]}}
		}`))
	})

	_, err := c.Submit(context.Background(), "SIGNEDXDR")
	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if subErr.TransactionCode != "tx_failed" || subErr.OperationCodes[0] != "op_underfunded" {
		t.Errorf("result codes not surfaced: %+v", subErr)
	}
}

func TestShortenAddress(t *testing.T) {
	if got := ShortenAddress(funded); got != "GBMQ...H3F4" {
		t.Errorf("ShortenAddress = %q", got)
	}
	if got := ShortenAddress(""); got != "" {
		t.Errorf("empty address = %q", got)
	}
}

func TestFakeLedger(t *testing.T) {
	f := NewFakeLedger()
	f.Balances[funded] = decimal.NewFromInt(100)

	ctx := context.Background()
	if bal, _ := f.GetBalance(ctx, funded); bal.String() != "100" {
		t.Errorf("fake balance = %s", bal)
	}
	if _, err := f.BuildPayment(ctx, "GUNKNOWN", "GCREATOR", decimal.NewFromInt(1)); !errors.Is(err, ErrAccountNotFunded) {
		t.Errorf("expected ErrAccountNotFunded, got %v", err)
	}

	res, err := f.Submit(ctx, "whatever")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Hash) != 64 {
		t.Errorf("fake hash length = %d, want 64", len(res.Hash))
	}
}
