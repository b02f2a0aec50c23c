package driver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/planetmint/planetmint-driver-go/internal/offchain"
	"github.com/planetmint/planetmint-driver-go/internal/transaction"
	"github.com/planetmint/planetmint-driver-go/internal/transport"
)

const (
	alicePrivateKey = "CT6nWhSyE7dF2znpx3vwXuceSrmeMy9ChBfi9U92HMSP"
	alicePublicKey  = "G7J7bXF8cqSrjrxUKwcF8tCriEKC5CgyPHmtGwUi4BK3"
)

// recorder answers every request with body and remembers the last request
type recorder struct {
	mu    sync.Mutex
	last  *http.Request
	calls atomic.Int32
	body  string
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec.mu.Lock()
	rec.last = r.Clone(context.Background())
	rec.mu.Unlock()
	rec.calls.Add(1)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(rec.body))
}

func (rec *recorder) lastRequest() *http.Request {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.last
}

func newTestDriver(t *testing.T, body string) (*Driver, *recorder) {
	t.Helper()
	rec := &recorder{body: body}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)
	return NewFromNodes(transport.Endpoints(srv.URL), nil, nil), rec
}

func signedCreate(t *testing.T) *transaction.Transaction {
	t.Helper()
	d := New(nil)
	tx, err := d.Transactions.Prepare(offchain.Args{Signers: offchain.Key(alicePublicKey)})
	if err != nil {
		t.Fatalf("Prepare() returned error: %v", err)
	}
	signed, err := d.Transactions.Fulfill(tx, alicePrivateKey)
	if err != nil {
		t.Fatalf("Fulfill() returned error: %v", err)
	}
	return signed
}

func TestEndpointPaths(t *testing.T) {
	spent := false
	tests := []struct {
		name      string
		body      string
		call      func(d *Driver) error
		wantPath  string
		wantQuery string
	}{
		{"info", `{}`, func(d *Driver) error { _, err := d.Info(context.Background(), nil); return err }, "/", ""},
		{"api info", `{}`, func(d *Driver) error { _, err := d.APIInfo(context.Background(), nil); return err }, "/api/v1", ""},
		{"transactions get", `[]`, func(d *Driver) error {
			_, err := d.Transactions.Get(context.Background(), []string{"a", "b"}, transaction.OperationTransfer, nil)
			return err
		}, "/api/v1/transactions/", "asset_ids=a%2Cb&operation=TRANSFER"},
		{"outputs unspent", `[{"transaction_id":"t","output_index":1}]`, func(d *Driver) error {
			_, err := d.Outputs.Get(context.Background(), alicePublicKey, &spent, nil)
			return err
		}, "/api/v1/outputs/", "public_key=" + alicePublicKey + "&spent=false"},
		{"outputs all", `[]`, func(d *Driver) error {
			_, err := d.Outputs.Get(context.Background(), alicePublicKey, nil, nil)
			return err
		}, "/api/v1/outputs/", "public_key=" + alicePublicKey},
		{"blocks get", `[3]`, func(d *Driver) error { _, err := d.Blocks.Get(context.Background(), "tx", nil); return err }, "/api/v1/blocks/", "transaction_id=tx"},
		{"blocks retrieve", `{"height":3,"transactions":[]}`, func(d *Driver) error {
			_, err := d.Blocks.Retrieve(context.Background(), 3, nil)
			return err
		}, "/api/v1/blocks/3", ""},
		{"assets", `[]`, func(d *Driver) error { _, err := d.Assets.Get(context.Background(), "bafk", 5, nil); return err }, "/api/v1/assets/bafk", "limit=5"},
		{"metadata", `[]`, func(d *Driver) error { _, err := d.Metadata.Get(context.Background(), "bafk", 0, nil); return err }, "/api/v1/metadata/bafk", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, rec := newTestDriver(t, tt.body)
			if err := tt.call(d); err != nil {
				t.Fatalf("call returned error: %v", err)
			}
			if rec.lastRequest().URL.Path != tt.wantPath {
				t.Errorf("path = %s, want %s", rec.lastRequest().URL.Path, tt.wantPath)
			}
			if rec.lastRequest().URL.RawQuery != tt.wantQuery {
				t.Errorf("query = %s, want %s", rec.lastRequest().URL.RawQuery, tt.wantQuery)
			}
		})
	}
}

func TestSendModes(t *testing.T) {
	tx := signedCreate(t)
	body, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("json.Marshal() returned error: %v", err)
	}

	tests := []struct {
		mode string
		send func(d *Driver) (*transaction.Transaction, error)
	}{
		{"async", func(d *Driver) (*transaction.Transaction, error) { return d.Transactions.SendAsync(context.Background(), tx, nil) }},
		{"sync", func(d *Driver) (*transaction.Transaction, error) { return d.Transactions.SendSync(context.Background(), tx, nil) }},
		{"commit", func(d *Driver) (*transaction.Transaction, error) { return d.Transactions.SendCommit(context.Background(), tx, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			d, rec := newTestDriver(t, string(body))
			sent, err := tt.send(d)
			if err != nil {
				t.Fatalf("send returned error: %v", err)
			}
			if rec.lastRequest().Method != http.MethodPost || rec.lastRequest().URL.Query().Get("mode") != tt.mode {
				t.Errorf("request = %s %s", rec.lastRequest().Method, rec.lastRequest().URL)
			}
			if sent.TxID() != tx.TxID() {
				t.Errorf("sent id = %s, want %s", sent.TxID(), tx.TxID())
			}
		})
	}
}

func TestSendRejectsUnfulfilled(t *testing.T) {
	d, rec := newTestDriver(t, `{}`)
	tx, err := d.Transactions.Prepare(offchain.Args{Signers: offchain.Key(alicePublicKey)})
	if err != nil {
		t.Fatalf("Prepare() returned error: %v", err)
	}
	if _, err := d.Transactions.SendCommit(context.Background(), tx, nil); !transaction.HasCode(err, transaction.ErrCodeInvalidTransaction) {
		t.Errorf("SendCommit() error = %v, want invalid_transaction", err)
	}
	if rec.calls.Load() != 0 {
		t.Errorf("unfulfilled transaction reached the node")
	}
}

func TestRetrieveIsCached(t *testing.T) {
	tx := signedCreate(t)
	body, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("json.Marshal() returned error: %v", err)
	}
	d, rec := newTestDriver(t, string(body))

	for range 3 {
		got, err := d.Transactions.Retrieve(context.Background(), tx.TxID(), nil)
		if err != nil {
			t.Fatalf("Retrieve() returned error: %v", err)
		}
		if got.TxID() != tx.TxID() {
			t.Errorf("Retrieve() id = %s, want %s", got.TxID(), tx.TxID())
		}
		// callers may modify what they get back
		got.Outputs[0].Amount = "999"
	}
	if n := rec.calls.Load(); n != 1 {
		t.Errorf("node called %d times, want 1", n)
	}
	if rec.lastRequest().URL.Path != "/api/v1/transactions/"+tx.TxID() {
		t.Errorf("path = %s", rec.lastRequest().URL.Path)
	}
}

func TestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	d := NewFromNodes(transport.Endpoints(srv.URL), nil, nil)

	_, err := d.Transactions.Retrieve(context.Background(), "missing", nil)
	if !errors.Is(err, transport.ErrNotFound) {
		t.Errorf("Retrieve() error = %v, want ErrNotFound", err)
	}
}
