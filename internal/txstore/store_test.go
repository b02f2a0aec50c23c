package txstore

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/planetmint/planetmint-driver-go/internal/crypto"
	"github.com/planetmint/planetmint-driver-go/internal/offchain"
	"github.com/planetmint/planetmint-driver-go/internal/transaction"
)

const (
	alicePrivateKey = "CT6nWhSyE7dF2znpx3vwXuceSrmeMy9ChBfi9U92HMSP"
	alicePublicKey  = "G7J7bXF8cqSrjrxUKwcF8tCriEKC5CgyPHmtGwUi4BK3"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "txs"))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fulfilled(t *testing.T, tx *transaction.Transaction, err error, keys ...string) *transaction.Transaction {
	t.Helper()
	if err != nil {
		t.Fatalf("prepare returned error: %v", err)
	}
	signed, err := transaction.Fulfill(tx, keys)
	if err != nil {
		t.Fatalf("Fulfill() returned error: %v", err)
	}
	return signed
}

func createFor(t *testing.T, payload string) *transaction.Transaction {
	t.Helper()
	tx, err := offchain.PrepareCreate(offchain.CreateArgs{
		Signers: offchain.Key(alicePublicKey),
		Asset:   &offchain.AssetSpec{Payload: payload},
	})
	return fulfilled(t, tx, err, alicePrivateKey)
}

func transferTo(t *testing.T, from *transaction.Transaction, to string) *transaction.Transaction {
	t.Helper()
	inputs, err := offchain.InputsFrom(from)
	if err != nil {
		t.Fatalf("InputsFrom() returned error: %v", err)
	}
	assetID := from.TxID()
	if from.Operation != transaction.OperationCreate {
		assetID = from.Assets[0].ID
	}
	tx, err := offchain.PrepareTransfer(offchain.TransferArgs{Inputs: inputs, Recipients: offchain.ToKey(to), AssetID: assetID})
	return fulfilled(t, tx, err, alicePrivateKey)
}

func TestPutGet(t *testing.T) {
	s := openStore(t)
	tx := createFor(t, "one")

	if err := s.Put(tx); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}
	// identical content is accepted again
	if err := s.Put(tx); err != nil {
		t.Fatalf("second Put() returned error: %v", err)
	}

	got, err := s.Get(tx.TxID())
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	want, _ := transaction.Serialize(tx)
	have, _ := transaction.Serialize(got)
	if !bytes.Equal(want, have) {
		t.Errorf("Get() returned different content:\n%s\n%s", have, want)
	}

	ok, err := s.Has(tx.TxID())
	if err != nil || !ok {
		t.Errorf("Has() = %v, %v", ok, err)
	}
	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestPutRejects(t *testing.T) {
	s := openStore(t)

	unsigned, err := offchain.PrepareCreate(offchain.CreateArgs{Signers: offchain.Key(alicePublicKey)})
	if err != nil {
		t.Fatalf("PrepareCreate() returned error: %v", err)
	}
	if err := s.Put(unsigned); !transaction.HasCode(err, transaction.ErrCodeInvalidTransaction) {
		t.Errorf("Put(unsigned) error = %v, want invalid_transaction", err)
	}

	tampered := createFor(t, "two")
	tampered.Outputs[0].Amount = "5"
	if err := s.Put(tampered); !transaction.HasCode(err, transaction.ErrCodeInvalidTransaction) {
		t.Errorf("Put(tampered) error = %v, want invalid_transaction", err)
	}
}

func TestDoubleSpend(t *testing.T) {
	s := openStore(t)
	bob, err := crypto.GenerateKeypair(bytes.Repeat([]byte{2}, 32))
	if err != nil {
		t.Fatalf("GenerateKeypair() returned error: %v", err)
	}

	create := createFor(t, "coin")
	first := transferTo(t, create, bob.PublicKey)
	second := transferTo(t, create, alicePublicKey)

	for _, tx := range []*transaction.Transaction{create, first} {
		if err := s.Put(tx); err != nil {
			t.Fatalf("Put() returned error: %v", err)
		}
	}
	if err := s.Put(second); !errors.Is(err, ErrDoubleSpend) {
		t.Fatalf("Put(second spend) error = %v, want ErrDoubleSpend", err)
	}

	spender, err := s.SpentBy(transaction.TransactionLink{TransactionID: create.TxID(), OutputIndex: 0})
	if err != nil || spender != first.TxID() {
		t.Errorf("SpentBy() = %s, %v, want %s", spender, err, first.TxID())
	}

	// deleting the spender frees the output
	if err := s.Delete(first.TxID()); err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	if err := s.Put(second); err != nil {
		t.Errorf("Put(second) after delete returned error: %v", err)
	}
}

func TestOutputsAndAssets(t *testing.T) {
	s := openStore(t)
	bob, err := crypto.GenerateKeypair(bytes.Repeat([]byte{2}, 32))
	if err != nil {
		t.Fatalf("GenerateKeypair() returned error: %v", err)
	}

	create := createFor(t, "asset")
	transfer := transferTo(t, create, bob.PublicKey)
	other := createFor(t, "other")
	for _, tx := range []*transaction.Transaction{create, transfer, other} {
		if err := s.Put(tx); err != nil {
			t.Fatalf("Put() returned error: %v", err)
		}
	}

	spent, unspent := true, false
	tests := []struct {
		name  string
		key   string
		spent *bool
		want  int
	}{
		{"alice all", alicePublicKey, nil, 2},
		{"alice spent", alicePublicKey, &spent, 1},
		{"alice unspent", alicePublicKey, &unspent, 1},
		{"bob unspent", bob.PublicKey, &unspent, 1},
		{"nobody", "unknown", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links, err := s.Outputs(tt.key, tt.spent)
			if err != nil {
				t.Fatalf("Outputs() returned error: %v", err)
			}
			if len(links) != tt.want {
				t.Errorf("Outputs() = %v, want %d links", links, tt.want)
			}
		})
	}

	txs, err := s.ByAsset(create.TxID(), "")
	if err != nil {
		t.Fatalf("ByAsset() returned error: %v", err)
	}
	if len(txs) != 2 {
		t.Errorf("ByAsset() returned %d transactions, want 2", len(txs))
	}
	txs, err = s.ByAsset(create.TxID(), transaction.OperationTransfer)
	if err != nil || len(txs) != 1 || txs[0].TxID() != transfer.TxID() {
		t.Errorf("ByAsset(TRANSFER) = %v, %v", txs, err)
	}

	all, err := s.List()
	if err != nil {
		t.Fatalf("List() returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() returned %d transactions, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].TxID() >= all[i].TxID() {
			t.Errorf("List() not ordered by id")
		}
	}
}

func TestReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "txs")
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	tx := createFor(t, "persist")
	if err := s.Put(tx); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() returned error: %v", err)
	}
	if _, err := s.Get(tx.TxID()); !errors.Is(err, ErrClosed) {
		t.Errorf("Get() after Close error = %v, want ErrClosed", err)
	}
	if err := s.Ping(); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping() after Close error = %v, want ErrClosed", err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer s.Close()
	if err := s.Ping(); err != nil {
		t.Errorf("Ping() after reopen returned error: %v", err)
	}
	if ok, err := s.Has(tx.TxID()); err != nil || !ok {
		t.Errorf("Has() after reopen = %v, %v", ok, err)
	}
}
