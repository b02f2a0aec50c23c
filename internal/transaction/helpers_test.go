package transaction

import (
	"bytes"
	"testing"

	"github.com/planetmint/planetmint-driver-go/internal/crypto"
)

const (
	alicePrivateKey = "CT6nWhSyE7dF2znpx3vwXuceSrmeMy9ChBfi9U92HMSP"
	alicePublicKey  = "G7J7bXF8cqSrjrxUKwcF8tCriEKC5CgyPHmtGwUi4BK3"
)

// seededKeypair returns a deterministic key pair for fill
func seededKeypair(t *testing.T, fill byte) *crypto.Keypair {
	t.Helper()
	kp, err := crypto.GenerateKeypair(bytes.Repeat([]byte{fill}, 32))
	if err != nil {
		t.Fatalf("GenerateKeypair() returned error: %v", err)
	}
	return kp
}

// unsignedCreate builds an unsigned CREATE issued by issuers with a single output to recipients
func unsignedCreate(t *testing.T, issuers, recipients []string, amount uint64) *Transaction {
	t.Helper()
	out, err := NewOutput(recipients, amount)
	if err != nil {
		t.Fatalf("NewOutput() returned error: %v", err)
	}
	in := Input{OwnersBefore: issuers}
	f, err := inputFulfillment(0, in)
	if err != nil {
		t.Fatalf("inputFulfillment() returned error: %v", err)
	}
	details := f.Details()
	in.Fulfillment = InputFulfillment{Details: &details}

	return &Transaction{
		Assets:    []Asset{AssetData("bafkreihdwdcefgh4dqkjv67uzcmw7ojee6xedzdetojuzjevtenxquvyku")},
		Inputs:    []Input{in},
		Metadata:  nil,
		Operation: OperationCreate,
		Outputs:   []Output{out},
		Version:   Version,
	}
}

func mustFulfill(t *testing.T, tx *Transaction, keys ...string) *Transaction {
	t.Helper()
	signed, err := Fulfill(tx, keys)
	if err != nil {
		t.Fatalf("Fulfill() returned error: %v", err)
	}
	return signed
}
