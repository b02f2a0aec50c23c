package transaction

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestSerializeIsCanonical(t *testing.T) {
	tx := unsignedCreate(t, []string{alicePublicKey}, []string{alicePublicKey}, 1)
	tx.Metadata = json.RawMessage(`{"z": 1, "a": "ü"}`)

	first, err := Serialize(tx)
	if err != nil {
		t.Fatalf("Serialize() returned error: %v", err)
	}

	var decoded Transaction
	if err := json.Unmarshal(first, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() returned error: %v", err)
	}
	second, err := Serialize(&decoded)
	if err != nil {
		t.Fatalf("Serialize() returned error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("Serialize() not stable across a round trip:\n%s\n%s", first, second)
	}
	if !bytes.Contains(first, []byte(`"metadata":{"a":"ü","z":1}`)) {
		t.Errorf("metadata not canonical: %s", first)
	}
	if bytes.ContainsAny(first, " \n") {
		t.Errorf("canonical form contains whitespace: %s", first)
	}
}

func TestComputeIDIgnoresCurrentID(t *testing.T) {
	tx := unsignedCreate(t, []string{alicePublicKey}, []string{alicePublicKey}, 1)

	want, err := ComputeID(tx)
	if err != nil {
		t.Fatalf("ComputeID() returned error: %v", err)
	}
	if len(want) != 64 {
		t.Errorf("ComputeID() = %s, want 64 hex chars", want)
	}

	bogus := "not-the-id"
	tx.ID = &bogus
	got, err := ComputeID(tx)
	if err != nil {
		t.Fatalf("ComputeID() returned error: %v", err)
	}
	if got != want {
		t.Errorf("ComputeID() = %s with id set, want %s", got, want)
	}
	if *tx.ID != bogus {
		t.Errorf("ComputeID() modified the transaction")
	}
}

func TestSigningMessageIgnoresFulfillments(t *testing.T) {
	tx := unsignedCreate(t, []string{alicePublicKey}, []string{alicePublicKey}, 1)
	unsigned, err := SigningMessage(tx, tx.Inputs[0])
	if err != nil {
		t.Fatalf("SigningMessage() returned error: %v", err)
	}

	signed := mustFulfill(t, tx, alicePrivateKey)
	after, err := SigningMessage(signed, signed.Inputs[0])
	if err != nil {
		t.Fatalf("SigningMessage() returned error: %v", err)
	}
	if !bytes.Equal(unsigned, after) {
		t.Errorf("signing message changed after fulfillment")
	}

	spending := signed.Inputs[0]
	spending.Fulfills = &TransactionLink{TransactionID: signed.TxID(), OutputIndex: 0}
	linked, err := SigningMessage(signed, spending)
	if err != nil {
		t.Fatalf("SigningMessage() returned error: %v", err)
	}
	if bytes.Equal(linked, after) {
		t.Errorf("signing message does not depend on the spent output")
	}
}
