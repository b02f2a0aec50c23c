// Package offchain builds unsigned transactions without a connection to a node.
//
// Callers describe who signs, who receives and which assets move; the builders turn that
// into a transaction ready for the fulfillment engine in package transaction.
package offchain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/planetmint/planetmint-driver-go/internal/condition"
	"github.com/planetmint/planetmint-driver-go/internal/transaction"
)

// Keys is an ordered list of base58 public keys.
type Keys []string

// Key is a single public key.
func Key(publicKey string) Keys { return Keys{publicKey} }

// KeysOf lists several public keys that act together.
func KeysOf(publicKeys ...string) Keys { return Keys(publicKeys) }

// Recipient receives Amount shares held jointly by PublicKeys.
type Recipient struct {
	PublicKeys []string `json:"public_keys"`
	Amount     uint64   `json:"amount"`
}

// Recipients is an ordered list of output groups, one output per entry.
type Recipients []Recipient

// ToKey sends one share to a single key.
func ToKey(publicKey string) Recipients {
	return Recipients{{PublicKeys: []string{publicKey}, Amount: 1}}
}

// ToKeys sends one share held jointly by all publicKeys.
func ToKeys(publicKeys ...string) Recipients {
	return Recipients{{PublicKeys: append([]string(nil), publicKeys...), Amount: 1}}
}

// ToShares lists the output groups explicitly.
func ToShares(groups ...Recipient) Recipients { return Recipients(groups) }

// AssetSpec names an asset for a builder. Exactly one field is expected:
// ID references the transaction that minted an existing asset, CID is an already
// addressed payload and Payload is content addressed by the builder.
type AssetSpec struct {
	ID      string `json:"id,omitempty"`
	CID     string `json:"cid,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// AssetID references an existing asset.
func AssetID(id string) AssetSpec { return AssetSpec{ID: id} }

// AssetCID mints an asset from an already computed content address.
func AssetCID(cid string) AssetSpec { return AssetSpec{CID: cid} }

// AssetPayload mints an asset from payload.
func AssetPayload(payload any) AssetSpec { return AssetSpec{Payload: payload} }

// InputSpec points at an output to spend, with the condition details it was locked under.
type InputSpec struct {
	Fulfillment  condition.Details           `json:"fulfillment"`
	Fulfills     transaction.TransactionLink `json:"fulfills"`
	OwnersBefore []string                    `json:"owners_before"`
}

// InputsFrom returns specs spending the given outputs of a finalized transaction
// (all of them when no index is given).
func InputsFrom(tx *transaction.Transaction, outputIndices ...int) ([]InputSpec, error) {
	inputs, err := tx.ToInputs(outputIndices...)
	if err != nil {
		return nil, err
	}
	specs := make([]InputSpec, len(inputs))
	for i, in := range inputs {
		specs[i] = InputSpec{
			Fulfillment:  *in.Fulfillment.Details,
			Fulfills:     *in.Fulfills,
			OwnersBefore: in.OwnersBefore,
		}
	}
	return specs, nil
}

// CreateArgs are the arguments of PrepareCreate.
type CreateArgs struct {
	Signers    Keys
	Recipients Recipients
	Asset      *AssetSpec
	Metadata   any
}

// TransferArgs are the arguments of PrepareTransfer.
type TransferArgs struct {
	Inputs     []InputSpec
	Recipients Recipients
	AssetID    string
	Metadata   any
}

// ComposeArgs are the arguments of PrepareCompose.
type ComposeArgs struct {
	Inputs     []InputSpec
	Recipients Recipients
	Assets     []AssetSpec
	Metadata   any
}

// DecomposeArgs are the arguments of PrepareDecompose.
// Assets[0] is the composed asset being split, followed by one component per recipient.
type DecomposeArgs struct {
	Inputs     []InputSpec
	Recipients Recipients
	Assets     []AssetSpec
	Metadata   any
}

// Args is the single-entry form accepted by Prepare.
// Arguments that do not apply to the chosen operation are ignored.
// Metadata is raw JSON so its number literals reach the canonical form unchanged.
type Args struct {
	Operation  string          `json:"operation"`
	Signers    Keys            `json:"signers,omitempty"`
	Recipients Recipients      `json:"recipients,omitempty"`
	Assets     []AssetSpec     `json:"assets,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	Inputs     []InputSpec     `json:"inputs,omitempty"`
}

// ParseArgs decodes an argument document. Numbers inside asset payloads are kept as
// json.Number so the content address is computed over the literals as written.
func ParseArgs(data []byte) (Args, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var args Args
	if err := dec.Decode(&args); err != nil {
		return Args{}, fmt.Errorf("failed to decode arguments: %w", err)
	}
	if dec.More() {
		return Args{}, fmt.Errorf("failed to decode arguments: trailing data")
	}
	return args, nil
}
