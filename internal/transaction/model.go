package transaction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/planetmint/planetmint-driver-go/internal/condition"
)

// Version is the transaction model version written by the builders.
const Version = "3.0"

// MaxAmount is the largest amount a single output may hold.
const MaxAmount uint64 = 9_000_000_000_000_000_000

// Transaction is the wire form of a ledger transaction.
// ID stays nil until every input is fulfilled.
type Transaction struct {
	Assets    []Asset         `json:"assets"`
	ID        *string         `json:"id"`
	Inputs    []Input         `json:"inputs"`
	Metadata  json.RawMessage `json:"metadata"`
	Operation Operation       `json:"operation"`
	Outputs   []Output        `json:"outputs"`
	Script    json.RawMessage `json:"script,omitempty"`
	Version   string          `json:"version"`
}

// Output assigns Amount shares of the asset to PublicKeys under Condition.
type Output struct {
	Amount     string              `json:"amount"`
	Condition  condition.Condition `json:"condition"`
	PublicKeys []string            `json:"public_keys"`
}

// Input spends the output referenced by Fulfills (nil for CREATE).
type Input struct {
	Fulfillment  InputFulfillment `json:"fulfillment"`
	Fulfills     *TransactionLink `json:"fulfills"`
	OwnersBefore []string         `json:"owners_before"`
}

// TransactionLink points at an output of a previous transaction.
type TransactionLink struct {
	OutputIndex   int    `json:"output_index"`
	TransactionID string `json:"transaction_id"`
}

func (l TransactionLink) String() string {
	return l.TransactionID + strconv.Itoa(l.OutputIndex)
}

// InputFulfillment is null, the condition details of an unsigned input,
// or the serialized fulfillment of a signed one.
type InputFulfillment struct {
	Details *condition.Details
	URI     string
}

// Signed reports whether the input carries a serialized fulfillment.
func (f InputFulfillment) Signed() bool { return f.URI != "" }

func (f InputFulfillment) MarshalJSON() ([]byte, error) {
	switch {
	case f.URI != "":
		return json.Marshal(f.URI)
	case f.Details != nil:
		return json.Marshal(f.Details)
	}
	return []byte("null"), nil
}

func (f *InputFulfillment) UnmarshalJSON(data []byte) error {
	*f = InputFulfillment{}
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		return json.Unmarshal(trimmed, &f.URI)
	}
	var details condition.Details
	if err := json.Unmarshal(trimmed, &details); err != nil {
		return fmt.Errorf("fulfillment must be null, a string or condition details: %w", err)
	}
	f.Details = &details
	return nil
}

// Asset is either a reference to the transaction that minted an asset ({"id": ...})
// or a freshly minted content address ({"data": cid-or-null}).
type Asset struct {
	ID   string
	Data *string
}

// AssetRef references an existing asset by the id of the transaction that minted it.
func AssetRef(id string) Asset { return Asset{ID: id} }

// AssetData mints an asset with the given content address.
func AssetData(cid string) Asset { return Asset{Data: &cid} }

// IsRef reports whether the asset references an existing asset.
func (a Asset) IsRef() bool { return a.ID != "" }

func (a Asset) MarshalJSON() ([]byte, error) {
	if a.ID != "" {
		return json.Marshal(struct {
			ID string `json:"id"`
		}{a.ID})
	}
	return json.Marshal(struct {
		Data *string `json:"data"`
	}{a.Data})
}

func (a *Asset) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   *string `json:"id"`
		Data *string `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("asset must be {\"id\": ...} or {\"data\": ...}: %w", err)
	}
	*a = Asset{Data: raw.Data}
	if raw.ID != nil {
		a.ID = *raw.ID
	}
	return nil
}

// NewOutput builds an output holding amount shares locked to publicKeys.
func NewOutput(publicKeys []string, amount uint64) (Output, error) {
	if len(publicKeys) == 0 {
		return Output{}, NewInvalidTransactionError("an output needs at least one public key")
	}
	if amount < 1 {
		return Output{}, NewInvalidAmountError("amount must be greater than 0")
	}
	if amount > MaxAmount {
		return Output{}, NewInvalidAmountError(fmt.Sprintf("amount must not exceed %d", MaxAmount))
	}

	cond, err := condition.ForOwners(publicKeys)
	if err != nil {
		return Output{}, err
	}
	return Output{
		Amount:     strconv.FormatUint(amount, 10),
		Condition:  cond,
		PublicKeys: append([]string(nil), publicKeys...),
	}, nil
}

// AmountValue parses the decimal amount.
func (o Output) AmountValue() (uint64, error) {
	n, err := strconv.ParseUint(o.Amount, 10, 64)
	if err != nil {
		return 0, NewInvalidAmountError(fmt.Sprintf("amount %q is not a positive integer", o.Amount))
	}
	return n, nil
}

// Finalized reports whether the id has been computed.
func (tx *Transaction) Finalized() bool { return tx.ID != nil }

// TxID returns the id or "" when the transaction is not finalized.
func (tx *Transaction) TxID() string {
	if tx.ID == nil {
		return ""
	}
	return *tx.ID
}

// ToInputs returns unsigned inputs spending the given outputs of tx (all outputs when none are given).
// tx must be finalized.
func (tx *Transaction) ToInputs(indices ...int) ([]Input, error) {
	if tx.ID == nil {
		return nil, NewInvalidTransactionError("cannot spend outputs of a transaction without an id")
	}
	if len(indices) == 0 {
		indices = make([]int, len(tx.Outputs))
		for i := range indices {
			indices[i] = i
		}
	}

	inputs := make([]Input, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(tx.Outputs) {
			return nil, NewInvalidTransactionError(fmt.Sprintf("output index %d out of range (transaction has %d outputs)", idx, len(tx.Outputs)))
		}
		out := tx.Outputs[idx]
		details := out.Condition.Details
		inputs = append(inputs, Input{
			Fulfillment:  InputFulfillment{Details: &details},
			Fulfills:     &TransactionLink{TransactionID: *tx.ID, OutputIndex: idx},
			OwnersBefore: append([]string(nil), out.PublicKeys...),
		})
	}
	return inputs, nil
}

// Clone returns a deep copy so callers and the engine never share mutable state.
func (tx *Transaction) Clone() *Transaction {
	c := &Transaction{
		Operation: tx.Operation,
		Version:   tx.Version,
		Metadata:  cloneRaw(tx.Metadata),
		Script:    cloneRaw(tx.Script),
	}
	if tx.ID != nil {
		id := *tx.ID
		c.ID = &id
	}
	if tx.Assets != nil {
		c.Assets = make([]Asset, len(tx.Assets))
		for i, a := range tx.Assets {
			c.Assets[i] = Asset{ID: a.ID}
			if a.Data != nil {
				d := *a.Data
				c.Assets[i].Data = &d
			}
		}
	}
	if tx.Inputs != nil {
		c.Inputs = make([]Input, len(tx.Inputs))
		for i, in := range tx.Inputs {
			c.Inputs[i] = in.clone()
		}
	}
	if tx.Outputs != nil {
		c.Outputs = make([]Output, len(tx.Outputs))
		for i, out := range tx.Outputs {
			out.PublicKeys = append([]string(nil), out.PublicKeys...)
			c.Outputs[i] = out
		}
	}
	return c
}

func (in Input) clone() Input {
	c := Input{
		Fulfillment:  InputFulfillment{URI: in.Fulfillment.URI},
		OwnersBefore: append([]string(nil), in.OwnersBefore...),
	}
	if in.Fulfillment.Details != nil {
		d := *in.Fulfillment.Details
		c.Fulfillment.Details = &d
	}
	if in.Fulfills != nil {
		link := *in.Fulfills
		c.Fulfills = &link
	}
	return c
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}
