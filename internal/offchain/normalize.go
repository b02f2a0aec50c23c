package offchain

import (
	"encoding/json"
	"fmt"

	"github.com/planetmint/planetmint-driver-go/internal/cidutil"
	"github.com/planetmint/planetmint-driver-go/internal/condition"
	"github.com/planetmint/planetmint-driver-go/internal/transaction"
)

func buildOutputs(recipients Recipients) ([]transaction.Output, error) {
	outputs := make([]transaction.Output, 0, len(recipients))
	for i, r := range recipients {
		out, err := transaction.NewOutput(r.PublicKeys, r.Amount)
		if err != nil {
			return nil, fmt.Errorf("recipient %d: %w", i, err)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// buildInputs turns each spec's declared details into an unsigned placeholder.
func buildInputs(specs []InputSpec) ([]transaction.Input, error) {
	inputs := make([]transaction.Input, 0, len(specs))
	for i, spec := range specs {
		if len(spec.OwnersBefore) == 0 {
			return nil, transaction.NewInvalidTransactionError(fmt.Sprintf("input %d has no owners_before", i))
		}
		if spec.Fulfills.TransactionID == "" {
			return nil, transaction.NewInvalidTransactionError(fmt.Sprintf("input %d does not reference an output", i))
		}
		if _, err := condition.FromDetails(spec.Fulfillment); err != nil {
			return nil, transaction.WrapInvalidFulfillmentError(err, i, "unusable condition details")
		}

		details := spec.Fulfillment
		link := spec.Fulfills
		inputs = append(inputs, transaction.Input{
			Fulfillment:  transaction.InputFulfillment{Details: &details},
			Fulfills:     &link,
			OwnersBefore: append([]string(nil), spec.OwnersBefore...),
		})
	}
	return inputs, nil
}

// buildAsset resolves a spec into its wire form, addressing payloads.
func buildAsset(spec AssetSpec) (transaction.Asset, error) {
	switch {
	case spec.ID != "":
		return transaction.AssetRef(spec.ID), nil
	case spec.CID != "":
		if err := cidutil.Validate(spec.CID); err != nil {
			return transaction.Asset{}, transaction.WrapInvalidTransactionError(err, fmt.Sprintf("asset %q is not a valid CID", spec.CID))
		}
		return transaction.AssetData(spec.CID), nil
	case spec.Payload != nil:
		cid, err := cidutil.Address(spec.Payload)
		if err != nil {
			return transaction.Asset{}, transaction.WrapInvalidTransactionError(err, "failed to address asset payload")
		}
		return transaction.AssetData(cid), nil
	}
	return transaction.Asset{}, transaction.NewInvalidTransactionError("asset has neither id, cid nor payload")
}

func buildAssets(specs []AssetSpec) ([]transaction.Asset, error) {
	assets := make([]transaction.Asset, 0, len(specs))
	for i, spec := range specs {
		a, err := buildAsset(spec)
		if err != nil {
			return nil, fmt.Errorf("asset %d: %w", i, err)
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// encodeMetadata keeps raw JSON as is and marshals anything else; nil and empty raw
// JSON stay null.
func encodeMetadata(metadata any) (json.RawMessage, error) {
	switch m := metadata.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if len(m) == 0 {
			return nil, nil
		}
		if !json.Valid(m) {
			return nil, transaction.NewInvalidTransactionError("metadata is not valid JSON")
		}
		return m, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, transaction.WrapInvalidTransactionError(err, "failed to encode metadata")
	}
	return data, nil
}

func newTransaction(op transaction.Operation, assets []transaction.Asset, inputs []transaction.Input, outputs []transaction.Output, metadata any) (*transaction.Transaction, error) {
	raw, err := encodeMetadata(metadata)
	if err != nil {
		return nil, err
	}
	return &transaction.Transaction{
		Assets:    assets,
		Inputs:    inputs,
		Metadata:  raw,
		Operation: op,
		Outputs:   outputs,
		Version:   transaction.Version,
	}, nil
}
