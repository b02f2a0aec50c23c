package offchain

import (
	"github.com/planetmint/planetmint-driver-go/internal/transaction"
)

// PrepareTransfer builds an unsigned TRANSFER moving the asset minted by AssetID
// from the referenced outputs to the recipients.
func PrepareTransfer(args TransferArgs) (*transaction.Transaction, error) {
	op := transaction.OperationTransfer
	if err := requireSpend(op, args.Inputs, args.Recipients); err != nil {
		return nil, err
	}
	if args.AssetID == "" {
		return nil, transaction.NewMissingArgumentError(op, "the id of the asset being transferred")
	}

	inputs, err := buildInputs(args.Inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := buildOutputs(args.Recipients)
	if err != nil {
		return nil, err
	}
	return newTransaction(op, []transaction.Asset{transaction.AssetRef(args.AssetID)}, inputs, outputs, args.Metadata)
}

func requireSpend(op transaction.Operation, inputs []InputSpec, recipients Recipients) error {
	if len(inputs) == 0 {
		return transaction.NewMissingArgumentError(op, "at least one input")
	}
	if len(recipients) == 0 {
		return transaction.NewMissingArgumentError(op, "at least one recipient")
	}
	return nil
}
