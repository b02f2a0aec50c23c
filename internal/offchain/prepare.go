package offchain

import (
	"fmt"

	"github.com/planetmint/planetmint-driver-go/internal/transaction"
)

// Prepare dispatches to the builder for args.Operation (CREATE when empty).
// The operation is checked before anything else is looked at.
func Prepare(args Args) (*transaction.Transaction, error) {
	name := args.Operation
	if name == "" {
		name = string(transaction.OperationCreate)
	}
	op, err := transaction.ParseOperation(name)
	if err != nil {
		return nil, err
	}

	singleAsset := op == transaction.OperationCreate || op == transaction.OperationTransfer
	if singleAsset && len(args.Assets) > 1 {
		return nil, transaction.NewInvalidTransactionError(fmt.Sprintf("%s takes a single asset, got %d", op, len(args.Assets)))
	}

	switch op {
	case transaction.OperationCreate:
		create := CreateArgs{Signers: args.Signers, Recipients: args.Recipients, Metadata: args.Metadata}
		if len(args.Assets) > 0 {
			create.Asset = &args.Assets[0]
		}
		return PrepareCreate(create)
	case transaction.OperationTransfer:
		var assetID string
		if len(args.Assets) > 0 {
			assetID = args.Assets[0].ID
		}
		return PrepareTransfer(TransferArgs{Inputs: args.Inputs, Recipients: args.Recipients, AssetID: assetID, Metadata: args.Metadata})
	case transaction.OperationCompose:
		return PrepareCompose(ComposeArgs{Inputs: args.Inputs, Recipients: args.Recipients, Assets: args.Assets, Metadata: args.Metadata})
	case transaction.OperationDecompose:
		return PrepareDecompose(DecomposeArgs{Inputs: args.Inputs, Recipients: args.Recipients, Assets: args.Assets, Metadata: args.Metadata})
	}
	return nil, transaction.NewUnsupportedOperationError(name)
}
