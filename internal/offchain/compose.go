package offchain

import (
	"fmt"

	"github.com/planetmint/planetmint-driver-go/internal/transaction"
)

// PrepareCompose builds an unsigned COMPOSE merging Assets into one.
// Payloads are minted fresh, references merge existing lineages; the assets keep
// the order given, which is what DECOMPOSE later splits by.
func PrepareCompose(args ComposeArgs) (*transaction.Transaction, error) {
	op := transaction.OperationCompose
	if err := requireSpend(op, args.Inputs, args.Recipients); err != nil {
		return nil, err
	}
	if len(args.Assets) == 0 {
		return nil, transaction.NewMissingArgumentError(op, "at least one asset")
	}

	assets, err := buildAssets(args.Assets)
	if err != nil {
		return nil, err
	}
	inputs, err := buildInputs(args.Inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := buildOutputs(args.Recipients)
	if err != nil {
		return nil, err
	}
	return newTransaction(op, assets, inputs, outputs, args.Metadata)
}

// PrepareDecompose builds an unsigned DECOMPOSE splitting the composed asset Assets[0]
// into the components Assets[1:]. Output i goes to Recipients[i] and carries component i.
// Conservation of amounts is left to the node.
//
// The assets are written in the order given, composed id first. The Python driver's
// Decompose.generate writes the components first and the composed id last, so ported
// callers that rely on positions must reorder.
func PrepareDecompose(args DecomposeArgs) (*transaction.Transaction, error) {
	op := transaction.OperationDecompose
	if err := requireSpend(op, args.Inputs, args.Recipients); err != nil {
		return nil, err
	}
	if len(args.Assets) == 0 {
		return nil, transaction.NewMissingArgumentError(op, "the composed asset followed by its components")
	}
	if args.Assets[0].ID == "" {
		return nil, transaction.NewInvalidTransactionError("the first DECOMPOSE asset must reference the composed asset by id")
	}
	if components := len(args.Assets) - 1; len(args.Recipients) != components {
		return nil, transaction.NewStructuralMismatchError(fmt.Sprintf("%d recipients for %d component assets", len(args.Recipients), components))
	}

	assets, err := buildAssets(args.Assets)
	if err != nil {
		return nil, err
	}
	inputs, err := buildInputs(args.Inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := buildOutputs(args.Recipients)
	if err != nil {
		return nil, err
	}
	return newTransaction(op, assets, inputs, outputs, args.Metadata)
}
