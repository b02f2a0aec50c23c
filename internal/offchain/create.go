package offchain

import (
	"github.com/planetmint/planetmint-driver-go/internal/condition"
	"github.com/planetmint/planetmint-driver-go/internal/transaction"
)

// PrepareCreate builds an unsigned CREATE minting one asset.
// Without recipients the signers receive a single share jointly.
func PrepareCreate(args CreateArgs) (*transaction.Transaction, error) {
	if len(args.Signers) == 0 {
		return nil, transaction.NewMissingArgumentError(transaction.OperationCreate, "at least one signer")
	}
	recipients := args.Recipients
	if len(recipients) == 0 {
		recipients = ToKeys(args.Signers...)
	}

	outputs, err := buildOutputs(recipients)
	if err != nil {
		return nil, err
	}

	f, err := condition.ForPublicKeys(args.Signers)
	if err != nil {
		return nil, transaction.WrapInvalidFulfillmentError(err, 0, "invalid signers")
	}
	details := f.Details()
	input := transaction.Input{
		Fulfillment:  transaction.InputFulfillment{Details: &details},
		OwnersBefore: append([]string(nil), args.Signers...),
	}

	asset := transaction.Asset{}
	if args.Asset != nil {
		if args.Asset.ID != "" {
			return nil, transaction.NewInvalidTransactionError("CREATE mints a new asset and cannot reference an existing one")
		}
		if asset, err = buildAsset(*args.Asset); err != nil {
			return nil, err
		}
	}

	return newTransaction(transaction.OperationCreate, []transaction.Asset{asset}, []transaction.Input{input}, outputs, args.Metadata)
}
