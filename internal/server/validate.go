package server

import (
	"errors"
	"fmt"
	"slices"

	"github.com/planetmint/planetmint-driver-go/internal/api"
	"github.com/planetmint/planetmint-driver-go/internal/transaction"
	"github.com/planetmint/planetmint-driver-go/internal/txstore"
)

// validate checks a submission against the ledger: the id and every
// fulfillment must verify, spent outputs must exist and belong to the
// input's owners, and referenced assets must be known. Double spends are
// left to the store.
func (s *Server) validate(tx *transaction.Transaction) error {
	if err := transaction.Verify(tx); err != nil {
		return err
	}

	spends := tx.Operation.SpendsOutputs()
	for i, in := range tx.Inputs {
		if in.Fulfills == nil {
			if spends {
				return transaction.NewInvalidTransactionError(fmt.Sprintf("input %d of %s does not spend an output", i, tx.Operation))
			}
			continue
		}
		if !spends {
			return transaction.NewInvalidTransactionError(fmt.Sprintf("%s input %d must not spend an output", tx.Operation, i))
		}
		if err := s.checkSpend(i, in); err != nil {
			return err
		}
	}

	for _, asset := range tx.Assets {
		if !asset.IsRef() {
			continue
		}
		ok, err := s.store.Has(asset.ID)
		if err != nil {
			return err
		}
		if !ok {
			return api.NewUnknownInputError(fmt.Sprintf("asset %s is not known", asset.ID))
		}
	}
	return nil
}

func (s *Server) checkSpend(index int, in transaction.Input) error {
	link := *in.Fulfills

	parent, err := s.store.Get(link.TransactionID)
	if errors.Is(err, txstore.ErrNotFound) {
		return api.NewUnknownInputError(fmt.Sprintf("input %d spends unknown transaction %s", index, link.TransactionID))
	}
	if err != nil {
		return err
	}
	if link.OutputIndex < 0 || link.OutputIndex >= len(parent.Outputs) {
		return api.NewUnknownInputError(fmt.Sprintf("input %d spends missing output %d of %s", index, link.OutputIndex, link.TransactionID))
	}

	owners := parent.Outputs[link.OutputIndex].PublicKeys
	if !slices.Equal(owners, in.OwnersBefore) {
		return api.NewOwnershipMismatchError(fmt.Sprintf("input %d owners do not hold output %d of %s", index, link.OutputIndex, link.TransactionID))
	}
	return nil
}
