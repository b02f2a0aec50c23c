package transaction

import (
	"fmt"

	"github.com/planetmint/planetmint-driver-go/internal/condition"
	"github.com/planetmint/planetmint-driver-go/internal/crypto"
)

// Verify checks the id and every fulfillment of a fulfilled transaction.
func Verify(tx *Transaction) error {
	if err := VerifyID(tx); err != nil {
		return err
	}
	return VerifyFulfillments(tx)
}

// VerifyID recomputes the id of tx and compares it with the one it carries.
func VerifyID(tx *Transaction) error {
	if tx == nil {
		return NewInvalidTransactionError("transaction is nil")
	}
	if tx.ID == nil {
		return NewInvalidTransactionError("transaction has no id")
	}
	id, err := ComputeID(tx)
	if err != nil {
		return err
	}
	if id != *tx.ID {
		return NewInvalidTransactionError(fmt.Sprintf("transaction id mismatch: carries %s, content hashes to %s", *tx.ID, id))
	}
	return nil
}

// VerifyFulfillments checks that each input carries a fulfillment for the condition
// derived from its owners_before and that its signatures cover the signing message.
func VerifyFulfillments(tx *Transaction) error {
	payload, err := signingPayload(tx)
	if err != nil {
		return err
	}

	for i, input := range tx.Inputs {
		if !input.Fulfillment.Signed() {
			return WrapInvalidFulfillmentError(nil, i, "input is not fulfilled")
		}
		f, err := condition.FromURI(input.Fulfillment.URI)
		if err != nil {
			return WrapInvalidFulfillmentError(err, i, "malformed fulfillment")
		}

		expected, err := condition.ForOwners(input.OwnersBefore)
		if err != nil {
			return WrapInvalidFulfillmentError(err, i, "invalid owners_before")
		}
		got, err := condition.ConditionURI(f)
		if err != nil {
			return WrapInvalidFulfillmentError(err, i, "failed to derive condition")
		}
		if got != expected.URI {
			return WrapInvalidFulfillmentError(nil, i, "fulfillment does not match the owners' condition")
		}

		message, err := messageFor(payload, input)
		if err != nil {
			return err
		}
		if !f.Validate(message) {
			return WrapInvalidFulfillmentError(crypto.NewSignatureError("signature verification failed"), i, "invalid signature")
		}
	}
	return nil
}
