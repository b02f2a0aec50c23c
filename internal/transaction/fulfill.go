package transaction

import (
	"crypto/ed25519"
	"fmt"

	"github.com/planetmint/planetmint-driver-go/internal/condition"
	"github.com/planetmint/planetmint-driver-go/internal/crypto"
)

// Signer is a delegated signing capability. It receives the input being fulfilled
// and its signing message and returns the raw Ed25519 signature.
type Signer func(input Input, message []byte) ([]byte, error)

// Fulfill signs every input of tx with the matching private keys (base58) and returns
// the fulfilled transaction with its id set. tx itself is not modified.
//
// Keys are matched by the public key they derive to; an input owner without a key
// fails with a missing_private_key error naming the input.
func Fulfill(tx *Transaction, privateKeys []string) (*Transaction, error) {
	if tx == nil {
		return nil, NewInvalidTransactionError("transaction is nil")
	}

	keys := make(map[string]ed25519.PrivateKey, len(privateKeys))
	for _, sk := range privateKeys {
		privateKey, err := crypto.DecodePrivateKey(sk)
		if err != nil {
			return nil, err
		}
		keys[crypto.EncodePublicKey(privateKey.Public().(ed25519.PublicKey))] = privateKey
	}

	signed := tx.Clone()
	payload, err := signingPayload(signed)
	if err != nil {
		return nil, err
	}

	for i := range signed.Inputs {
		input := &signed.Inputs[i]
		f, err := inputFulfillment(i, *input)
		if err != nil {
			return nil, err
		}
		message, err := messageFor(payload, *input)
		if err != nil {
			return nil, err
		}

		for _, owner := range uniqueOwners(input.OwnersBefore) {
			leaves := condition.LeavesFor(f, owner)
			if len(leaves) == 0 {
				return nil, NewInvalidTransactionError(fmt.Sprintf("input %d: owner %s does not appear in the fulfillment", i, owner))
			}
			privateKey, ok := keys[owner]
			if !ok {
				return nil, NewMissingPrivateKeyError(i, owner)
			}
			for _, leaf := range leaves {
				if err := leaf.Sign(message, privateKey); err != nil {
					return nil, err
				}
			}
		}

		uri, err := condition.SerializeURI(f)
		if err != nil {
			return nil, WrapInvalidFulfillmentError(err, i, "failed to serialize fulfillment")
		}
		input.Fulfillment = InputFulfillment{URI: uri}
	}

	return finalize(signed)
}

// FulfillWithSigner fulfills tx by asking sign for each input's signature and splicing
// it into the fulfillment. Given the signatures Fulfill would have produced, the result
// is byte-identical to Fulfill's. Only single-owner (ed25519) inputs can be delegated.
func FulfillWithSigner(tx *Transaction, sign Signer) (*Transaction, error) {
	if tx == nil {
		return nil, NewInvalidTransactionError("transaction is nil")
	}
	if sign == nil {
		return nil, NewMissingArgumentError(tx.Operation, "a signer")
	}

	signed := tx.Clone()
	payload, err := signingPayload(signed)
	if err != nil {
		return nil, err
	}

	for i := range signed.Inputs {
		input := &signed.Inputs[i]
		f, err := inputFulfillment(i, *input)
		if err != nil {
			return nil, err
		}
		leaf, ok := f.(*condition.Ed25519Sha256)
		if !ok {
			return nil, NewUnsupportedFulfillmentError(i, f.TypeName())
		}
		message, err := messageFor(payload, *input)
		if err != nil {
			return nil, err
		}

		signature, err := sign(input.clone(), message)
		if err != nil {
			return nil, WrapSigningError(err, i)
		}
		if err := leaf.SetSignature(signature); err != nil {
			return nil, WrapSigningError(err, i)
		}

		uri, err := condition.SerializeURI(leaf)
		if err != nil {
			return nil, WrapInvalidFulfillmentError(err, i, "failed to serialize fulfillment")
		}
		input.Fulfillment = InputFulfillment{URI: uri}
	}

	return finalize(signed)
}

// inputFulfillment rebuilds the unsigned fulfillment of an input from its placeholder,
// falling back to the owners when the placeholder is null.
func inputFulfillment(index int, input Input) (condition.Fulfillment, error) {
	if len(input.OwnersBefore) == 0 {
		return nil, NewInvalidTransactionError(fmt.Sprintf("input %d has no owners_before", index))
	}

	var (
		f   condition.Fulfillment
		err error
	)
	switch {
	case input.Fulfillment.URI != "":
		f, err = condition.FromURI(input.Fulfillment.URI)
	case input.Fulfillment.Details != nil:
		f, err = condition.FromDetails(*input.Fulfillment.Details)
	default:
		f, err = condition.ForPublicKeys(input.OwnersBefore)
	}
	if err != nil {
		return nil, WrapInvalidFulfillmentError(err, index, "unusable fulfillment")
	}
	return f, nil
}

func uniqueOwners(owners []string) []string {
	seen := make(map[string]bool, len(owners))
	out := make([]string, 0, len(owners))
	for _, o := range owners {
		if !seen[o] {
			seen[o] = true
			out = append(out, o)
		}
	}
	return out
}

// finalize freezes the id once every input is fulfilled.
func finalize(tx *Transaction) (*Transaction, error) {
	id, err := ComputeID(tx)
	if err != nil {
		return nil, err
	}
	tx.ID = &id
	return tx, nil
}
