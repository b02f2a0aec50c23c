package transaction

import (
	"github.com/planetmint/planetmint-driver-go/internal/crypto"
)

// Serialize returns the canonical JSON bytes of tx: keys sorted at every level,
// no whitespace, sequences in declared order, non-ASCII left unescaped.
func Serialize(tx *Transaction) ([]byte, error) {
	if tx == nil {
		return nil, NewInvalidTransactionError("transaction is nil")
	}
	data, err := crypto.MarshalCanonical(tx)
	if err != nil {
		return nil, WrapInvalidTransactionError(err, "failed to serialize transaction")
	}
	return data, nil
}

// ComputeID returns the hex sha3-256 of the canonical form of tx with its id cleared.
// Fulfillments are part of the hashed bytes.
func ComputeID(tx *Transaction) (string, error) {
	if tx == nil {
		return "", NewInvalidTransactionError("transaction is nil")
	}
	unidentified := *tx
	unidentified.ID = nil

	data, err := Serialize(&unidentified)
	if err != nil {
		return "", err
	}
	return crypto.Hash(data)
}

// SigningMessage returns the digest an input's owners sign: sha3-256 over the canonical
// transaction with every fulfillment and the id nulled, extended with the spent output
// link ("<transaction_id><output_index>") when the input has one.
func SigningMessage(tx *Transaction, input Input) ([]byte, error) {
	payload, err := signingPayload(tx)
	if err != nil {
		return nil, err
	}
	return messageFor(payload, input)
}

// signingPayload is shared by all inputs of a transaction.
func signingPayload(tx *Transaction) ([]byte, error) {
	if tx == nil {
		return nil, NewInvalidTransactionError("transaction is nil")
	}
	blank := *tx
	blank.ID = nil
	blank.Inputs = make([]Input, len(tx.Inputs))
	for i, in := range tx.Inputs {
		blank.Inputs[i] = Input{Fulfills: in.Fulfills, OwnersBefore: in.OwnersBefore}
	}
	return Serialize(&blank)
}

func messageFor(payload []byte, input Input) ([]byte, error) {
	suffix := ""
	if input.Fulfills != nil {
		suffix = input.Fulfills.String()
	}
	digest, err := crypto.DigestWithSuffix(payload, suffix)
	if err != nil {
		return nil, crypto.WrapInternalError(err, "failed to hash signing payload")
	}
	return digest, nil
}
