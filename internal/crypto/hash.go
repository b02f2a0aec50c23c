// this file provides the SHA3-256 hashing used for transaction ids and signing digests.
//
// ledger nodes derive the same values independently, so the hash must be computed over
// the canonical JSON bytes (see canonical.go) and never over an ad-hoc encoding.

package crypto

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// Hash calculates the SHA3-256 hash of data and returns it as a lowercase hex string.
//
// Use this for transaction ids.
func Hash(data []byte) (string, error) {
	sum, err := Digest(data)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

// Digest returns the raw 32 byte SHA3-256 digest of data.
func Digest(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data is empty")
	}
	sum := sha3.Sum256(data)
	return sum[:], nil
}

// DigestWithSuffix hashes data followed by suffix.
// Inputs that spend a previous output are signed over the transaction digest
// extended with the "<transaction_id><output_index>" link.
func DigestWithSuffix(data []byte, suffix string) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data is empty")
	}
	hasher := sha3.New256()
	hasher.Write(data)
	hasher.Write([]byte(suffix))
	return hasher.Sum(nil), nil
}

// VerifyHash verifies that data matches the expected SHA3-256 hex digest.
func VerifyHash(data []byte, expected string) bool {
	h, _ := Hash(data)
	return h != "" && h == expected
}
