// Package cidutil content-addresses asset payloads.
//
// A payload is marshalled to canonical JSON and addressed as a CIDv1 with the "raw"
// multicodec and a sha2-256 multihash, giving the familiar "bafkrei..." form.
package cidutil

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/planetmint/planetmint-driver-go/internal/crypto"
)

// Marshal returns the bytes a payload is addressed over.
func Marshal(payload any) ([]byte, error) {
	return crypto.MarshalCanonical(payload)
}

// Address marshals payload and returns its CID string.
func Address(payload any) (string, error) {
	data, err := Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	c, err := CIDv1RawSHA256CID(data)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Validate reports whether s parses as a CID (v0 or v1).
func Validate(s string) error {
	if _, err := cid.Decode(s); err != nil {
		return fmt.Errorf("invalid CID %q: %w", s, err)
	}
	return nil
}

// Matches reports whether s is the CID of payload.
func Matches(s string, payload any) bool {
	want, err := Address(payload)
	if err != nil {
		return false
	}
	got, err := cid.Decode(s)
	if err != nil {
		return false
	}
	return got.String() == want
}
