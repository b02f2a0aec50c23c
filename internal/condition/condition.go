// Package condition implements the crypto-conditions used to lock transaction outputs.
//
// Two condition types are supported:
//   - ed25519-sha-256: a single Ed25519 public key
//   - threshold-sha-256: m-of-n over nested conditions (outputs with several owners use n-of-n)
//
// Conditions are published as {details, uri}; fulfillments travel as base64url encoded DER.
// Encoding follows draft-thomas-crypto-conditions.
package condition

import (
	"fmt"

	"github.com/planetmint/planetmint-driver-go/internal/crypto"
)

const (
	PreimageTypeName  = "preimage-sha-256"
	PrefixTypeName    = "prefix-sha-256"
	ThresholdTypeName = "threshold-sha-256"
	RSATypeName       = "rsa-sha-256"
	Ed25519TypeName   = "ed25519-sha-256"
)

// type ids as registered for crypto-conditions
const (
	preimageTypeID  = 0
	prefixTypeID    = 1
	thresholdTypeID = 2
	rsaTypeID       = 3
	ed25519TypeID   = 4
)

var typeNames = map[int]string{
	preimageTypeID:  PreimageTypeName,
	prefixTypeID:    PrefixTypeName,
	thresholdTypeID: ThresholdTypeName,
	rsaTypeID:       RSATypeName,
	ed25519TypeID:   Ed25519TypeName,
}

var typeIDs = map[string]int{
	PreimageTypeName:  preimageTypeID,
	PrefixTypeName:    prefixTypeID,
	ThresholdTypeName: thresholdTypeID,
	RSATypeName:       rsaTypeID,
	Ed25519TypeName:   ed25519TypeID,
}

// Details is the JSON description of a condition published in an output
// and echoed in unsigned inputs.
type Details struct {
	Type          string    `json:"type"`
	PublicKey     string    `json:"public_key,omitempty"`
	Threshold     int       `json:"threshold,omitempty"`
	Subconditions []Details `json:"subconditions,omitempty"`
}

// Condition is the spending condition attached to an output.
type Condition struct {
	Details Details `json:"details"`
	URI     string  `json:"uri"`
}

// Fulfillment is a crypto-condition that may or may not carry its signatures yet.
type Fulfillment interface {
	TypeName() string

	// Fingerprint is the hash committed to by the condition.
	Fingerprint() ([]byte, error)
	Cost() int64

	// Subtypes lists the condition types used below this one, sorted, excluding its own type.
	Subtypes() []string

	// Details returns the JSON description of the condition.
	Details() Details

	// Fulfilled reports whether enough signatures are present to serialize.
	Fulfilled() bool

	// SerializeBinary returns the DER encoded fulfillment.
	SerializeBinary() ([]byte, error)

	// Validate checks the signatures against message.
	Validate(message []byte) bool
}

// ForPublicKeys builds the fulfillment skeleton for outputs owned by publicKeys:
// a single key gives an Ed25519 condition, several keys an n-of-n threshold.
func ForPublicKeys(publicKeys []string) (Fulfillment, error) {
	switch len(publicKeys) {
	case 0:
		return nil, crypto.NewValidationError("at least one public key is required")
	case 1:
		return Ed25519FromBase58(publicKeys[0])
	}

	threshold := NewThresholdSha256(len(publicKeys))
	for _, pk := range publicKeys {
		sub, err := Ed25519FromBase58(pk)
		if err != nil {
			return nil, err
		}
		threshold.AddSubfulfillment(sub)
	}
	return threshold, nil
}

// NewCondition returns the {details, uri} pair for f.
func NewCondition(f Fulfillment) (Condition, error) {
	uri, err := ConditionURI(f)
	if err != nil {
		return Condition{}, err
	}
	return Condition{Details: f.Details(), URI: uri}, nil
}

// ForOwners is shorthand for ForPublicKeys followed by NewCondition.
func ForOwners(publicKeys []string) (Condition, error) {
	f, err := ForPublicKeys(publicKeys)
	if err != nil {
		return Condition{}, err
	}
	return NewCondition(f)
}

// FromDetails rebuilds an unsigned fulfillment from its JSON description.
func FromDetails(d Details) (Fulfillment, error) {
	switch d.Type {
	case Ed25519TypeName:
		return Ed25519FromBase58(d.PublicKey)
	case ThresholdTypeName:
		if d.Threshold < 1 {
			return nil, crypto.NewValidationError(fmt.Sprintf("threshold must be at least 1, got %d", d.Threshold))
		}
		if d.Threshold > len(d.Subconditions) {
			return nil, crypto.NewValidationError(fmt.Sprintf("threshold %d exceeds the %d subconditions", d.Threshold, len(d.Subconditions)))
		}
		threshold := NewThresholdSha256(d.Threshold)
		for i, subDetails := range d.Subconditions {
			sub, err := FromDetails(subDetails)
			if err != nil {
				return nil, fmt.Errorf("subcondition %d: %w", i, err)
			}
			threshold.AddSubfulfillment(sub)
		}
		return threshold, nil
	case "":
		return nil, crypto.NewValidationError("condition details have no type")
	default:
		return nil, crypto.NewValidationError(fmt.Sprintf("unsupported condition type: %s", d.Type))
	}
}

// Leaves returns every Ed25519 fulfillment reachable from f, in declared order.
func Leaves(f Fulfillment) []*Ed25519Sha256 {
	switch v := f.(type) {
	case *Ed25519Sha256:
		return []*Ed25519Sha256{v}
	case *ThresholdSha256:
		var out []*Ed25519Sha256
		for _, sub := range v.subfulfillments {
			out = append(out, Leaves(sub)...)
		}
		return out
	}
	return nil
}

// LeavesFor returns the Ed25519 leaves of f locked to publicKey.
func LeavesFor(f Fulfillment, publicKey string) []*Ed25519Sha256 {
	var out []*Ed25519Sha256
	for _, leaf := range Leaves(f) {
		if leaf.PublicKeyBase58() == publicKey {
			out = append(out, leaf)
		}
	}
	return out
}
