package condition

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/planetmint/planetmint-driver-go/internal/crypto"
)

const uriPrefix = "ni:///sha-256;"

// compound condition types carry a subtypes field in their condition encoding
func isCompound(typeID int) bool {
	return typeID == prefixTypeID || typeID == thresholdTypeID
}

func typeTag(typeID int) asn1.Tag {
	return asn1.Tag(typeID).ContextSpecific().Constructed()
}

// ConditionBinary encodes the condition of f: [type] { fingerprint [0], cost [1], subtypes [2] }
func ConditionBinary(f Fulfillment) ([]byte, error) {
	typeID, ok := typeIDs[f.TypeName()]
	if !ok {
		return nil, crypto.NewValidationError(fmt.Sprintf("unsupported condition type: %s", f.TypeName()))
	}
	fingerprint, err := f.Fingerprint()
	if err != nil {
		return nil, err
	}
	subtypes, err := encodeSubtypes(f.Subtypes())
	if err != nil {
		return nil, err
	}

	var b cryptobyte.Builder
	b.AddASN1(typeTag(typeID), func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.Tag(0).ContextSpecific(), func(b *cryptobyte.Builder) {
			b.AddBytes(fingerprint)
		})
		b.AddASN1Int64WithTag(f.Cost(), asn1.Tag(1).ContextSpecific())
		if isCompound(typeID) {
			b.AddASN1(asn1.Tag(2).ContextSpecific(), func(b *cryptobyte.Builder) {
				b.AddBytes(subtypes)
			})
		}
	})
	out, err := b.Bytes()
	if err != nil {
		return nil, crypto.WrapInternalError(err, "failed to encode condition")
	}
	return out, nil
}

// ConditionURI returns the ni: URI of the condition of f, e.g.
// ni:///sha-256;<fingerprint>?fpt=ed25519-sha-256&cost=131072
func ConditionURI(f Fulfillment) (string, error) {
	fingerprint, err := f.Fingerprint()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(uriPrefix)
	sb.WriteString(base64.RawURLEncoding.EncodeToString(fingerprint))
	sb.WriteString("?fpt=")
	sb.WriteString(f.TypeName())
	sb.WriteString("&cost=")
	sb.WriteString(strconv.FormatInt(f.Cost(), 10))
	if subtypes := f.Subtypes(); len(subtypes) > 0 {
		sb.WriteString("&subtypes=")
		sb.WriteString(strings.Join(subtypes, ","))
	}
	return sb.String(), nil
}

// SerializeURI returns the base64url (unpadded) DER fulfillment, the form stored in signed inputs.
func SerializeURI(f Fulfillment) (string, error) {
	raw, err := f.SerializeBinary()
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// FromURI parses a serialized fulfillment.
func FromURI(uri string) (Fulfillment, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(uri, "="))
	if err != nil {
		return nil, crypto.WrapValidationError(err, "fulfillment is not base64url encoded")
	}
	return FromBinary(raw)
}

// FromBinary parses a DER encoded fulfillment.
func FromBinary(data []byte) (Fulfillment, error) {
	input := cryptobyte.String(data)
	var body cryptobyte.String
	var tag asn1.Tag
	if !input.ReadAnyASN1(&body, &tag) || !input.Empty() {
		return nil, crypto.NewValidationError("malformed fulfillment encoding")
	}

	switch tag {
	case typeTag(ed25519TypeID):
		return parseEd25519(body)
	case typeTag(thresholdTypeID):
		return parseThreshold(body)
	}
	if name, ok := typeNames[int(tag&0x1f)]; ok {
		return nil, crypto.NewValidationError(fmt.Sprintf("unsupported fulfillment type: %s", name))
	}
	return nil, crypto.NewValidationError(fmt.Sprintf("unknown fulfillment tag 0x%x", uint8(tag)))
}

// ParsedConditionURI holds the fields of a condition URI.
type ParsedConditionURI struct {
	Fingerprint []byte
	Type        string
	Cost        int64
	Subtypes    []string
}

// ParseConditionURI parses and checks the fields of a ni: condition URI.
func ParseConditionURI(uri string) (*ParsedConditionURI, error) {
	rest, ok := strings.CutPrefix(uri, uriPrefix)
	if !ok {
		return nil, crypto.NewValidationError(fmt.Sprintf("condition URI must start with %s", uriPrefix))
	}
	encodedFingerprint, rawQuery, _ := strings.Cut(rest, "?")

	fingerprint, err := base64.RawURLEncoding.DecodeString(encodedFingerprint)
	if err != nil {
		return nil, crypto.WrapValidationError(err, "condition fingerprint is not base64url encoded")
	}
	if len(fingerprint) != 32 {
		return nil, crypto.NewValidationError(fmt.Sprintf("condition fingerprint must be 32 bytes, got %d", len(fingerprint)))
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, crypto.WrapValidationError(err, "malformed condition URI query")
	}
	parsed := &ParsedConditionURI{Fingerprint: fingerprint, Type: query.Get("fpt")}
	if _, ok := typeIDs[parsed.Type]; !ok {
		return nil, crypto.NewValidationError(fmt.Sprintf("unknown condition type %q", parsed.Type))
	}
	parsed.Cost, err = strconv.ParseInt(query.Get("cost"), 10, 64)
	if err != nil || parsed.Cost < 0 {
		return nil, crypto.NewValidationError(fmt.Sprintf("invalid condition cost %q", query.Get("cost")))
	}
	if s := query.Get("subtypes"); s != "" {
		parsed.Subtypes = strings.Split(s, ",")
	}
	return parsed, nil
}

// conditionOnly stands in for an unfulfilled subcondition read from a threshold fulfillment.
type conditionOnly struct {
	typeName    string
	fingerprint []byte
	cost        int64
	subtypes    []string
}

func (c *conditionOnly) TypeName() string             { return c.typeName }
func (c *conditionOnly) Fingerprint() ([]byte, error) { return c.fingerprint, nil }
func (c *conditionOnly) Cost() int64                  { return c.cost }
func (c *conditionOnly) Subtypes() []string           { return c.subtypes }
func (c *conditionOnly) Details() Details             { return Details{Type: c.typeName} }
func (c *conditionOnly) Fulfilled() bool              { return false }
func (c *conditionOnly) Validate(message []byte) bool { return false }
func (c *conditionOnly) SerializeBinary() ([]byte, error) {
	return nil, crypto.NewSignatureError(fmt.Sprintf("%s subcondition is not fulfilled", c.typeName))
}

func parseConditionBinary(data cryptobyte.String) (*conditionOnly, error) {
	var body cryptobyte.String
	var tag asn1.Tag
	if !data.ReadAnyASN1(&body, &tag) || !data.Empty() {
		return nil, crypto.NewValidationError("malformed condition encoding")
	}
	typeID := int(tag & 0x1f)
	name, ok := typeNames[typeID]
	if !ok || tag != typeTag(typeID) {
		return nil, crypto.NewValidationError(fmt.Sprintf("unknown condition tag 0x%x", uint8(tag)))
	}

	var fingerprint cryptobyte.String
	var cost int64
	if !body.ReadASN1(&fingerprint, asn1.Tag(0).ContextSpecific()) ||
		!body.ReadASN1Int64WithTag(&cost, asn1.Tag(1).ContextSpecific()) {
		return nil, crypto.NewValidationError("malformed condition fields")
	}
	c := &conditionOnly{typeName: name, fingerprint: append([]byte(nil), fingerprint...), cost: cost}

	if isCompound(typeID) {
		var bits cryptobyte.String
		if !body.ReadASN1(&bits, asn1.Tag(2).ContextSpecific()) {
			return nil, crypto.NewValidationError("condition is missing subtypes")
		}
		subtypes, err := decodeSubtypes(bits)
		if err != nil {
			return nil, err
		}
		c.subtypes = subtypes
	}
	if !body.Empty() {
		return nil, crypto.NewValidationError("trailing data in condition")
	}
	return c, nil
}

// encodeSubtypes returns the BIT STRING contents (unused-bits octet followed by the bits)
// with bit n set for type id n.
func encodeSubtypes(subtypes []string) ([]byte, error) {
	if len(subtypes) == 0 {
		return []byte{0}, nil
	}
	maxID := 0
	ids := make([]int, 0, len(subtypes))
	for _, st := range subtypes {
		id, ok := typeIDs[st]
		if !ok {
			return nil, crypto.NewValidationError(fmt.Sprintf("unknown subtype %q", st))
		}
		ids = append(ids, id)
		maxID = max(maxID, id)
	}
	bitLen := maxID + 1
	out := make([]byte, 1+(bitLen+7)/8)
	out[0] = byte(len(out[1:])*8 - bitLen)
	for _, id := range ids {
		out[1+id/8] |= 0x80 >> (id % 8)
	}
	return out, nil
}

func decodeSubtypes(bits []byte) ([]string, error) {
	if len(bits) == 0 || bits[0] > 7 {
		return nil, crypto.NewValidationError("malformed subtypes bit string")
	}
	var out []string
	for i, b := range bits[1:] {
		for j := 0; j < 8; j++ {
			if b&(0x80>>j) == 0 {
				continue
			}
			name, ok := typeNames[i*8+j]
			if !ok {
				return nil, crypto.NewValidationError(fmt.Sprintf("unknown subtype bit %d", i*8+j))
			}
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out, nil
}
