package condition

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"slices"
	"sort"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/planetmint/planetmint-driver-go/internal/crypto"
)

// cost added per subcondition of a threshold condition
const thresholdCostPerSubcondition = 1024

// ThresholdSha256 is satisfied when at least Threshold of its subconditions are.
type ThresholdSha256 struct {
	threshold       int
	subfulfillments []Fulfillment
}

// NewThresholdSha256 returns an empty threshold condition.
func NewThresholdSha256(threshold int) *ThresholdSha256 {
	return &ThresholdSha256{threshold: threshold}
}

// AddSubfulfillment appends a subcondition in declared order.
func (f *ThresholdSha256) AddSubfulfillment(sub Fulfillment) {
	f.subfulfillments = append(f.subfulfillments, sub)
}

// AddSubcondition appends a subcondition known only by its condition URI.
// It counts towards the fingerprint and cost but can never be fulfilled.
func (f *ThresholdSha256) AddSubcondition(uri string) error {
	parsed, err := ParseConditionURI(uri)
	if err != nil {
		return err
	}
	f.subfulfillments = append(f.subfulfillments, &conditionOnly{
		typeName:    parsed.Type,
		fingerprint: parsed.Fingerprint,
		cost:        parsed.Cost,
		subtypes:    parsed.Subtypes,
	})
	return nil
}

func (f *ThresholdSha256) Threshold() int                 { return f.threshold }
func (f *ThresholdSha256) Subfulfillments() []Fulfillment { return f.subfulfillments }
func (f *ThresholdSha256) TypeName() string               { return ThresholdTypeName }

func (f *ThresholdSha256) Details() Details {
	subs := make([]Details, 0, len(f.subfulfillments))
	for _, sub := range f.subfulfillments {
		subs = append(subs, sub.Details())
	}
	return Details{Type: ThresholdTypeName, Threshold: f.threshold, Subconditions: subs}
}

// Cost is the sum of the threshold largest subcondition costs plus 1024 per subcondition.
func (f *ThresholdSha256) Cost() int64 {
	costs := make([]int64, 0, len(f.subfulfillments))
	for _, sub := range f.subfulfillments {
		costs = append(costs, sub.Cost())
	}
	sort.Slice(costs, func(i, j int) bool { return costs[i] > costs[j] })

	var total int64
	for i := 0; i < f.threshold && i < len(costs); i++ {
		total += costs[i]
	}
	return total + int64(thresholdCostPerSubcondition*len(f.subfulfillments))
}

func (f *ThresholdSha256) Subtypes() []string {
	set := map[string]bool{}
	for _, sub := range f.subfulfillments {
		set[sub.TypeName()] = true
		for _, st := range sub.Subtypes() {
			set[st] = true
		}
	}
	delete(set, ThresholdTypeName)

	out := make([]string, 0, len(set))
	for st := range set {
		out = append(out, st)
	}
	slices.Sort(out)
	return out
}

// Fingerprint is sha256 over DER SEQUENCE { threshold [0] INTEGER, subconditions [1] SET OF Condition }
func (f *ThresholdSha256) Fingerprint() ([]byte, error) {
	conditions, err := f.sortedConditions(f.subfulfillments)
	if err != nil {
		return nil, err
	}

	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64WithTag(int64(f.threshold), asn1.Tag(0).ContextSpecific())
		b.AddASN1(asn1.Tag(1).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
			for _, c := range conditions {
				b.AddBytes(c)
			}
		})
	})
	contents, err := b.Bytes()
	if err != nil {
		return nil, crypto.WrapInternalError(err, "failed to encode threshold fingerprint contents")
	}
	sum := sha256.Sum256(contents)
	return sum[:], nil
}

func (f *ThresholdSha256) Fulfilled() bool {
	return f.countFulfilled() >= f.threshold
}

func (f *ThresholdSha256) countFulfilled() int {
	n := 0
	for _, sub := range f.subfulfillments {
		if sub.Fulfilled() {
			n++
		}
	}
	return n
}

// Validate requires every included signature to verify and at least threshold of them.
func (f *ThresholdSha256) Validate(message []byte) bool {
	if f.threshold < 1 {
		return false
	}
	valid := 0
	for _, sub := range f.subfulfillments {
		if !sub.Fulfilled() {
			continue
		}
		if !sub.Validate(message) {
			return false
		}
		valid++
	}
	return valid >= f.threshold
}

// SerializeBinary encodes [2] { subfulfillments [0] SET OF Fulfillment, subconditions [1] SET OF Condition }.
// The cheapest threshold fulfilled subconditions are included as fulfillments, the rest as conditions.
func (f *ThresholdSha256) SerializeBinary() ([]byte, error) {
	if f.threshold < 1 {
		return nil, crypto.NewValidationError("threshold must be at least 1")
	}

	fulfilled := make([]Fulfillment, 0, len(f.subfulfillments))
	var unfulfilled []Fulfillment
	for _, sub := range f.subfulfillments {
		if sub.Fulfilled() {
			fulfilled = append(fulfilled, sub)
		} else {
			unfulfilled = append(unfulfilled, sub)
		}
	}
	if len(fulfilled) < f.threshold {
		return nil, crypto.NewSignatureError(fmt.Sprintf("threshold not met: %d of %d subconditions fulfilled", len(fulfilled), f.threshold))
	}
	sort.SliceStable(fulfilled, func(i, j int) bool { return fulfilled[i].Cost() < fulfilled[j].Cost() })
	unfulfilled = append(unfulfilled, fulfilled[f.threshold:]...)
	fulfilled = fulfilled[:f.threshold]

	encodedFulfillments := make([][]byte, 0, len(fulfilled))
	for _, sub := range fulfilled {
		enc, err := sub.SerializeBinary()
		if err != nil {
			return nil, err
		}
		encodedFulfillments = append(encodedFulfillments, enc)
	}
	sortDER(encodedFulfillments)

	encodedConditions, err := f.sortedConditions(unfulfilled)
	if err != nil {
		return nil, err
	}

	var b cryptobyte.Builder
	b.AddASN1(typeTag(thresholdTypeID), func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.Tag(0).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
			for _, enc := range encodedFulfillments {
				b.AddBytes(enc)
			}
		})
		b.AddASN1(asn1.Tag(1).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
			for _, enc := range encodedConditions {
				b.AddBytes(enc)
			}
		})
	})
	out, err := b.Bytes()
	if err != nil {
		return nil, crypto.WrapInternalError(err, "failed to encode threshold fulfillment")
	}
	return out, nil
}

func (f *ThresholdSha256) sortedConditions(subs []Fulfillment) ([][]byte, error) {
	out := make([][]byte, 0, len(subs))
	for _, sub := range subs {
		enc, err := ConditionBinary(sub)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	sortDER(out)
	return out, nil
}

// DER orders SET OF members by their encodings
func sortDER(items [][]byte) {
	sort.Slice(items, func(i, j int) bool { return bytes.Compare(items[i], items[j]) < 0 })
}

func parseThreshold(body cryptobyte.String) (*ThresholdSha256, error) {
	var fulfillments, conditions cryptobyte.String
	if !body.ReadASN1(&fulfillments, asn1.Tag(0).ContextSpecific().Constructed()) ||
		!body.ReadASN1(&conditions, asn1.Tag(1).ContextSpecific().Constructed()) ||
		!body.Empty() {
		return nil, crypto.NewValidationError("malformed threshold fulfillment")
	}

	f := &ThresholdSha256{}
	for !fulfillments.Empty() {
		var element cryptobyte.String
		if !fulfillments.ReadAnyASN1Element(&element, nil) {
			return nil, crypto.NewValidationError("malformed threshold subfulfillment")
		}
		sub, err := FromBinary(element)
		if err != nil {
			return nil, err
		}
		f.AddSubfulfillment(sub)
	}
	// the number of included fulfillments is the threshold
	f.threshold = len(f.subfulfillments)
	if f.threshold == 0 {
		return nil, crypto.NewValidationError("threshold fulfillment has no subfulfillments")
	}

	for !conditions.Empty() {
		var element cryptobyte.String
		if !conditions.ReadAnyASN1Element(&element, nil) {
			return nil, crypto.NewValidationError("malformed threshold subcondition")
		}
		sub, err := parseConditionBinary(element)
		if err != nil {
			return nil, err
		}
		f.AddSubfulfillment(sub)
	}
	return f, nil
}
