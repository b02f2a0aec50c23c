package condition

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/planetmint/planetmint-driver-go/internal/crypto"
)

// cost of an ed25519-sha-256 condition is fixed
const ed25519Cost = 131072

// Ed25519Sha256 is a single key condition.
type Ed25519Sha256 struct {
	publicKey ed25519.PublicKey
	signature []byte
}

// NewEd25519Sha256 returns an unsigned fulfillment for publicKey.
func NewEd25519Sha256(publicKey ed25519.PublicKey) (*Ed25519Sha256, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return nil, crypto.NewValidationError(fmt.Sprintf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(publicKey)))
	}
	return &Ed25519Sha256{publicKey: publicKey}, nil
}

// Ed25519FromBase58 returns an unsigned fulfillment for a base58 public key.
func Ed25519FromBase58(publicKey string) (*Ed25519Sha256, error) {
	pk, err := crypto.DecodePublicKey(publicKey)
	if err != nil {
		return nil, err
	}
	return NewEd25519Sha256(pk)
}

func (f *Ed25519Sha256) TypeName() string { return Ed25519TypeName }
func (f *Ed25519Sha256) Cost() int64      { return ed25519Cost }
func (f *Ed25519Sha256) Subtypes() []string {
	return nil
}

func (f *Ed25519Sha256) PublicKey() ed25519.PublicKey { return f.publicKey }
func (f *Ed25519Sha256) PublicKeyBase58() string      { return crypto.EncodePublicKey(f.publicKey) }
func (f *Ed25519Sha256) Signature() []byte            { return f.signature }

func (f *Ed25519Sha256) Details() Details {
	return Details{Type: Ed25519TypeName, PublicKey: f.PublicKeyBase58()}
}

// Fingerprint is sha256 over DER SEQUENCE { publicKey [0] OCTET STRING }
func (f *Ed25519Sha256) Fingerprint() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.Tag(0).ContextSpecific(), func(b *cryptobyte.Builder) {
			b.AddBytes(f.publicKey)
		})
	})
	contents, err := b.Bytes()
	if err != nil {
		return nil, crypto.WrapInternalError(err, "failed to encode ed25519 fingerprint contents")
	}
	sum := sha256.Sum256(contents)
	return sum[:], nil
}

// Sign signs message with privateKey, which must be the pair of the fulfillment's public key.
func (f *Ed25519Sha256) Sign(message []byte, privateKey ed25519.PrivateKey) error {
	if len(privateKey) != ed25519.PrivateKeySize {
		return crypto.NewKeyManagementError("invalid ed25519 private key")
	}
	if !f.publicKey.Equal(privateKey.Public()) {
		return crypto.NewSignatureError(fmt.Sprintf("private key does not match public key %s", f.PublicKeyBase58()))
	}
	f.signature = ed25519.Sign(privateKey, message)
	return nil
}

// SetSignature attaches a signature produced elsewhere.
func (f *Ed25519Sha256) SetSignature(signature []byte) error {
	if len(signature) != ed25519.SignatureSize {
		return crypto.NewSignatureError(fmt.Sprintf("ed25519 signature must be %d bytes, got %d", ed25519.SignatureSize, len(signature)))
	}
	f.signature = append([]byte(nil), signature...)
	return nil
}

func (f *Ed25519Sha256) Fulfilled() bool {
	return len(f.signature) == ed25519.SignatureSize
}

func (f *Ed25519Sha256) Validate(message []byte) bool {
	if !f.Fulfilled() {
		return false
	}
	return ed25519.Verify(f.publicKey, message, f.signature)
}

// SerializeBinary encodes [4] { publicKey [0], signature [1] }
func (f *Ed25519Sha256) SerializeBinary() ([]byte, error) {
	if !f.Fulfilled() {
		return nil, crypto.NewSignatureError("ed25519 fulfillment is not signed")
	}
	var b cryptobyte.Builder
	b.AddASN1(typeTag(ed25519TypeID), func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.Tag(0).ContextSpecific(), func(b *cryptobyte.Builder) {
			b.AddBytes(f.publicKey)
		})
		b.AddASN1(asn1.Tag(1).ContextSpecific(), func(b *cryptobyte.Builder) {
			b.AddBytes(f.signature)
		})
	})
	out, err := b.Bytes()
	if err != nil {
		return nil, crypto.WrapInternalError(err, "failed to encode ed25519 fulfillment")
	}
	return out, nil
}

func parseEd25519(body cryptobyte.String) (*Ed25519Sha256, error) {
	var publicKey, signature cryptobyte.String
	if !body.ReadASN1(&publicKey, asn1.Tag(0).ContextSpecific()) ||
		!body.ReadASN1(&signature, asn1.Tag(1).ContextSpecific()) ||
		!body.Empty() {
		return nil, crypto.NewValidationError("malformed ed25519 fulfillment")
	}
	f, err := NewEd25519Sha256(ed25519.PublicKey(append([]byte(nil), publicKey...)))
	if err != nil {
		return nil, err
	}
	if err := f.SetSignature(signature); err != nil {
		return nil, err
	}
	return f, nil
}
