// this file contains functions to generate and manage Ed25519 key pairs.
//
// ledger keys are exchanged as base58 strings: the private key is the 32 byte Ed25519 seed
// and the public key is the raw 32 byte public key.
// for storage on disk the keys are saved as JWK sets (see jwk.go).

package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/mr-tron/base58"
)

// file naming convention - name.public.jwk and name.private.jwk
const (
	PublicKeyFileNameFormat  = "%s.public.jwk"
	PrivateKeyFileNameFormat = "%s.private.jwk"
)

// Keypair is a base58 encoded Ed25519 key pair
type Keypair struct {
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
}

// GenerateKeypair generates a new Ed25519 key pair.
// When seed is nil a random seed is used, otherwise seed must be 32 bytes and
// the result is deterministic.
func GenerateKeypair(seed []byte) (*Keypair, error) {
	if seed == nil {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			return nil, WrapInternalError(err, "failed to generate seed")
		}
	}
	if len(seed) != ed25519.SeedSize {
		return nil, NewKeyManagementError(fmt.Sprintf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed)))
	}

	privateKey := ed25519.NewKeyFromSeed(seed)
	return &Keypair{
		PrivateKey: base58.Encode(privateKey.Seed()),
		PublicKey:  EncodePublicKey(privateKey.Public().(ed25519.PublicKey)),
	}, nil
}

// DecodePrivateKey decodes a base58 private key (32 byte seed).
func DecodePrivateKey(encoded string) (ed25519.PrivateKey, error) {
	if encoded == "" {
		return nil, NewKeyManagementError("private key is empty")
	}
	seed, err := base58.Decode(encoded)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to decode base58 private key")
	}
	if len(seed) != ed25519.SeedSize {
		return nil, NewKeyManagementError(fmt.Sprintf("invalid private key length: got %d bytes, want %d", len(seed), ed25519.SeedSize))
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// DecodePublicKey decodes a base58 public key.
func DecodePublicKey(encoded string) (ed25519.PublicKey, error) {
	if encoded == "" {
		return nil, NewKeyManagementError("public key is empty")
	}
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to decode base58 public key")
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, NewKeyManagementError(fmt.Sprintf("invalid public key length: got %d bytes, want %d", len(raw), ed25519.PublicKeySize))
	}
	return ed25519.PublicKey(raw), nil
}

// EncodePublicKey returns the base58 form of a public key
func EncodePublicKey(publicKey ed25519.PublicKey) string {
	return base58.Encode(publicKey)
}

// EncodePrivateKey returns the base58 form of a private key (its seed)
func EncodePrivateKey(privateKey ed25519.PrivateKey) string {
	return base58.Encode(privateKey.Seed())
}

// PublicKeyFromPrivate derives the base58 public key for a base58 private key.
func PublicKeyFromPrivate(encoded string) (string, error) {
	privateKey, err := DecodePrivateKey(encoded)
	if err != nil {
		return "", err
	}
	return EncodePublicKey(privateKey.Public().(ed25519.PublicKey)), nil
}

// SaveKeypairToJWKFiles saves both halves of the key pair as JWK sets
// (name.private.jwk and name.public.jwk).
// note the private key is not encrypted
//
// Parameters:
//   - baseDir: The base directory to scope file access (e.g., "./keys")
//   - name: The file name prefix (e.g., "alice")
//
// Returns the key ID written to both files.
func SaveKeypairToJWKFiles(keypair *Keypair, keyID, baseDir, name string) (string, error) {
	if keypair == nil {
		return "", NewKeyManagementError("keypair is nil")
	}
	privateKey, err := DecodePrivateKey(keypair.PrivateKey)
	if err != nil {
		return "", err
	}
	publicKey := privateKey.Public().(ed25519.PublicKey)

	if keyID == "" {
		keyID, err = GenerateKeyIDFromEd25519Key(publicKey)
		if err != nil {
			return "", WrapKeyManagementError(err, "failed to generate key ID")
		}
	}

	if err := SaveEd25519PrivateKeyToJWKFile(privateKey, keyID, baseDir, fmt.Sprintf(PrivateKeyFileNameFormat, name)); err != nil {
		return "", err
	}
	if err := SaveEd25519PublicKeyToJWKFile(publicKey, keyID, baseDir, fmt.Sprintf(PublicKeyFileNameFormat, name)); err != nil {
		return "", err
	}
	return keyID, nil
}

// ReadKeypairFromJWKFile loads the key pair stored in name.private.jwk
func ReadKeypairFromJWKFile(baseDir, name string) (*Keypair, error) {
	privateKey, err := ReadEd25519PrivateKeyFromJWKFile(baseDir, fmt.Sprintf(PrivateKeyFileNameFormat, name))
	if err != nil {
		return nil, err
	}
	return &Keypair{
		PrivateKey: EncodePrivateKey(privateKey),
		PublicKey:  EncodePublicKey(privateKey.Public().(ed25519.PublicKey)),
	}, nil
}

// ReadPublicKeyFromJWKFile loads the base58 public key stored in name.public.jwk
func ReadPublicKeyFromJWKFile(baseDir, name string) (string, error) {
	publicKey, err := ReadEd25519PublicKeyFromJWKFile(baseDir, fmt.Sprintf(PublicKeyFileNameFormat, name))
	if err != nil {
		return "", err
	}
	return EncodePublicKey(publicKey), nil
}

// SaveEd25519PrivateKeyToJWKFile saves an ED25519 private key to a JWK file
// note the key is not encrypted
//
// Parameters:
//   - baseDir: The base directory to scope file access (e.g., "./keys")
//   - filename: The filename within the base directory (e.g., "alice.private.jwk")
func SaveEd25519PrivateKeyToJWKFile(privateKey ed25519.PrivateKey, keyID, baseDir, filename string) error {
	jwkKey, err := Ed25519PrivateKeyToJWK(privateKey, keyID)
	if err != nil {
		return WrapKeyManagementError(err, "failed to create JWK")
	}
	return writeJWKSet(jwkKey, baseDir, filename, 0600)
}

// SaveEd25519PublicKeyToJWKFile saves an ED25519 public key to a JWK file
//
// Parameters:
//   - baseDir: The base directory to scope file access (e.g., "./keys")
//   - filename: The filename within the base directory (e.g., "alice.public.jwk")
func SaveEd25519PublicKeyToJWKFile(publicKey ed25519.PublicKey, keyID, baseDir, filename string) error {
	jwkKey, err := Ed25519PublicKeyToJWK(publicKey, keyID)
	if err != nil {
		return WrapKeyManagementError(err, "failed to create JWK")
	}
	return writeJWKSet(jwkKey, baseDir, filename, 0644)
}

func writeJWKSet(key jwk.Key, baseDir, filename string, perm os.FileMode) error {
	jwkSet := jwk.NewSet()
	if err := jwkSet.AddKey(key); err != nil {
		return WrapKeyManagementError(err, "failed to add key to JWK set")
	}

	jsonBytes, err := json.MarshalIndent(jwkSet, "", "  ")
	if err != nil {
		return WrapKeyManagementError(err, "failed to marshal JWK set")
	}

	root, err := os.OpenRoot(baseDir)
	if err != nil {
		return WrapKeyManagementError(err, fmt.Sprintf("failed to open root directory %s", baseDir))
	}
	defer root.Close()

	if err := root.WriteFile(filename, jsonBytes, perm); err != nil {
		return WrapKeyManagementError(err, "failed to write file")
	}
	return nil
}

// ReadEd25519PrivateKeyFromJWKFile loads an ED25519 private key from a JWK file
//
// Parameters:
//   - baseDir: The base directory to scope file access (e.g., "./keys")
//   - filename: The filename within the base directory (e.g., "alice.private.jwk")
func ReadEd25519PrivateKeyFromJWKFile(baseDir, filename string) (ed25519.PrivateKey, error) {
	raw, err := readJWKSet(baseDir, filename)
	if err != nil {
		return nil, err
	}

	privateKey, ok := raw.(ed25519.PrivateKey)
	if !ok {
		return nil, NewKeyManagementError(fmt.Sprintf("key is not an Ed25519 private key (got %T)", raw))
	}
	return privateKey, nil
}

// ReadEd25519PublicKeyFromJWKFile loads an ed25519 public key from a JWK file
//
//   - baseDir: The base directory to scope file access (e.g., "./keys")
//   - filename: The filename within the base directory (e.g., "alice.public.jwk")
func ReadEd25519PublicKeyFromJWKFile(baseDir, filename string) (ed25519.PublicKey, error) {
	raw, err := readJWKSet(baseDir, filename)
	if err != nil {
		return nil, err
	}

	publicKey, ok := raw.(ed25519.PublicKey)
	if !ok {
		return nil, NewKeyManagementError(fmt.Sprintf("key is not an Ed25519 public key (got %T)", raw))
	}
	return publicKey, nil
}

// readJWKSet returns the raw key exported from the first key in the set
func readJWKSet(baseDir, filename string) (any, error) {
	root, err := os.OpenRoot(baseDir)
	if err != nil {
		return nil, WrapKeyManagementError(err, fmt.Sprintf("failed to open root directory %s", baseDir))
	}
	defer root.Close()

	jsonBytes, err := root.ReadFile(filename)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to read file")
	}

	jwkSet, err := jwk.Parse(jsonBytes)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to parse JWK set")
	}

	if jwkSet.Len() == 0 {
		return nil, NewKeyManagementError("JWK set is empty")
	}

	jwkKey, ok := jwkSet.Key(0)
	if !ok {
		return nil, NewKeyManagementError("failed to get key from JWK set")
	}

	var raw any
	if err := jwk.Export(jwkKey, &raw); err != nil {
		return nil, WrapKeyManagementError(err, "failed to export key")
	}
	return raw, nil
}
