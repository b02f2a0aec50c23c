package crypto

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const (
	alicePrivateKey = "CT6nWhSyE7dF2znpx3vwXuceSrmeMy9ChBfi9U92HMSP"
	alicePublicKey  = "G7J7bXF8cqSrjrxUKwcF8tCriEKC5CgyPHmtGwUi4BK3"
)

func TestPublicKeyFromPrivate(t *testing.T) {
	got, err := PublicKeyFromPrivate(alicePrivateKey)
	if err != nil {
		t.Fatalf("PublicKeyFromPrivate() returned error: %v", err)
	}
	if got != alicePublicKey {
		t.Errorf("PublicKeyFromPrivate() = %s, want %s", got, alicePublicKey)
	}
}

func TestGenerateKeypair(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)

	tests := []struct {
		name    string
		seed    []byte
		wantErr bool
	}{
		{"random seed", nil, false},
		{"fixed seed", seed, false},
		{"short seed", []byte{1, 2, 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keypair, err := GenerateKeypair(tt.seed)
			if tt.wantErr {
				var cryptoErr *CryptoError
				if !errors.As(err, &cryptoErr) || cryptoErr.Code() != ErrCodeKeyManagement {
					t.Fatalf("expected key management error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateKeypair() returned error: %v", err)
			}

			derived, err := PublicKeyFromPrivate(keypair.PrivateKey)
			if err != nil {
				t.Fatalf("PublicKeyFromPrivate() returned error: %v", err)
			}
			if derived != keypair.PublicKey {
				t.Errorf("public key %s does not match private key (derived %s)", keypair.PublicKey, derived)
			}
		})
	}

	// same seed, same keys
	a, _ := GenerateKeypair(seed)
	b, _ := GenerateKeypair(seed)
	if *a != *b {
		t.Errorf("GenerateKeypair() is not deterministic for a fixed seed")
	}
}

func TestDecodeKeys(t *testing.T) {
	tests := []struct {
		name    string
		decode  func(string) error
		input   string
		wantErr bool
	}{
		{"valid public key", func(s string) error { _, err := DecodePublicKey(s); return err }, alicePublicKey, false},
		{"empty public key", func(s string) error { _, err := DecodePublicKey(s); return err }, "", true},
		{"bad base58 public key", func(s string) error { _, err := DecodePublicKey(s); return err }, "0OIl", true},
		{"short public key", func(s string) error { _, err := DecodePublicKey(s); return err }, "3yZe7d", true},
		{"valid private key", func(s string) error { _, err := DecodePrivateKey(s); return err }, alicePrivateKey, false},
		{"empty private key", func(s string) error { _, err := DecodePrivateKey(s); return err }, "", true},
		{"bad base58 private key", func(s string) error { _, err := DecodePrivateKey(s); return err }, "not-base58!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decode(tt.input)
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

// generate a key pair, save it to JWK files, read it back and compare
func TestSaveAndReadKeypairJWK(t *testing.T) {
	keypair, err := GenerateKeypair(nil)
	if err != nil {
		t.Fatalf("failed to generate key pair: %v", err)
	}

	tmpDir := t.TempDir()

	keyID, err := SaveKeypairToJWKFiles(keypair, "", tmpDir, "alice")
	if err != nil {
		t.Fatalf("failed to save key pair: %v", err)
	}
	if keyID == "" {
		t.Error("expected generated key ID")
	}

	loaded, err := ReadKeypairFromJWKFile(tmpDir, "alice")
	if err != nil {
		t.Fatalf("failed to load key pair: %v", err)
	}
	if *loaded != *keypair {
		t.Errorf("loaded key pair %+v does not match original %+v", loaded, keypair)
	}

	publicKey, err := ReadPublicKeyFromJWKFile(tmpDir, "alice")
	if err != nil {
		t.Fatalf("failed to load public key: %v", err)
	}
	if publicKey != keypair.PublicKey {
		t.Errorf("loaded public key %s, want %s", publicKey, keypair.PublicKey)
	}

	// Verify file permissions
	info, err := os.Stat(filepath.Join(tmpDir, "alice.private.jwk"))
	if err != nil {
		t.Fatalf("failed to stat private key file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("private key file permissions = %o, want 0600", info.Mode().Perm())
	}

	// the public file does not hold a private key
	if _, err := ReadEd25519PrivateKeyFromJWKFile(tmpDir, "alice.public.jwk"); err == nil {
		t.Error("expected error reading a private key from the public key file")
	}
}
