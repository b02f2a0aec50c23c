package cli

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/planetmint/planetmint-driver-go/internal/crypto"
)

func newKeygenCmd() *cobra.Command {
	var (
		name        string
		seedHex     string
		showPrivate bool
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an Ed25519 key pair",
		Long: `Generate an Ed25519 key pair and save it as JWK sets in KEYS_DIR
(<name>.private.jwk and <name>.public.jwk). The public key is printed in base58.

Example:
  planetmint keygen --name alice
  planetmint keygen --name test --seed 0101...01   # deterministic, 32 bytes hex`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed []byte
			if seedHex != "" {
				var err error
				if seed, err = hex.DecodeString(seedHex); err != nil {
					return fmt.Errorf("seed is not hex: %w", err)
				}
			}

			kp, err := crypto.GenerateKeypair(seed)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.KeysDir, 0o700); err != nil {
				return fmt.Errorf("failed to create keys directory: %w", err)
			}
			keyID, err := crypto.SaveKeypairToJWKFiles(kp, "", cfg.KeysDir, name)
			if err != nil {
				return err
			}
			appLogger.Debug("key pair saved",
				slog.String("name", name),
				slog.String("key_id", keyID),
				slog.String("dir", cfg.KeysDir))

			out := map[string]string{"name": name, "key_id": keyID, "public_key": kp.PublicKey}
			if showPrivate {
				out["private_key"] = kp.PrivateKey
			}
			return printJSON(cmd, out)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "key file name prefix (required)")
	cmd.Flags().StringVar(&seedHex, "seed", "", "32 byte seed in hex for a deterministic key")
	cmd.Flags().BoolVar(&showPrivate, "show-private", false, "also print the base58 private key")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
