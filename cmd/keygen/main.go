// keygen generates Ed25519 key pairs for ledger accounts, printed in base58 and
// saved as JWK sets, without needing any client configuration.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/planetmint/planetmint-driver-go/internal/crypto"
	"github.com/planetmint/planetmint-driver-go/internal/version"
)

var (
	names     []string
	outputDir string
	kid       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "keygen",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		Short:             "Ed25519 key generator for Planetmint accounts",
		Long:              "Generate base58 Ed25519 key pairs and save them in JWK format",
	}

	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one key pair per name",
		Long:  "Generate a key pair for each --name and write name.public.jwk and name.private.jwk to the output directory",
		RunE:  runGenerate,
	}
	generateCmd.Flags().StringSliceVarP(&names, "name", "n", nil, "Key name, repeatable [required]")
	generateCmd.Flags().StringVarP(&outputDir, "outputdir", "o", "", "Output directory for generated keys [required]")
	generateCmd.Flags().StringVarP(&kid, "kid", "k", "", "Key ID, only with a single name (default: thumbprint)")
	generateCmd.MarkFlagRequired("name")
	generateCmd.MarkFlagRequired("outputdir")

	deriveCmd := &cobra.Command{
		Use:   "derive <base58-private-key>",
		Short: "Print the public key of a private key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			publicKey, err := crypto.PublicKeyFromPrivate(args[0])
			if err != nil {
				return err
			}
			fmt.Println(publicKey)
			return nil
		},
	}

	rootCmd.AddCommand(generateCmd, deriveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if kid != "" && len(names) > 1 {
		return fmt.Errorf("--kid can only be used with a single --name")
	}

	if err := os.MkdirAll(outputDir, 0o700); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, name := range names {
		keypair, err := crypto.GenerateKeypair(nil)
		if err != nil {
			return fmt.Errorf("failed to generate key pair for %s: %w", name, err)
		}

		keyID, err := crypto.SaveKeypairToJWKFiles(keypair, kid, outputDir, name)
		if err != nil {
			return fmt.Errorf("failed to save key pair for %s: %w", name, err)
		}

		fmt.Printf("%s\n", name)
		fmt.Printf("  public key:  %s\n", keypair.PublicKey)
		fmt.Printf("  kid:         %s\n", keyID)
		fmt.Printf("  public JWK:  %s\n", filepath.Join(outputDir, fmt.Sprintf(crypto.PublicKeyFileNameFormat, name)))
		fmt.Printf("  private JWK: %s\n", filepath.Join(outputDir, fmt.Sprintf(crypto.PrivateKeyFileNameFormat, name)))
	}
	return nil
}
