package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/planetmint/planetmint-driver-go/internal/crypto"
	"github.com/planetmint/planetmint-driver-go/internal/driver"
	"github.com/planetmint/planetmint-driver-go/internal/transaction"
	"github.com/planetmint/planetmint-driver-go/internal/transport"
	"github.com/planetmint/planetmint-driver-go/internal/txstore"
)

// printJSON writes v to the command's output, indented.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func readTransaction(cmd *cobra.Command, path string) (*transaction.Transaction, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	var tx transaction.Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	return &tx, nil
}

// privateKeys collects raw base58 keys and the keys stored under names in KEYS_DIR.
func privateKeys(names, raw []string) ([]string, error) {
	keys := append([]string(nil), raw...)
	for _, name := range names {
		kp, err := crypto.ReadKeypairFromJWKFile(cfg.KeysDir, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load key %q: %w", name, err)
		}
		keys = append(keys, kp.PrivateKey)
	}
	return keys, nil
}

func openStore() (*txstore.Store, error) {
	if err := os.MkdirAll(cfg.StoreDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return txstore.Open(cfg.StoreDir)
}

// saveTransaction keeps a fulfilled transaction in the local store.
func saveTransaction(tx *transaction.Transaction) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Put(tx)
}

func newDriver() (*driver.Driver, error) {
	headers, err := cfg.HTTPHeaders()
	if err != nil {
		return nil, err
	}

	opts := []transport.Option{
		transport.WithTimeout(cfg.RequestTimeout),
		transport.WithLogger(appLogger),
	}
	if cfg.RateLimitRPS > 0 {
		opts = append(opts, transport.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	return driver.NewFromNodes(transport.Endpoints(cfg.Nodes...), headers, opts, driver.WithLogger(appLogger)), nil
}
