package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/planetmint/planetmint-driver-go/internal/crypto"
	"github.com/planetmint/planetmint-driver-go/internal/driver"
	"github.com/planetmint/planetmint-driver-go/internal/transaction"
)

func newSendCmd() *cobra.Command {
	var (
		txPath string
		txID   string
		mode   string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit a fulfilled transaction to the node",
		Long: `Submit a fulfilled transaction, read from a file or from the local store by id.

Example:
  planetmint send --id 3b1f... --mode commit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				tx  *transaction.Transaction
				err error
			)
			switch {
			case txID != "":
				store, openErr := openStore()
				if openErr != nil {
					return openErr
				}
				tx, err = store.Get(txID)
				_ = store.Close()
			case txPath != "":
				tx, err = readTransaction(cmd, txPath)
			default:
				return errors.New("one of --tx or --id is required")
			}
			if err != nil {
				return err
			}

			d, err := newDriver()
			if err != nil {
				return err
			}
			sent, err := d.Transactions.Send(cmd.Context(), tx, driver.Mode(mode), nil)
			if err != nil {
				return err
			}
			return printJSON(cmd, sent)
		},
	}

	cmd.Flags().StringVar(&txPath, "tx", "", "fulfilled transaction file, - for stdin")
	cmd.Flags().StringVar(&txID, "id", "", "id of a transaction in the local store")
	cmd.Flags().StringVar(&mode, "mode", string(driver.ModeCommit), "async, sync or commit")
	cmd.MarkFlagsMutuallyExclusive("tx", "id")
	return cmd
}

func newRetrieveCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "retrieve <txid>",
		Short: "Fetch a transaction from the node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDriver()
			if err != nil {
				return err
			}
			tx, err := d.Transactions.Retrieve(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			if save {
				if err := saveTransaction(tx); err != nil {
					return err
				}
			}
			return printJSON(cmd, tx)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "keep the transaction in the local store")
	return cmd
}

func newOutputsCmd() *cobra.Command {
	var (
		publicKey string
		keyName   string
		spent     string
	)

	cmd := &cobra.Command{
		Use:   "outputs",
		Short: "List the outputs held by a public key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if keyName != "" {
				pk, err := crypto.ReadPublicKeyFromJWKFile(cfg.KeysDir, keyName)
				if err != nil {
					return err
				}
				publicKey = pk
			}
			if publicKey == "" {
				return errors.New("one of --public-key or --key is required")
			}

			var spentFilter *bool
			if spent != "" {
				value, err := strconv.ParseBool(spent)
				if err != nil {
					return fmt.Errorf("--spent must be true or false: %w", err)
				}
				spentFilter = &value
			}

			d, err := newDriver()
			if err != nil {
				return err
			}
			outputs, err := d.Outputs.Get(cmd.Context(), publicKey, spentFilter, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd, outputs)
		},
	}

	cmd.Flags().StringVar(&publicKey, "public-key", "", "base58 public key")
	cmd.Flags().StringVar(&keyName, "key", "", "name of a key in KEYS_DIR")
	cmd.Flags().StringVar(&spent, "spent", "", "true for spent, false for unspent, empty for both")
	cmd.MarkFlagsMutuallyExclusive("public-key", "key")
	return cmd
}

func newInfoCmd() *cobra.Command {
	var apiOnly bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the node's root or API document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := newDriver()
			if err != nil {
				return err
			}
			get := d.Info
			if apiOnly {
				get = d.APIInfo
			}
			body, err := get(cmd.Context(), nil)
			if err != nil {
				return err
			}
			return printJSON(cmd, body)
		},
	}

	cmd.Flags().BoolVar(&apiOnly, "api", false, "show /api/v1 instead of /")
	return cmd
}
