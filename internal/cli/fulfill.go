package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/planetmint/planetmint-driver-go/internal/transaction"
)

func newFulfillCmd() *cobra.Command {
	var (
		txPath  string
		names   []string
		rawKeys []string
		noSave  bool
	)

	cmd := &cobra.Command{
		Use:   "fulfill",
		Short: "Sign every input of a prepared transaction",
		Long: `Sign every input of a prepared transaction and print the fulfilled transaction.
Keys are loaded from KEYS_DIR by name or given as base58 private keys.
The result is kept in the local store unless --no-save is set.

Example:
  planetmint prepare --args create.json | planetmint fulfill --key alice`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tx, err := readTransaction(cmd, txPath)
			if err != nil {
				return err
			}
			keys, err := privateKeys(names, rawKeys)
			if err != nil {
				return err
			}

			signed, err := transaction.Fulfill(tx, keys)
			if err != nil {
				return err
			}
			if !noSave {
				if err := saveTransaction(signed); err != nil {
					return err
				}
				appLogger.Debug("transaction saved", slog.String("id", signed.TxID()))
			}
			return printJSON(cmd, signed)
		},
	}

	cmd.Flags().StringVar(&txPath, "tx", "-", "prepared transaction, - for stdin")
	cmd.Flags().StringArrayVar(&names, "key", nil, "name of a key in KEYS_DIR, repeatable")
	cmd.Flags().StringArrayVar(&rawKeys, "private-key", nil, "base58 private key, repeatable")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not keep the result in the local store")
	return cmd
}
