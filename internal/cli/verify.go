package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planetmint/planetmint-driver-go/internal/transaction"
)

func newVerifyCmd() *cobra.Command {
	var txPath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the id and fulfillments of a transaction",
		Long: `Check that a fulfilled transaction's id matches its content and that every
input's fulfillment satisfies the owners' condition. Nothing is sent to the node.

Example:
  planetmint verify --tx transfer.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tx, err := readTransaction(cmd, txPath)
			if err != nil {
				return err
			}
			if err := transaction.Verify(tx); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok %s %s\n", tx.Operation, tx.TxID())
			return err
		},
	}

	cmd.Flags().StringVar(&txPath, "tx", "-", "transaction file, - for stdin")
	return cmd
}
