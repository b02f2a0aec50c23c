package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the local transaction store",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored transactions as id and operation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			txs, err := store.List()
			if err != nil {
				return err
			}
			for _, tx := range txs {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", tx.TxID(), tx.Operation); err != nil {
					return err
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <txid>",
		Short: "Print a stored transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			tx, err := store.Get(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, tx)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <txid>",
		Short: "Remove a transaction from the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Delete(args[0])
		},
	})
	return cmd
}
