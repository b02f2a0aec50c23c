package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planetmint/planetmint-driver-go/internal/offchain"
	"github.com/planetmint/planetmint-driver-go/internal/transaction"
)

func newPrepareCmd() *cobra.Command {
	var (
		argsPath  string
		operation string
	)

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Build an unsigned transaction",
		Long: `Build an unsigned transaction from a JSON argument document and print it.

The document has the fields operation, signers, recipients, assets, metadata
and inputs. Recipients are {"public_keys": [...], "amount": n}; assets are
{"id": txid}, {"cid": cid} or {"payload": any}.

Example:
  echo '{"signers":["G7J7..."],"assets":[{"payload":{"serial":1}}]}' | planetmint prepare --args -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd, argsPath)
			if err != nil {
				return err
			}
			args, err := offchain.ParseArgs(data)
			if err != nil {
				return err
			}
			if operation != "" {
				args.Operation = operation
			}

			tx, err := offchain.Prepare(args)
			if err != nil {
				return err
			}
			return printJSON(cmd, tx)
		},
	}

	cmd.Flags().StringVar(&argsPath, "args", "-", "argument document, - for stdin")
	cmd.Flags().StringVar(&operation, "operation", "", fmt.Sprintf("override the operation (%v)", transaction.Operations))
	return cmd
}
