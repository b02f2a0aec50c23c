package cli

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/planetmint/planetmint-driver-go/internal/config"
	"github.com/planetmint/planetmint-driver-go/internal/logger"
	"github.com/planetmint/planetmint-driver-go/internal/version"
)

var (
	cfg       *config.ClientEnvironment
	appLogger *slog.Logger
)

func newRootCmd() *cobra.Command {
	var nodes []string

	rootCmd := &cobra.Command{
		Use:               "planetmint",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
		Short:             "Prepare, sign and send Planetmint transactions",
		Long: `Offline construction and fulfillment of Planetmint transactions
(CREATE, TRANSFER, COMPOSE, DECOMPOSE) plus a small client for the node HTTP API.

Nodes, headers and directories are read from the environment
(PLANETMINT_NODES, PLANETMINT_HEADERS, KEYS_DIR, STORE_DIR, ...).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.NewClientConfig()
			if err != nil {
				log.Printf("failed to load configuration: %v", err.Error())
				return err
			}
			if len(nodes) > 0 {
				cfg.Nodes = nodes
			}

			appLogger = logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
			return nil
		},
	}

	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)
	rootCmd.PersistentFlags().StringSliceVar(&nodes, "node", nil, "node endpoint, repeatable (overrides PLANETMINT_NODES)")

	rootCmd.AddCommand(
		newKeygenCmd(),
		newPrepareCmd(),
		newFulfillCmd(),
		newSendCmd(),
		newRetrieveCmd(),
		newOutputsCmd(),
		newInfoCmd(),
		newVerifyCmd(),
		newStoreCmd(),
	)
	return rootCmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
