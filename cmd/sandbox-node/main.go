// sandbox-node runs a single process node speaking the Planetmint /api/v1 HTTP API,
// backed by a leveldb transaction store. It is meant for development and tests.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/planetmint/planetmint-driver-go/internal/config"
	"github.com/planetmint/planetmint-driver-go/internal/logger"
	"github.com/planetmint/planetmint-driver-go/internal/server"
	"github.com/planetmint/planetmint-driver-go/internal/txstore"
	"github.com/planetmint/planetmint-driver-go/internal/version"
)

func main() {
	cmd := &cobra.Command{
		Use:   "sandbox-node",
		Short: "Planetmint compatible sandbox node",
		Long: `Accepts fulfilled transactions over /api/v1, checks their ids and fulfillments
and keeps them in a local leveldb ledger. There is no consensus.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	v := version.Get()
	cmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewNodeConfig()
	if err != nil {
		log.Printf("failed to load configuration: %v", err.Error())
		os.Exit(1)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	appLogger.Info("Configuration loaded",
		slog.String("ENVIRONMENT", cfg.Environment),
		slog.String("HOST", cfg.Host),
		slog.Int("PORT", cfg.Port),
		slog.String("LOG_LEVEL", cfg.LogLevel),
		slog.String("STORE_DIR", cfg.StoreDir),
		slog.Int64("MAX_REQUEST_SIZE", cfg.MaxRequestSize),
		slog.Int("RATE_LIMIT_RPS", int(cfg.RateLimitRPS)),
	)

	if err := os.MkdirAll(cfg.StoreDir, 0o755); err != nil {
		appLogger.Error("Unable to create store directory", slog.String("error", err.Error()))
		os.Exit(1)
	}
	store, err := txstore.Open(cfg.StoreDir)
	if err != nil {
		appLogger.Error("Unable to open transaction store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			appLogger.Warn("store close error", slog.String("error", err.Error()))
		}
		appLogger.Info("transaction store closed")
	}()

	appLogger.Info("Starting sandbox node", slog.String("version", version.Get().Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.NewServer(store, cfg, appLogger).Start(ctx); err != nil {
		appLogger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("server shutdown complete")
	return nil
}
