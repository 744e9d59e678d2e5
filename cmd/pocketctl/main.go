package main

import (
	"context"
	"fmt"
	"os"

	"pocket-coach/pkg/config"
	"pocket-coach/pkg/logger"
	"pocket-coach/pkg/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "pocketctl",
	Short: "Maintenance commands for the Pocket Coach database",
	Long: `pocketctl runs schema migrations and seeds reference data.

Available subcommands:
  migrate - Apply or roll back the schema
  seed    - Insert default categories and coach tips`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(migrateCmd, seedCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config and the logger shared by every subcommand.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Logger.Level); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger.Get(), nil
}

func connect(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) (*pgxpool.Pool, error) {
	return postgres.NewPool(ctx, &cfg.Database, appLogger)
}
