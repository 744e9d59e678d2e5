package main

import (
	"pocket-coach/internal/storage"
	"pocket-coach/pkg/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down]",
	Short: "Apply or roll back the embedded schema migrations",
	Args:  cobra.ExactArgs(1),
	ValidArgs: []string{
		string(storage.Up),
		string(storage.Down),
	},
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, appLogger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	return storage.RunMigrations(cfg.Database.URL(), storage.Direction(args[0]), appLogger)
}
