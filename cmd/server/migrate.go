package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vikasavnish/movein/internal/config"
	"github.com/vikasavnish/movein/internal/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			setupLogging(cfg.Server.LogLevel)

			database, err := db.Connect(cfg.Database)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			return db.Migrate(database)
		},
	}
}
