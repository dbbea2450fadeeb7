package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yungbote/tutor-backend/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and indexes for the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, cfg, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		cfg.AutoMigrate = true
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		clients, _, err := app.OpenStore(ctx, log, cfg)
		if err != nil {
			return err
		}
		defer clients.Close(ctx)

		log.Info("Migration complete", "store", cfg.StoreBackend)
		return nil
	},
}
