package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/tutor-backend/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	log, cfg, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Error("Failed to initialize app", "error", err)
		log.Sync()
		return err
	}
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		log.Error("Failed to start app", "error", err)
		return err
	}
	if err := a.Run(ctx); err != nil {
		log.Error("Server stopped with error", "error", err)
		return err
	}
	log.Info("Server stopped")
	return nil
}
