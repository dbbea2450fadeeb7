package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/tutor-backend/internal/app"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:           "tutor-backend",
	Short:         "AI tutoring backend",
	Long:          "Serves lessons, progress tracking, recommendations and learning analytics over HTTP.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("log-mode", "", "Logger mode: development or production (overrides LOG_MODE)")
	rootCmd.PersistentFlags().String("env-file", "", "Load variables from this file instead of .env")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tokenCmd)
}

// bootstrap builds the logger and loads configuration shared by every
// command. Flags win over LOG_MODE and .env.
func bootstrap(cmd *cobra.Command) (*logger.Logger, app.Config, error) {
	mode, _ := cmd.Flags().GetString("log-mode")
	if mode == "" {
		mode = os.Getenv("LOG_MODE")
	}
	if mode == "" {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, app.Config{}, fmt.Errorf("init logger: %w", err)
	}

	if path, _ := cmd.Flags().GetString("env-file"); path != "" {
		if err := app.LoadEnvFile(path); err != nil {
			return nil, app.Config{}, err
		}
	} else {
		app.LoadDotEnv(log)
	}

	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, app.Config{}, err
	}
	return log, cfg, nil
}
