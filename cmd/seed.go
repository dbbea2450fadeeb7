package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/tutor-backend/internal/app"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/learning/catalog"
	"github.com/yungbote/tutor-backend/internal/services"
)

var seedCmd = &cobra.Command{
	Use:   "seed-lessons",
	Short: "Insert or refresh the starter lesson catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, cfg, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		lessons, err := loadCatalog(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		clients, rs, err := app.OpenStore(ctx, log, cfg)
		if err != nil {
			return err
		}
		defer clients.Close(ctx)

		n, err := services.NewLessonService(log, rs.Set, nil, nil, nil, nil).Seed(ctx, lessons)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d lessons\n", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().String("file", "", "YAML catalog to load instead of the built-in lessons")
}

func loadCatalog(cmd *cobra.Command) ([]*types.Lesson, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		return catalog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return catalog.Load(f)
}
