package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"leadgen-service/internal/config"
	"leadgen-service/internal/infra/memory"
	pgcontent "leadgen-service/internal/infra/postgres"
	"leadgen-service/internal/logging"
)

// NewContentCmd groups content management subcommands.
func NewContentCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Manage site content stored in Postgres",
	}
	cmd.AddCommand(newContentPushCmd(configPath))
	return cmd
}

func newContentPushCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Upsert a YAML content file into the site_content table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.Content.Path
			}
			if file == "" {
				return fmt.Errorf("no content file given; use --file or content.path")
			}
			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return pushContent(cmd.Context(), cfg, file, logger)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "content YAML file (defaults to content.path)")
	return cmd
}

func pushContent(ctx context.Context, cfg config.Config, file string, logger *zap.Logger) error {
	if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
		return err
	}
	seed, err := memory.NewFileContentLoader(file).LoadContent(ctx)
	if err != nil {
		return err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	n, err := pgcontent.NewContentLoader(pool).Publish(ctx, seed)
	if err != nil {
		return err
	}
	logger.Info("content published", zap.String("file", file), zap.Int("rows", n))
	return nil
}
