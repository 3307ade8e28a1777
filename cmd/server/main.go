package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/config"
	"github.com/yukikurage/goal-boards-api/internal/database"
	"github.com/yukikurage/goal-boards-api/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "goal-boards",
		Short:         "Shared goal boards with a REST API and a chat bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to the YAML config file (overrides CONFIG_PATH)")

	root.AddCommand(newServeCmd(), newBotCmd(), newMigrateCmd())
	return root
}

// app holds what every command needs: configuration, a logger and an open
// database.
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func bootstrap(cmd *cobra.Command) (*app, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := os.Setenv("CONFIG_PATH", path); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			return database.Migrate(a.db, a.log)
		},
	}
}
