package main

import (
	"errors"
	"fmt"

	"github.com/aman-churiwal/mailing-lists/internal/config"
	"github.com/aman-churiwal/mailing-lists/internal/logging"
	"github.com/aman-churiwal/mailing-lists/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runtimeState struct {
	configPath string
	envFile    string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCommand() *cobra.Command {
	rt := &runtimeState{}

	root := &cobra.Command{
		Use:           "mailinglists",
		Short:         "Mailing list subscriptions, campaigns and exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", "config.yaml", "Path to config file")
	root.PersistentFlags().StringVar(&rt.envFile, "env-file", ".env", "Path to dotenv file")

	root.AddCommand(
		newServeCommand(rt),
		newMigrateCommand(rt),
		newAdminCommand(rt),
		newListsCommand(rt),
	)

	return root
}

func (rt *runtimeState) load() error {
	// A missing .env is fine, real deployments set the environment directly
	_ = godotenv.Load(rt.envFile)

	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return err
	}
	rt.cfg = cfg

	logger, err := logging.New(cfg.Server.Environment)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	rt.logger = logger

	return nil
}

func (rt *runtimeState) openPostgres() (*storage.Postgres, error) {
	if rt.cfg.Database.DSN == "" {
		return nil, errors.New("database.dsn is required")
	}

	return storage.NewPostgres(rt.cfg.Database.DSN, rt.cfg.Server.Environment == "development")
}
