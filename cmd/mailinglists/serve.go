package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/aman-churiwal/mailing-lists/internal/server"
	"github.com/aman-churiwal/mailing-lists/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(rt *runtimeState) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.cfg.Validate(); err != nil {
				return err
			}
			logger := rt.logger

			postgres, err := rt.openPostgres()
			if err != nil {
				return err
			}
			defer postgres.Close()
			logger.Info("connected to postgres")

			if migrate {
				if err := postgres.AutoMigrate(); err != nil {
					return err
				}
			}

			redis, err := storage.NewRedis(rt.cfg.Redis.GetRedisAddr(), rt.cfg.Redis.Password, rt.cfg.Redis.DB)
			if err != nil {
				return err
			}
			defer redis.Close()
			logger.Info("connected to redis", zap.String("addr", rt.cfg.Redis.GetRedisAddr()))

			srv, err := server.New(rt.cfg, redis, postgres, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Run(":" + rt.cfg.Server.Port)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("server forced to shutdown", zap.Error(err))
				return err
			}

			logger.Info("server exited")
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "Run schema migrations before serving")

	return cmd
}

func newMigrateCommand(rt *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			postgres, err := rt.openPostgres()
			if err != nil {
				return err
			}
			defer postgres.Close()

			if err := postgres.AutoMigrate(); err != nil {
				return err
			}

			rt.logger.Info("database schema migrated")
			return nil
		},
	}
}
