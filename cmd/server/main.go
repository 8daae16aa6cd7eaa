package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"estate_market_backend/internal/app"
	"estate_market_backend/internal/config"
	"estate_market_backend/internal/platform/database"
	platformes "estate_market_backend/internal/platform/elasticsearch"
	"estate_market_backend/internal/platform/logger"
	"estate_market_backend/internal/property"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "estate-market",
		Short:         "Estate marketplace API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	rootCmd.AddCommand(serveCmd(), migrateCmd(), syncPropertiesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, cleanup, err := database.NewGORM(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := database.AutoMigrate(db, app.Models()...); err != nil {
				return err
			}
			log.Info("Database schema migrated", zap.Int("models", len(app.Models())))
			return nil
		},
	}
}

func syncPropertiesCmd() *cobra.Command {
	var (
		batchSize int
		refresh   string
	)
	cmd := &cobra.Command{
		Use:   "sync-properties",
		Short: "Re-index every property into Elasticsearch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, cleanup, err := database.NewGORM(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			esClient, err := platformes.NewClient(cfg, log)
			if err != nil {
				return err
			}
			if esClient == nil {
				return fmt.Errorf("ELASTICSEARCH_URL must be set to sync properties")
			}

			ctx := cmd.Context()
			if err := platformes.CreatePropertiesIndexIfNotExists(ctx, esClient, log); err != nil {
				return err
			}

			result, err := property.BulkSync(ctx, property.NewGORMRepository(db), esClient, log, batchSize, refresh)
			if err != nil {
				return err
			}
			log.Info("Property synchronization completed", zap.Int("synced", result.Synced), zap.Int("failed", result.Failed))
			if result.Failed > 0 {
				return fmt.Errorf("%d properties failed to sync", result.Failed)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "Number of properties per bulk request")
	cmd.Flags().StringVar(&refresh, "es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")
	return cmd
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	defer cleanup()
	log := server.AppLogger
	defer log.Sync()

	if server.ESClient != nil {
		if err := platformes.CreatePropertiesIndexIfNotExists(context.Background(), server.ESClient, log); err != nil {
			log.Error("Failed to create Elasticsearch properties index", zap.Error(err))
		}
	} else {
		log.Info("Elasticsearch client not initialized, skipping index creation")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	log.Info("Server shutdown complete")
	return nil
}
