package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andreas2301/genericllmadapter/internal/analysis"
	"github.com/andreas2301/genericllmadapter/internal/api"
	"github.com/andreas2301/genericllmadapter/internal/chat"
	"github.com/andreas2301/genericllmadapter/internal/config"
	"github.com/andreas2301/genericllmadapter/internal/llm/factory"
	"github.com/andreas2301/genericllmadapter/internal/logger"
	"github.com/andreas2301/genericllmadapter/internal/metrics"
	"github.com/andreas2301/genericllmadapter/internal/probe"
	"github.com/andreas2301/genericllmadapter/internal/storage"
	"github.com/andreas2301/genericllmadapter/internal/storage/archive"
	"github.com/andreas2301/genericllmadapter/internal/user"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the adapter server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Initialize logger
	log := logger.Must(debug)
	defer log.Sync()

	// Load config
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	archiveStorage, err := newArchive(cfg.Storage.Archive)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}

	var registry *metrics.Registry
	if cfg.Metrics.Enabled {
		registry = metrics.NewRegistry()
	}

	var scorer chat.Scorer
	if cfg.Analysis.Enabled {
		scorer = analysis.New(cfg.Analysis.URL, cfg.Analysis.Timeout, log)
	}

	users := user.NewService(store, log)
	chatService := chat.NewService(store, factory.New(cfg.Providers), scorer, registry, log)

	log.Info("starting adapter server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("analysis", cfg.Analysis.Enabled),
	)

	server := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		MetricsPath: cfg.Metrics.Path,
	}, api.Deps{
		Users:    users,
		Tokens:   users,
		Chat:     chatService,
		Prober:   probe.New(cfg.Providers.LocalVLLM.BaseURL),
		Archive:  archiveStorage,
		Registry: registry,
	}, log)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down adapter server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}

func newArchive(cfg config.ArchiveConfig) (archive.Storage, error) {
	switch cfg.Type {
	case "", "localfs":
		return archive.NewLocalFS(cfg.Path)
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown archive type %q", cfg.Type)
	}
}
