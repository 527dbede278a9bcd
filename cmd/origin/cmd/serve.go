package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/universa-bio/origin/internal/api"
	"github.com/universa-bio/origin/internal/config"
	"github.com/universa-bio/origin/internal/diagnostics"
	"github.com/universa-bio/origin/internal/events"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the origin REST API server.

The server exposes session management, stage triggers and structure
download endpoints, plus an SSE stream of stage lifecycle events.

Examples:
  # Start with defaults (:8090)
  origin serve

  # Start on a custom address
  origin serve --addr 127.0.0.1:3000`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"listen address (default from config, :8090)")
}

func runServe(_ *cobra.Command, _ []string) error {
	logger := newLogger()

	loader := newLoader()
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	addr := cfg.HTTP.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	bus := events.NewBus(256)
	defer bus.Close()

	manager := buildManager(cfg, bus, logger)
	server := api.NewServer(manager, bus, api.WithLogger(logger))

	// Live-reload note: collaborator endpoints are captured at session
	// construction, so a config change applies to sessions created
	// after the reload.
	watcher := config.NewWatcher(loader, logger, func(newCfg *config.Config) {
		if err := config.ValidateConfig(newCfg); err != nil {
			logger.Warn("reloaded config invalid, keeping previous", "error", err)
			return
		}
		manager.UpdateDefaults(newCfg.SessionSettings())
	})
	if err := watcher.Start(); err != nil {
		logger.Warn("config watching disabled", "error", err)
	}
	defer watcher.Stop()

	logger.Info("host", "summary", diagnostics.HostSummary())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(ctx, addr, shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}
