package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scarepick/internal/config"
	"github.com/felixgeelhaar/scarepick/internal/health"
	"github.com/felixgeelhaar/scarepick/internal/library"
	"github.com/felixgeelhaar/scarepick/internal/log"
	"github.com/felixgeelhaar/scarepick/internal/metrics"
	"github.com/felixgeelhaar/scarepick/internal/server"
	"github.com/felixgeelhaar/scarepick/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz over HTTP",
	Long: `Start an HTTP server that runs one quiz session per player.

The JSON API lives under /api/v1 and is described at /api/v1/openapi.json.
The server also answers Kubernetes-style health probes:
  /health/live    - Liveness probe (process alive and responsive)
  /health/ready   - Readiness probe (quiz data loaded, not shutting down)
  /health/startup - Startup probe (finished initialization)
  /healthz        - Backward-compatible readiness endpoint
and exposes Prometheus metrics at /metrics.

With --watch the data files are reloaded when they change. Running
sessions keep the data they started with.

The server shuts down gracefully on SIGTERM or SIGINT, failing readiness
before draining connections.

Example:
  # Start server on the configured address (default 0.0.0.0:8080)
  scarepick serve

  # Serve your own data and pick up edits
  scarepick serve --questions data/questions.json --movies data/movies.json --watch`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddress string
	serveWatch   bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "address to listen on (default from config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload data files when they change")

	rootCmd.AddCommand(serveCmd)
}

// serveConfig applies the serve flags to a copy of the settings.
func serveConfig(cmd *cobra.Command) *config.Config {
	c := *settings
	if cmd.Flags().Changed("address") {
		c.Server.Address = serveAddress
	}
	if cmd.Flags().Changed("watch") {
		c.Data.Watch = serveWatch
	}
	return &c
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := serveConfig(cmd)

	logger := newLogger(cfg, "json")
	log.SetDefaultLogger(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lib, err := loadLibrary(ctx, cfg)
	if err != nil {
		return err
	}

	registry, m := metrics.NewRegistry()
	m.RecordData(lib.Fingerprint, lib.Graph.Len(), lib.Store.Len())

	current := func() *library.Library { return lib }
	if cfg.Data.Watch {
		w, err := library.NewWatcher(lib, library.WithLogger(logger))
		if err != nil {
			return err
		}
		w.OnChange(func(l *library.Library) {
			m.RecordData(l.Fingerprint, l.Graph.Len(), l.Store.Len())
		})
		current = w.Current

		go func() {
			if err := w.Run(ctx); err != nil {
				logger.WithError(err).Error("data watcher stopped")
			}
		}()
	}

	info := version.GetInfo()
	pm := health.NewProbeManager(info.Version)
	pm.AddChecker(health.NewLibraryChecker(current))
	pm.AddChecker(health.NewReferenceChecker(current))

	srv, err := server.NewServer(server.Config{
		Address:         cfg.Server.Address,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		SessionTTL:      cfg.Server.SessionTTL,
		MaxSessions:     cfg.Server.MaxSessions,
		CORSOrigins:     cfg.Server.CORSOrigins,
		Version:         info.Version,
	}, server.Deps{
		Library:  current,
		Probes:   pm,
		Metrics:  m,
		Gatherer: registry,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	logger.Info("starting scarepick",
		"version", info.Version,
		"address", cfg.Server.Address,
		"watch", cfg.Data.Watch,
		"questions", lib.Graph.Len(),
		"movies", lib.Store.Len(),
	)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("shutting down", "reason", context.Cause(ctx).Error())

		// ctx is already done; the server bounds draining itself.
		if err := srv.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		<-serverErr

		logger.Info("server stopped gracefully")
		return nil
	}
}
