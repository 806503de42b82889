package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/heist/internal/adapters/detector"
	"github.com/okian/heist/internal/adapters/http/api"
	"github.com/okian/heist/internal/adapters/http/swagger"
	app "github.com/okian/heist/internal/app"
	"github.com/okian/heist/internal/config"
	"github.com/okian/heist/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the game HTTP server",
	Long: `Start the HTTP server that serves levels, scores runs, keeps the
high score table and classifies uploaded webcam frames.

Configuration is read from defaults, an optional YAML file named by
HEIST_CONFIG, then HEIST_* environment variables.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides HEIST_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(svc, cfg),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})
	g.Go(func() error {
		startServiceMetricsUpdater(gctx, svc)
		return nil
	})
	g.Go(func() error {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout())
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(ctx, "server shutdown failed", logger.Error(err))
		}
		if err := svc.Stop(shutdownCtx); err != nil {
			log.Error(ctx, "service stop failed", logger.Error(err))
		}
		log.Info(ctx, "server stopped")
		return nil
	})

	return g.Wait()
}

// newService builds the game service from cfg.
func newService(cfg *config.Config) (*app.Service, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("build level catalog: %w", err)
	}

	factory := detector.NewFactory(cfg.DetectorArgs(), detector.WithIdleTimeout(cfg.DetectorIdleTimeout()))

	return app.New(
		app.WithLogger(logger.Get().Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithScoreboardCapacity(cfg.ScoreboardCapacity),
		app.WithCatalog(catalog),
		app.WithObstacleSeed(cfg.ObstacleSeed),
		app.WithClassifier(cfg.Classifier()),
		app.WithDetectorFactory(factory),
		app.WithDetectTimeout(cfg.DetectTimeout()),
	), nil
}

// newHandler wires the API and docs routes behind the shared middleware.
func newHandler(svc *app.Service, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Register the ReDoc page and the raw OpenAPI document
	swagger.Register(mux)

	// Register game API routes with the service dependency.
	api.NewServer(svc, api.WithMaxUploadBytes(cfg.MaxUploadBytes)).Register(mux)

	return api.CORS(api.RequestID(mux))
}
