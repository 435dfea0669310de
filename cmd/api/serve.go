package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/pkordes/viewpoint-explorer/backend/internal/config"
	"github.com/pkordes/viewpoint-explorer/backend/internal/db"
	"github.com/pkordes/viewpoint-explorer/backend/internal/handler"
	"github.com/pkordes/viewpoint-explorer/backend/internal/metrics"
	"github.com/pkordes/viewpoint-explorer/backend/internal/middleware"
	"github.com/pkordes/viewpoint-explorer/backend/internal/repo"
	"github.com/pkordes/viewpoint-explorer/backend/internal/sample"
	"github.com/pkordes/viewpoint-explorer/backend/internal/service"
	"github.com/pkordes/viewpoint-explorer/backend/internal/telemetry"
)

const (
	shutdownTimeout = 15 * time.Second
	maxBodyBytes    = 1 << 20
)

func newServeCommand() *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the viewpoint catalogue over HTTP",
		Long: "Serve the viewpoint catalogue over HTTP. Configuration is read from the\n" +
			"environment; flags override it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromViper(v)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("port", "8080", "TCP port to listen on")
	flags.String("log-level", "info", "Minimum log level: debug, info, warn, error")
	flags.String("cors-origins", "", "Comma-separated list of allowed origins (empty allows all)")
	flags.Bool("sample", false, "Serve the embedded sample catalogue instead of a database")
	flags.Bool("detail-published-only", false, "Answer 404 for viewpoints that are not published")

	for key, name := range map[string]string{
		config.KeyPort:                "port",
		config.KeyLogLevel:            "log-level",
		config.KeyCORSOrigins:         "cors-origins",
		config.KeySampleMode:          "sample",
		config.KeyDetailPublishedOnly: "detail-published-only",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	return cmd
}

// serve runs the HTTP server until SIGINT, SIGTERM or ctx cancellation, then
// gives in-flight requests up to shutdownTimeout to complete.
func serve(ctx context.Context, cfg config.Config) error {
	// --- Logger -----------------------------------------------------------
	logger := newLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	// --- Error reporting --------------------------------------------------
	reporter, err := telemetry.Init(cfg.SentryDSN, cfg.SentryEnvironment, version)
	if err != nil {
		return err
	}
	defer reporter.Flush(2 * time.Second)

	var errorReporter handler.ErrorReporter
	if reporter != nil {
		errorReporter = reporter
		slog.Info("error reporting enabled", "environment", cfg.SentryEnvironment)
	}

	// --- Metrics ----------------------------------------------------------
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		if m, err = metrics.New(registry); err != nil {
			return err
		}
	}

	// --- Catalogue --------------------------------------------------------
	catalogue, closeCatalogue, err := openCatalogue(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCatalogue()

	api := handler.NewServer(service.NewViewpointService(catalogue, m), errorReporter).Routes()

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, logger, api, m),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "sample_mode", cfg.SampleMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// newLogger returns a JSON logger at level. An unknown level falls back to info.
func newLogger(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// openCatalogue returns the viewpoint repository selected by cfg and a
// function that releases it.
func openCatalogue(ctx context.Context, cfg config.Config) (repo.ViewpointRepo, func(), error) {
	opts := repo.ViewpointRepoOptions{DetailPublishedOnly: cfg.DetailPublishedOnly}

	if cfg.SampleMode {
		r, err := sample.NewRepo(opts)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("serving embedded sample catalogue")
		return r, func() {}, nil
	}

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("database connection established")
	return repo.NewViewpointRepo(pool, opts), pool.Close, nil
}

// newRouter wraps api with the cross-cutting middleware and, when m is
// non-nil, the request metrics and the /metrics endpoint.
//
// Order: RequestID, RealIP, SlogLogger, Recoverer, CORS, MaxBodySize, Metrics.
func newRouter(cfg config.Config, logger *slog.Logger, api http.Handler, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	if m != nil {
		r.Use(middleware.NewMetricsHandler(m))
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Mount("/", api)
	return r
}
