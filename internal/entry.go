// Package internal provides the main application initialization and runtime logic.
package internal

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
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/evz/family-wiki-sub001/internal/api"
	"github.com/evz/family-wiki-sub001/internal/index"
	"github.com/evz/family-wiki-sub001/internal/metrics"
	"github.com/evz/family-wiki-sub001/internal/sse"
	"github.com/evz/family-wiki-sub001/internal/storage"
	"github.com/evz/family-wiki-sub001/internal/treeservice"
)

// NewLogger returns the JSON logger used by every entry point, writing to w.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// OpenTree opens the tree directory and the SQLite index and returns a tree
// service over them. The returned close function releases the index.
func OpenTree(cfg *Config, logger *slog.Logger, opts ...treeservice.Option) (*treeservice.Service, func() error, error) {
	if err := os.MkdirAll(cfg.Tree.Path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create tree dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Tree.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}

	base := []treeservice.Option{
		treeservice.WithLogger(logger),
		treeservice.WithEncoderOptions(cfg.GEDCOM.EncoderOptions()...),
	}
	svc := treeservice.NewService(store, db, append(base, opts...)...)
	return svc, db.Close, nil
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if app.metrics == nil {
		app.metrics = metrics.New()
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("tree_path", cfg.Tree.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("header_profile", cfg.GEDCOM.HeaderProfile),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc, closeIndex, err := OpenTree(cfg, logger,
		treeservice.WithMetrics(app.metrics),
		treeservice.WithNotifier(broker.PublishTreeEvent),
	)
	if err != nil {
		return err
	}
	defer closeIndex() //nolint:errcheck // shutdown path

	// Run initial sync.
	if report, err := svc.Sync(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	} else {
		logger.Info("initial sync finished",
			slog.Int("imported", len(report.Imported)),
			slog.Int("removed", len(report.Removed)),
			slog.Int("failed", len(report.Failed)))
	}

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", app.metrics.Handler())

	// Mount API routes under /api; /api/events is served by the broker.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher; changes it picks up reach the broker through the service.
	g.Go(func() error {
		if err := index.Watch(gCtx, svc.Index(), svc.Store(), cfg.Tree.Path, logger, svc.Changed); err != nil {
			logger.Error("tree watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
