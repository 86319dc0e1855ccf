// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/taxon/internal/api"
	"github.com/starford/taxon/internal/catalog"
	"github.com/starford/taxon/internal/mcpserver"
	"github.com/starford/taxon/internal/sse"
	"github.com/starford/taxon/internal/store"
	"github.com/starford/taxon/internal/synonyms"
)

// runtime holds the components shared by the HTTP and MCP entry points.
type runtime struct {
	cfg      *Config
	logger   *slog.Logger
	store    catalog.Store
	synonyms *synonyms.Holder
	closers  []func() error
}

func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.logger.Warn("close failed", slog.String("error", err.Error()))
		}
	}
}

// setup applies opts, installs the default logger and opens the store and
// the synonym table.
func setup(opts []Option, logOutput *os.File) (*runtime, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("synonyms_path", cfg.Synonyms.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	rt := &runtime{cfg: cfg, logger: logger, store: app.store}

	if rt.store == nil {
		switch cfg.Store.Driver {
		case StoreDriverMemory:
			rt.store = catalog.NewMemoryStore()
		default:
			db, err := store.Open(cfg.SQLite.Path)
			if err != nil {
				return nil, fmt.Errorf("init store: %w", err)
			}
			rt.store = db
			rt.closers = append(rt.closers, db.Close)
		}
	}

	rt.synonyms = synonyms.NewHolder(nil)
	if cfg.Synonyms.Path != "" {
		n, err := rt.synonyms.Reload(cfg.Synonyms.Path)
		if err != nil {
			rt.close()
			return nil, fmt.Errorf("load synonyms: %w", err)
		}
		logger.Info("synonyms loaded", slog.Int("aliases", n))
	}
	return rt, nil
}

func (rt *runtime) service(notifier catalog.Notifier) *catalog.Service {
	opts := []catalog.ServiceOption{
		catalog.WithSynonyms(rt.synonyms),
		catalog.WithLogger(rt.logger),
		catalog.WithDefaultOfficialTags(rt.cfg.Catalog.DefaultOfficialTags),
		catalog.WithExtractLimit(rt.cfg.Catalog.ExtractLimit),
	}
	if notifier != nil {
		opts = append(opts, catalog.WithNotifier(notifier))
	}
	return catalog.NewService(rt.store, opts...)
}

type pinger interface {
	Ping() error
}

// newHTTPHandler builds the chi router with health, metrics and API routes.
// A nil events handler leaves /api/events unmounted.
func newHTTPHandler(cfg *Config, svc *catalog.Service, st catalog.Store, events http.Handler) http.Handler {
	apiRouter := api.NewRouter(svc, api.AuthSettings{
		Enabled:        cfg.Auth.AuthEnabled(),
		Token:          cfg.Auth.Token,
		ModeratorToken: cfg.Auth.ModeratorToken,
	}, cfg.Catalog.SuggestionLimit, events)

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
		if p, ok := st.(pinger); ok {
			if err := p.Ping(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	return r
}

// Run starts the HTTP server with the given options and blocks until ctx is
// cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	defer rt.close()

	cfg, logger := rt.cfg, rt.logger

	// SSE broker.
	broker := sse.NewBroker(cfg.Catalog.EventThrottle)
	defer broker.Close()

	svc := rt.service(broker)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(cfg, svc, rt.store, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Hot-reload the synonym table.
	if cfg.Synonyms.Path != "" && cfg.Synonyms.Watch {
		g.Go(func() error {
			if err := synonyms.Watch(gCtx, cfg.Synonyms.Path, rt.synonyms, logger, broker.SynonymsReloaded); err != nil {
				logger.Warn("synonym watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

		// Open SSE streams end when the broker closes their channels.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup context once shutdown has begun.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr so they do
// not corrupt the protocol stream.
func RunMCP(_ context.Context, opts ...Option) error {
	rt, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.close()

	srv := mcpserver.New(rt.service(nil), rt.cfg.Catalog.SuggestionLimit)
	rt.logger.Info("MCP server starting on stdio")
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
