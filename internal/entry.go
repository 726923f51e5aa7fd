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
	"golang.org/x/sync/errgroup"

	"github.com/starford/nnote/internal/api"
	"github.com/starford/nnote/internal/layout"
	"github.com/starford/nnote/internal/logging"
	"github.com/starford/nnote/internal/mcpserver"
	"github.com/starford/nnote/internal/noteservice"
	"github.com/starford/nnote/internal/sse"
	"github.com/starford/nnote/internal/storage"
	"github.com/starford/nnote/internal/watch"
)

// OpenVault creates the vault directory if needed and returns a note
// service over it.
func OpenVault(cfg *Config, logger *slog.Logger) (*noteservice.Service, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	l, err := layout.New(store.Root(), cfg.Vault.Cut)
	if err != nil {
		return nil, fmt.Errorf("init layout: %w", err)
	}
	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}
	return noteservice.NewService(store, l, loc, logger), nil
}

func (a *application) init() (*slog.Logger, error) {
	if a.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger := logging.New(a.logOut, a.config.App.LogLevel, a.config.App.LogFormat)
	slog.SetDefault(logger)
	return logger, nil
}

// NewHandler builds the HTTP handler: health endpoints plus the API
// mounted under /api.
func NewHandler(cfg *Config, svc *noteservice.Service, broker *sse.Broker) http.Handler {
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
		if _, err := os.Stat(svc.Layout().Root); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"vault unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	var events http.Handler
	if broker != nil {
		events = broker
	}
	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, events))
	return r
}

// Run starts the HTTP server and the vault watcher until ctx is cancelled
// or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts, os.Stdout)
	logger, err := app.init()
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.Int("vault_cut", cfg.Vault.Cut),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, err := OpenVault(cfg, logger)
	if err != nil {
		return err
	}

	broker := sse.NewBroker(30 * time.Second)
	defer broker.Close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           NewHandler(cfg, svc, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	ignored, err := cfg.Vault.Matcher()
	if err != nil {
		return err
	}

	// Start file watcher with SSE callback.
	g.Go(func() error {
		err := watch.Watch(gCtx, svc.Layout().Root, logger, broker.Publish, watch.WithIgnore(ignored))
		if err != nil {
			logger.Warn("watch: stopped", slog.String("error", err.Error()))
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

// errShutdown cancels the group once the server has been shut down, so
// the watcher stops with it.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout.
func RunMCP(_ context.Context, opts ...Option) error {
	app := newApplication(opts, os.Stderr)
	logger, err := app.init()
	if err != nil {
		return err
	}
	svc, err := OpenVault(app.config, logger)
	if err != nil {
		return err
	}
	logger.Info("mcp: serving on stdio", slog.String("vault_path", app.config.Vault.Path))
	return mcpserver.New(svc, app.version).ServeStdio()
}
