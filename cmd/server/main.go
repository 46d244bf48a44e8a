package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/productlist/internal/catalog"
	"github.com/JonMunkholm/productlist/internal/config"
	"github.com/JonMunkholm/productlist/internal/core"
	"github.com/JonMunkholm/productlist/internal/logging"
	"github.com/JonMunkholm/productlist/internal/render"
	"github.com/JonMunkholm/productlist/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"catalog_source", cfg.Catalog.Source,
		"layout", cfg.Extract.Layout,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	library, master, closeSources, err := catalog.NewSources(ctx, cfg.Catalog)
	if err != nil {
		slog.Error("failed to open catalog sources", "error", err)
		os.Exit(1)
	}
	defer closeSources()

	store := catalog.NewStore(library, master)
	loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.Catalog.LoadTimeout)
	_, err = store.Load(loadCtx)
	cancelLoad()
	if err != nil {
		slog.Error("failed to load catalogs", "error", err, "code", core.MapError(err).Code)
		closeSources()
		os.Exit(1)
	}

	service, err := core.NewService(store, cfg)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		closeSources()
		os.Exit(1)
	}

	slog.Info("artifacts registered",
		"count", len(render.All()),
		"groups", len(render.Groups()),
	)
	for _, def := range render.All() {
		slog.Debug("artifact", "key", def.Key, "group", def.Group, "file", def.FileName)
	}

	server := web.NewServer(service, store, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		status := service.LimiterStatus()
		if status.Active > 0 {
			slog.Info("waiting for conversions to complete", "active", status.Active)
			if err := service.WaitForConversions(shutdownCtx); err != nil {
				slog.Warn("conversions did not complete in time", "error", err)
			} else {
				slog.Info("all conversions completed")
			}
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		closeSources()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
