// Package app wires configuration into the builder and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/docversions/internal/api"
	"github.com/dgallion1/docversions/internal/config"
	"github.com/dgallion1/docversions/internal/menu"
	"github.com/dgallion1/docversions/internal/site"
	"github.com/dgallion1/docversions/internal/versions"
)

// MenuOptions derives populator options from configuration.
func MenuOptions(cfg config.Config) menu.Options {
	return menu.Options{
		ContainerID: cfg.ContainerID,
		PathPrefix:  cfg.PathPrefix,
		Strict:      cfg.StrictContainer,
	}
}

// Build bakes the menu into every page of cfg.SiteDir, writing to cfg.OutputDir.
func Build(ctx context.Context, cfg config.Config, log *slog.Logger) (site.Report, error) {
	list, err := versions.Load(cfg.VersionsFile)
	if err != nil {
		return site.Report{}, err
	}
	opts := MenuOptions(cfg)
	renderer, err := site.NewRenderer(opts, cfg.LayoutFile, log, site.NewRenderStats(cfg.StatsWindow))
	if err != nil {
		return site.Report{}, err
	}
	b := site.NewBuilder(cfg.SiteDir, cfg.OutputDir, renderer, opts, cfg.RenderConcurrency, log)
	return b.Build(ctx, list)
}

// Serve runs the HTTP server until ctx is cancelled.
func Serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	list, err := versions.Load(cfg.VersionsFile)
	if err != nil {
		return err
	}
	store := versions.NewStore(cfg.VersionsFile, list)
	log.Info("versions loaded", "path", cfg.VersionsFile, "count", len(list))

	if cfg.WatchVersions {
		w, err := versions.NewWatcher(store, cfg.WatchDebounce, log)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			w.Stop()
			return err
		}
		defer w.Stop()
	}

	renderer, err := site.NewRenderer(MenuOptions(cfg), cfg.LayoutFile, log, site.NewRenderStats(cfg.StatsWindow))
	if err != nil {
		return err
	}
	srv := api.NewServer(store, renderer, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting docversions", "port", cfg.Port, "site_dir", cfg.SiteDir)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
