// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

// The server command runs the recommendation service: it loads
// whatever artifacts exist, serves the hybrid recommendation API, and
// retrains on demand.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/interleaflabs/interleaf/internal/api"
	"github.com/interleaflabs/interleaf/internal/artifact"
	"github.com/interleaflabs/interleaf/internal/cache"
	"github.com/interleaflabs/interleaf/internal/config"
	"github.com/interleaflabs/interleaf/internal/logging"
	"github.com/interleaflabs/interleaf/internal/recommend"
	"github.com/interleaflabs/interleaf/internal/registry"
	"github.com/interleaflabs/interleaf/internal/trainer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	log := logging.With().Str("component", "main").Logger()

	store := artifact.NewStore(cfg.Artifacts.Dir)
	reg := registry.NewRegistry()
	loader := registry.NewLoader(cfg.Data.Dir, store)

	// The service starts even when the initial load fails: the data
	// files may not be mounted yet, and a later retrain can recover.
	if snap, err := loader.Load(); err != nil {
		log.Warn().Err(err).Msg("initial load failed, starting with empty registry")
	} else {
		reg.Swap(snap)
		log.Info().
			Int("loaded", len(snap.Report.Loaded)).
			Int("missing", len(snap.Report.Missing)).
			Msg("initial snapshot published")
	}

	var respCache *cache.ResponseCache
	var dropper trainer.Dropper
	if cfg.Cache.Enabled {
		respCache, err = cache.New(cfg.Cache.TTL)
		if err != nil {
			logging.Fatal().Err(err).Msg("open response cache")
		}
		defer respCache.Close()
		dropper = respCache
	}

	coord := trainer.NewCoordinator(
		trainer.New(cfg.Training, cfg.Data.Dir, store),
		loader, reg, dropper, cfg.Training.Timeout,
	)
	engine := recommend.NewEngine(reg, cfg.Recommend.TopK)
	handler := api.NewHandler(engine, coord, reg, respCache, cfg.Recommend.MaxK)

	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimit:   cfg.Server.RateLimit,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
