// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/excel-azmin/ractso/internal/api"
	"github.com/excel-azmin/ractso/internal/config"
	"github.com/excel-azmin/ractso/internal/logging"
	"github.com/excel-azmin/ractso/internal/metrics"
	"github.com/excel-azmin/ractso/internal/recommend"
	"github.com/excel-azmin/ractso/internal/supervisor"
	"github.com/excel-azmin/ractso/internal/supervisor/services"
)

// busStartTimeout bounds the wait for the event router before the HTTP
// server is started.
const busStartTimeout = 30 * time.Second

// runServe wires every component and runs the supervisor tree until a
// shutdown signal arrives.
//
//nolint:gocyclo // sequential setup steps
func runServe(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	started := time.Now()
	metrics.SetAppInfo(version, runtime.Version(), started)
	logging.Info().Str("version", version).Str("config", cfg.String()).Msg("Starting Ractso with supervisor tree")

	ctx, stop := signalContext(parent)
	defer stop()

	db, err := openStore(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer closeLogged("database", db.Close)

	engine, snapshotter, err := initEngine(&cfg.Recommend, db)
	if err != nil {
		return err
	}

	walComponents, err := initWAL(&cfg.WAL, db)
	if err != nil {
		return err
	}
	defer closeLogged("wal", walComponents.Close)

	bus, history, err := initEventBus(cfg, engine, snapshotter, db, walComponents.journal())
	if err != nil {
		return err
	}
	defer closeLogged("event bus", bus.Close)
	engine.SetPublisher(bus)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if walComponents != nil {
		tree.AddDataService(walComponents.retryLoop)
	}
	tree.AddEventService(bus)

	var warmStart api.WarmStartStatus
	if cfg.Recommend.WarmStart {
		loader := recommend.NewLoader(engine, db, logging.WithComponent("warm-start"))
		warmStart = loader
		tree.AddEventService(services.NewWarmStartService(loader, services.WarmStartConfig{}, logging.WithComponent("warm-start")))
		go publishModelGauges(ctx, loader.Done(), engine)
	} else {
		logging.Info().Msg("Warm start disabled (RECOMMEND_WARM_START=false)")
	}

	errCh := tree.ServeBackground(ctx)

	// Views tracked before the router runs would be dropped.
	select {
	case <-bus.Running():
	case err := <-errCh:
		return fmt.Errorf("supervisor stopped during startup: %w", err)
	case <-time.After(busStartTimeout):
		return errors.New("event bus did not start in time")
	case <-ctx.Done():
		return waitForTree(errCh)
	}

	tree.AddAPIService(services.NewHTTPServerService(newHTTPServer(cfg, engine, warmStart, history), cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", cfg.Server.Addr()).Msg("HTTP server starting")

	return waitForTree(errCh)
}

// publishModelGauges sets the model gauges once the first warm start
// finishes, so they are current before any status request.
func publishModelGauges(ctx context.Context, done <-chan struct{}, engine *recommend.Engine) {
	select {
	case <-done:
	case <-ctx.Done():
		return
	}
	stats := engine.Statistics()
	metrics.UpdateModelGauges(stats.TotalUsers, stats.TotalPosts, stats.TotalInteractions)
}

// newHTTPServer builds the API handler, router and server.
func newHTTPServer(cfg *config.Config, engine api.Recommender, warmStart api.WarmStartStatus, breakers ...api.BreakerStatus) *http.Server {
	handler := api.NewHandler(engine, warmStart, api.HandlerConfig{
		Version:        version,
		DefaultLimit:   cfg.Recommend.DefaultLimit,
		MaxLimit:       cfg.Recommend.MaxLimit,
		RequestTimeout: cfg.Server.WriteTimeout,
	})
	for _, b := range breakers {
		handler.AddBreaker(b)
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	chiMw := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	router := api.NewRouter(handler, chiMw, api.DefaultRouterOptions())

	return &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// waitForTree waits for the supervisor to stop and reports services that
// outlived the shutdown timeout.
func waitForTree(errCh <-chan error) error {
	err := <-errCh
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	logging.Info().Msg("Shutdown complete")
	return nil
}
