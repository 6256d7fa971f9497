// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/excel-azmin/ractso/internal/middleware"
)

// RouterOptions tunes the global middleware stack.
type RouterOptions struct {
	// SlowRequestThreshold marks requests logged at warn level.
	SlowRequestThreshold time.Duration
	// CompressionLevel is the gzip level; 0 disables compression.
	CompressionLevel int
	// MetricsEnabled mounts promhttp at /metrics.
	MetricsEnabled bool
}

// DefaultRouterOptions returns the production defaults.
func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		SlowRequestThreshold: time.Second,
		CompressionLevel:     5,
		MetricsEnabled:       true,
	}
}

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	options       RouterOptions
}

// NewRouter creates a router. A nil chiMw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, chiMw *ChiMiddleware, options RouterOptions) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMw,
		options:       options,
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chiMiddleware(middleware.AccessLog(router.options.SlowRequestThreshold)))
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	if router.options.CompressionLevel > 0 {
		r.Use(chimiddleware.Compress(router.options.CompressionLevel, "application/json"))
	}

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/", router.handler.Root)
	if router.options.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		// Permissive limiting for probes
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitHealth)).Get("/health", router.handler.Health)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.Post("/track-view", router.handler.TrackView)
			r.Get("/recommendations/{userID}", router.handler.Recommendations)
			r.Get("/model/status", router.handler.ModelStatus)
		})
	})

	return r
}
