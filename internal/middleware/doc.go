// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

/*
Package middleware provides HTTP middleware for the recommendation API.

Key Components:

  - RequestID: request tracking via X-Request-ID, stored on the context for logging.Ctx
  - PrometheusMetrics: request count, latency and in-flight instrumentation
  - AccessLog: one structured log line per request, slow requests at warn level

The middlewares use the http.HandlerFunc signature; the api package adapts
them to chi's func(http.Handler) http.Handler form. PrometheusMetrics and
AccessLog label requests with the chi route pattern, so they must run
inside a chi router.
*/
package middleware
