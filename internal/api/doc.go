// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

/*
Package api provides the HTTP interface of the recommendation service.

Routes are served by a chi router:

	GET  /                                  service banner
	GET  /metrics                           Prometheus metrics
	GET  /api/v1/health                     liveness and model state
	POST /api/v1/track-view                 record a view
	GET  /api/v1/recommendations/{userID}   one page of recommendations
	GET  /api/v1/model/status               model statistics, counters, breakers and warm-start state

# Middleware

Every request gets a request ID (X-Request-ID), real IP resolution, an
access log line, panic recovery, CORS handling and gzip compression. The
/api/v1 routes additionally carry security headers, Prometheus request
metrics and per-IP rate limiting through go-chi/httprate.

# Errors

Failures use a single envelope:

	{"status": "error", "code": "VALIDATION_ERROR", "message": "...", "details": {...}}

Internal errors are logged with the request ID and never echoed to the
client.
*/
package api
