// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/excel-azmin/ractso/internal/logging"
)

// AccessLog logs one line per request through the request-scoped logger.
// Requests slower than slowThreshold and server errors log at warn level,
// client errors at info, everything else at debug.
func AccessLog(slowThreshold time.Duration) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := newStatusRecorder(w)

			next(wrapper, r)

			duration := time.Since(start)
			logger := logging.Ctx(r.Context())

			var event *zerolog.Event
			switch {
			case wrapper.statusCode >= http.StatusInternalServerError:
				event = logger.Warn()
			case slowThreshold > 0 && duration >= slowThreshold:
				event = logger.Warn().Bool("slow", true)
			case wrapper.statusCode >= http.StatusBadRequest:
				event = logger.Info()
			default:
				event = logger.Debug()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", wrapper.statusCode).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Msg("http request")
		}
	}
}
