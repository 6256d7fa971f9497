// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

// Package logging provides the process-wide zerolog logger for Ractso.
//
// Every component logs through this package so that output format, level
// and field names are configured in one place:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("user_id", uid).Msg("view tracked")
//
// Request-scoped logging picks up the request ID placed on the context by
// the HTTP middleware:
//
//	logging.Ctx(ctx).Warn().Err(err).Msg("similarity strategy failed")
//
// Libraries that only speak log/slog (suture via sutureslog, watermill via
// watermill.NewSlogLogger) are bridged onto zerolog with NewSlogLogger.
//
// # Configuration
//
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file and line (default: false)
package logging
