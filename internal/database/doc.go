// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

// Package database is the post store behind the recommendation engine.
//
// It reads the social platform's content tables ("Post", "User", "Like",
// "Comment") and owns the append-only "RecommendationView" history that
// warm-starts the engine. One DB type serves three dialects:
//
//   - duckdb: embedded default, file or in-memory
//   - postgres: the platform's production database (lib/pq)
//   - sqlite: lightweight embedded option (modernc.org/sqlite)
//
// Statements are written once with "?" placeholders and rebound for
// PostgreSQL through the query subpackage. Per-dialect differences are
// limited to DDL, the images column (text[] on PostgreSQL, a JSON array
// elsewhere) and timestamp encoding on SQLite.
//
// DB implements recommend.DataProvider and recommend.HistoryProvider, and
// the view appender used by the history sink in the events package.
package database
