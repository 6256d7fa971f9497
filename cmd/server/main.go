// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

// Package main is the entry point for the Ractso recommendation server.
//
// Ractso recommends posts to users from co-view signals: two posts viewed
// by the same user are linked, and a user's next page is ranked by the
// links of everything they have viewed. Users with no signal get posts by
// authors they already read, then popular posts.
//
// # Application Architecture
//
// The serve command initializes components in this order:
//
//  1. Configuration: .env, then defaults, config.yaml and environment (Koanf v2)
//  2. Store: DuckDB, PostgreSQL or SQLite; view-history schema ensured
//  3. Engine: file snapshot restored synchronously
//  4. WAL (optional): Badger journal for view records the store rejected
//  5. Event bus: watermill router feeding the snapshot and history sinks
//  6. Supervisor tree: bus, warm start, WAL retry loop and HTTP server
//
// # Commands
//
//	ractso              run the server (same as "ractso serve")
//	ractso migrate      create the view-history table, optionally seed demo data
//	ractso stats        rebuild the model from the store and print its size
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree: the HTTP server drains,
// the event router finishes in-flight views, and the WAL and store close.
package main

import (
	"fmt"
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
