// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to run the services the recommendation
// service talks to in production. Everything here is behind the integration
// build tag:
//
//	go test -tags integration ./...
//
// # PostgreSQL Container
//
//	func TestPostgresStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, pg)
//
//	    db, err := database.Open(&config.DatabaseConfig{Driver: "postgres", URL: pg.URL})
//	    // ...
//	}
//
// Tests skip when no Docker daemon is reachable.
package testinfra
