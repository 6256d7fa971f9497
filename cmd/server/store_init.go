// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package main

import (
	"context"
	"fmt"

	"github.com/excel-azmin/ractso/internal/config"
	"github.com/excel-azmin/ractso/internal/database"
	"github.com/excel-azmin/ractso/internal/logging"
)

// openStore connects to the configured database, seeds demo content when
// asked to, and ensures the view-history schema.
func openStore(ctx context.Context, cfg *config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.SeedMockData {
		logging.Info().Msg("Mock data seeding enabled (SEED_MOCK_DATA=true)")
		if err := db.SeedMockData(ctx); err != nil {
			closeLogged("database", db.Close)
			return nil, fmt.Errorf("seed mock data: %w", err)
		}
	}

	if err := db.EnsureViewHistorySchema(ctx); err != nil {
		closeLogged("database", db.Close)
		return nil, fmt.Errorf("ensure view history schema: %w", err)
	}
	return db, nil
}
