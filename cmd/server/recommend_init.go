// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package main

import (
	"fmt"

	"github.com/excel-azmin/ractso/internal/config"
	"github.com/excel-azmin/ractso/internal/logging"
	"github.com/excel-azmin/ractso/internal/recommend"
)

// engineConfig maps the recommend settings onto the engine's tuning.
func engineConfig(cfg *config.RecommendConfig) *recommend.Config {
	ec := recommend.DefaultConfig()
	if cfg.CoViewWeight > 0 {
		ec.CoViewWeight = cfg.CoViewWeight
	}
	if cfg.AuthorScore > 0 {
		ec.AuthorScore = cfg.AuthorScore
	}
	if cfg.MaxLimit > 0 {
		ec.MaxLimit = cfg.MaxLimit
	}
	if cfg.QueryTimeout > 0 {
		ec.QueryTimeout = cfg.QueryTimeout
	}
	return ec
}

// initEngine creates the engine and restores the file snapshot into it.
// The snapshotter is nil when snapshots are disabled. A snapshot that
// cannot be read is logged and the engine starts empty.
func initEngine(cfg *config.RecommendConfig, data recommend.DataProvider) (*recommend.Engine, *recommend.FileSnapshotter, error) {
	engine, err := recommend.NewEngine(engineConfig(cfg), logging.WithComponent("recommend"))
	if err != nil {
		return nil, nil, fmt.Errorf("create engine: %w", err)
	}
	engine.SetDataProvider(data)

	if !cfg.SnapshotEnabled {
		logging.Info().Msg("Interaction snapshots disabled")
		return engine, nil, nil
	}

	snapshotter, err := recommend.NewFileSnapshotter(cfg.SnapshotPath(), recommend.SnapshotFormat(cfg.SnapshotFormat))
	if err != nil {
		return nil, nil, fmt.Errorf("create snapshotter: %w", err)
	}

	snap, err := snapshotter.Load()
	if err != nil {
		logging.Warn().Err(err).Str("path", snapshotter.Path()).Msg("Failed to load interaction snapshot, starting empty")
		return engine, snapshotter, nil
	}
	if engine.Restore(snap) {
		stats := engine.Statistics()
		logging.Info().
			Str("path", snapshotter.Path()).
			Int("users", stats.TotalUsers).
			Int("posts", stats.TotalPosts).
			Msg("Interaction snapshot restored")
	}
	return engine, snapshotter, nil
}
