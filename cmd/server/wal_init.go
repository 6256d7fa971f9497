// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package main

import (
	"fmt"

	"github.com/excel-azmin/ractso/internal/config"
	"github.com/excel-azmin/ractso/internal/events"
	"github.com/excel-azmin/ractso/internal/logging"
	"github.com/excel-azmin/ractso/internal/wal"
)

// WALComponents holds the journal and its retry loop.
type WALComponents struct {
	wal       *wal.BadgerWAL
	retryLoop *wal.RetryLoop
}

// walConfig maps the WAL settings onto the wal package defaults.
func walConfig(cfg *config.WALConfig) wal.Config {
	wc := wal.DefaultConfig()
	if cfg.Path != "" {
		wc.Path = cfg.Path
	}
	wc.SyncWrites = cfg.SyncWrites
	if cfg.RetryInterval > 0 {
		wc.RetryInterval = cfg.RetryInterval
	}
	if cfg.MaxRetries > 0 {
		wc.MaxRetries = cfg.MaxRetries
	}
	if cfg.CompactInterval > 0 {
		wc.CompactInterval = cfg.CompactInterval
	}
	return wc
}

// initWAL opens the journal and builds a retry loop that replays pending
// view records into store. It returns nil when the WAL is disabled.
func initWAL(cfg *config.WALConfig, store events.HistoryStore) (*WALComponents, error) {
	if !cfg.Enabled {
		logging.Warn().Msg("WAL disabled (WAL_ENABLED=false). View records are lost while the store is unavailable.")
		return nil, nil
	}

	wc := walConfig(cfg)
	if err := wc.Validate(); err != nil {
		return nil, err
	}

	logging.Info().Str("path", wc.Path).Bool("sync_writes", wc.SyncWrites).Msg("Initializing WAL...")
	w, err := wal.Open(&wc)
	if err != nil {
		return nil, fmt.Errorf("open wal: %w", err)
	}

	stats := w.Stats()
	if stats.PendingCount > 0 {
		logging.Info().Int64("pending", stats.PendingCount).Msg("WAL has view records from a previous run")
	}

	return &WALComponents{
		wal:       w,
		retryLoop: wal.NewRetryLoop(w, events.HistoryReplayer(store)),
	}, nil
}

// journal returns the WAL as the history sink's fallback, or nil.
func (c *WALComponents) journal() events.Journal {
	if c == nil {
		return nil
	}
	return c.wal
}

// Close closes the journal.
func (c *WALComponents) Close() error {
	if c == nil {
		return nil
	}
	return c.wal.Close()
}
