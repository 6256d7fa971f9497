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
	"github.com/excel-azmin/ractso/internal/recommend"
)

// eventsConfig maps the events settings onto the events package defaults.
func eventsConfig(cfg *config.EventsConfig) events.Config {
	ec := events.DefaultConfig()
	if cfg.BufferSize > 0 {
		ec.BufferSize = cfg.BufferSize
	}
	if cfg.RetryCount >= 0 {
		ec.RetryCount = cfg.RetryCount
	}
	if cfg.RetryInitialInterval > 0 {
		ec.RetryInitialInterval = cfg.RetryInitialInterval
	}
	if cfg.RetryMaxInterval > 0 {
		ec.RetryMaxInterval = cfg.RetryMaxInterval
	}
	if cfg.CloseTimeout > 0 {
		ec.CloseTimeout = cfg.CloseTimeout
	}
	return ec
}

// breakerConfig maps the breaker settings onto the history sink defaults.
func breakerConfig(cfg *config.BreakerConfig) events.BreakerConfig {
	bc := events.DefaultBreakerConfig()
	if cfg.FailureThreshold > 0 {
		bc.FailureThreshold = cfg.FailureThreshold
	}
	if cfg.Timeout > 0 {
		bc.Timeout = cfg.Timeout
	}
	if cfg.Interval > 0 {
		bc.Interval = cfg.Interval
	}
	if cfg.MaxRequests > 0 {
		bc.MaxRequests = cfg.MaxRequests
	}
	return bc
}

// initEventBus creates the bus and registers the persistence sinks. The
// snapshot sink is skipped when snapshotter is nil; the history sink falls
// back to journal when it is non-nil. The history sink is returned so its
// breaker state can be reported.
func initEventBus(
	cfg *config.Config,
	engine *recommend.Engine,
	snapshotter *recommend.FileSnapshotter,
	store events.HistoryStore,
	journal events.Journal,
) (*events.Bus, *events.HistorySink, error) {
	bus, err := events.NewBus(eventsConfig(&cfg.Events), logging.WithComponent("events"))
	if err != nil {
		return nil, nil, err
	}

	if snapshotter != nil {
		if err := bus.AddSink(events.NewSnapshotSink(engine, snapshotter)); err != nil {
			return nil, nil, fmt.Errorf("register snapshot sink: %w", err)
		}
	}

	history := events.NewHistorySink(store, journal, breakerConfig(&cfg.Breaker), logging.WithComponent("history-sink"))
	if err := bus.AddSink(history); err != nil {
		return nil, nil, fmt.Errorf("register history sink: %w", err)
	}

	logging.Info().
		Strs("sinks", bus.Sinks()).
		Bool("journal", journal != nil).
		Msg("Event bus configured")
	return bus, history, nil
}
