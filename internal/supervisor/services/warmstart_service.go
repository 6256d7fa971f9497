// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/excel-azmin/ractso/internal/metrics"
	"github.com/excel-azmin/ractso/internal/recommend"
)

// WarmStarter rebuilds the model from the durable history.
// Satisfied by *recommend.Loader.
type WarmStarter interface {
	Run(ctx context.Context) error
	Status() recommend.LoadStatus
}

// WarmStartConfig holds warm-start settings.
type WarmStartConfig struct {
	// MaxAttempts caps how many loads are tried before giving up.
	// Default: 3
	MaxAttempts int

	// Timeout bounds a single load. Zero means no limit.
	Timeout time.Duration
}

// WarmStartService runs the warm-start load under supervision. A failed
// load is returned as an error so suture restarts it after backoff; the
// engine keeps serving its current model meanwhile.
type WarmStartService struct {
	loader       WarmStarter
	config       WarmStartConfig
	logger       zerolog.Logger
	attemptCount atomic.Int32
	name         string
}

// NewWarmStartService creates the service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWarmStartService(loader WarmStarter, cfg WarmStartConfig, logger zerolog.Logger) *WarmStartService {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &WarmStartService{
		loader: loader,
		config: cfg,
		logger: logger.With().Str("service", "warm-start").Logger(),
		name:   "warm-start",
	}
}

// Serve implements suture.Service.
func (s *WarmStartService) Serve(ctx context.Context) error {
	attempt := int(s.attemptCount.Add(1))

	loadCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	s.logger.Info().Int("attempt", attempt).Msg("warm start running")
	err := s.loader.Run(loadCtx)

	status := s.loader.Status()
	metrics.RecordWarmStart(string(status.State), status.Records, status.Duration)

	switch {
	case err == nil:
		return suture.ErrDoNotRestart
	case ctx.Err() != nil:
		return ctx.Err()
	case attempt >= s.config.MaxAttempts:
		s.logger.Error().Err(err).Int("attempts", attempt).Msg("warm start giving up, serving live views only")
		return suture.ErrDoNotRestart
	default:
		return fmt.Errorf("warm start attempt %d: %w", attempt, err)
	}
}

// attempts returns how many loads have been started.
func (s *WarmStartService) attempts() int {
	return int(s.attemptCount.Load())
}

// String names the service in supervisor logs.
func (s *WarmStartService) String() string {
	return s.name
}
