// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/excel-azmin/ractso/internal/logging"
	"github.com/excel-azmin/ractso/internal/metrics"
	"github.com/excel-azmin/ractso/internal/recommend"
	"github.com/excel-azmin/ractso/internal/wal"
)

// HistorySinkName is the router handler name of the view-history sink.
const HistorySinkName = "history-sink"

// HistoryStore appends durable view records.
type HistoryStore interface {
	AppendViewRecord(ctx context.Context, record recommend.ViewRecord) error
}

// Journal holds records the store could not accept. *wal.BadgerWAL
// implements it.
type Journal interface {
	Write(ctx context.Context, event any) (string, error)
}

// BreakerConfig configures the circuit breaker around store writes.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold uint32

	// Timeout is how long the circuit stays open before a probe.
	Timeout time.Duration

	// Interval resets the failure counts while closed. Zero never resets.
	Interval time.Duration

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
}

// DefaultBreakerConfig returns production defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		Interval:         time.Minute,
		MaxRequests:      1,
	}
}

// HistorySink appends each view to the store through a circuit breaker.
// When the write fails or the circuit is open, the record goes to the
// journal instead and the message is acked; the WAL retry loop replays it
// later. Without a journal the error is returned for the bus to retry.
type HistorySink struct {
	store   HistoryStore
	journal Journal
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  zerolog.Logger
}

// NewHistorySink creates the view-history sink. journal may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHistorySink(store HistoryStore, journal Journal, cfg BreakerConfig, logger zerolog.Logger) *HistorySink {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	sinkLogger := logger.With().Str("component", HistorySinkName).Logger()

	settings := gobreaker.Settings{
		Name:        "view-history",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
			sinkLogger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	return &HistorySink{
		store:   store,
		journal: journal,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
		logger:  sinkLogger,
	}
}

// Name implements Sink.
func (s *HistorySink) Name() string {
	return HistorySinkName
}

// State returns the breaker state name: closed, half-open or open.
func (s *HistorySink) State() string {
	return s.breaker.State().String()
}

// Handle implements Sink.
func (s *HistorySink) Handle(ctx context.Context, record recommend.ViewRecord) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.store.AppendViewRecord(ctx, record)
	})
	if err == nil {
		metrics.RecordCircuitBreakerResult(s.breaker.Name(), "success")
		return nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordCircuitBreakerResult(s.breaker.Name(), "rejected")
	} else {
		metrics.RecordCircuitBreakerResult(s.breaker.Name(), "failure")
	}

	if s.journal == nil {
		return fmt.Errorf("append view record %s: %w", record.ID, err)
	}

	entryID, walErr := s.journal.Write(ctx, record)
	if walErr != nil {
		return fmt.Errorf("append view record %s: %w (journal: %w)", record.ID, err, walErr)
	}

	s.logger.Warn().
		Err(err).
		Str("request_id", logging.RequestIDFromContext(ctx)).
		Str("view_id", record.ID).
		Str("wal_entry_id", entryID).
		Msg("View history write failed, record journaled for retry")
	return nil
}

// HistoryReplayer replays journaled view records into store. Appends are
// idempotent on the record ID, so a replay that races a late success is
// harmless.
func HistoryReplayer(store HistoryStore) wal.ReplayFunc {
	return func(ctx context.Context, entry *wal.Entry) error {
		var record recommend.ViewRecord
		if err := entry.UnmarshalPayload(&record); err != nil {
			return fmt.Errorf("decode journaled view %s: %w", entry.ID, err)
		}
		return store.AppendViewRecord(ctx, record)
	}
}
