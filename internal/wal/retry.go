// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package wal

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/excel-azmin/ractso/internal/logging"
)

// Replayer delivers a pending entry to its destination.
// Implementations must be idempotent.
type Replayer interface {
	Replay(ctx context.Context, entry *Entry) error
}

// ReplayFunc adapts a function to the Replayer interface.
type ReplayFunc func(ctx context.Context, entry *Entry) error

// Replay calls f(ctx, entry).
func (f ReplayFunc) Replay(ctx context.Context, entry *Entry) error {
	return f(ctx, entry)
}

const (
	maxBackoff    = 5 * time.Minute
	replayTimeout = 10 * time.Second
)

// RetryResult counts the outcomes of one pass over the pending entries.
type RetryResult struct {
	Replayed   int `json:"replayed"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
	Expired    int `json:"expired"`
	MaxRetried int `json:"max_retried"`
}

// Processed returns the number of entries that changed state.
func (r RetryResult) Processed() int {
	return r.Replayed + r.Failed + r.Expired + r.MaxRetried
}

// RetryLoop periodically replays pending entries and compacts the WAL.
// It implements suture.Service through Serve.
type RetryLoop struct {
	wal      *BadgerWAL
	replayer Replayer
	config   Config
	now      func() time.Time

	mu      sync.Mutex
	running bool
	last    RetryResult
}

// NewRetryLoop creates a retry loop replaying w's entries through replayer.
func NewRetryLoop(w *BadgerWAL, replayer Replayer) *RetryLoop {
	return &RetryLoop{
		wal:      w,
		replayer: replayer,
		config:   w.Config(),
		now:      time.Now,
	}
}

// String names the service in supervisor logs.
func (r *RetryLoop) String() string {
	return "wal-retry"
}

// Serve runs a pass immediately, then one per RetryInterval, and compacts
// every CompactInterval until ctx is canceled.
func (r *RetryLoop) Serve(ctx context.Context) error {
	r.setRunning(true)
	defer r.setRunning(false)

	logging.Info().
		Dur("interval", r.config.RetryInterval).
		Int("max_retries", r.config.MaxRetries).
		Msg("WAL retry loop started")

	retryTicker := time.NewTicker(r.config.RetryInterval)
	defer retryTicker.Stop()
	compactTicker := time.NewTicker(r.config.CompactInterval)
	defer compactTicker.Stop()

	// Entries left over from a previous run.
	r.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("WAL retry loop stopped")
			return ctx.Err()
		case <-retryTicker.C:
			r.RunOnce(ctx)
		case <-compactTicker.C:
			if _, err := r.wal.Compact(); err != nil {
				logging.Error().Err(err).Msg("WAL compaction failed")
			}
		}
	}
}

func (r *RetryLoop) setRunning(v bool) {
	r.mu.Lock()
	r.running = v
	r.mu.Unlock()
}

// IsRunning reports whether Serve is active.
func (r *RetryLoop) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// LastResult returns the outcome of the most recent pass.
func (r *RetryLoop) LastResult() RetryResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// RunOnce makes a single pass over the pending entries.
func (r *RetryLoop) RunOnce(ctx context.Context) RetryResult {
	var result RetryResult

	entries, err := r.wal.Pending(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("WAL retry: failed to get pending entries")
		return result
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		r.process(ctx, entry, &result)
	}

	r.mu.Lock()
	r.last = result
	r.mu.Unlock()

	if result.Processed() > 0 {
		logging.Info().
			Int("replayed", result.Replayed).
			Int("failed", result.Failed).
			Int("skipped", result.Skipped).
			Int("expired", result.Expired).
			Int("max_retried", result.MaxRetried).
			Msg("WAL retry complete")
	}
	return result
}

func (r *RetryLoop) process(ctx context.Context, entry *Entry, result *RetryResult) {
	if r.config.EntryTTL > 0 && r.now().Sub(entry.CreatedAt) > r.config.EntryTTL {
		logging.Info().Str("entry_id", entry.ID).Msg("WAL retry: entry expired, removing")
		r.drop(ctx, entry)
		walExpiredEntriesTotal.Inc()
		result.Expired++
		return
	}

	if entry.Attempts >= r.config.MaxRetries {
		logging.Warn().
			Str("entry_id", entry.ID).
			Int("attempts", entry.Attempts).
			Str("last_error", entry.LastError).
			Msg("WAL retry: entry exceeded max retries, removing")
		r.drop(ctx, entry)
		walMaxRetriesExceededTotal.Inc()
		result.MaxRetried++
		return
	}

	if !r.readyForRetry(entry) {
		result.Skipped++
		return
	}

	replayCtx, cancel := context.WithTimeout(ctx, replayTimeout)
	err := r.replayer.Replay(replayCtx, entry)
	cancel()

	if err != nil {
		logging.Warn().
			Err(err).
			Str("entry_id", entry.ID).
			Int("attempt", entry.Attempts+1).
			Msg("WAL retry: replay failed")
		if updateErr := r.wal.RecordAttempt(ctx, entry.ID, err.Error()); updateErr != nil {
			logging.Error().Err(updateErr).Str("entry_id", entry.ID).Msg("WAL retry: failed to record attempt")
		}
		result.Failed++
		return
	}

	if err := r.wal.Confirm(ctx, entry.ID); err != nil {
		logging.Error().Err(err).Str("entry_id", entry.ID).Msg("WAL retry: failed to confirm entry")
		result.Failed++
		return
	}
	walReplayedTotal.Inc()
	result.Replayed++
}

func (r *RetryLoop) drop(ctx context.Context, entry *Entry) {
	if err := r.wal.Delete(ctx, entry.ID); err != nil {
		logging.Error().Err(err).Str("entry_id", entry.ID).Msg("WAL retry: failed to delete entry")
	}
}

// readyForRetry checks if enough time has passed since the last attempt.
func (r *RetryLoop) readyForRetry(entry *Entry) bool {
	if entry.LastAttemptAt.IsZero() {
		return true
	}
	return r.now().Sub(entry.LastAttemptAt) >= r.backoff(entry.Attempts)
}

// backoff returns RetryBackoff * 2^attempts, capped at five minutes.
func (r *RetryLoop) backoff(attempts int) time.Duration {
	if attempts > 50 {
		return maxBackoff
	}
	d := time.Duration(float64(r.config.RetryBackoff) * math.Pow(2, float64(attempts)))
	if d < 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}
