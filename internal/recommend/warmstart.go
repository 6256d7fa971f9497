// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LoadState is the lifecycle state of a warm-start load.
type LoadState string

const (
	LoadPending   LoadState = "pending"
	LoadRunning   LoadState = "running"
	LoadCompleted LoadState = "completed"
	LoadEmpty     LoadState = "empty"
	LoadFailed    LoadState = "failed"
)

// LoadStatus describes the most recent warm-start load.
type LoadStatus struct {
	State      LoadState     `json:"state"`
	Records    int           `json:"records"`
	Users      int           `json:"users"`
	Posts      int           `json:"posts"`
	Replayed   int           `json:"replayed"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`
	FinishedAt time.Time     `json:"finished_at,omitempty"`
}

// Loader rebuilds the engine's model from the durable view history.
// The rebuild runs outside the engine lock; only the final swap blocks
// readers and writers.
type Loader struct {
	engine *Engine
	source HistoryProvider
	logger zerolog.Logger

	mu     sync.RWMutex
	status LoadStatus

	done     chan struct{}
	doneOnce sync.Once
}

// NewLoader creates a loader for engine reading from source.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLoader(engine *Engine, source HistoryProvider, logger zerolog.Logger) *Loader {
	return &Loader{
		engine: engine,
		source: source,
		logger: logger.With().Str("component", "warm-start").Logger(),
		status: LoadStatus{State: LoadPending},
		done:   make(chan struct{}),
	}
}

// Done is closed once the first load attempt finishes, successfully or not.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// Status returns the outcome of the latest load.
func (l *Loader) Status() LoadStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Run performs one load. On failure the engine keeps its current model and
// the error is returned. An empty history is not an error and leaves the
// model untouched.
func (l *Loader) Run(ctx context.Context) error {
	defer l.doneOnce.Do(func() { close(l.done) })

	start := time.Now()
	if err := l.engine.beginRebuild(); err != nil {
		l.setStatus(LoadStatus{State: LoadFailed, Error: err.Error(), FinishedAt: time.Now().UTC()})
		l.logger.Warn().Err(err).Msg("warm start skipped")
		return err
	}
	l.setStatus(LoadStatus{State: LoadRunning})

	status, err := l.load(ctx)
	status.Duration = time.Since(start)
	status.FinishedAt = time.Now().UTC()

	if err != nil {
		l.engine.abortRebuild()
		status.State = LoadFailed
		status.Error = err.Error()
		l.setStatus(status)
		l.logger.Warn().Err(err).Dur("duration", status.Duration).Msg("warm start failed, keeping current model")
		return err
	}

	l.setStatus(status)
	l.logger.Info().
		Str("state", string(status.State)).
		Int("records", status.Records).
		Int("users", status.Users).
		Int("posts", status.Posts).
		Int("replayed", status.Replayed).
		Dur("duration", status.Duration).
		Msg("warm start finished")
	return nil
}

// load reads the history and, when it is non-empty, commits the rebuilt
// model. It must be called between beginRebuild and commit/abort.
func (l *Loader) load(ctx context.Context) (LoadStatus, error) {
	if err := l.source.EnsureViewHistorySchema(ctx); err != nil {
		return LoadStatus{}, fmt.Errorf("ensure view history schema: %w", err)
	}

	records, err := l.source.AllViewRecords(ctx)
	if err != nil {
		return LoadStatus{}, fmt.Errorf("read view history: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return LoadStatus{}, err
	}

	interactions := NewInteractionStore()
	for _, r := range records {
		if r.UserID == "" || r.PostID == "" {
			continue
		}
		interactions.RecordView(r.UserID, r.PostID)
	}

	if interactions.Len() == 0 {
		l.engine.abortRebuild()
		return LoadStatus{State: LoadEmpty, Records: len(records)}, nil
	}

	similarity := NewSimilarityModel()
	similarity.RebuildFromCoViews(interactions.views, l.engine.config.CoViewWeight)

	replayed := l.engine.commitRebuild(interactions, similarity)
	stats := l.engine.Statistics()

	return LoadStatus{
		State:    LoadCompleted,
		Records:  len(records),
		Users:    stats.TotalUsers,
		Posts:    stats.TotalPosts,
		Replayed: replayed,
	}, nil
}

func (l *Loader) setStatus(s LoadStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = s
}
