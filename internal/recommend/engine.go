// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Engine owns the live interaction store and similarity model and serves
// recommendations from them. It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	// mu guards interactions, similarity, rebuilding and journal as a unit.
	mu           sync.RWMutex
	interactions *InteractionStore
	similarity   *SimilarityModel
	rebuilding   bool
	journal      []viewPair

	dataProvider DataProvider
	publisher    Publisher
	now          func() time.Time

	requestCount  atomic.Int64
	fallbackCount atomic.Int64
	viewCount     atomic.Int64
}

// viewPair is a view applied while a rebuild was running.
type viewPair struct {
	userID string
	postID string
}

// NewEngine creates an engine with an empty model.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config:       cfg,
		logger:       logger.With().Str("component", "recommend").Logger(),
		interactions: NewInteractionStore(),
		similarity:   NewSimilarityModel(),
		now:          time.Now,
	}, nil
}

// SetDataProvider sets the post store used by the strategies.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.dataProvider = dp
}

// SetPublisher sets the receiver of tracked-view records.
func (e *Engine) SetPublisher(p Publisher) {
	e.publisher = p
}

// TrackView records a view and updates the similarity model in one critical
// section, then publishes the resulting ViewRecord. Publishing is best
// effort: a failure is logged and never undoes the update. A repeated
// (user, post) pair leaves the model unchanged but is still published.
func (e *Engine) TrackView(ctx context.Context, view ViewEvent) error {
	if view.UserID == "" || view.PostID == "" {
		return ErrInvalidView
	}

	e.mu.Lock()
	appended := recordAndReinforce(e.interactions, e.similarity, view.UserID, view.PostID, e.config.CoViewWeight)
	if e.rebuilding {
		e.journal = append(e.journal, viewPair{userID: view.UserID, postID: view.PostID})
	}
	e.mu.Unlock()

	e.viewCount.Add(1)

	record := ViewRecord{
		ID:           uuid.New().String(),
		UserID:       view.UserID,
		PostID:       view.PostID,
		PostContent:  view.PostContent,
		PostAuthorID: view.PostAuthorID,
		CreatedAt:    e.now().UTC(),
	}

	if e.publisher != nil {
		if err := e.publisher.PublishViewTracked(ctx, record); err != nil {
			e.logger.Warn().Err(err).
				Str("user_id", view.UserID).
				Str("post_id", view.PostID).
				Msg("failed to publish tracked view")
		}
	}

	e.logger.Debug().
		Str("user_id", view.UserID).
		Str("post_id", view.PostID).
		Bool("new_interaction", appended).
		Msg("view tracked")
	return nil
}

// recordAndReinforce appends the view and, when it is new, links postID to
// every other post in the user's sequence.
func recordAndReinforce(interactions *InteractionStore, similarity *SimilarityModel, userID, postID string, w float64) bool {
	if !interactions.RecordView(userID, postID) {
		return false
	}
	for _, other := range interactions.sequence(userID) {
		if other != postID {
			similarity.Reinforce(postID, other, w)
		}
	}
	return true
}

// Statistics summarizes the live model.
func (e *Engine) Statistics() Statistics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.interactions.Statistics()
}

// ModelLoaded reports whether any interaction has been recorded.
func (e *Engine) ModelLoaded() bool {
	return e.Statistics().ModelLoaded
}

// Snapshot returns a copy of the interaction store.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.interactions.Snapshot()
}

// neighbors returns the co-view neighbors of postID.
func (e *Engine) neighbors(postID string) map[string]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.similarity.Neighbors(postID)
}

// viewedPosts returns the posts the user has viewed, in view order.
func (e *Engine) viewedPosts(userID string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.interactions.ViewedPosts(userID)
}

// Restore replaces the model with snap, rebuilding similarity from it.
// An empty snapshot leaves the current model untouched. It reports whether
// the model was replaced.
func (e *Engine) Restore(snap Snapshot) bool {
	interactions := NewInteractionStore()
	interactions.Restore(snap)
	if interactions.Len() == 0 {
		return false
	}
	similarity := NewSimilarityModel()
	similarity.RebuildFromCoViews(interactions.views, e.config.CoViewWeight)

	e.mu.Lock()
	e.interactions = interactions
	e.similarity = similarity
	e.mu.Unlock()

	stats := interactions.Statistics()
	e.logger.Info().
		Int("users", stats.TotalUsers).
		Int("posts", stats.TotalPosts).
		Int("interactions", stats.TotalInteractions).
		Msg("restored interaction snapshot")
	return true
}

// beginRebuild starts journaling new views so they can be replayed on top
// of a rebuilt model.
func (e *Engine) beginRebuild() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rebuilding {
		return ErrRebuildInProgress
	}
	e.rebuilding = true
	e.journal = nil
	return nil
}

// commitRebuild replays views journaled since beginRebuild onto the new
// structures and swaps them in. It returns the number of replayed views.
func (e *Engine) commitRebuild(interactions *InteractionStore, similarity *SimilarityModel) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	replayed := 0
	for _, v := range e.journal {
		if recordAndReinforce(interactions, similarity, v.userID, v.postID, e.config.CoViewWeight) {
			replayed++
		}
	}
	e.interactions = interactions
	e.similarity = similarity
	e.rebuilding = false
	e.journal = nil
	return replayed
}

// abortRebuild ends a rebuild without touching the live model.
func (e *Engine) abortRebuild() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rebuilding = false
	e.journal = nil
}

// Counters returns request, fallback and tracked-view totals since start.
func (e *Engine) Counters() (requests, fallbacks, views int64) {
	return e.requestCount.Load(), e.fallbackCount.Load(), e.viewCount.Load()
}
