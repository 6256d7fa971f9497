// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package recommend

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeStore implements DataProvider and HistoryProvider in memory.
type fakeStore struct {
	mu sync.Mutex

	posts         map[string]PostDetail
	popularOrder  []string
	authorsByUser map[string][]string
	records       []ViewRecord

	detailsErr error
	popularErr error
	authorErr  error
	historyErr error
	panicIn    string

	// historyGate, when set, blocks AllViewRecords until closed.
	historyGate    chan struct{}
	historyEntered chan struct{}

	popularExcludes [][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts:         make(map[string]PostDetail),
		authorsByUser: make(map[string][]string),
	}
}

// addPost registers a post; createdAt offsets order author posts newest first.
func (f *fakeStore) addPost(id, author string, likes, comments int64, ageMinutes int) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f.posts[id] = PostDetail{
		ID:           id,
		AuthorID:     author,
		Content:      "content " + id,
		Images:       []string{},
		CreatedAt:    base.Add(-time.Duration(ageMinutes) * time.Minute),
		UpdatedAt:    base.Add(-time.Duration(ageMinutes) * time.Minute),
		LikeCount:    likes,
		CommentCount: comments,
	}
}

func (f *fakeStore) maybePanic(op string) {
	if f.panicIn == op {
		panic("boom in " + op)
	}
}

func (f *fakeStore) FetchPostDetails(_ context.Context, ids []string) ([]PostDetail, error) {
	f.maybePanic("details")
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	out := make([]PostDetail, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.posts[id]; ok {
			out = append(out, p)
		}
	}
	// Store order is newest first, not ranked order.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) FetchPopularPosts(_ context.Context, excludeIDs []string, page, limit int) ([]PostDetail, int, error) {
	f.maybePanic("popular")
	f.mu.Lock()
	f.popularExcludes = append(f.popularExcludes, excludeIDs)
	f.mu.Unlock()
	if f.popularErr != nil {
		return nil, 0, f.popularErr
	}
	excluded := toSet(excludeIDs)
	var all []PostDetail
	for _, id := range f.popularOrder {
		if _, skip := excluded[id]; !skip {
			all = append(all, f.posts[id])
		}
	}
	return paginate(all, page, limit), len(all), nil
}

func (f *fakeStore) FetchAuthorPosts(_ context.Context, authorIDs, excludeIDs []string, page, limit int) ([]PostDetail, int, error) {
	f.maybePanic("author")
	if f.authorErr != nil {
		return nil, 0, f.authorErr
	}
	authors := toSet(authorIDs)
	excluded := toSet(excludeIDs)
	var all []PostDetail
	for id, p := range f.posts {
		if _, ok := authors[p.AuthorID]; !ok {
			continue
		}
		if _, skip := excluded[id]; skip {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, page, limit), len(all), nil
}

func (f *fakeStore) AuthorIDsForUser(_ context.Context, userID string) ([]string, error) {
	if f.authorErr != nil {
		return nil, f.authorErr
	}
	return f.authorsByUser[userID], nil
}

func (f *fakeStore) EnsureViewHistorySchema(context.Context) error {
	return nil
}

func (f *fakeStore) AllViewRecords(ctx context.Context) ([]ViewRecord, error) {
	if f.historyEntered != nil {
		close(f.historyEntered)
	}
	if f.historyGate != nil {
		select {
		case <-f.historyGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.records, nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func paginate(all []PostDetail, page, limit int) []PostDetail {
	start := (page - 1) * limit
	if start >= len(all) {
		return []PostDetail{}
	}
	end := min(start+limit, len(all))
	return all[start:end]
}

// recordingPublisher captures published records.
type recordingPublisher struct {
	mu      sync.Mutex
	records []ViewRecord
	err     error
}

func (p *recordingPublisher) PublishViewTracked(_ context.Context, r ViewRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, r)
	return p.err
}

func (p *recordingPublisher) published() []ViewRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ViewRecord, len(p.records))
	copy(out, p.records)
	return out
}

func newTestEngine(t *testing.T, store *fakeStore) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if store != nil {
		engine.SetDataProvider(store)
	}
	return engine
}

func track(t *testing.T, e *Engine, userID string, postIDs ...string) {
	t.Helper()
	for _, p := range postIDs {
		if err := e.TrackView(context.Background(), ViewEvent{UserID: userID, PostID: p}); err != nil {
			t.Fatalf("TrackView(%s, %s): %v", userID, p, err)
		}
	}
}

func itemIDs(items []PostDetail) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
