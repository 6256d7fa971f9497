// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package events

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/excel-azmin/ractso/internal/logging"
	"github.com/excel-azmin/ractso/internal/recommend"
	"github.com/excel-azmin/ractso/internal/wal"
)

type staticSource struct {
	snap recommend.Snapshot
}

func (s staticSource) Snapshot() recommend.Snapshot { return s.snap }

type failingSaver struct{}

func (failingSaver) Save(recommend.Snapshot) error { return errors.New("disk full") }

func TestSnapshotSink_SavesEngineState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "interactions.json")
	saver, err := recommend.NewFileSnapshotter(path, recommend.SnapshotJSON)
	if err != nil {
		t.Fatal(err)
	}
	source := staticSource{snap: recommend.Snapshot{Interactions: map[string][]string{
		"u1": {"p1", "p2"},
		"u2": {"p2"},
	}}}

	sink := NewSnapshotSink(source, saver)
	if sink.Name() != SnapshotSinkName {
		t.Errorf("Name() = %q", sink.Name())
	}
	if err := sink.Handle(context.Background(), testRecord("v1", "u1", "p2")); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	loaded, err := saver.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := loaded.Interactions["u1"]; len(got) != 2 || got[0] != "p1" || got[1] != "p2" {
		t.Errorf("u1 = %v", got)
	}
	if got := loaded.Interactions["u2"]; len(got) != 1 {
		t.Errorf("u2 = %v", got)
	}
}

func TestSnapshotSink_Errors(t *testing.T) {
	sink := NewSnapshotSink(staticSource{}, failingSaver{})
	if err := sink.Handle(context.Background(), testRecord("v1", "u1", "p1")); err == nil {
		t.Error("expected save error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sink.Handle(ctx, testRecord("v1", "u1", "p1")); !errors.Is(err, context.Canceled) {
		t.Errorf("Handle(canceled) = %v, want context.Canceled", err)
	}
}

// fakeStore fails while down is set.
type fakeStore struct {
	mu      sync.Mutex
	down    bool
	calls   int
	records []recommend.ViewRecord
}

func (s *fakeStore) AppendViewRecord(_ context.Context, record recommend.ViewRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.down {
		return errors.New("connection refused")
	}
	s.records = append(s.records, record)
	return nil
}

func (s *fakeStore) setDown(down bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

type fakeJournal struct {
	err     error
	written []any
}

func (j *fakeJournal) Write(_ context.Context, event any) (string, error) {
	if j.err != nil {
		return "", j.err
	}
	j.written = append(j.written, event)
	return "entry-1", nil
}

func testBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 2,
		Timeout:          time.Hour,
		MaxRequests:      1,
	}
}

func TestHistorySink_AppendsRecords(t *testing.T) {
	store := &fakeStore{}
	sink := NewHistorySink(store, nil, testBreakerConfig(), logging.NewTestLogger(io.Discard))

	if err := sink.Handle(context.Background(), testRecord("v1", "u1", "p1")); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(store.records) != 1 || store.records[0].ID != "v1" {
		t.Errorf("records = %+v", store.records)
	}
	if sink.State() != "closed" {
		t.Errorf("State() = %q, want closed", sink.State())
	}
}

func TestHistorySink_JournalsFailures(t *testing.T) {
	store := &fakeStore{down: true}
	journal := &fakeJournal{}
	sink := NewHistorySink(store, journal, testBreakerConfig(), logging.NewTestLogger(io.Discard))

	for _, id := range []string{"v1", "v2", "v3"} {
		if err := sink.Handle(context.Background(), testRecord(id, "u1", "p1")); err != nil {
			t.Fatalf("Handle(%s) = %v, want nil after journaling", id, err)
		}
	}

	if len(journal.written) != 3 {
		t.Fatalf("journaled %d records, want 3", len(journal.written))
	}
	if rec, ok := journal.written[2].(recommend.ViewRecord); !ok || rec.ID != "v3" {
		t.Errorf("journal[2] = %#v", journal.written[2])
	}

	// The breaker opened after two failures, so the third view never
	// reached the store.
	if store.calls != 2 {
		t.Errorf("store calls = %d, want 2", store.calls)
	}
	if sink.State() != "open" {
		t.Errorf("State() = %q, want open", sink.State())
	}
}

func TestHistorySink_ReturnsErrorWithoutJournal(t *testing.T) {
	store := &fakeStore{down: true}
	sink := NewHistorySink(store, nil, testBreakerConfig(), logging.NewTestLogger(io.Discard))

	if err := sink.Handle(context.Background(), testRecord("v1", "u1", "p1")); err == nil {
		t.Error("expected error without a journal")
	}
}

func TestHistorySink_JournalFailure(t *testing.T) {
	store := &fakeStore{down: true}
	journal := &fakeJournal{err: errors.New("wal closed")}
	sink := NewHistorySink(store, journal, testBreakerConfig(), logging.NewTestLogger(io.Discard))

	err := sink.Handle(context.Background(), testRecord("v1", "u1", "p1"))
	if err == nil || !errors.Is(err, journal.err) {
		t.Errorf("Handle = %v, want wrapped journal error", err)
	}
}

func TestHistorySink_JournalReplay(t *testing.T) {
	cfg := wal.DefaultConfig()
	cfg.InMemory = true
	journal, err := wal.Open(&cfg)
	if err != nil {
		t.Fatalf("wal.Open failed: %v", err)
	}
	t.Cleanup(func() { _ = journal.Close() })

	store := &fakeStore{down: true}
	sink := NewHistorySink(store, journal, testBreakerConfig(), logging.NewTestLogger(io.Discard))

	content := "hello"
	record := testRecord("v1", "u1", "p1")
	record.PostContent = &content
	if err := sink.Handle(context.Background(), record); err != nil {
		t.Fatal(err)
	}

	store.setDown(false)
	loop := wal.NewRetryLoop(journal, HistoryReplayer(store))
	result := loop.RunOnce(context.Background())
	if result.Replayed != 1 {
		t.Fatalf("result = %+v, want one replayed", result)
	}

	if len(store.records) != 1 {
		t.Fatalf("store records = %d, want 1", len(store.records))
	}
	got := store.records[0]
	if got.ID != "v1" || got.PostContent == nil || *got.PostContent != "hello" || !got.CreatedAt.Equal(record.CreatedAt) {
		t.Errorf("replayed record = %+v", got)
	}
	if stats := journal.Stats(); stats.PendingCount != 0 {
		t.Errorf("pending after replay = %d", stats.PendingCount)
	}
}
