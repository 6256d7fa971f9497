// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package recommend

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func records(pairs ...[2]string) []ViewRecord {
	out := make([]ViewRecord, len(pairs))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range pairs {
		out[i] = ViewRecord{ID: p[0] + "-" + p[1], UserID: p[0], PostID: p[1], CreatedAt: base.Add(time.Duration(i) * time.Second)}
	}
	return out
}

func TestLoader_RebuildsFromHistory(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.records = records(
		[2]string{"U", "A"}, [2]string{"U", "B"},
		[2]string{"V", "A"}, [2]string{"V", "B"}, [2]string{"V", "C"},
		[2]string{"V", "A"}, // duplicate view collapses
		[2]string{"", "X"},  // malformed rows are skipped
	)
	e := newTestEngine(t, store)
	track(t, e, "stale", "Z")

	loader := NewLoader(e, store, zerolog.Nop())
	if err := loader.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	select {
	case <-loader.Done():
	default:
		t.Error("Done should be closed after Run")
	}

	status := loader.Status()
	if status.State != LoadCompleted || status.Records != 7 || status.Users != 2 || status.Posts != 3 {
		t.Errorf("Status = %+v", status)
	}
	if got := e.viewedPosts("V"); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("viewedPosts(V) = %v", got)
	}
	if len(e.viewedPosts("stale")) != 0 {
		t.Error("rebuild should replace the previous model")
	}
	if w := e.neighbors("A")["B"]; !approxEqual(w, 0.2) {
		t.Errorf("w(A,B) = %v, want 0.2", w)
	}
}

func TestLoader_EmptyHistoryKeepsModel(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	e := newTestEngine(t, store)
	track(t, e, "u", "p1", "p2")

	loader := NewLoader(e, store, zerolog.Nop())
	if err := loader.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if loader.Status().State != LoadEmpty {
		t.Errorf("State = %s, want empty", loader.Status().State)
	}
	if got := e.viewedPosts("u"); len(got) != 2 {
		t.Errorf("empty history must not clear the model, got %v", got)
	}
}

func TestLoader_FailureKeepsModel(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.historyErr = errors.New("relation does not exist")
	e := newTestEngine(t, store)
	track(t, e, "u", "p1", "p2")

	loader := NewLoader(e, store, zerolog.Nop())
	if err := loader.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	status := loader.Status()
	if status.State != LoadFailed || status.Error == "" {
		t.Errorf("Status = %+v", status)
	}
	if got := e.neighbors("p1")["p2"]; !approxEqual(got, 0.1) {
		t.Errorf("model changed after failed load: w = %v", got)
	}

	// A failed load must not leave the engine stuck in rebuild mode.
	store.historyErr = nil
	store.records = records([2]string{"x", "y"})
	if err := loader.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
}

func TestLoader_ReplaysViewsTrackedDuringRebuild(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.records = records([2]string{"U", "A"}, [2]string{"U", "B"})
	store.historyGate = make(chan struct{})
	store.historyEntered = make(chan struct{})
	e := newTestEngine(t, store)

	loader := NewLoader(e, store, zerolog.Nop())
	errCh := make(chan error, 1)
	go func() { errCh <- loader.Run(context.Background()) }()

	<-store.historyEntered
	track(t, e, "U", "C") // arrives while history is being read
	close(store.historyGate)

	if err := <-errCh; err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := e.viewedPosts("U"); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("viewedPosts(U) = %v, want concurrent view preserved", got)
	}
	if w := e.neighbors("C")["A"]; !approxEqual(w, 0.1) {
		t.Errorf("w(C,A) = %v, want 0.1", w)
	}
	if loader.Status().Replayed != 1 {
		t.Errorf("Replayed = %d, want 1", loader.Status().Replayed)
	}
}

func TestLoader_RejectsConcurrentRebuild(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	if err := e.beginRebuild(); err != nil {
		t.Fatalf("beginRebuild: %v", err)
	}
	defer e.abortRebuild()

	loader := NewLoader(e, newFakeStore(), zerolog.Nop())
	if err := loader.Run(context.Background()); !errors.Is(err, ErrRebuildInProgress) {
		t.Errorf("Run = %v, want ErrRebuildInProgress", err)
	}

	status := loader.Status()
	if status.State != LoadFailed {
		t.Errorf("State = %s, want %s", status.State, LoadFailed)
	}
	if status.Error != ErrRebuildInProgress.Error() {
		t.Errorf("Error = %q, want %q", status.Error, ErrRebuildInProgress.Error())
	}
	if status.FinishedAt.IsZero() {
		t.Error("FinishedAt should be set")
	}
	select {
	case <-loader.Done():
	default:
		t.Error("Done should be closed after a skipped run")
	}
}
