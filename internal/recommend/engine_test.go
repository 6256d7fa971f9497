// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package recommend

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewEngine_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.CoViewWeight = 0
	if _, err := NewEngine(cfg, zerolog.Nop()); err == nil {
		t.Error("expected error for zero co-view weight")
	}
}

func TestTrackView_CoViewWeights(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	track(t, e, "U", "A", "B")
	track(t, e, "V", "A", "B", "C")

	tests := []struct {
		a, b string
		want float64
	}{
		{"A", "B", 0.2},
		{"B", "A", 0.2},
		{"A", "C", 0.1},
		{"B", "C", 0.1},
		{"C", "A", 0.1},
	}
	for _, tt := range tests {
		if got := e.neighbors(tt.a)[tt.b]; !approxEqual(got, tt.want) {
			t.Errorf("w(%s,%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}

	stats := e.Statistics()
	want := Statistics{ModelLoaded: true, TotalUsers: 2, TotalPosts: 3, TotalInteractions: 5}
	if stats != want {
		t.Errorf("Statistics = %+v, want %+v", stats, want)
	}
}

func TestTrackView_Idempotent(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	track(t, e, "U", "A", "B")
	before := e.neighbors("A")
	statsBefore := e.Statistics()

	track(t, e, "U", "B")

	if !reflect.DeepEqual(e.neighbors("A"), before) {
		t.Errorf("repeated view changed the model: %v -> %v", before, e.neighbors("A"))
	}
	if e.Statistics() != statsBefore {
		t.Errorf("repeated view changed statistics: %+v -> %+v", statsBefore, e.Statistics())
	}
}

func TestTrackView_InvalidInput(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	tests := []ViewEvent{
		{UserID: "", PostID: "p"},
		{UserID: "u", PostID: ""},
	}
	for _, v := range tests {
		if err := e.TrackView(context.Background(), v); !errors.Is(err, ErrInvalidView) {
			t.Errorf("TrackView(%+v) = %v, want ErrInvalidView", v, err)
		}
	}
	if e.ModelLoaded() {
		t.Error("invalid views must not load the model")
	}
}

func TestTrackView_Publishes(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	pub := &recordingPublisher{}
	e.SetPublisher(pub)

	author := "author-1"
	content := "hello"
	err := e.TrackView(context.Background(), ViewEvent{UserID: "u", PostID: "p", PostAuthorID: &author, PostContent: &content})
	if err != nil {
		t.Fatalf("TrackView: %v", err)
	}
	track(t, e, "u", "p")

	records := pub.published()
	if len(records) != 2 {
		t.Fatalf("expected every view to be published, got %d", len(records))
	}
	first := records[0]
	if first.ID == "" || first.ID == records[1].ID {
		t.Errorf("records need distinct ids, got %q and %q", first.ID, records[1].ID)
	}
	if first.UserID != "u" || first.PostID != "p" || *first.PostAuthorID != author || *first.PostContent != content {
		t.Errorf("unexpected record %+v", first)
	}
	if first.CreatedAt.IsZero() {
		t.Error("record should carry a timestamp")
	}
}

func TestTrackView_PublishFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	e.SetPublisher(&recordingPublisher{err: errors.New("disk full")})

	if err := e.TrackView(context.Background(), ViewEvent{UserID: "u", PostID: "p"}); err != nil {
		t.Fatalf("publish failure must not fail TrackView, got %v", err)
	}
	if got := e.viewedPosts("u"); len(got) != 1 {
		t.Errorf("mutation should survive publish failure, got %v", got)
	}
}

func TestEngine_Restore(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	if e.Restore(Snapshot{Interactions: map[string][]string{}}) {
		t.Error("empty snapshot should not replace the model")
	}

	ok := e.Restore(Snapshot{Interactions: map[string][]string{
		"U": {"A", "B"},
		"V": {"A", "B", "B", "C"},
	}})
	if !ok {
		t.Fatal("expected Restore to replace the model")
	}
	if got := e.neighbors("A")["B"]; !approxEqual(got, 0.2) {
		t.Errorf("w(A,B) after restore = %v, want 0.2", got)
	}
	if got := e.viewedPosts("V"); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("ViewedPosts(V) = %v", got)
	}
}

func TestEngine_ConcurrentTrackAndRecommend(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("p%02d", i)
		store.addPost(id, "a", int64(i), 0, i)
		store.popularOrder = append(store.popularOrder, id)
	}
	e := newTestEngine(t, store)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", w%3)
			for i := 0; i < 50; i++ {
				post := fmt.Sprintf("p%02d", (i*7+w)%20)
				if err := e.TrackView(context.Background(), ViewEvent{UserID: user, PostID: post}); err != nil {
					t.Errorf("TrackView: %v", err)
					return
				}
				if _, err := e.Recommend(context.Background(), user, 1, 5); err != nil {
					t.Errorf("Recommend: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	for _, a := range []string{"p00", "p05", "p13"} {
		for b, w := range e.neighbors(a) {
			if back := e.neighbors(b)[a]; back != w {
				t.Errorf("asymmetric edge %s-%s: %v vs %v", a, b, w, back)
			}
		}
	}
}
