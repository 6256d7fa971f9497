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

	"github.com/goccy/go-json"
)

// socialStore returns a store with posts A..F by two authors and a popular ordering.
func socialStore() *fakeStore {
	s := newFakeStore()
	s.addPost("A", "alice", 1, 0, 60)
	s.addPost("B", "alice", 0, 0, 50)
	s.addPost("C", "bob", 5, 1, 40)
	s.addPost("D", "bob", 2, 2, 30)
	s.addPost("E", "alice", 0, 3, 20)
	s.addPost("F", "carol", 9, 9, 10)
	s.popularOrder = []string{"F", "C", "D", "E", "A", "B"}
	return s
}

func TestRecommend_InvalidArguments(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, socialStore())
	tests := []struct {
		name        string
		page, limit int
		want        error
	}{
		{"page zero", 0, 10, ErrInvalidPage},
		{"limit zero", 1, 0, ErrInvalidLimit},
		{"limit over max", 1, 101, ErrInvalidLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := e.Recommend(context.Background(), "u", tt.page, tt.limit); !errors.Is(err, tt.want) {
				t.Errorf("Recommend = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRecommend_NewUserGetsPopular(t *testing.T) {
	t.Parallel()

	store := socialStore()
	e := newTestEngine(t, store)

	page, err := e.Recommend(context.Background(), "stranger", 1, 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if page.Source != SourcePopular || page.Fallback {
		t.Errorf("Source = %s fallback=%v, want popular without fallback", page.Source, page.Fallback)
	}
	if got := itemIDs(page.Items); !reflect.DeepEqual(got, []string{"F", "C", "D"}) {
		t.Errorf("items = %v", got)
	}
	if page.Total != 6 {
		t.Errorf("Total = %d, want 6", page.Total)
	}
	first := page.Items[0]
	if first.PopularityScore == nil || *first.PopularityScore != 27 {
		t.Errorf("popularity_score = %v, want 2*9+9", first.PopularityScore)
	}
	if first.ScoreMatrix != nil || first.SimilarityScore != 0 {
		t.Errorf("popular items carry no similarity data, got %+v", first)
	}
	if len(store.popularExcludes) != 1 || store.popularExcludes[0] != nil {
		t.Errorf("new users get no exclusions, got %v", store.popularExcludes)
	}
}

func TestRecommend_Similarity(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, socialStore())
	track(t, e, "other", "A", "C", "D")
	track(t, e, "third", "A", "D")
	track(t, e, "u", "A")

	page, err := e.Recommend(context.Background(), "u", 1, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if page.Source != SourceSimilarity {
		t.Fatalf("Source = %s, want similarity", page.Source)
	}
	// w(A,D)=0.2, w(A,C)=0.1
	if got := itemIDs(page.Items); !reflect.DeepEqual(got, []string{"D", "C"}) {
		t.Errorf("items = %v, want ranked [D C]", got)
	}
	if page.Total != 2 {
		t.Errorf("Total = %d, want 2", page.Total)
	}

	d := page.Items[0]
	if !approxEqual(d.SimilarityScore, 0.2) {
		t.Errorf("similarity_score = %v, want 0.2", d.SimilarityScore)
	}
	if w, ok := d.ScoreMatrix.Weight("A"); !ok || !approxEqual(w, 0.2) {
		t.Errorf("score_matrix[A] = %v,%v", w, ok)
	}
	if d.PopularityScore != nil {
		t.Error("similarity items have no popularity score")
	}
	for _, it := range page.Items {
		if it.ID == "A" {
			t.Error("viewed post recommended")
		}
	}
}

func TestRecommend_SimilarityScoreMatrixOrder(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, socialStore())
	track(t, e, "x", "A", "C")
	track(t, e, "y", "B", "C")
	track(t, e, "z", "B", "C")
	track(t, e, "u", "A", "B")

	page, err := e.Recommend(context.Background(), "u", 1, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	var c PostDetail
	for _, it := range page.Items {
		if it.ID == "C" {
			c = it
		}
	}
	if !approxEqual(c.SimilarityScore, 0.3) {
		t.Fatalf("score(C) = %v, want 0.3", c.SimilarityScore)
	}

	raw, err := json.Marshal(c.ScoreMatrix)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"B":0.2,"A":0.1}` {
		t.Errorf("score_matrix JSON = %s, want contributions sorted descending", raw)
	}
}

func TestRecommend_TieBreakAndDisjointPages(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	ids := []string{"seed", "p5", "p3", "p1", "p4", "p2"}
	for i, id := range ids {
		store.addPost(id, "a", 0, 0, i)
	}
	e := newTestEngine(t, store)
	track(t, e, "other", ids...)
	track(t, e, "u", "seed")

	var pages [][]string
	for p := 1; p <= 3; p++ {
		page, err := e.Recommend(context.Background(), "u", p, 2)
		if err != nil {
			t.Fatalf("Recommend page %d: %v", p, err)
		}
		if page.Source != SourceSimilarity || page.Total != 5 {
			t.Fatalf("page %d: source=%s total=%d", p, page.Source, page.Total)
		}
		pages = append(pages, itemIDs(page.Items))
	}

	want := [][]string{{"p1", "p2"}, {"p3", "p4"}, {"p5"}}
	if !reflect.DeepEqual(pages, want) {
		t.Errorf("pages = %v, want %v (equal scores ordered by id)", pages, want)
	}
}

func TestRecommend_AuthorFallback(t *testing.T) {
	t.Parallel()

	store := socialStore()
	store.authorsByUser["u"] = []string{"alice"}
	e := newTestEngine(t, store)
	track(t, e, "u", "A") // no co-views anywhere

	page, err := e.Recommend(context.Background(), "u", 1, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if page.Source != SourceAuthor {
		t.Fatalf("Source = %s, want author", page.Source)
	}
	if got := itemIDs(page.Items); !reflect.DeepEqual(got, []string{"E", "B"}) {
		t.Errorf("items = %v, want alice's unviewed posts newest first", got)
	}
	e0 := page.Items[0]
	if e0.SimilarityScore != 0.5 {
		t.Errorf("similarity_score = %v, want 0.5", e0.SimilarityScore)
	}
	if w, ok := e0.ScoreMatrix.Weight("author:alice"); !ok || w != 0.5 {
		t.Errorf("score_matrix = %v", e0.ScoreMatrix)
	}
	if e0.PopularityScore != nil {
		t.Error("author items have null popularity_score")
	}
}

func TestRecommend_PopularExcludesViewed(t *testing.T) {
	t.Parallel()

	store := socialStore()
	e := newTestEngine(t, store)
	track(t, e, "u", "F") // no co-views, no authors

	page, err := e.Recommend(context.Background(), "u", 1, 2)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if page.Source != SourcePopular || page.Fallback {
		t.Fatalf("Source = %s fallback=%v", page.Source, page.Fallback)
	}
	if got := itemIDs(page.Items); !reflect.DeepEqual(got, []string{"C", "D"}) {
		t.Errorf("items = %v, want F excluded", got)
	}
	if page.Total != 5 {
		t.Errorf("Total = %d, want 5", page.Total)
	}
}

func TestRecommend_SimilarityExhaustedFallsThrough(t *testing.T) {
	t.Parallel()

	store := socialStore()
	e := newTestEngine(t, store)
	track(t, e, "other", "A", "C")
	track(t, e, "u", "A")

	page, err := e.Recommend(context.Background(), "u", 2, 1)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	// One similarity candidate, page 2 is empty: no authors, so popular page 2.
	if page.Source != SourcePopular {
		t.Fatalf("Source = %s, want popular", page.Source)
	}
	if got := itemIDs(page.Items); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("items = %v, want popular page 2 without A", got)
	}
}

func TestRecommend_FailuresDegradeToPopular(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*fakeStore)
	}{
		{"details error", func(s *fakeStore) { s.detailsErr = errors.New("db down") }},
		{"details panic", func(s *fakeStore) { s.panicIn = "details" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := socialStore()
			tt.mutate(store)
			e := newTestEngine(t, store)
			track(t, e, "other", "A", "B")
			track(t, e, "u", "A")

			page, err := e.Recommend(context.Background(), "u", 1, 2)
			if err != nil {
				t.Fatalf("Recommend must not fail, got %v", err)
			}
			if page.Source != SourcePopular || !page.Fallback {
				t.Errorf("Source = %s fallback=%v, want popular fallback", page.Source, page.Fallback)
			}
			// Fallback popular applies no exclusions.
			if got := itemIDs(page.Items); !reflect.DeepEqual(got, []string{"F", "C"}) {
				t.Errorf("items = %v", got)
			}
			_, fallbacks, _ := e.Counters()
			if fallbacks != 1 {
				t.Errorf("fallbacks = %d, want 1", fallbacks)
			}
		})
	}
}

func TestRecommend_AuthorErrorDegrades(t *testing.T) {
	t.Parallel()

	store := socialStore()
	store.authorErr = errors.New("timeout")
	e := newTestEngine(t, store)
	track(t, e, "u", "F")

	page, err := e.Recommend(context.Background(), "u", 1, 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if page.Source != SourcePopular || !page.Fallback {
		t.Fatalf("Source = %s fallback=%v, want popular fallback", page.Source, page.Fallback)
	}
	if got := itemIDs(page.Items); !reflect.DeepEqual(got, []string{"C", "D", "E"}) {
		t.Errorf("items = %v, want viewed F excluded", got)
	}
	if page.Total != 5 {
		t.Errorf("Total = %d, want 5", page.Total)
	}
	if n := len(store.popularExcludes); n != 1 || !reflect.DeepEqual(store.popularExcludes[0], []string{"F"}) {
		t.Errorf("popular excludes = %v, want [[F]]", store.popularExcludes)
	}
	_, fallbacks, _ := e.Counters()
	if fallbacks != 1 {
		t.Errorf("fallbacks = %d, want 1", fallbacks)
	}
}

func TestRecommend_AuthorAndPopularErrorsYieldEmptyPage(t *testing.T) {
	t.Parallel()

	store := socialStore()
	store.authorErr = errors.New("timeout")
	store.popularErr = errors.New("db down")
	e := newTestEngine(t, store)
	track(t, e, "u", "F")

	page, err := e.Recommend(context.Background(), "u", 1, 3)
	if err != nil {
		t.Fatalf("Recommend must not fail, got %v", err)
	}
	if len(page.Items) != 0 || page.Total != 0 || !page.Fallback {
		t.Errorf("items=%v total=%d fallback=%v, want empty fallback page", itemIDs(page.Items), page.Total, page.Fallback)
	}
}

func TestRecommend_PopularFailureYieldsEmptyPage(t *testing.T) {
	t.Parallel()

	store := socialStore()
	store.popularErr = errors.New("db down")
	e := newTestEngine(t, store)

	page, err := e.Recommend(context.Background(), "stranger", 1, 10)
	if err != nil {
		t.Fatalf("Recommend must not fail, got %v", err)
	}
	if len(page.Items) != 0 || page.Total != 0 {
		t.Errorf("expected empty page, got %d items total %d", len(page.Items), page.Total)
	}
	if page.Items == nil {
		t.Error("items should be an empty slice, not nil")
	}
}

func TestRecommend_NoDataProvider(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	page, err := e.Recommend(context.Background(), "u", 1, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(page.Items) != 0 || page.Total != 0 {
		t.Errorf("expected empty page without a store, got %+v", page)
	}
}

func TestRecommend_MissingDetailsKeepRankOrder(t *testing.T) {
	t.Parallel()

	store := socialStore()
	e := newTestEngine(t, store)
	track(t, e, "o1", "A", "B", "GONE")
	track(t, e, "o2", "A", "GONE")
	track(t, e, "o3", "A", "E")
	track(t, e, "u", "A")

	page, err := e.Recommend(context.Background(), "u", 1, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	// GONE ranks first but has no post row; B and E tie at 0.1.
	if got := itemIDs(page.Items); !reflect.DeepEqual(got, []string{"B", "E"}) {
		t.Errorf("items = %v", got)
	}
	if page.Total != 3 {
		t.Errorf("Total = %d, want candidate count 3", page.Total)
	}
}
