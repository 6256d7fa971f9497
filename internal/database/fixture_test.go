// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package database

import (
	"context"
	"testing"
	"time"

	"github.com/excel-azmin/ractso/internal/recommend"
)

var fixtureBase = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// testFixture ranks as p3, p1, p5, p2 by popularity among active authors:
//
//	p1 u1 +1h  2 likes             score 4
//	p2 u1 +2h  nothing             score 0
//	p3 u2 +3h  1 like, 2 comments  score 4
//	p4 u3 +4h  5 likes             suspended author
//	p5 u2 +5h  1 comment           score 1
func testFixture() Fixture {
	post := func(id, author string, hours int, images ...string) SeedPost {
		return SeedPost{
			ID:        id,
			AuthorID:  author,
			Content:   "content of " + id,
			Images:    images,
			CreatedAt: fixtureBase.Add(time.Duration(hours) * time.Hour),
		}
	}
	like := func(id, postID string) SeedEngagement {
		return SeedEngagement{ID: id, PostID: postID, UserID: "u2"}
	}

	return Fixture{
		Users: []SeedUser{
			{ID: "u1", Username: "alice", FirstName: "Alice", LastName: "Ahmed", Image: "https://img/alice.png"},
			{ID: "u2", Username: "bob"},
			{ID: "u3", Username: "mallory", Status: "SUSPENDED"},
		},
		Posts: []SeedPost{
			post("p1", "u1", 1, "a.png", "b.png"),
			post("p2", "u1", 2),
			post("p3", "u2", 3),
			post("p4", "u3", 4),
			post("p5", "u2", 5),
		},
		Likes: []SeedEngagement{
			like("l1", "p1"), like("l2", "p1"),
			like("l3", "p3"),
			like("l4", "p4"), like("l5", "p4"), like("l6", "p4"), like("l7", "p4"), like("l8", "p4"),
		},
		Comments: []SeedEngagement{
			{ID: "c1", PostID: "p3", UserID: "u1", Content: "first"},
			{ID: "c2", PostID: "p3", UserID: "u1", Content: "second"},
			{ID: "c3", PostID: "p5", UserID: "u1", Content: "third"},
		},
	}
}

// loadTestContent creates every table and loads testFixture.
func loadTestContent(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()

	if err := db.EnsureContentSchema(ctx); err != nil {
		t.Fatalf("EnsureContentSchema failed: %v", err)
	}
	if err := db.EnsureViewHistorySchema(ctx); err != nil {
		t.Fatalf("EnsureViewHistorySchema failed: %v", err)
	}
	if err := db.LoadFixture(ctx, testFixture()); err != nil {
		t.Fatalf("LoadFixture failed: %v", err)
	}
}

func postIDs(posts []recommend.PostDetail) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func strPtr(s string) *string { return &s }
