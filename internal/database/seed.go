// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package database

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/excel-azmin/ractso/internal/logging"
)

// SeedUser is a row of the "User" table.
type SeedUser struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
	Image     string
	Status    string
}

// SeedPost is a row of the "Post" table.
type SeedPost struct {
	ID        string
	AuthorID  string
	Content   string
	Images    []string
	CreatedAt time.Time
}

// SeedEngagement is a like or a comment on a post.
type SeedEngagement struct {
	ID      string
	PostID  string
	UserID  string
	Content string
}

// Fixture is a batch of content rows written in one transaction.
type Fixture struct {
	Users    []SeedUser
	Posts    []SeedPost
	Likes    []SeedEngagement
	Comments []SeedEngagement
}

// contentSchema returns the DDL of the content tables. In production these
// tables belong to the platform; they are created here for local runs and tests.
func (db *DB) contentSchema() []string {
	textArray, ts := "TEXT", "TIMESTAMP"
	if db.dialect == DialectPostgres {
		textArray, ts = "text[]", "timestamptz"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS "User" (
			id TEXT PRIMARY KEY,
			username TEXT,
			"firstName" TEXT,
			"lastName" TEXT,
			image TEXT,
			status TEXT NOT NULL DEFAULT 'ACTIVE'
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "Post" (
			id TEXT PRIMARY KEY,
			"authorId" TEXT NOT NULL,
			content TEXT,
			images %s,
			"createdAt" %s NOT NULL,
			"updatedAt" %s NOT NULL
		)`, textArray, ts, ts),
		`CREATE TABLE IF NOT EXISTS "Like" (
			id TEXT PRIMARY KEY,
			"postId" TEXT NOT NULL,
			"userId" TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS "Comment" (
			id TEXT PRIMARY KEY,
			"postId" TEXT NOT NULL,
			"userId" TEXT NOT NULL,
			content TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_post_author ON "Post" ("authorId")`,
		`CREATE INDEX IF NOT EXISTS idx_like_post ON "Like" ("postId")`,
		`CREATE INDEX IF NOT EXISTS idx_comment_post ON "Comment" ("postId")`,
	}
}

// EnsureContentSchema creates the "User", "Post", "Like" and "Comment"
// tables when they do not exist.
func (db *DB) EnsureContentSchema(ctx context.Context) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	for _, stmt := range db.contentSchema() {
		if _, err := db.execContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create content schema: %w", err)
		}
	}
	return nil
}

// LoadFixture writes the fixture rows in a single transaction.
func (db *DB) LoadFixture(ctx context.Context, f Fixture) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	exec := func(q string, args ...any) error {
		_, execErr := tx.ExecContext(ctx, db.rebind(q), args...)
		return execErr
	}

	for _, u := range f.Users {
		status := u.Status
		if status == "" {
			status = ActiveUserStatus
		}
		if err = exec(`INSERT INTO "User" (id, username, "firstName", "lastName", image, status) VALUES (?, ?, ?, ?, ?, ?)`,
			u.ID, emptyAsNull(u.Username), emptyAsNull(u.FirstName), emptyAsNull(u.LastName), emptyAsNull(u.Image), status); err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.ID, err)
		}
	}

	for _, p := range f.Posts {
		images, imgErr := db.imagesArg(p.Images)
		if imgErr != nil {
			err = imgErr
			return err
		}
		created := db.timeArg(p.CreatedAt)
		if err = exec(`INSERT INTO "Post" (id, "authorId", content, images, "createdAt", "updatedAt") VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.AuthorID, p.Content, images, created, created); err != nil {
			return fmt.Errorf("failed to insert post %s: %w", p.ID, err)
		}
	}

	for _, l := range f.Likes {
		if err = exec(`INSERT INTO "Like" (id, "postId", "userId") VALUES (?, ?, ?)`, l.ID, l.PostID, l.UserID); err != nil {
			return fmt.Errorf("failed to insert like %s: %w", l.ID, err)
		}
	}

	for _, c := range f.Comments {
		if err = exec(`INSERT INTO "Comment" (id, "postId", "userId", content) VALUES (?, ?, ?, ?)`,
			c.ID, c.PostID, c.UserID, c.Content); err != nil {
			return fmt.Errorf("failed to insert comment %s: %w", c.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fixture: %w", err)
	}
	return nil
}

// SeedMockData creates the content tables and fills them with demo users,
// posts and engagement for local runs. It does nothing when posts exist.
func (db *DB) SeedMockData(ctx context.Context) error {
	if err := db.EnsureContentSchema(ctx); err != nil {
		return err
	}

	var existing int
	if err := db.queryRowContext(ctx, `SELECT COUNT(*) FROM "Post"`).Scan(&existing); err != nil {
		return fmt.Errorf("failed to count posts: %w", err)
	}
	if existing > 0 {
		logging.Info().Int("posts", existing).Msg("Content tables already populated, skipping mock data")
		return nil
	}

	fixture := MockFixture(time.Now().UTC())
	if err := db.LoadFixture(ctx, fixture); err != nil {
		return fmt.Errorf("failed to seed mock data: %w", err)
	}

	logging.Info().
		Int("users", len(fixture.Users)).
		Int("posts", len(fixture.Posts)).
		Int("likes", len(fixture.Likes)).
		Int("comments", len(fixture.Comments)).
		Msg("Seeded mock content")
	return nil
}

// MockFixture builds a deterministic demo data set anchored at now.
func MockFixture(now time.Time) Fixture {
	const (
		postsPerUser  = 4
		daysOfHistory = 30
	)

	names := []struct{ first, last string }{
		{"Alice", "Ahmed"}, {"Bob", "Barua"}, {"Charlie", "Chowdhury"},
		{"Dana", "Das"}, {"Emma", "Evans"}, {"Farhan", "Faruk"},
		{"Grace", "Gomes"}, {"Hasan", "Haque"}, {"Isabella", "Islam"},
		{"Jack", "Jones"},
	}
	topics := []string{
		"Weekend hike photos", "Notes from the Go meetup", "Best street food in town",
		"My reading list this month", "Trying a new coffee brew", "Sunset from the rooftop",
		"Home office setup tour", "First attempt at sourdough", "Match day recap",
		"Thoughts on remote work",
	}

	rng := rand.New(rand.NewPCG(42, 7))
	f := Fixture{}

	for i, n := range names {
		status := ActiveUserStatus
		if i == len(names)-1 {
			status = "SUSPENDED"
		}
		f.Users = append(f.Users, SeedUser{
			ID:        fmt.Sprintf("user-%02d", i+1),
			Username:  fmt.Sprintf("%s%d", n.first, i+1),
			FirstName: n.first,
			LastName:  n.last,
			Image:     fmt.Sprintf("https://picsum.photos/seed/avatar%d/128", i+1),
			Status:    status,
		})
	}

	for i, u := range f.Users {
		for j := range postsPerUser {
			idx := i*postsPerUser + j
			age := time.Duration(rng.IntN(daysOfHistory*24)) * time.Hour
			var images []string
			if rng.IntN(2) == 0 {
				images = []string{fmt.Sprintf("https://picsum.photos/seed/post%d/640/480", idx+1)}
			}
			f.Posts = append(f.Posts, SeedPost{
				ID:        fmt.Sprintf("post-%03d", idx+1),
				AuthorID:  u.ID,
				Content:   topics[idx%len(topics)],
				Images:    images,
				CreatedAt: now.Add(-age).Truncate(time.Second),
			})
		}
	}

	for _, p := range f.Posts {
		for k := range rng.IntN(6) {
			f.Likes = append(f.Likes, SeedEngagement{
				ID:     uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("like/%s/%d", p.ID, k))).String(),
				PostID: p.ID,
				UserID: f.Users[rng.IntN(len(f.Users))].ID,
			})
		}
		for k := range rng.IntN(4) {
			f.Comments = append(f.Comments, SeedEngagement{
				ID:      uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("comment/%s/%d", p.ID, k))).String(),
				PostID:  p.ID,
				UserID:  f.Users[rng.IntN(len(f.Users))].ID,
				Content: "Nice one!",
			})
		}
	}

	return f
}

func emptyAsNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}
