// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/excel-azmin/ractso/internal/recommend"
)

const viewTable = `"RecommendationView"`

// viewTableDDL returns the CREATE TABLE statement for the view history.
func (db *DB) viewTableDDL() string {
	switch db.dialect {
	case DialectPostgres:
		return `CREATE TABLE IF NOT EXISTS "RecommendationView" (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			"userId" text NOT NULL,
			"postId" text NOT NULL,
			"postContent" text,
			"postAuthorId" text,
			"createdAt" timestamptz NOT NULL DEFAULT now()
		)`
	default:
		return `CREATE TABLE IF NOT EXISTS "RecommendationView" (
			id TEXT PRIMARY KEY,
			"userId" TEXT NOT NULL,
			"postId" TEXT NOT NULL,
			"postContent" TEXT,
			"postAuthorId" TEXT,
			"createdAt" TIMESTAMP NOT NULL
		)`
	}
}

// optionalViewColumns were added after the first release of the table.
var optionalViewColumns = []string{"postContent", "postAuthorId"}

// EnsureViewHistorySchema creates the view history table when absent and
// adds the columns later releases introduced.
func (db *DB) EnsureViewHistorySchema(ctx context.Context) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	if _, err := db.execContext(ctx, db.viewTableDDL()); err != nil {
		return fmt.Errorf("failed to create view history table: %w", err)
	}

	if err := db.addMissingViewColumns(ctx); err != nil {
		return err
	}

	if _, err := db.execContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_recommendation_view_user ON "RecommendationView" ("userId")`); err != nil {
		return fmt.Errorf("failed to create view history index: %w", err)
	}
	return nil
}

func (db *DB) addMissingViewColumns(ctx context.Context) error {
	if db.dialect != DialectSQLite {
		for _, col := range optionalViewColumns {
			stmt := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS "%s" TEXT`, viewTable, col)
			if _, err := db.execContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to add column %s: %w", col, err)
			}
		}
		return nil
	}

	// SQLite has no ADD COLUMN IF NOT EXISTS.
	existing, err := db.sqliteColumns(ctx, "RecommendationView")
	if err != nil {
		return err
	}
	for _, col := range optionalViewColumns {
		if existing[col] {
			continue
		}
		stmt := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN "%s" TEXT`, viewTable, col)
		if _, err := db.execContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add column %s: %w", col, err)
		}
	}
	return nil
}

func (db *DB) sqliteColumns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info("%s")`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer closeQuietly(rows)

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan table info: %w", err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// AppendViewRecord stores one view record. Writing the same record id twice
// is a no-op, so WAL replays cannot duplicate history.
func (db *DB) AppendViewRecord(ctx context.Context, record recommend.ViewRecord) error {
	if record.ID == "" || record.UserID == "" || record.PostID == "" {
		return ErrInvalidRecord
	}

	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	_, err := db.execContext(ctx, `
		INSERT INTO "RecommendationView" (id, "userId", "postId", "postContent", "postAuthorId", "createdAt")
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		record.ID,
		record.UserID,
		record.PostID,
		nullableString(record.PostContent),
		nullableString(record.PostAuthorID),
		db.timeArg(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append view record: %w", err)
	}
	return nil
}

// AllViewRecords returns the full view history, oldest first.
func (db *DB) AllViewRecords(ctx context.Context) ([]recommend.ViewRecord, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.queryContext(ctx, `
		SELECT CAST(id AS TEXT), "userId", "postId", "postContent", "postAuthorId", "createdAt"
		FROM "RecommendationView"
		ORDER BY "createdAt" ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query view history: %w", err)
	}
	defer closeQuietly(rows)

	var records []recommend.ViewRecord
	for rows.Next() {
		var (
			rec            recommend.ViewRecord
			content, autID sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.PostID, &content, &autID, timeColumn{&rec.CreatedAt}); err != nil {
			return nil, fmt.Errorf("failed to scan view record: %w", err)
		}
		rec.PostContent = stringPtr(content)
		rec.PostAuthorID = stringPtr(autID)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read view history: %w", err)
	}
	return records, nil
}

// CountViewRecords returns the number of stored view records.
func (db *DB) CountViewRecords(ctx context.Context) (int, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var n int
	if err := db.queryRowContext(ctx, `SELECT COUNT(*) FROM "RecommendationView"`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count view records: %w", err)
	}
	return n, nil
}

// AuthorIDsForUser returns the distinct authors of posts the user viewed,
// preferring the author captured with the view over the post's current one.
func (db *DB) AuthorIDsForUser(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.queryContext(ctx, `
		SELECT DISTINCT COALESCE(rv."postAuthorId", p."authorId") AS author_id
		FROM "RecommendationView" rv
		LEFT JOIN "Post" p ON p.id = rv."postId"
		WHERE rv."userId" = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query viewed authors: %w", err)
	}
	defer closeQuietly(rows)

	var authors []string
	for rows.Next() {
		var id sql.NullString
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan author id: %w", err)
		}
		if id.Valid && id.String != "" {
			authors = append(authors, id.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read viewed authors: %w", err)
	}
	sort.Strings(authors)
	return authors, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
