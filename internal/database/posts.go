// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/excel-azmin/ractso/internal/database/query"
	"github.com/excel-azmin/ractso/internal/recommend"
)

// ActiveUserStatus marks authors whose posts are eligible as popular picks.
const ActiveUserStatus = "ACTIVE"

// postColumns selects a post with its author and engagement counts. The
// counts are correlated subqueries so no GROUP BY over the selected columns
// is needed on any dialect.
const postColumns = `
	p.id,
	p."authorId",
	COALESCE(p.content, '') AS content,
	p.images,
	p."createdAt",
	p."updatedAt",
	u.username,
	u."firstName",
	u."lastName",
	u.image AS author_image,
	(SELECT COUNT(*) FROM "Like" l WHERE l."postId" = p.id) AS like_count,
	(SELECT COUNT(*) FROM "Comment" c WHERE c."postId" = p.id) AS comment_count`

const postFrom = `
	FROM "Post" p
	INNER JOIN "User" u ON p."authorId" = u.id`

// FetchPostDetails returns the posts with the given ids, newest first.
// Unknown ids are skipped.
func (db *DB) FetchPostDetails(ctx context.Context, ids []string) ([]recommend.PostDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	where, args := query.NewWhereBuilder().AddIn("p.id", ids).BuildWithPrefix()
	q := fmt.Sprintf(`SELECT %s %s %s ORDER BY p."createdAt" DESC, p.id ASC`, postColumns, postFrom, where)

	posts, err := db.queryPosts(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post details: %w", err)
	}
	return posts, nil
}

// FetchPopularPosts returns one page of posts by active authors ranked by
// 2*likes + comments, then recency, with the total number of candidates.
func (db *DB) FetchPopularPosts(ctx context.Context, excludeIDs []string, page, limit int) ([]recommend.PostDetail, int, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	where, args := query.NewWhereBuilder().
		AddClause("u.status = ?", ActiveUserStatus).
		AddNotIn("p.id", excludeIDs).
		BuildWithPrefix()

	total, err := db.countPosts(ctx, where, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count popular posts: %w", err)
	}
	if total == 0 {
		return []recommend.PostDetail{}, 0, nil
	}

	q := fmt.Sprintf(`
		SELECT * FROM (SELECT %s %s %s) ranked
		ORDER BY 2 * ranked.like_count + ranked.comment_count DESC, ranked."createdAt" DESC, ranked.id ASC
		LIMIT ? OFFSET ?`, postColumns, postFrom, where)

	posts, err := db.queryPosts(ctx, q, append(args, limit, offset(page, limit))...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch popular posts: %w", err)
	}
	return posts, total, nil
}

// FetchAuthorPosts returns one page of the given authors' posts, newest
// first, with the total number of candidates.
func (db *DB) FetchAuthorPosts(ctx context.Context, authorIDs, excludeIDs []string, page, limit int) ([]recommend.PostDetail, int, error) {
	if len(authorIDs) == 0 {
		return []recommend.PostDetail{}, 0, nil
	}

	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	where, args := query.NewWhereBuilder().
		AddIn(`p."authorId"`, authorIDs).
		AddNotIn("p.id", excludeIDs).
		BuildWithPrefix()

	total, err := db.countPosts(ctx, where, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count author posts: %w", err)
	}
	if total == 0 {
		return []recommend.PostDetail{}, 0, nil
	}

	q := fmt.Sprintf(`SELECT %s %s %s ORDER BY p."createdAt" DESC, p.id ASC LIMIT ? OFFSET ?`, postColumns, postFrom, where)
	posts, err := db.queryPosts(ctx, q, append(args, limit, offset(page, limit))...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch author posts: %w", err)
	}
	return posts, total, nil
}

func (db *DB) countPosts(ctx context.Context, where string, args []any) (int, error) {
	var total int
	q := fmt.Sprintf(`SELECT COUNT(*) %s %s`, postFrom, where)
	if err := db.queryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (db *DB) queryPosts(ctx context.Context, q string, args ...any) ([]recommend.PostDetail, error) {
	rows, err := db.queryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rows)

	posts := []recommend.PostDetail{}
	for rows.Next() {
		post, err := db.scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (db *DB) scanPost(rows *sql.Rows) (recommend.PostDetail, error) {
	var (
		p                             recommend.PostDetail
		username, first, last, avatar sql.NullString
	)
	err := rows.Scan(
		&p.ID,
		&p.AuthorID,
		&p.Content,
		imagesColumn{dest: &p.Images, dialect: db.dialect},
		timeColumn{&p.CreatedAt},
		timeColumn{&p.UpdatedAt},
		&username,
		&first,
		&last,
		&avatar,
		&p.LikeCount,
		&p.CommentCount,
	)
	if err != nil {
		return p, fmt.Errorf("failed to scan post: %w", err)
	}
	p.Username = stringPtr(username)
	p.FirstName = stringPtr(first)
	p.LastName = stringPtr(last)
	p.AuthorImage = stringPtr(avatar)
	return p, nil
}

func offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}
