// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

// Package query provides SQL query building utilities for the database package.
//
// Queries are written once with "?" placeholders. The WhereBuilder assembles
// the optional filters of the post queries (status, author and exclusion
// lists) and Dollar rebinds the finished statement for PostgreSQL:
//
//	wb := query.NewWhereBuilder()
//	wb.AddClause(`u.status = ?`, "ACTIVE")
//	wb.AddNotIn(`p.id`, []string{"a", "b"})
//	where, args := wb.BuildWithPrefix()
//	// where: WHERE u.status = ? AND p.id NOT IN (?, ?)
//	// args:  ["ACTIVE", "a", "b"]
//
//	query.Dollar(`SELECT * FROM "Post" WHERE id = ? AND "authorId" = ?`)
//	// SELECT * FROM "Post" WHERE id = $1 AND "authorId" = $2
//
// # Thread Safety
//
// WhereBuilder instances are not thread-safe. Create a new instance per query.
package query
