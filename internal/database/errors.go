// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package database

import (
	"errors"
	"io"
)

var (
	// ErrUnsupportedDialect is returned by Open for an unknown driver name.
	ErrUnsupportedDialect = errors.New("unsupported database dialect")

	// ErrInvalidRecord is returned when a view record lacks an id, user or post.
	ErrInvalidRecord = errors.New("invalid view record")
)

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup operations in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
