// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package recommend

import "errors"

var (
	// ErrInvalidView is returned by TrackView when the user or post id is empty.
	ErrInvalidView = errors.New("recommend: user id and post id are required")

	// ErrInvalidPage is returned by Recommend when page < 1.
	ErrInvalidPage = errors.New("recommend: page must be >= 1")

	// ErrInvalidLimit is returned by Recommend when limit is outside [1, MaxLimit].
	ErrInvalidLimit = errors.New("recommend: limit out of range")

	// ErrNoDataProvider is returned by strategies that need the store when none is set.
	ErrNoDataProvider = errors.New("recommend: no data provider configured")

	// ErrRebuildInProgress is returned when a second warm-start rebuild is started.
	ErrRebuildInProgress = errors.New("recommend: rebuild already in progress")
)
