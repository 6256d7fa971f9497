// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

// Package recommend implements an incremental co-view recommendation engine
// for social posts.
//
// # Model
//
// The engine keeps two in-memory structures guarded by a single RWMutex:
//
//   - InteractionStore: user -> ordered, duplicate-free list of viewed posts
//   - SimilarityModel: symmetric post -> post -> weight co-view graph
//
// Every tracked view appends to the viewer's list and reinforces the edge
// between the new post and each post the user saw before. There is no
// offline training step; the model is live from the first view.
//
// # Strategies
//
// Recommend walks a strict fallback chain:
//
//  1. Users with no history get popular posts.
//  2. Similarity: candidates scored by summed edge weight to the user's
//     viewed posts, ranked by score then post id.
//  3. Author: recent posts by authors the user has viewed before, used only
//     when the similarity page is empty.
//  4. Popular: posts ranked by 2*likes + comments, excluding viewed posts.
//
// Any failure inside the chain, including a panic, degrades to popular posts
// without exclusions. Recommend never surfaces store errors to its caller.
//
// # Persistence
//
// The engine does not write to disk itself. After each mutation it hands a
// ViewRecord to a Publisher; the events package fans that out to the
// snapshot file and the durable view history. At startup the snapshot file
// is restored with Engine.Restore and the Loader rebuilds both structures
// from the full view history in the background.
//
// # Thread Safety
//
// Engine and Loader are safe for concurrent use. InteractionStore and
// SimilarityModel are not; the engine serializes access to them.
package recommend
