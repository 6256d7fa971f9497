// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package recommend

// InteractionStore records which posts each user has viewed, in view order.
// A post appears at most once per user. It is not safe for concurrent use.
type InteractionStore struct {
	views map[string][]string
	index map[string]map[string]struct{}
}

// NewInteractionStore returns an empty store.
func NewInteractionStore() *InteractionStore {
	return &InteractionStore{
		views: make(map[string][]string),
		index: make(map[string]map[string]struct{}),
	}
}

// RecordView appends postID to the user's sequence unless already present.
// It reports whether the sequence changed.
func (s *InteractionStore) RecordView(userID, postID string) bool {
	seen, ok := s.index[userID]
	if !ok {
		seen = make(map[string]struct{})
		s.index[userID] = seen
	}
	if _, dup := seen[postID]; dup {
		return false
	}
	seen[postID] = struct{}{}
	s.views[userID] = append(s.views[userID], postID)
	return true
}

// ViewedPosts returns a copy of the user's sequence, empty for unknown users.
func (s *InteractionStore) ViewedPosts(userID string) []string {
	seq := s.views[userID]
	out := make([]string, len(seq))
	copy(out, seq)
	return out
}

// hasViewed reports whether the user has viewed postID.
func (s *InteractionStore) hasViewed(userID, postID string) bool {
	_, ok := s.index[userID][postID]
	return ok
}

// sequence returns the live slice for userID; callers must not modify it.
func (s *InteractionStore) sequence(userID string) []string {
	return s.views[userID]
}

// Len returns the number of users with at least one view.
func (s *InteractionStore) Len() int {
	return len(s.views)
}

// Snapshot returns a deep copy of the store.
func (s *InteractionStore) Snapshot() Snapshot {
	out := make(map[string][]string, len(s.views))
	for user, seq := range s.views {
		cp := make([]string, len(seq))
		copy(cp, seq)
		out[user] = cp
	}
	return Snapshot{Interactions: out}
}

// Restore replaces the store contents with snap. Duplicate posts within a
// user's sequence are dropped, keeping the first occurrence; users with no
// posts are omitted.
func (s *InteractionStore) Restore(snap Snapshot) {
	s.views = make(map[string][]string, len(snap.Interactions))
	s.index = make(map[string]map[string]struct{}, len(snap.Interactions))
	for user, seq := range snap.Interactions {
		for _, post := range seq {
			s.RecordView(user, post)
		}
	}
	for user, seq := range s.views {
		if len(seq) == 0 {
			delete(s.views, user)
			delete(s.index, user)
		}
	}
}

// Statistics counts users, distinct posts and total views. ModelLoaded is
// true when at least one view is recorded.
func (s *InteractionStore) Statistics() Statistics {
	posts := make(map[string]struct{})
	total := 0
	for _, seq := range s.views {
		total += len(seq)
		for _, post := range seq {
			posts[post] = struct{}{}
		}
	}
	return Statistics{
		ModelLoaded:       total > 0,
		TotalUsers:        len(s.views),
		TotalPosts:        len(posts),
		TotalInteractions: total,
	}
}
