// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package recommend

import (
	"context"
	"fmt"
	"sort"
)

// candidate is a post reachable from the user's history through the
// co-view graph.
type candidate struct {
	postID        string
	score         float64
	contributions ScoreMatrix
}

// Recommend returns one page of recommendations for userID. Invalid paging
// arguments are the only errors; store failures degrade to popular posts
// and, failing that, to an empty page.
func (e *Engine) Recommend(ctx context.Context, userID string, page, limit int) (*Page, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if limit < 1 || limit > e.config.MaxLimit {
		return nil, ErrInvalidLimit
	}
	e.requestCount.Add(1)

	logger := e.logger.With().Str("user_id", userID).Int("page", page).Int("limit", limit).Logger()

	result, err := e.runStrategies(ctx, userID, page, limit)
	if err != nil {
		e.fallbackCount.Add(1)
		logger.Warn().Err(err).Msg("recommendation strategies failed, serving popular posts")
		result = e.popularOrEmpty(ctx, page, limit)
		result.Fallback = true
		return result, nil
	}

	logger.Debug().
		Str("source", string(result.Source)).
		Int("items", len(result.Items)).
		Int("total", result.Total).
		Msg("recommendations served")
	return result, nil
}

// runStrategies walks similarity -> author -> popular. An author failure
// skips to popular with the viewed posts still excluded. A panic anywhere in
// the chain is returned as an error.
func (e *Engine) runStrategies(ctx context.Context, userID string, page, limit int) (result *Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("recommendation panic: %v", r)
		}
	}()

	viewed, ranked := e.rankCandidates(userID)
	if len(viewed) == 0 {
		return e.popularPage(ctx, nil, page, limit)
	}

	start := (page - 1) * limit
	if start < len(ranked) {
		end := min(start+limit, len(ranked))
		return e.similarityPage(ctx, ranked[start:end], len(ranked), page, limit)
	}

	authorPage, err := e.authorPage(ctx, userID, viewed, page, limit)
	if err != nil {
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("author strategy failed, serving popular posts")
		popular, perr := e.popularPage(ctx, viewed, page, limit)
		if perr != nil {
			return nil, perr
		}
		e.fallbackCount.Add(1)
		popular.Fallback = true
		return popular, nil
	}
	if len(authorPage.Items) > 0 {
		return authorPage, nil
	}

	return e.popularPage(ctx, viewed, page, limit)
}

// rankCandidates scores every unviewed neighbor of the user's viewed posts
// under a read lock. Candidates are ordered by score descending, then post
// id ascending; contributions by weight descending, then key ascending.
func (e *Engine) rankCandidates(userID string) ([]string, []candidate) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	viewed := e.interactions.ViewedPosts(userID)
	if len(viewed) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(viewed))
	for _, v := range viewed {
		seen[v] = struct{}{}
	}

	byID := make(map[string]*candidate)
	for _, v := range viewed {
		for post, w := range e.similarity.row(v) {
			if _, ok := seen[post]; ok {
				continue
			}
			c, ok := byID[post]
			if !ok {
				c = &candidate{postID: post}
				byID[post] = c
			}
			c.score += w
			c.contributions = append(c.contributions, Contribution{Key: v, Weight: w})
		}
	}

	ranked := make([]candidate, 0, len(byID))
	for _, c := range byID {
		sort.Slice(c.contributions, func(i, j int) bool {
			a, b := c.contributions[i], c.contributions[j]
			if a.Weight != b.Weight {
				return a.Weight > b.Weight
			}
			return a.Key < b.Key
		})
		ranked = append(ranked, *c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].postID < ranked[j].postID
	})
	return viewed, ranked
}

// similarityPage loads details for an already-sliced candidate page and
// returns them in ranked order. Candidates missing from the store are skipped.
func (e *Engine) similarityPage(ctx context.Context, pageCandidates []candidate, total, page, limit int) (*Page, error) {
	if e.dataProvider == nil {
		return nil, ErrNoDataProvider
	}

	ids := make([]string, len(pageCandidates))
	for i, c := range pageCandidates {
		ids[i] = c.postID
	}

	qctx, cancel := context.WithTimeout(ctx, e.config.QueryTimeout)
	defer cancel()
	details, err := e.dataProvider.FetchPostDetails(qctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch post details: %w", err)
	}

	byID := make(map[string]PostDetail, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}

	items := make([]PostDetail, 0, len(pageCandidates))
	for _, c := range pageCandidates {
		d, ok := byID[c.postID]
		if !ok {
			continue
		}
		d.SimilarityScore = c.score
		d.ScoreMatrix = c.contributions
		d.PopularityScore = nil
		d.Source = SourceSimilarity
		items = append(items, d)
	}

	return &Page{Items: items, Total: total, Page: page, Limit: limit, Source: SourceSimilarity}, nil
}

// authorPage serves recent posts by authors the user has viewed.
func (e *Engine) authorPage(ctx context.Context, userID string, viewed []string, page, limit int) (*Page, error) {
	if e.dataProvider == nil {
		return nil, ErrNoDataProvider
	}

	qctx, cancel := context.WithTimeout(ctx, e.config.QueryTimeout)
	defer cancel()

	authorIDs, err := e.dataProvider.AuthorIDsForUser(qctx, userID)
	if err != nil {
		return nil, fmt.Errorf("author ids: %w", err)
	}
	empty := &Page{Items: []PostDetail{}, Page: page, Limit: limit, Source: SourceAuthor}
	if len(authorIDs) == 0 {
		return empty, nil
	}

	posts, total, err := e.dataProvider.FetchAuthorPosts(qctx, authorIDs, viewed, page, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch author posts: %w", err)
	}
	if len(posts) == 0 {
		return empty, nil
	}

	for i := range posts {
		posts[i].SimilarityScore = e.config.AuthorScore
		posts[i].ScoreMatrix = ScoreMatrix{{Key: "author:" + posts[i].AuthorID, Weight: e.config.AuthorScore}}
		posts[i].PopularityScore = nil
		posts[i].Source = SourceAuthor
	}
	return &Page{Items: posts, Total: total, Page: page, Limit: limit, Source: SourceAuthor}, nil
}

// popularPage serves posts ranked by engagement, excluding excludeIDs.
func (e *Engine) popularPage(ctx context.Context, excludeIDs []string, page, limit int) (*Page, error) {
	if e.dataProvider == nil {
		return nil, ErrNoDataProvider
	}

	qctx, cancel := context.WithTimeout(ctx, e.config.QueryTimeout)
	defer cancel()

	posts, total, err := e.dataProvider.FetchPopularPosts(qctx, excludeIDs, page, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch popular posts: %w", err)
	}
	if posts == nil {
		posts = []PostDetail{}
	}

	for i := range posts {
		score := float64(2*posts[i].LikeCount + posts[i].CommentCount)
		posts[i].SimilarityScore = 0
		posts[i].ScoreMatrix = nil
		posts[i].PopularityScore = &score
		posts[i].Source = SourcePopular
	}
	return &Page{Items: posts, Total: total, Page: page, Limit: limit, Source: SourcePopular}, nil
}

// popularOrEmpty is the last resort: popular posts with no exclusions, or
// an empty page when even that fails.
func (e *Engine) popularOrEmpty(ctx context.Context, page, limit int) (result *Page) {
	empty := &Page{Items: []PostDetail{}, Total: 0, Page: page, Limit: limit, Source: SourcePopular}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("popular fallback panicked, serving empty page")
			result = empty
		}
	}()

	result, err := e.popularPage(ctx, nil, page, limit)
	if err != nil {
		e.logger.Error().Err(err).Msg("popular fallback failed, serving empty page")
		return empty
	}
	return result
}
