// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package recommend

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Source names the strategy that produced a recommendation.
type Source string

const (
	SourceSimilarity Source = "similarity"
	SourceAuthor     Source = "author"
	SourcePopular    Source = "popular"
)

// ViewEvent is a single "user viewed post" signal as received from clients.
type ViewEvent struct {
	UserID       string
	PostID       string
	PostContent  *string
	PostAuthorID *string
}

// ViewRecord is the durable, append-only form of a tracked view.
type ViewRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	PostID       string    `json:"post_id"`
	PostContent  *string   `json:"post_content,omitempty"`
	PostAuthorID *string   `json:"post_author_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PostDetail is a post as returned to API clients, decorated with the
// scoring fields of the strategy that selected it.
type PostDetail struct {
	ID              string      `json:"id"`
	AuthorID        string      `json:"authorId"`
	Content         string      `json:"content"`
	Images          []string    `json:"images"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
	Username        *string     `json:"username"`
	FirstName       *string     `json:"firstName"`
	LastName        *string     `json:"lastName"`
	AuthorImage     *string     `json:"author_image"`
	LikeCount       int64       `json:"like_count"`
	CommentCount    int64       `json:"comment_count"`
	SimilarityScore float64     `json:"similarity_score"`
	ScoreMatrix     ScoreMatrix `json:"score_matrix"`
	PopularityScore *float64    `json:"popularity_score"`
	Source          Source      `json:"source"`
}

// Contribution is one entry of a score breakdown.
type Contribution struct {
	Key    string
	Weight float64
}

// ScoreMatrix explains a score as an ordered list of contributions. It
// encodes as a JSON object whose keys keep the slice order.
type ScoreMatrix []Contribution

// MarshalJSON writes the contributions as an ordered JSON object, or null.
func (m ScoreMatrix) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(strconv.AppendFloat(nil, c.Weight, 'g', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Weight returns the contribution recorded for key.
func (m ScoreMatrix) Weight(key string) (float64, bool) {
	for _, c := range m {
		if c.Key == key {
			return c.Weight, true
		}
	}
	return 0, false
}

// Page is one page of recommendations.
type Page struct {
	Items []PostDetail
	// Total is the candidate count of the strategy that produced the page.
	Total  int
	Page   int
	Limit  int
	Source Source
	// Fallback is set when the strategy chain failed and popular posts
	// were served instead.
	Fallback bool
}

// TotalPages returns max(1, ceil(Total/Limit)).
func (p *Page) TotalPages() int {
	if p.Limit <= 0 || p.Total <= 0 {
		return 1
	}
	return max(1, (p.Total+p.Limit-1)/p.Limit)
}

// HasNext reports whether a later page exists.
func (p *Page) HasNext() bool {
	return p.Page < p.TotalPages()
}

// HasPrevious reports whether an earlier page exists.
func (p *Page) HasPrevious() bool {
	return p.Page > 1
}

// Statistics summarizes the live model.
type Statistics struct {
	ModelLoaded       bool `json:"model_loaded"`
	TotalUsers        int  `json:"total_users"`
	TotalPosts        int  `json:"total_posts"`
	TotalInteractions int  `json:"total_interactions"`
}

// Snapshot is the serializable form of the interaction store.
type Snapshot struct {
	Interactions map[string][]string `json:"interactions" msgpack:"interactions"`
}

// DataProvider is the read side of the post store used by the strategies.
// It is implemented by the database package.
type DataProvider interface {
	// FetchPostDetails returns the posts with the given ids. Unknown ids are skipped.
	FetchPostDetails(ctx context.Context, ids []string) ([]PostDetail, error)

	// FetchPopularPosts returns one page of posts by active authors ranked by
	// 2*likes + comments, then recency, along with the total count.
	FetchPopularPosts(ctx context.Context, excludeIDs []string, page, limit int) ([]PostDetail, int, error)

	// FetchAuthorPosts returns one page of the given authors' posts, newest
	// first, along with the total count.
	FetchAuthorPosts(ctx context.Context, authorIDs, excludeIDs []string, page, limit int) ([]PostDetail, int, error)

	// AuthorIDsForUser returns the distinct authors of posts the user has viewed.
	AuthorIDsForUser(ctx context.Context, userID string) ([]string, error)
}

// HistoryProvider is the durable view history read at warm start.
type HistoryProvider interface {
	// EnsureViewHistorySchema creates or migrates the view history table.
	EnsureViewHistorySchema(ctx context.Context) error

	// AllViewRecords returns every view record, oldest first.
	AllViewRecords(ctx context.Context) ([]ViewRecord, error)
}

// Publisher receives a record for every tracked view.
type Publisher interface {
	PublishViewTracked(ctx context.Context, record ViewRecord) error
}
