// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package recommend

// SimilarityModel is a sparse, symmetric co-view graph between posts:
//
//	weights[a][b] == weights[b][a] == accumulated co-view weight
//
// Weights only grow, except when the whole model is rebuilt. It is not safe
// for concurrent use.
type SimilarityModel struct {
	weights map[string]map[string]float64
}

// NewSimilarityModel returns an empty model.
func NewSimilarityModel() *SimilarityModel {
	return &SimilarityModel{weights: make(map[string]map[string]float64)}
}

// Reinforce adds w to the edge between a and b in both directions.
// Self pairs are ignored.
func (m *SimilarityModel) Reinforce(a, b string, w float64) {
	if a == b {
		return
	}
	m.add(a, b, w)
	m.add(b, a, w)
}

func (m *SimilarityModel) add(from, to string, w float64) {
	row, ok := m.weights[from]
	if !ok {
		row = make(map[string]float64)
		m.weights[from] = row
	}
	row[to] += w
}

// Neighbors returns a copy of the posts connected to postID and their weights.
func (m *SimilarityModel) Neighbors(postID string) map[string]float64 {
	row := m.weights[postID]
	out := make(map[string]float64, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// Weight returns the edge weight between a and b, zero when absent.
func (m *SimilarityModel) Weight(a, b string) float64 {
	return m.weights[a][b]
}

// row returns the live neighbor map for postID; callers must not modify it.
func (m *SimilarityModel) row(postID string) map[string]float64 {
	return m.weights[postID]
}

// Len returns the number of posts with at least one edge.
func (m *SimilarityModel) Len() int {
	return len(m.weights)
}

// RebuildFromCoViews discards the current graph and reinforces every
// unordered pair of distinct posts within each user's sequence by w.
// Cost grows with the square of each user's history length.
func (m *SimilarityModel) RebuildFromCoViews(perUser map[string][]string, w float64) {
	m.weights = make(map[string]map[string]float64)
	for _, seq := range perUser {
		for i := 0; i < len(seq); i++ {
			for j := i + 1; j < len(seq); j++ {
				m.Reinforce(seq[i], seq[j], w)
			}
		}
	}
}
