// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package recommend

import (
	"fmt"
	"time"
)

// Config contains the engine's tuning parameters.
type Config struct {
	// CoViewWeight is added to an edge each time two posts are co-viewed.
	CoViewWeight float64

	// AuthorScore is the similarity score attached to author-strategy posts.
	AuthorScore float64

	// MaxLimit is the largest page size Recommend accepts.
	MaxLimit int

	// QueryTimeout bounds each store call made by a strategy.
	QueryTimeout time.Duration
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() *Config {
	return &Config{
		CoViewWeight: 0.1,
		AuthorScore:  0.5,
		MaxLimit:     100,
		QueryTimeout: 10 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.CoViewWeight <= 0 {
		return fmt.Errorf("co-view weight must be positive, got %v", c.CoViewWeight)
	}
	if c.AuthorScore < 0 {
		return fmt.Errorf("author score must not be negative, got %v", c.AuthorScore)
	}
	if c.MaxLimit < 1 {
		return fmt.Errorf("max limit must be at least 1, got %d", c.MaxLimit)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("query timeout must be positive, got %v", c.QueryTimeout)
	}
	return nil
}
