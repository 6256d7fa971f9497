// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package events

import (
	"fmt"
	"time"
)

// Config tunes the bus and its router.
type Config struct {
	// BufferSize is the per-subscriber output channel buffer.
	BufferSize int64

	// RetryCount is how many times a failed sink call is retried.
	RetryCount int

	// RetryInitialInterval is the first retry delay; it doubles per attempt.
	RetryInitialInterval time.Duration

	// RetryMaxInterval caps the retry delay.
	RetryMaxInterval time.Duration

	// CloseTimeout bounds how long the router waits for in-flight handlers.
	CloseTimeout time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:           1024,
		RetryCount:           3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     5 * time.Second,
		CloseTimeout:         10 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.BufferSize < 0 {
		return fmt.Errorf("buffer size must not be negative, got %d", c.BufferSize)
	}
	if c.RetryCount < 0 {
		return fmt.Errorf("retry count must not be negative, got %d", c.RetryCount)
	}
	if c.RetryCount > 0 && c.RetryInitialInterval <= 0 {
		return fmt.Errorf("retry initial interval must be positive, got %v", c.RetryInitialInterval)
	}
	if c.RetryMaxInterval < c.RetryInitialInterval {
		return fmt.Errorf("retry max interval %v is below initial interval %v", c.RetryMaxInterval, c.RetryInitialInterval)
	}
	if c.CloseTimeout <= 0 {
		return fmt.Errorf("close timeout must be positive, got %v", c.CloseTimeout)
	}
	return nil
}
