// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package wal

import (
	"fmt"
	"time"
)

// Config holds WAL configuration.
//
// The application config (internal/config WALConfig) is mapped onto this
// struct in cmd/server; defaults for the tuning knobs come from DefaultConfig.
type Config struct {
	// Path is the directory where BadgerDB stores its files.
	Path string

	// InMemory keeps the WAL in memory. Intended for tests.
	InMemory bool

	// SyncWrites forces fsync after every write.
	SyncWrites bool

	// RetryInterval is the time between retry loop iterations.
	RetryInterval time.Duration

	// MaxRetries is the number of failed replays after which an entry is dropped.
	MaxRetries int

	// RetryBackoff is the initial backoff duration for exponential backoff.
	RetryBackoff time.Duration

	// CompactInterval is the time between compaction runs.
	CompactInterval time.Duration

	// EntryTTL is the time-to-live for unconfirmed entries.
	EntryTTL time.Duration

	// MemTableSize is the size of each memtable in bytes.
	MemTableSize int64

	// ValueLogFileSize is the size of each value log file in bytes.
	ValueLogFileSize int64

	// NumCompactors is the number of BadgerDB compaction workers (minimum 2).
	NumCompactors int

	// GCRatio is the ratio for value log garbage collection.
	GCRatio float64

	// CloseTimeout is the maximum time to wait for graceful shutdown.
	CloseTimeout time.Duration
}

// DefaultConfig returns a Config with defaults that favor durability.
func DefaultConfig() Config {
	return Config{
		Path:             "./data/wal",
		SyncWrites:       true,
		RetryInterval:    30 * time.Second,
		MaxRetries:       100,
		RetryBackoff:     5 * time.Second,
		CompactInterval:  time.Hour,
		EntryTTL:         168 * time.Hour,
		MemTableSize:     16 * 1024 * 1024,
		ValueLogFileSize: 64 * 1024 * 1024,
		NumCompactors:    2,
		GCRatio:          0.5,
		CloseTimeout:     30 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Path == "" && !c.InMemory {
		return &ConfigError{Field: "Path", Message: "cannot be empty"}
	}
	if c.RetryInterval <= 0 {
		return &ConfigError{Field: "RetryInterval", Message: "must be positive"}
	}
	if c.MaxRetries < 1 {
		return &ConfigError{Field: "MaxRetries", Message: "must be at least 1"}
	}
	if c.RetryBackoff < 0 {
		return &ConfigError{Field: "RetryBackoff", Message: "cannot be negative"}
	}
	if c.CompactInterval <= 0 {
		return &ConfigError{Field: "CompactInterval", Message: "must be positive"}
	}
	if c.EntryTTL <= 0 {
		return &ConfigError{Field: "EntryTTL", Message: "must be positive"}
	}
	if c.NumCompactors != 0 && c.NumCompactors < 2 {
		return &ConfigError{Field: "NumCompactors", Message: "must be at least 2"}
	}
	if c.GCRatio < 0 || c.GCRatio >= 1 {
		return &ConfigError{Field: "GCRatio", Message: "must be in [0, 1)"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("wal config %s: %s", e.Field, e.Message)
}
