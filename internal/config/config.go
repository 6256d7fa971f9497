// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config is the complete service configuration. It is immutable after Load.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Recommend RecommendConfig `koanf:"recommend"`
	Events    EventsConfig    `koanf:"events"`
	WAL       WALConfig       `koanf:"wal"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - PORT / HTTP_PORT: listen port (default: 8000)
//   - HTTP_HOST: listen host (default: 0.0.0.0)
//   - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT
//   - SHUTDOWN_TIMEOUT: graceful shutdown budget (default: 15s)
//   - ENVIRONMENT: development or production
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// Addr returns the host:port listen address.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Supported database drivers.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig selects and tunes the content and view-history store.
//
// Driver may be left empty: a postgres:// or postgresql:// URL selects
// postgres, anything else selects the embedded DuckDB file at Path.
//
// Environment Variables:
//   - DATABASE_DRIVER: duckdb, postgres or sqlite
//   - DATABASE_URL: postgres connection URL
//   - DATABASE_PATH: duckdb/sqlite file path (default: ./data/ractso.duckdb)
//   - DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS, DB_CONN_MAX_LIFETIME
//   - DB_QUERY_TIMEOUT: per-query deadline (default: 10s)
//   - DB_CONNECT_TIMEOUT: startup ping deadline (default: 10s)
//   - SEED_MOCK_DATA: create and fill demo content tables (default: false)
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"`
	URL             string        `koanf:"url"`
	Path            string        `koanf:"path"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	QueryTimeout    time.Duration `koanf:"query_timeout"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	SeedMockData    bool          `koanf:"seed_mock_data"`
}

// ResolvedDriver returns the configured driver, inferring it from URL when unset.
func (d *DatabaseConfig) ResolvedDriver() string {
	if d.Driver != "" {
		return strings.ToLower(d.Driver)
	}
	if strings.HasPrefix(d.URL, "postgres://") || strings.HasPrefix(d.URL, "postgresql://") {
		return DriverPostgres
	}
	return DriverDuckDB
}

// Snapshot file encodings.
const (
	SnapshotFormatJSON    = "json"
	SnapshotFormatMsgpack = "msgpack"
)

// RecommendConfig tunes the recommendation engine.
//
// Environment Variables:
//   - MODEL_PATH: model location; the interaction snapshot lives next to it
//     (default: ./models/recommendation_model)
//   - SNAPSHOT_FORMAT: json or msgpack (default: json)
//   - SNAPSHOT_ENABLED: write the snapshot after every view (default: true)
//   - RECOMMEND_CO_VIEW_WEIGHT: co-view reinforcement (default: 0.1)
//   - RECOMMEND_AUTHOR_SCORE: score attached to author picks (default: 0.5)
//   - RECOMMEND_DEFAULT_LIMIT / RECOMMEND_MAX_LIMIT (default: 10 / 100)
//   - RECOMMEND_WARM_START: rebuild from view history at startup (default: true)
//   - RECOMMEND_QUERY_TIMEOUT: deadline for each strategy's store calls
type RecommendConfig struct {
	ModelPath       string        `koanf:"model_path"`
	SnapshotFormat  string        `koanf:"snapshot_format"`
	SnapshotEnabled bool          `koanf:"snapshot_enabled"`
	CoViewWeight    float64       `koanf:"co_view_weight"`
	AuthorScore     float64       `koanf:"author_score"`
	DefaultLimit    int           `koanf:"default_limit"`
	MaxLimit        int           `koanf:"max_limit"`
	WarmStart       bool          `koanf:"warm_start"`
	QueryTimeout    time.Duration `koanf:"query_timeout"`
}

// SnapshotPath is the interaction snapshot file, stored beside the model path.
func (r *RecommendConfig) SnapshotPath() string {
	ext := ".json"
	if r.SnapshotFormat == SnapshotFormatMsgpack {
		ext = ".msgpack"
	}
	return filepath.Join(filepath.Dir(r.ModelPath), "interactions"+ext)
}

// EventsConfig tunes the in-process event bus feeding the persistence sinks.
//
// Environment Variables:
//   - EVENTS_BUFFER_SIZE: per-subscriber channel buffer (default: 256)
//   - EVENTS_RETRY_COUNT: handler retries before a message is dropped (default: 3)
//   - EVENTS_RETRY_INTERVAL: initial retry backoff (default: 100ms)
//   - EVENTS_CLOSE_TIMEOUT: router shutdown budget (default: 10s)
type EventsConfig struct {
	BufferSize           int64         `koanf:"buffer_size"`
	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// WALConfig configures the Badger write-ahead log that holds view records
// the store could not accept.
//
// Environment Variables:
//   - WAL_ENABLED (default: true)
//   - WAL_PATH (default: ./data/wal)
//   - WAL_SYNC_WRITES (default: true)
//   - WAL_RETRY_INTERVAL (default: 30s)
//   - WAL_MAX_RETRIES (default: 100)
//   - WAL_COMPACT_INTERVAL (default: 1h)
type WALConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Path            string        `koanf:"path"`
	SyncWrites      bool          `koanf:"sync_writes"`
	RetryInterval   time.Duration `koanf:"retry_interval"`
	MaxRetries      int           `koanf:"max_retries"`
	CompactInterval time.Duration `koanf:"compact_interval"`
}

// BreakerConfig configures the circuit breaker around view-history writes.
//
// Environment Variables:
//   - BREAKER_FAILURE_THRESHOLD: consecutive failures that open the circuit (default: 5)
//   - BREAKER_TIMEOUT: open-state duration before probing (default: 30s)
//   - BREAKER_INTERVAL: closed-state count reset interval (default: 1m)
//   - BREAKER_MAX_REQUESTS: probes allowed while half-open (default: 1)
type BreakerConfig struct {
	FailureThreshold uint32        `koanf:"failure_threshold"`
	Timeout          time.Duration `koanf:"timeout"`
	Interval         time.Duration `koanf:"interval"`
	MaxRequests      uint32        `koanf:"max_requests"`
}

// SecurityConfig holds CORS and rate limiting settings.
//
// Environment Variables:
//   - CORS_ORIGINS: comma-separated allowed origins
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW (default: 100 per 1m)
//   - DISABLE_RATE_LIMIT (default: false)
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// String renders a one-line summary for startup logs. Credentials in the
// database URL are not included.
func (c *Config) String() string {
	return fmt.Sprintf("server=%s driver=%s snapshot=%s wal=%t",
		c.Server.Addr(), c.Database.ResolvedDriver(), c.Recommend.SnapshotPath(), c.WAL.Enabled)
}
