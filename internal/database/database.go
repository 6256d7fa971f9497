// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/excel-azmin/ractso/internal/config"
	"github.com/excel-azmin/ractso/internal/database/query"
	"github.com/excel-azmin/ractso/internal/logging"
)

// Dialect identifies the SQL engine behind a DB.
type Dialect string

const (
	DialectDuckDB   Dialect = config.DriverDuckDB
	DialectPostgres Dialect = config.DriverPostgres
	DialectSQLite   Dialect = config.DriverSQLite
)

const (
	memoryPath          = ":memory:"
	defaultQueryTimeout = 10 * time.Second
	sqliteBusyTimeoutMS = 5000
)

// DB wraps a database/sql pool and the dialect it speaks.
type DB struct {
	conn         *sql.DB
	dialect      Dialect
	queryTimeout time.Duration
}

// Open connects to the database described by cfg and verifies the
// connection within cfg.ConnectTimeout.
func Open(cfg *config.DatabaseConfig) (*DB, error) {
	dialect := Dialect(cfg.ResolvedDriver())

	driverName, dsn, err := dataSource(dialect, cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	db := &DB{
		conn:         conn,
		dialect:      dialect,
		queryTimeout: cfg.QueryTimeout,
	}
	if db.queryTimeout <= 0 {
		db.queryTimeout = defaultQueryTimeout
	}
	db.configureConnectionPool(cfg)

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}

	logging.Info().
		Str("dialect", string(dialect)).
		Str("target", describeTarget(dialect, cfg)).
		Msg("Database connection established")

	return db, nil
}

// NewFromConn wraps an existing pool. It is used by tests and tools that
// manage their own connections.
func NewFromConn(conn *sql.DB, dialect Dialect) *DB {
	return &DB{conn: conn, dialect: dialect, queryTimeout: defaultQueryTimeout}
}

func dataSource(dialect Dialect, cfg *config.DatabaseConfig) (driverName, dsn string, err error) {
	switch dialect {
	case DialectDuckDB:
		path := cfg.Path
		if path == "" {
			path = memoryPath
		}
		if err := ensureParentDir(path); err != nil {
			return "", "", err
		}
		// Extension auto-install would reach the network on first use.
		return "duckdb", path + "?autoinstall_known_extensions=false&autoload_known_extensions=false", nil

	case DialectPostgres:
		if cfg.URL == "" {
			return "", "", fmt.Errorf("postgres dialect requires a database url")
		}
		return "postgres", cfg.URL, nil

	case DialectSQLite:
		path := cfg.Path
		if path == "" || path == memoryPath {
			return "sqlite", memoryPath, nil
		}
		if err := ensureParentDir(path); err != nil {
			return "", "", err
		}
		return "sqlite", fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(wal)", path, sqliteBusyTimeoutMS), nil

	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
	}
}

// ensureParentDir creates the directory holding an embedded database file.
func ensureParentDir(path string) error {
	if path == memoryPath {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}

func describeTarget(dialect Dialect, cfg *config.DatabaseConfig) string {
	if dialect != DialectPostgres {
		if cfg.Path == "" {
			return memoryPath
		}
		return cfg.Path
	}
	// Strip credentials from the URL before it reaches the logs.
	target := cfg.URL
	if at := strings.LastIndex(target, "@"); at >= 0 {
		target = target[at+1:]
	}
	return target
}

func (db *DB) configureConnectionPool(cfg *config.DatabaseConfig) {
	// Each SQLite connection to ":memory:" is a separate database, and
	// file databases serialize writers anyway.
	if db.dialect == DialectSQLite {
		db.conn.SetMaxOpenConns(1)
		db.conn.SetMaxIdleConns(1)
		return
	}
	if cfg.MaxOpenConns > 0 {
		db.conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Conn returns the underlying SQL connection pool.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Dialect returns the SQL dialect of the connection.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// rebind adapts a "?" statement to the connection's placeholder style.
func (db *DB) rebind(q string) string {
	if db.dialect == DialectPostgres {
		return query.Dollar(q)
	}
	return q
}

// withTimeout bounds a single statement by the configured query timeout.
// A caller deadline that is already shorter wins.
func (db *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.queryTimeout)
}

func (db *DB) queryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, db.rebind(q), args...)
}

func (db *DB) queryRowContext(ctx context.Context, q string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, db.rebind(q), args...)
}

func (db *DB) execContext(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, db.rebind(q), args...)
}
