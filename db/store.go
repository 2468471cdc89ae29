// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types. Postgres and Pgx share a dialect and differ only
// in driver.
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypePgx      = "pgx"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store wraps a connection pool with the SQL dialect it speaks.
// Queries are written with ? placeholders and rebound for Postgres.
type Store struct {
	DB     *sql.DB
	dbType string
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, dbType, dsn string) (*Store, error) {
	switch dbType {
	case TypeSQLite, TypePostgres, TypePgx:
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(dbType, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single SQLite connection serializes writers in-process instead of
	// surfacing SQLITE_BUSY to voters.
	if dbType == TypeSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(conn, dbType), nil
}

// New wraps an existing pool.
func New(conn *sql.DB, dbType string) *Store {
	return &Store{DB: conn, dbType: dbType}
}

// Type returns the configured database type.
func (s *Store) Type() string {
	return s.dbType
}

// Postgres reports whether the store speaks the Postgres dialect.
func (s *Store) Postgres() bool {
	return s.dbType == TypePostgres || s.dbType == TypePgx
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Rebind rewrites ? placeholders to $N for Postgres.
func (s *Store) Rebind(query string) string {
	if !s.Postgres() {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ShareLock returns the row-lock suffix used when re-reading a row that must
// not change before commit. SQLite transactions already serialize writers.
func (s *Store) ShareLock() string {
	if s.Postgres() {
		return " FOR SHARE"
	}
	return ""
}

// InTx runs fn inside a transaction, committing on success and rolling back on
// any error. Errors returned by fn are passed through unchanged.
func (s *Store) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Unavailable(fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return Unavailable(fmt.Errorf("commit: %w", err))
	}
	return nil
}
