// Package types contains the connection source interfaces shared by the database
// vendors and the dao dispatcher. They live apart from package database to avoid
// import cycles and to keep them easy to fake in tests.
//
//nolint:revive // Package name "types" is intentionally generic to avoid circular imports
package types

import (
	"context"
	"database/sql"
)

// Vendor identifies a database backend.
type Vendor = string

const (
	PostgreSQL Vendor = "postgresql"
	Oracle     Vendor = "oracle"
	SQLite     Vendor = "sqlite"
)

// Statement is a statement prepared on a single borrowed connection.
type Statement interface {
	// Query executes the statement and returns its cursor. The caller closes the rows.
	Query(ctx context.Context, args ...any) (*sql.Rows, error)
	// Exec executes the statement for its side effects.
	Exec(ctx context.Context, args ...any) (sql.Result, error)
	Close() error
}

// Conn is one connection borrowed from a pool for the duration of a single call.
// Close returns it to the pool.
type Conn interface {
	Prepare(ctx context.Context, query string) (Statement, error)
	Close() error
}

// Source yields ready-to-use connections. Pool sizing and lifetime stay with the source.
type Source interface {
	Conn(ctx context.Context) (Conn, error)
}

// Interface is a pooled database connection source with health and diagnostics.
type Interface interface {
	Source

	// Health pings the database.
	Health(ctx context.Context) error
	// Stats reports pool statistics.
	Stats() (map[string]any, error)

	Close() error

	// DatabaseType returns the vendor identifier, e.g. "postgresql".
	DatabaseType() string
}
