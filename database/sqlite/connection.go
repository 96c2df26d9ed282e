// Package sqlite provides an embedded SQLite connection source backed by the
// cgo-free modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/gaborage/sqldao/config"
	"github.com/gaborage/sqldao/database/internal/sqldb"
	"github.com/gaborage/sqldao/database/types"
	"github.com/gaborage/sqldao/logger"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Connection implements types.Interface for SQLite
type Connection struct {
	*sqldb.Pool
}

var (
	openSQLiteDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("sqlite", dsn)
	}
	pingSQLiteDB = func(ctx context.Context, db *sql.DB) error {
		return db.PingContext(ctx)
	}
)

func buildDSN(cfg *config.DatabaseConfig) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}
	return cfg.SQLite.Path
}

// isMemory reports whether dsn names an in-memory database. Each pooled
// connection to such a DSN would see its own empty database.
func isMemory(dsn string) bool {
	return dsn == MemoryPath || strings.Contains(dsn, "mode=memory")
}

// NewConnection creates a new SQLite connection source. In-memory databases are
// pinned to a single pooled connection so every call sees the same data.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (types.Interface, error) {
	dsn := buildDSN(cfg)
	if dsn == "" {
		return nil, fmt.Errorf("failed to open SQLite database: empty path")
	}

	db, err := openSQLiteDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	sqldb.Configure(db, &cfg.Pool)
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	if err := sqldb.Verify(db, "SQLite", pingSQLiteDB, log); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	log.Info().
		Str("path", dsn).
		Msg("Opened SQLite database")

	return &Connection{
		Pool: sqldb.New(db, types.SQLite, "SQLite", log),
	}, nil
}
