// Package postgresql provides a PostgreSQL connection source backed by the pgx stdlib driver.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/gaborage/sqldao/config"
	"github.com/gaborage/sqldao/database/internal/sqldb"
	"github.com/gaborage/sqldao/database/types"
	"github.com/gaborage/sqldao/logger"
)

// Connection implements types.Interface for PostgreSQL
type Connection struct {
	*sqldb.Pool
}

var (
	openPostgresDB = func(cfg *pgx.ConnConfig) *sql.DB {
		return stdlib.OpenDB(*cfg)
	}
	pingPostgresDB = func(ctx context.Context, db *sql.DB) error {
		return db.PingContext(ctx)
	}
)

// quoteDSN quotes a DSN value according to libpq rules:
// - Returns double single quotes for empty strings (empty value)
// - Escapes backslashes and single quotes
// - Wraps in single quotes when value contains non-alphanumeric/._- characters
func quoteDSN(value string) string {
	if value == "" {
		return "''"
	}

	needsQuoting := false
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') && r != '.' && r != '_' && r != '-' {
			needsQuoting = true
			break
		}
	}

	if !needsQuoting {
		return value
	}

	escaped := strings.ReplaceAll(value, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, "'", "\\'")

	return "'" + escaped + "'"
}

// buildDSN returns cfg.ConnectionString or a keyword/value DSN from the discrete fields.
func buildDSN(cfg *config.DatabaseConfig) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}

	parts := []string{
		fmt.Sprintf("host=%s", quoteDSN(cfg.Host)),
		fmt.Sprintf("port=%d", cfg.Port),
		fmt.Sprintf("user=%s", quoteDSN(cfg.Username)),
		fmt.Sprintf("password=%s", quoteDSN(cfg.Password)),
		fmt.Sprintf("dbname=%s", quoteDSN(cfg.Database)),
	}
	if cfg.PostgreSQL.SSLMode != "" {
		parts = append(parts, fmt.Sprintf("sslmode=%s", cfg.PostgreSQL.SSLMode))
	}
	return strings.Join(parts, " ")
}

// NewConnection creates a new PostgreSQL connection source
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (types.Interface, error) {
	pgxConfig, err := pgx.ParseConfig(buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL config: %w", err)
	}

	db := openPostgresDB(pgxConfig)
	sqldb.Configure(db, &cfg.Pool)

	if err := sqldb.Verify(db, "PostgreSQL", pingPostgresDB, log); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL database: %w", err)
	}

	log.Info().
		Str("host", pgxConfig.Host).
		Int("port", int(pgxConfig.Port)).
		Str("database", pgxConfig.Database).
		Msg("Connected to PostgreSQL database")

	return &Connection{
		Pool: sqldb.New(db, types.PostgreSQL, "PostgreSQL", log),
	}, nil
}
