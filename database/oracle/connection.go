// Package oracle provides an Oracle connection source backed by the pure-Go go-ora driver.
package oracle

import (
	"context"
	"database/sql"
	"fmt"

	go_ora "github.com/sijms/go-ora/v2"

	"github.com/gaborage/sqldao/config"
	"github.com/gaborage/sqldao/database/internal/sqldb"
	"github.com/gaborage/sqldao/database/types"
	"github.com/gaborage/sqldao/logger"
)

// Connection implements types.Interface for Oracle
type Connection struct {
	*sqldb.Pool
}

var (
	openOracleDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("oracle", dsn)
	}
	pingOracleDB = func(ctx context.Context, db *sql.DB) error {
		return db.PingContext(ctx)
	}
)

// buildDSN prefers ConnectionString, then service name, then SID, then Database as the service.
func buildDSN(cfg *config.DatabaseConfig) string {
	switch {
	case cfg.ConnectionString != "":
		return cfg.ConnectionString
	case cfg.Oracle.ServiceName != "":
		return go_ora.BuildUrl(cfg.Host, cfg.Port, cfg.Oracle.ServiceName, cfg.Username, cfg.Password, nil)
	case cfg.Oracle.SID != "":
		return go_ora.BuildUrl(cfg.Host, cfg.Port, "", cfg.Username, cfg.Password, map[string]string{"SID": cfg.Oracle.SID})
	default:
		return go_ora.BuildUrl(cfg.Host, cfg.Port, cfg.Database, cfg.Username, cfg.Password, nil)
	}
}

// NewConnection creates a new Oracle connection source.
// go-ora does not implement LastInsertId; DAOs on Oracle should not declare generated keys.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (types.Interface, error) {
	db, err := openOracleDB(buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open Oracle connection: %w", err)
	}

	sqldb.Configure(db, &cfg.Pool)

	if err := sqldb.Verify(db, "Oracle", pingOracleDB, log); err != nil {
		return nil, fmt.Errorf("failed to ping Oracle database: %w", err)
	}

	ev := log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port)
	switch {
	case cfg.Oracle.ServiceName != "":
		ev = ev.Str("service_name", cfg.Oracle.ServiceName)
	case cfg.Oracle.SID != "":
		ev = ev.Str("sid", cfg.Oracle.SID)
	default:
		ev = ev.Str("database", cfg.Database)
	}
	ev.Msg("Connected to Oracle database")

	return &Connection{
		Pool: sqldb.New(db, types.Oracle, "Oracle", log),
	}, nil
}
