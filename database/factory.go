// Package database builds the connection sources that DAOs run against.
// Vendors live in subpackages; NewConnection picks one by database.type and
// wraps it with statement tracking.
package database

import (
	"database/sql"
	"fmt"
	"slices"

	"github.com/gaborage/sqldao/config"
	"github.com/gaborage/sqldao/database/internal/sqldb"
	"github.com/gaborage/sqldao/database/oracle"
	"github.com/gaborage/sqldao/database/postgresql"
	"github.com/gaborage/sqldao/database/sqlite"
	"github.com/gaborage/sqldao/logger"
)

var supportedTypes = []string{PostgreSQL, Oracle, SQLite}

// vendorFactories is a variable so tests can substitute a vendor.
var vendorFactories = map[string]func(*config.DatabaseConfig, logger.Logger) (Interface, error){
	PostgreSQL: postgresql.NewConnection,
	Oracle:     oracle.NewConnection,
	SQLite:     sqlite.NewConnection,
}

// NewConnection creates the connection source selected by cfg.Type and wraps it
// with performance tracking. Driver initialization errors are returned as is.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (Interface, error) {
	if err := ValidateDatabaseType(cfg.Type); err != nil {
		return nil, err
	}

	conn, err := vendorFactories[cfg.Type](cfg, log)
	if err != nil {
		return nil, err
	}

	return NewTrackedConnection(conn, log, cfg), nil
}

// ValidateDatabaseType returns nil if dbType is one of the supported database types.
func ValidateDatabaseType(dbType string) error {
	if !slices.Contains(supportedTypes, dbType) {
		return fmt.Errorf("unsupported database type: %s (supported: %v)", dbType, supportedTypes)
	}
	return nil
}

// GetSupportedDatabaseTypes returns a list of supported database types
func GetSupportedDatabaseTypes() []string {
	return slices.Clone(supportedTypes)
}

// FromDB wraps a pool the caller already owns. vendor is reported by
// DatabaseType and used as the tracking db.system. Closing the returned source
// closes db.
func FromDB(db *sql.DB, vendor string, log logger.Logger) Interface {
	return sqldb.New(db, vendor, vendor, log)
}
