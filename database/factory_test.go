package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/sqldao/config"
	"github.com/gaborage/sqldao/logger"
)

const errUnsupportedDatabaseType = "unsupported database type"

func TestValidateDatabaseType(t *testing.T) {
	for _, dbType := range []string{"postgresql", "oracle", "sqlite"} {
		assert.NoError(t, ValidateDatabaseType(dbType), dbType)
	}

	for _, dbType := range []string{"mysql", "mongodb", "", "PostgreSQL"} {
		err := ValidateDatabaseType(dbType)
		require.Error(t, err, dbType)
		assert.Contains(t, err.Error(), errUnsupportedDatabaseType+": "+dbType)
	}
}

func TestGetSupportedDatabaseTypesReturnsCopy(t *testing.T) {
	types := GetSupportedDatabaseTypes()
	assert.Equal(t, []string{PostgreSQL, Oracle, SQLite}, types)

	types[0] = "mutated"
	assert.Equal(t, PostgreSQL, GetSupportedDatabaseTypes()[0])
}

func TestNewConnectionRejectsUnsupportedType(t *testing.T) {
	_, err := NewConnection(&config.DatabaseConfig{Type: "mysql"}, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), errUnsupportedDatabaseType)
}

func TestNewConnectionWrapsSQLiteWithTracking(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Type:   config.SQLite,
		SQLite: config.SQLiteConfig{Path: ":memory:"},
	}

	conn, err := NewConnection(cfg, logger.Nop())
	require.NoError(t, err)
	defer conn.Close()

	_, tracked := conn.(*TrackedConnection)
	assert.True(t, tracked, "expected a tracked connection, got %T", conn)
	assert.Equal(t, SQLite, conn.DatabaseType())
	require.NoError(t, conn.Health(context.Background()))
}

func TestNewConnectionPropagatesVendorError(t *testing.T) {
	original := vendorFactories[PostgreSQL]
	vendorFactories[PostgreSQL] = func(*config.DatabaseConfig, logger.Logger) (Interface, error) {
		return nil, errors.New("failed to ping PostgreSQL database: refused")
	}
	t.Cleanup(func() { vendorFactories[PostgreSQL] = original })

	_, err := NewConnection(&config.DatabaseConfig{Type: PostgreSQL}, logger.Nop())
	require.EqualError(t, err, "failed to ping PostgreSQL database: refused")
}

func TestFromDBWrapsExistingPool(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	src := FromDB(db, PostgreSQL, logger.Nop())
	assert.Equal(t, PostgreSQL, src.DatabaseType())

	mock.ExpectPing()
	require.NoError(t, src.Health(context.Background()))

	mock.ExpectClose()
	require.NoError(t, src.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
