package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/sqldao/config"
	"github.com/gaborage/sqldao/logger"
)

func stubDriver(t *testing.T, db *sql.DB, pingErr error) {
	t.Helper()

	originalOpen := openPostgresDB
	originalPing := pingPostgresDB
	openPostgresDB = func(*pgx.ConnConfig) *sql.DB { return db }
	pingPostgresDB = func(context.Context, *sql.DB) error { return pingErr }
	t.Cleanup(func() {
		openPostgresDB = originalOpen
		pingPostgresDB = originalPing
	})
}

func TestQuoteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "''"},
		{"simple", "simple"},
		{"with.dot_and-dash", "with.dot_and-dash"},
		{"has space", "'has space'"},
		{`it's`, `'it\'s'`},
		{`back\slash`, `'back\\slash'`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, quoteDSN(tt.in), tt.in)
	}
}

func TestBuildDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:       "localhost",
		Port:       5432,
		Username:   "app",
		Password:   "p@ss word",
		Database:   "items",
		PostgreSQL: config.PostgreSQLConfig{SSLMode: "disable"},
	}
	assert.Equal(t,
		"host=localhost port=5432 user=app password='p@ss word' dbname=items sslmode=disable",
		buildDSN(cfg))

	cfg.ConnectionString = "postgres://app@db/items"
	assert.Equal(t, "postgres://app@db/items", buildDSN(cfg))
}

func TestNewConnectionSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	stubDriver(t, db, nil)

	cfg := &config.DatabaseConfig{
		Type:     config.PostgreSQL,
		Host:     "localhost",
		Port:     5432,
		Username: "app",
		Password: "secret",
		Database: "items",
		Pool: config.PoolConfig{
			Max:  config.PoolMaxConfig{Connections: 4},
			Idle: config.PoolIdleConfig{Connections: 2},
		},
	}

	conn, err := NewConnection(cfg, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "postgresql", conn.DatabaseType())
	assert.Equal(t, 4, db.Stats().MaxOpenConnections)
	assert.Equal(t, 1, db.Stats().Idle, "the pinged connection stays pooled")

	mock.ExpectClose()
	require.NoError(t, conn.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewConnectionPingFailureClosesPool(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	stubDriver(t, db, errors.New("connection refused"))
	mock.ExpectClose()

	_, err = NewConnection(&config.DatabaseConfig{
		ConnectionString: "postgres://app@localhost:5432/items",
	}, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping PostgreSQL database")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewConnectionInvalidDSN(t *testing.T) {
	_, err := NewConnection(&config.DatabaseConfig{ConnectionString: "postgres://%zz"}, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse PostgreSQL config")
}
