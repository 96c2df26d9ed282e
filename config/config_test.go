package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sqliteYAML = `
database:
  type: sqlite
  sqlite:
    path: ":memory:"
`

func TestLoadBytesAppliesDefaults(t *testing.T) {
	cfg, err := LoadBytes([]byte(sqliteYAML))
	require.NoError(t, err)

	assert.Equal(t, "sqldao", cfg.App.Name)
	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, SQLite, cfg.Database.Type)
	assert.Equal(t, ":memory:", cfg.Database.SQLite.Path)
	assert.Equal(t, int32(25), cfg.Database.Pool.Max.Connections)
	assert.Equal(t, int32(2), cfg.Database.Pool.Idle.Connections)
	assert.Equal(t, 5*time.Minute, cfg.Database.Pool.Idle.Time)
	assert.Equal(t, 30*time.Minute, cfg.Database.Pool.Lifetime.Max)
	assert.Equal(t, 200*time.Millisecond, cfg.Database.Query.Slow.Threshold)
	assert.Equal(t, 1000, cfg.Database.Query.Log.MaxLength)
	assert.False(t, cfg.Database.Query.Log.Parameters)

	assert.False(t, cfg.Observability.Enabled)
	assert.True(t, cfg.Observability.Trace.Enabled)
	assert.Equal(t, "stdout", cfg.Observability.Trace.Endpoint)
	assert.Equal(t, "http", cfg.Observability.Trace.Protocol)
	assert.InDelta(t, 1.0, cfg.Observability.Trace.Sample.Rate, 0)
	assert.Equal(t, 500*time.Millisecond, cfg.Observability.Trace.Batch.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Observability.Metrics.Interval)
}

func TestLoadBytesEnvOverridesYAML(t *testing.T) {
	t.Setenv("SQLDAO_DATABASE_TYPE", "postgresql")
	t.Setenv("SQLDAO_DATABASE_HOST", "db.internal")
	t.Setenv("SQLDAO_DATABASE_PORT", "5433")
	t.Setenv("SQLDAO_DATABASE_USERNAME", "app")
	t.Setenv("SQLDAO_DATABASE_DATABASE", "items")
	t.Setenv("SQLDAO_DATABASE_QUERY_SLOW_THRESHOLD", "1s")

	cfg, err := LoadBytes([]byte(sqliteYAML))
	require.NoError(t, err)

	assert.Equal(t, PostgreSQL, cfg.Database.Type)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "app", cfg.Database.Username)
	assert.Equal(t, "items", cfg.Database.Database)
	assert.Equal(t, time.Second, cfg.Database.Query.Slow.Threshold)
}

func TestLoadBytesRejectsMalformedYAML(t *testing.T) {
	_, err := LoadBytes([]byte("database: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadReadsFileAndEnvironmentOverlay(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(base, []byte(`
app:
  env: staging
database:
  type: sqlite
  sqlite:
    path: base.db
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.staging.yaml"), []byte(`
database:
  sqlite:
    path: staging.db
log:
  level: debug
`), 0o600))

	cfg, err := Load(base)
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, cfg.App.Env)
	assert.Equal(t, "staging.db", cfg.Database.SQLite.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadSkipsMissingFiles(t *testing.T) {
	t.Setenv("SQLDAO_DATABASE_TYPE", "sqlite")
	t.Setenv("SQLDAO_DATABASE_SQLITE_PATH", ":memory:")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Database.SQLite.Path)
}

func TestLoadFailsValidationWithoutDatabaseType(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "missing", cfgErr.Category)
	assert.Equal(t, "database.type", cfgErr.Field)
	assert.Contains(t, cfgErr.Action, "SQLDAO_DATABASE_TYPE")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "database.host", envKey("SQLDAO_DATABASE_HOST"))
	assert.Equal(t, "database.pool.max.connections", envKey("SQLDAO_DATABASE_POOL_MAX_CONNECTIONS"))
}

func TestEnvFileFor(t *testing.T) {
	assert.Equal(t, "config.production.yaml", envFileFor("config.yaml", EnvProduction))
	assert.Equal(t, "/etc/sqldao/config.staging.yaml", envFileFor("/etc/sqldao/config.yaml", EnvStaging))
}
