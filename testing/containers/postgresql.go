//go:build integration

package containers

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gaborage/sqldao/config"
	sqldaotesting "github.com/gaborage/sqldao/testing"
)

// PostgreSQLContainerConfig holds configuration for PostgreSQL test container
type PostgreSQLContainerConfig struct {
	// ImageTag specifies the PostgreSQL version (default: "17-alpine")
	ImageTag string
	Username string
	Password string
	Database string
	// StartupTimeout for container initialization (default: 60 seconds)
	StartupTimeout time.Duration
}

// DefaultPostgreSQLConfig returns a PostgreSQLContainerConfig populated with the shared test credentials.
func DefaultPostgreSQLConfig() *PostgreSQLContainerConfig {
	return &PostgreSQLContainerConfig{
		ImageTag:       "17-alpine",
		Username:       sqldaotesting.TestUsername,
		Password:       sqldaotesting.TestPasswordDefault,
		Database:       sqldaotesting.TestDatabaseName,
		StartupTimeout: sqldaotesting.TestPostgreSQLStartupTimeout,
	}
}

// PostgreSQLContainer wraps testcontainers PostgreSQL container with helper methods
type PostgreSQLContainer struct {
	container *postgres.PostgresContainer
	connStr   string
}

// StartPostgreSQLContainer starts a PostgreSQL testcontainer using the provided configuration.
// If cfg is nil, DefaultPostgreSQLConfig is used. If Docker is not available the test is
// skipped.
func StartPostgreSQLContainer(ctx context.Context, t *testing.T, cfg *PostgreSQLContainerConfig) (*PostgreSQLContainer, error) {
	t.Helper()

	if cfg == nil {
		cfg = DefaultPostgreSQLConfig()
	}

	skipWithoutDocker(ctx, t)

	pgContainer, err := postgres.Run(ctx,
		fmt.Sprintf("postgres:%s", cfg.ImageTag),
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2). // Postgres restarts after initial setup
				WithStartupTimeout(cfg.StartupTimeout),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get PostgreSQL connection string: %w", err)
	}

	t.Logf("PostgreSQL container started at %s", maskConnectionString(connStr))

	return &PostgreSQLContainer{
		container: pgContainer,
		connStr:   connStr,
	}, nil
}

// ConnectionString returns the PostgreSQL connection URL
func (p *PostgreSQLContainer) ConnectionString() string {
	return p.connStr
}

// DatabaseConfig returns a postgresql database section pointing at the container.
func (p *PostgreSQLContainer) DatabaseConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Type:             config.PostgreSQL,
		ConnectionString: p.connStr,
		Pool: config.PoolConfig{
			Max:  config.PoolMaxConfig{Connections: 5},
			Idle: config.PoolIdleConfig{Connections: 1, Time: time.Minute},
		},
	}
}

// Terminate stops and removes the PostgreSQL container
func (p *PostgreSQLContainer) Terminate(ctx context.Context) error {
	if p.container == nil {
		return nil
	}
	return p.container.Terminate(ctx)
}

// MustStartPostgreSQLContainer starts a PostgreSQL test container, fails the test if startup
// fails and terminates the container when the test ends.
func MustStartPostgreSQLContainer(ctx context.Context, t *testing.T, cfg *PostgreSQLContainerConfig) *PostgreSQLContainer {
	t.Helper()

	container, err := StartPostgreSQLContainer(ctx, t, cfg)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate PostgreSQL container: %v", err)
		}
	})
	return container
}

// maskConnectionString hides the password of a URL-form connection string.
func maskConnectionString(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil || u.User == nil {
		return "postgres://****@<host>/<database>"
	}
	return u.Redacted()
}
