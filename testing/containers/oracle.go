//go:build integration

package containers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gaborage/sqldao/config"
	sqldaotesting "github.com/gaborage/sqldao/testing"
)

// OracleContainerConfig holds configuration for Oracle test container
type OracleContainerConfig struct {
	// ImageTag specifies the Oracle Free version (default: "23-slim")
	ImageTag string
	// Password for SYSTEM and the application user
	Password string
	// ServiceName is the pluggable database service (default: "FREEPDB1")
	ServiceName string
	// AppUser is the application user to create
	AppUser string
	// StartupTimeout for container initialization (default: 120 seconds, Oracle takes longer)
	StartupTimeout time.Duration
}

// DefaultOracleConfig returns an OracleContainerConfig for the gvenzl/oracle-free image.
func DefaultOracleConfig() *OracleContainerConfig {
	return &OracleContainerConfig{
		ImageTag:       "23-slim",
		Password:       sqldaotesting.TestPasswordDefault,
		ServiceName:    "FREEPDB1", // Oracle Free default PDB name
		AppUser:        sqldaotesting.TestUsername,
		StartupTimeout: sqldaotesting.TestOracleStartupTimeout,
	}
}

// OracleContainer wraps an Oracle Free testcontainer
type OracleContainer struct {
	container testcontainers.Container
	host      string
	port      int
	cfg       OracleContainerConfig
}

// StartOracleContainer starts an Oracle testcontainer using the provided configuration.
// If cfg is nil, DefaultOracleConfig is used. If Docker is not available the test is
// skipped.
func StartOracleContainer(ctx context.Context, t *testing.T, cfg *OracleContainerConfig) (*OracleContainer, error) {
	t.Helper()

	if cfg == nil {
		cfg = DefaultOracleConfig()
	}

	skipWithoutDocker(ctx, t)

	port := fmt.Sprintf("%d/tcp", sqldaotesting.TestPortOracle)
	req := testcontainers.ContainerRequest{
		Image:        fmt.Sprintf("gvenzl/oracle-free:%s", cfg.ImageTag),
		ExposedPorts: []string{port},
		Env: map[string]string{
			"ORACLE_PASSWORD":   cfg.Password,
			"APP_USER":          cfg.AppUser,
			"APP_USER_PASSWORD": cfg.Password,
		},
		// The log line appears before the listener is reliably up.
		WaitingFor: wait.ForAll(
			wait.ForLog("DATABASE IS READY TO USE!"),
			wait.ForListeningPort(port),
		).WithStartupTimeout(cfg.StartupTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Oracle container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get Oracle container host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, port)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get Oracle container port: %w", err)
	}

	t.Logf("Oracle container started at %s:%d (service: %s, user: %s)",
		host, mappedPort.Int(), cfg.ServiceName, cfg.AppUser)

	return &OracleContainer{
		container: container,
		host:      host,
		port:      mappedPort.Int(),
		cfg:       *cfg,
	}, nil
}

// DatabaseConfig returns an oracle database section pointing at the container.
func (o *OracleContainer) DatabaseConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Type:     config.Oracle,
		Host:     o.host,
		Port:     o.port,
		Username: o.cfg.AppUser,
		Password: o.cfg.Password,
		Oracle:   config.OracleConfig{ServiceName: o.cfg.ServiceName},
		Pool: config.PoolConfig{
			Max:  config.PoolMaxConfig{Connections: 5},
			Idle: config.PoolIdleConfig{Connections: 1, Time: time.Minute},
		},
	}
}

// Terminate stops and removes the Oracle container
func (o *OracleContainer) Terminate(ctx context.Context) error {
	if o.container == nil {
		return nil
	}
	return o.container.Terminate(ctx)
}

// MustStartOracleContainer starts an Oracle test container, fails the test if startup
// fails and terminates the container when the test ends.
func MustStartOracleContainer(ctx context.Context, t *testing.T, cfg *OracleContainerConfig) *OracleContainer {
	t.Helper()

	container, err := StartOracleContainer(ctx, t, cfg)
	if err != nil {
		t.Fatalf("Failed to start Oracle container: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate Oracle container: %v", err)
		}
	})
	return container
}
