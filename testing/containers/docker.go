//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// skipWithoutDocker skips t when the testcontainers Docker provider cannot
// reach a daemon.
func skipWithoutDocker(ctx context.Context, t *testing.T) {
	t.Helper()

	provider, err := testcontainers.NewDockerProvider()
	if err == nil {
		defer provider.Close()
		_, err = provider.DaemonHost(ctx)
	}
	if err != nil {
		t.Skipf("Docker is not available, skipping integration test: %v", err)
	}
}
