package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vessel-registry/internal/config"
	"vessel-registry/internal/core/ports/output"
	"vessel-registry/internal/testutil/catalogtest"
)

// Set VESSEL_TEST_POSTGRES_URL to a disposable database to run these tests.
const testURLEnv = "VESSEL_TEST_POSTGRES_URL"

func TestCatalogContract(t *testing.T) {
	url := os.Getenv(testURLEnv)
	if url == "" {
		t.Skipf("%s not set", testURLEnv)
	}

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, url))
	// Running twice must be a no-op.
	require.NoError(t, Migrate(ctx, url))

	pool, err := Connect(ctx, config.DatabaseConfig{
		ConnectionString: url,
		MaxOpenConns:     8,
		ConnectTimeout:   10 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	catalogtest.Run(t, func(t *testing.T) (ports.ModelRepository, ports.VersionRepository) {
		_, err := pool.Exec(ctx, `TRUNCATE versions, models RESTART IDENTITY`)
		require.NoError(t, err)
		return NewModelRepository(pool), NewVersionRepository(pool)
	})
}
