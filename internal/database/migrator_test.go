package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/deppfellow/profile-api/internal/database"
)

func TestMigrateUpAndDown(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("profile_api"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := zerolog.Nop()
	require.NoError(t, database.MigrateDSN(ctx, &logger, dsn))

	current, latest, err := database.Version(ctx, dsn)
	require.NoError(t, err)
	assert.Equal(t, latest, current)
	assert.Equal(t, int32(2), latest)

	// running again is a no-op
	require.NoError(t, database.MigrateDSN(ctx, &logger, dsn))

	require.NoError(t, database.MigrateTo(ctx, &logger, dsn, 1))
	current, _, err = database.Version(ctx, dsn)
	require.NoError(t, err)
	assert.Equal(t, int32(1), current)

	assert.Error(t, database.MigrateTo(ctx, &logger, dsn, 7))
}
