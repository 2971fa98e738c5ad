package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/deppfellow/profile-api/internal/database"
	"github.com/deppfellow/profile-api/internal/model"
	"github.com/deppfellow/profile-api/internal/repository"
	"github.com/deppfellow/profile-api/internal/sqlerr"
)

func setupRepositories(t *testing.T) *repository.Repositories {
	t.Helper()
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

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return repository.NewRepositoriesWithQuerier(pool)
}

func TestRepositories(t *testing.T) {
	repos := setupRepositories(t)
	ctx := context.Background()

	name := "Alice"
	alice, err := repos.Users.Insert(ctx, &model.User{
		Name:         &name,
		Username:     "alice@example.io",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	})
	require.NoError(t, err)

	t.Run("users", func(t *testing.T) {
		assert.NotEmpty(t, alice.ID)
		assert.Equal(t, model.RoleUser, alice.Role)
		assert.Nil(t, alice.ImageLink)

		found, err := repos.Users.FindByUsername(ctx, "alice@example.io")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, found.ID)
		assert.Equal(t, "hash", found.PasswordHash)

		_, err = repos.Users.FindByUsername(ctx, "nobody@example.io")
		assert.ErrorIs(t, err, repository.ErrNotFound)

		_, err = repos.Users.Insert(ctx, &model.User{
			Username:     "alice@example.io",
			PasswordHash: "other",
			Role:         model.RoleUser,
		})
		require.Error(t, err)
		assert.True(t, sqlerr.IsUniqueViolation(err, "users_username_key"))

		updated, err := repos.Users.UpdateName(ctx, alice.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, updated.Name)

		link := "https://i.imgur.com/a.png"
		linked, err := repos.Users.UpdateImageLink(ctx, alice.ID, &link)
		require.NoError(t, err)
		require.NotNil(t, linked.ImageLink)
		assert.Equal(t, link, *linked.ImageLink)

		cleared, err := repos.Users.UpdateImageLink(ctx, alice.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, cleared.ImageLink)

		users, total, err := repos.Users.List(ctx, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, users, 1)
	})

	t.Run("files", func(t *testing.T) {
		file, err := repos.Files.Insert(ctx, &model.File{
			ID:           "abc123",
			Link:         "https://i.imgur.com/abc123.png",
			DeleteHandle: "del-abc",
			OwnerID:      &alice.ID,
		})
		require.NoError(t, err)
		assert.True(t, file.IsOwnedBy(alice.ID))

		byLink, err := repos.Files.FindByLink(ctx, "https://i.imgur.com/abc123.png")
		require.NoError(t, err)
		assert.Equal(t, "del-abc", byLink.DeleteHandle)

		require.NoError(t, repos.Files.Delete(ctx, "abc123"))
		assert.ErrorIs(t, repos.Files.Delete(ctx, "abc123"), repository.ErrNotFound)

		_, err = repos.Files.FindByID(ctx, "abc123")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
