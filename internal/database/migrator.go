package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"

	"github.com/deppfellow/profile-api/internal/config"
)

// Migrations ship inside the binary.
//
//go:embed migrations/*.sql
var migrations embed.FS

const versionTable = "schema_version"

// Latest targets the newest embedded migration.
const Latest int32 = -1

// Migrate brings the configured database up to the newest schema.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	return MigrateDSN(ctx, logger, DSN(cfg))
}

// MigrateDSN brings the database at dsn up to the newest schema.
func MigrateDSN(ctx context.Context, logger *zerolog.Logger, dsn string) error {
	return MigrateTo(ctx, logger, dsn, Latest)
}

// MigrateTo moves the schema at dsn to version, up or down. Latest means the
// newest embedded migration. The applied version lives in schema_version.
func MigrateTo(ctx context.Context, logger *zerolog.Logger, dsn string, version int32) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := newMigrator(ctx, conn)
	if err != nil {
		return err
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	target := version
	if target == Latest {
		target = int32(len(m.Migrations))
	}
	if target < 0 || target > int32(len(m.Migrations)) {
		return fmt.Errorf("migration version %d out of range 0..%d", target, len(m.Migrations))
	}

	if from == target {
		logger.Info().Int32("version", target).Msg("database schema up to date")
		return nil
	}

	m.OnStart = func(seq int32, name, direction, _ string) {
		logger.Info().Int32("sequence", seq).Str("name", name).Str("direction", direction).Msg("applying migration")
	}

	if err := m.MigrateTo(ctx, target); err != nil {
		return fmt.Errorf("running database migrations: %w", err)
	}

	logger.Info().Int32("from", from).Int32("to", target).Msg("migrated database schema")
	return nil
}

// Version reports the applied schema version and the newest one embedded.
func Version(ctx context.Context, dsn string) (current, latest int32, err error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return 0, 0, fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := newMigrator(ctx, conn)
	if err != nil {
		return 0, 0, err
	}

	current, err = m.GetCurrentVersion(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("retrieving current database migration version: %w", err)
	}
	return current, int32(len(m.Migrations)), nil
}

func newMigrator(ctx context.Context, conn *pgx.Conn) (*tern.Migrator, error) {
	m, err := tern.NewMigrator(ctx, conn, versionTable)
	if err != nil {
		return nil, fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return nil, fmt.Errorf("loading database migrations: %w", err)
	}
	return m, nil
}
