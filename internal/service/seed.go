package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/deppfellow/profile-api/internal/config"
	"github.com/deppfellow/profile-api/internal/lib/utils"
	"github.com/deppfellow/profile-api/internal/metrics"
	"github.com/deppfellow/profile-api/internal/model"
	"github.com/deppfellow/profile-api/internal/repository"
	"github.com/deppfellow/profile-api/internal/sqlerr"
)

// EnsureSeedRecord creates a bootstrap record unless one already exists.
//
// find must return repository.ErrNotFound when the record is absent. A unique
// violation on insert means a concurrent caller won the race and is treated
// as "already exists". created is true only for the caller that inserted.
func EnsureSeedRecord[T any](
	ctx context.Context,
	key string,
	find func(ctx context.Context) (*T, error),
	factory func() (*T, error),
	insert func(ctx context.Context, record *T) (*T, error),
) (created bool, err error) {
	defer func() {
		if err == nil {
			metrics.RecordSeed(key, created)
		}
	}()

	if _, err := find(ctx); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	record, err := factory()
	if err != nil {
		return false, err
	}

	if _, err := insert(ctx, record); err != nil {
		if sqlerr.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SeedAdmin makes sure the default administrator exists.
func SeedAdmin(ctx context.Context, users UserStore, cfg *config.SeedConfig, logger *zerolog.Logger) error {
	if cfg == nil {
		cfg = config.DefaultSeedConfig()
	}

	created, err := EnsureSeedRecord(ctx, "admin",
		func(ctx context.Context) (*model.User, error) {
			return users.FindByUsername(ctx, cfg.AdminUsername)
		},
		func() (*model.User, error) {
			hash, err := utils.HashPassword(cfg.AdminPassword)
			if err != nil {
				return nil, err
			}
			var name *string
			if cfg.AdminName != "" {
				name = &cfg.AdminName
			}
			return &model.User{
				Name:         name,
				Username:     cfg.AdminUsername,
				PasswordHash: hash,
				Role:         model.RoleAdmin,
			}, nil
		},
		users.Insert,
	)
	if err != nil {
		return err
	}

	logger.Info().
		Str("username", cfg.AdminUsername).
		Bool("created", created).
		Msg("admin seed ensured")
	return nil
}
