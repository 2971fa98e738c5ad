package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deppfellow/profile-api/internal/database"
	"github.com/deppfellow/profile-api/internal/repository"
	"github.com/deppfellow/profile-api/internal/service"
)

// seedCmd creates the bootstrap administrator without starting workers.
func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the bootstrap administrator if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, loggerService, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			db, err := database.New(cfg, &log, loggerService)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			repos := repository.NewRepositoriesWithQuerier(db.Pool)
			return service.SeedAdmin(cmd.Context(), repos.Users, cfg.Seed, &log)
		},
	}
}
