package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deppfellow/profile-api/internal/database"
)

func migrateCmd() *cobra.Command {
	var (
		to     int32
		status bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, loggerService, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			dsn := database.DSN(cfg)
			if status {
				current, latest, err := database.Version(cmd.Context(), dsn)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d of %d\n", current, latest)
				return err
			}

			return database.MigrateTo(cmd.Context(), &log, dsn, to)
		},
	}

	cmd.Flags().Int32Var(&to, "to", database.Latest, "target schema version (default: newest)")
	cmd.Flags().BoolVar(&status, "status", false, "print the applied schema version and exit")
	return cmd
}
