package main

import (
	"github.com/Spok95/erp-backend/internal/migration"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := migration.Up(cmd.Context(), a.cfg.Postgres.DSN); err != nil {
				return err
			}
			v, err := migration.Version(cmd.Context(), a.cfg.Postgres.DSN)
			if err != nil {
				return err
			}
			a.log.Info("migrations applied", "version", v)
			return nil
		},
	}
}
