package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Spok95/erp-backend/internal/config"
	"github.com/Spok95/erp-backend/internal/infra/db"
	"github.com/Spok95/erp-backend/internal/infra/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var version = "dev"

type app struct {
	cfgPath string
	cfg     config.Config
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "erp",
		Short:         "ERP backend: documents, numbering, stock balances",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.New(cfg.App.Env)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "config/example.yaml", "path to config file")

	// без подкоманды работает как serve
	serve := newServeCmd(a)
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(
		serve,
		newMigrateCmd(a),
		newReconcileCmd(a),
		newCountersCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) connect(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := db.Connect(ctx, a.cfg.Postgres.DSN, db.Options{
		MaxConns: a.cfg.Postgres.MaxConns,
		Retries:  a.cfg.Postgres.ConnectRetries,
	}, a.log)
	if err != nil {
		return nil, err
	}
	a.log.Info("db connected")
	return pool, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
