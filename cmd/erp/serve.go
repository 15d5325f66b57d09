package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/erp-backend/internal/api"
	"github.com/Spok95/erp-backend/internal/domain/catalog"
	"github.com/Spok95/erp-backend/internal/domain/documents"
	"github.com/Spok95/erp-backend/internal/domain/inventory"
	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/Spok95/erp-backend/internal/domain/parties"
	"github.com/Spok95/erp-backend/internal/domain/products"
	"github.com/Spok95/erp-backend/internal/domain/treasury"
	httpx "github.com/Spok95/erp-backend/internal/infra/http"
	"github.com/Spok95/erp-backend/internal/infra/metrics"
	"github.com/Spok95/erp-backend/internal/infra/telegram"
	"github.com/Spok95/erp-backend/internal/migration"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *app) *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context(), skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply migrations on start")
	return cmd
}

func (a *app) serve(parent context.Context, skipMigrate bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !skipMigrate {
		if err := migration.Up(ctx, a.cfg.Postgres.DSN); err != nil {
			return err
		}
		a.log.Info("migrations applied")
	}

	pool, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	m := metrics.New()
	issuer := numbering.NewIssuer(numbering.NewRepo(pool), a.cfg.Postgres.QueryTimeout, a.log, m)
	productRepo := products.NewRepo(pool, issuer)
	partyRepo := parties.NewRepo(pool, issuer)

	notifier, err := telegram.New(a.cfg.Telegram.Token, a.cfg.Telegram.AdminChatID, productRepo, a.log)
	if err != nil {
		return err
	}
	var n inventory.Notifier
	if notifier != nil {
		n = notifier
	}
	stock := inventory.NewService(pool, inventory.NewRepo(pool), issuer, n, inventory.Options{
		AllowNegative:     a.cfg.Inventory.AllowNegative,
		LowStockThreshold: decimal.NewFromFloat(a.cfg.Inventory.LowStockThreshold),
	}, a.log, m)

	h := api.New(api.Deps{
		Numbers:   issuer,
		Documents: documents.NewService(pool, issuer, stock, a.log, m),
		Stock:     stock,
		Vouchers:  treasury.NewService(pool, issuer, a.log, m),
		Products:  productRepo,
		Customers: partyRepo,
		Employees: partyRepo,
		Catalog:   catalog.NewRepo(pool),
		Log:       a.log,
	})

	opts := httpx.Options{
		Addr:           a.cfg.HTTP.Addr,
		ReadTimeout:    a.cfg.HTTP.ReadTimeout,
		WriteTimeout:   a.cfg.HTTP.WriteTimeout,
		RequestTimeout: a.cfg.HTTP.RequestTimeout,
		Ready:          pool.Ping,
	}
	if a.cfg.Metrics.Enabled {
		opts.Metrics = m
	}
	srv := httpx.New(opts, func(mux *http.ServeMux) { h.Register(mux) })

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("HTTP server started", "addr", a.cfg.HTTP.Addr)
		return srv.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	a.log.Info("graceful shutdown complete")
	return nil
}
