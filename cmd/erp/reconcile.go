package main

import (
	"fmt"

	"github.com/Spok95/erp-backend/internal/domain/inventory"
	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/Spok95/erp-backend/internal/infra/metrics"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newReconcileCmd(a *app) *cobra.Command {
	var fix bool
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stock balances with transaction history",
		Long: `Replays every warehouse transaction from product opening balances and
reports (warehouse, product) pairs whose maintained balance differs.
Exit code is non-zero when mismatches remain.`,
		Example: `  erp reconcile
  erp reconcile --fix`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pool, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			m := metrics.New()
			issuer := numbering.NewIssuer(numbering.NewRepo(pool), a.cfg.Postgres.QueryTimeout, a.log, m)
			svc := inventory.NewService(pool, inventory.NewRepo(pool), issuer, nil, inventory.Options{
				AllowNegative:     a.cfg.Inventory.AllowNegative,
				LowStockThreshold: decimal.NewFromFloat(a.cfg.Inventory.LowStockThreshold),
			}, a.log, m)

			mm, err := svc.Reconcile(ctx, fix)
			if err != nil {
				return err
			}
			for _, x := range mm {
				fmt.Fprintf(cmd.OutOrStdout(), "warehouse=%d product=%d maintained=%s expected=%s\n",
					x.WarehouseID, x.ProductID, x.Maintained, x.Expected)
			}
			if len(mm) > 0 && !fix {
				return fmt.Errorf("%d stock balance mismatches", len(mm))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok, %d fixed\n", len(mm))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "overwrite balances with replayed values")
	return cmd
}
