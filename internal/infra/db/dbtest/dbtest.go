// Package dbtest поднимает тестовую базу. Без TEST_DATABASE_DSN тесты с базой пропускаются.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Spok95/erp-backend/internal/migration"
	"github.com/jackc/pgx/v5/pgxpool"
)

const envDSN = "TEST_DATABASE_DSN"

var tables = []string{
	"treasury_voucher_items", "treasury_vouchers",
	"quotation_items", "quotations",
	"cash_invoice_items", "cash_invoices",
	"credit_invoice_items", "credit_invoices",
	"purchase_order_items", "purchase_orders",
	"dispatch_order_items", "dispatch_orders",
	"warehouse_transaction_items", "warehouse_transactions", "stock_balances",
	"products", "customers", "employees", "units", "categories", "warehouses",
	"provinces", "countries", "counters",
}

// Open мигрирует базу, чистит все таблицы и возвращает пул.
// Тесты одного пакета с базой не должны идти параллельно.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(envDSN)
	if dsn == "" {
		t.Skipf("%s not set, skipping database test", envDSN)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := migration.Up(ctx, dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	for _, tbl := range tables {
		if _, err := pool.Exec(ctx, "TRUNCATE "+tbl+" RESTART IDENTITY CASCADE"); err != nil {
			t.Fatalf("truncate %s: %v", tbl, err)
		}
	}
	return pool
}
