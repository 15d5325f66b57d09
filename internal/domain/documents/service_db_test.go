package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Spok95/erp-backend/internal/domain/inventory"
	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/Spok95/erp-backend/internal/infra/db/dbtest"
	"github.com/Spok95/erp-backend/internal/infra/logger"
	"github.com/Spok95/erp-backend/internal/infra/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
)

type env struct {
	pool      *pgxpool.Pool
	docs      *Service
	stock     *inventory.Service
	warehouse int64
	product   int64
}

func newEnv(t *testing.T) env {
	t.Helper()
	pool := dbtest.Open(t)
	ctx := context.Background()
	m := metrics.New()
	iss := numbering.NewIssuer(numbering.NewRepo(pool), time.Second, logger.Nop(), m)
	stock := inventory.NewService(pool, inventory.NewRepo(pool), iss, nil, inventory.Options{AllowNegative: true}, logger.Nop(), m)

	e := env{pool: pool, stock: stock, docs: NewService(pool, iss, stock, logger.Nop(), m)}
	if err := pool.QueryRow(ctx, `INSERT INTO warehouses (name) VALUES ('Main') RETURNING id`).Scan(&e.warehouse); err != nil {
		t.Fatalf("warehouse: %v", err)
	}
	if err := pool.QueryRow(ctx, `
		INSERT INTO products (code, barcode, name) VALUES ('P000001', '2000000000015', 'Flour') RETURNING id
	`).Scan(&e.product); err != nil {
		t.Fatalf("product: %v", err)
	}
	return e
}

func (e env) draft(qty, price string) Draft {
	return Draft{
		WarehouseID: &e.warehouse,
		Items:       []DraftItem{{ProductID: &e.product, Quantity: d(qty), UnitPrice: d(price)}},
	}
}

func TestCreateGetAndNumbering(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	a, err := e.docs.Create(ctx, KindCreditInvoice, e.draft("3", "10"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := e.docs.Create(ctx, KindCreditInvoice, e.draft("1", "5"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Number != "CR000001" || b.Number != "CR000002" {
		t.Fatalf("numbers %s %s", a.Number, b.Number)
	}

	got, err := e.docs.Get(ctx, KindCreditInvoice, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Items) != 1 || !got.TotalAmount.Equal(d("30")) {
		t.Fatalf("unexpected document %+v", got)
	}
	if _, err := e.docs.Get(ctx, KindCreditInvoice, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := e.docs.List(ctx, KindCreditInvoice, Filter{Status: StatusDraft})
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %d %v", len(list), err)
	}
}

func TestFinalizeMovesStockOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	po, err := e.docs.Create(ctx, KindPurchaseOrder, e.draft("50", "2"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.docs.Finalize(ctx, KindPurchaseOrder, po.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if _, err := e.docs.Finalize(ctx, KindPurchaseOrder, po.ID); !errors.Is(err, ErrNotDraft) {
		t.Fatalf("second finalize must fail, got %v", err)
	}

	sale, _ := e.docs.Create(ctx, KindDispatchOrder, e.draft("20", "3"))
	if _, err := e.docs.Finalize(ctx, KindDispatchOrder, sale.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	bal, _ := e.stock.Balance(ctx, e.warehouse, e.product)
	if !bal.Equal(d("30")) {
		t.Fatalf("balance = %s", bal)
	}
	if _, err := e.docs.ReplaceItems(ctx, KindDispatchOrder, sale.ID, e.draft("1", "1")); !errors.Is(err, ErrNotDraft) {
		t.Fatalf("final document must be read-only, got %v", err)
	}
}

func TestFinalizeEmptyRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	q, err := e.docs.Create(ctx, KindQuotation, Draft{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.docs.Finalize(ctx, KindQuotation, q.ID); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	c, err := e.docs.Cancel(ctx, KindQuotation, q.ID)
	if err != nil || c.Status != StatusCancelled {
		t.Fatalf("cancel: %+v %v", c, err)
	}
}

func TestReplaceItemsRecomputes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	q, _ := e.docs.Create(ctx, KindQuotation, e.draft("1", "10"))

	next := e.draft("2", "10")
	next.DiscountPercentage = d("50")
	upd, err := e.docs.ReplaceItems(ctx, KindQuotation, q.ID, next)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if upd.Number != q.Number || !upd.TotalAmount.Equal(d("10")) {
		t.Fatalf("unexpected %s total %s", upd.Number, upd.TotalAmount)
	}
	got, _ := e.docs.Get(ctx, KindQuotation, q.ID)
	if len(got.Items) != 1 || !got.Items[0].Quantity.Equal(d("2")) || !got.DiscountAmount.Equal(d("10")) {
		t.Fatalf("stored %+v", got)
	}
}

func TestConvertQuotation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	q, _ := e.docs.Create(ctx, KindQuotation, e.draft("3", "10"))

	if _, err := e.docs.ConvertQuotation(ctx, q.ID, KindCashInvoice, d("10")); err == nil {
		t.Fatalf("underpaid conversion must fail")
	}
	inv, err := e.docs.ConvertQuotation(ctx, q.ID, KindCashInvoice, d("50"))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if inv.Number != "CI000001" || inv.SourceID == nil || *inv.SourceID != q.ID || !inv.ChangeAmount.Equal(d("20")) {
		t.Fatalf("unexpected invoice %+v", inv)
	}
	src, _ := e.docs.Get(ctx, KindQuotation, q.ID)
	if src.Status != StatusConverted {
		t.Fatalf("quotation status = %s", src.Status)
	}
	if _, err := e.docs.ConvertQuotation(ctx, q.ID, KindCreditInvoice, d("0")); !errors.Is(err, ErrNotConvertible) {
		t.Fatalf("second conversion must fail, got %v", err)
	}
}
