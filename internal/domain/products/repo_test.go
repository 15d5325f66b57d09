package products

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/Spok95/erp-backend/internal/infra/db/dbtest"
	"github.com/Spok95/erp-backend/internal/infra/logger"
	"github.com/Spok95/erp-backend/internal/infra/metrics"
	"github.com/Spok95/erp-backend/internal/validation"
	"github.com/shopspring/decimal"
)

func newRepo(t *testing.T) *Repo {
	pool := dbtest.Open(t)
	iss := numbering.NewIssuer(numbering.NewRepo(pool), time.Second, logger.Nop(), metrics.New())
	return NewRepo(pool, iss)
}

func TestCreateIssuesCodeAndBarcode(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	bolt, err := repo.Create(ctx, NewProduct{Name: "Bolt M8", Kind: numbering.ProductSparePart, UnitPrice: decimal.RequireFromString("1.25")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if bolt.Code != "S000001" {
		t.Fatalf("code = %s", bolt.Code)
	}
	if !numbering.ValidEAN13(bolt.Barcode) {
		t.Fatalf("barcode %s is not EAN-13", bolt.Barcode)
	}
	if !bolt.UnitPrice.Equal(decimal.RequireFromString("1.25")) {
		t.Fatalf("price = %s", bolt.UnitPrice)
	}

	plain, err := repo.Create(ctx, NewProduct{Name: "Tea", Barcode: "4006381333931"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if plain.Code != "P000001" || plain.Kind != numbering.ProductGeneral || plain.Barcode != "4006381333931" {
		t.Fatalf("unexpected product %+v", plain)
	}

	found, err := repo.Search(ctx, "bolt", 10)
	if err != nil || len(found) != 1 || found[0].ID != bolt.ID {
		t.Fatalf("search: %+v %v", found, err)
	}
	byBarcode, err := repo.GetByBarcode(ctx, bolt.Barcode)
	if err != nil || byBarcode == nil || byBarcode.ID != bolt.ID {
		t.Fatalf("by barcode: %+v %v", byBarcode, err)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Create(context.Background(), NewProduct{
		Name:      "x",
		Kind:      "gadget",
		Barcode:   "123",
		UnitPrice: decimal.NewFromInt(-5),
	})
	v, ok := validation.As(err)
	if !ok {
		t.Fatalf("expected violations, got %v", err)
	}
	for _, f := range []string{"kind", "barcode", "unit_price"} {
		if _, ok := v[f]; !ok {
			t.Fatalf("missing violation for %s: %v", f, v)
		}
	}
}

func TestCreateRejectsDuplicateBarcode(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	if _, err := repo.Create(ctx, NewProduct{Name: "Tea", Barcode: "4006381333931"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := repo.Create(ctx, NewProduct{Name: "Coffee", Barcode: "4006381333931"})
	if !errors.Is(err, ErrDuplicateBarcode) {
		t.Fatalf("expected ErrDuplicateBarcode, got %v", err)
	}
	// откат вставки откатывает и счётчик кода
	next, err := repo.Create(ctx, NewProduct{Name: "Coffee"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if next.Code != "P000002" {
		t.Fatalf("code = %s, rejected insert must not burn a code", next.Code)
	}
}

func TestValidateProductPrecision(t *testing.T) {
	err := validateProduct(NewProduct{
		Name:           "Salt",
		Kind:           numbering.ProductGeneral,
		UnitPrice:      decimal.RequireFromString("1.255"),
		OpeningBalance: decimal.RequireFromString("0.0005"),
	})
	v, ok := validation.As(err)
	if !ok {
		t.Fatalf("expected violations, got %v", err)
	}
	if v["unit_price"] != validation.CodeScale || v["opening_balance"] != validation.CodeScale {
		t.Fatalf("violations = %v", v)
	}
	err = validateProduct(NewProduct{Name: "Salt", Kind: numbering.ProductGeneral, UnitPrice: decimal.RequireFromString("1e12")})
	if v, _ := validation.As(err); v["unit_price"] != validation.CodeTooLarge {
		t.Fatalf("violations = %v", v)
	}
}

func TestUpdatePrice(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	p, err := repo.Create(ctx, NewProduct{Name: "Flour"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	upd, err := repo.UpdatePrice(ctx, p.ID, decimal.RequireFromString("12.5"))
	if err != nil || !upd.UnitPrice.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("update: %+v %v", upd, err)
	}
	if _, err := repo.UpdatePrice(ctx, p.ID, decimal.NewFromInt(-1)); err == nil {
		t.Fatalf("negative price must be rejected")
	}
	var v validation.Violations
	if _, err := repo.UpdatePrice(ctx, p.ID, decimal.NewFromInt(-1)); !errors.As(err, &v) {
		t.Fatalf("expected violations, got %v", err)
	}
}

func TestSetActiveHidesFromList(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	p, err := repo.Create(ctx, NewProduct{Name: "Old stock"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	off, err := repo.SetActive(ctx, p.ID, false)
	if err != nil || off == nil || off.Active {
		t.Fatalf("deactivate: %+v %v", off, err)
	}
	active, err := repo.List(ctx, true)
	if err != nil || len(active) != 0 {
		t.Fatalf("inactive product listed: %+v %v", active, err)
	}
	if missing, err := repo.SetActive(ctx, 9999, true); err != nil || missing != nil {
		t.Fatalf("missing product must be nil, nil: %+v %v", missing, err)
	}
}
