package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/Spok95/erp-backend/internal/infra/db/dbtest"
)

func TestWarehouseCreateIsIdempotent(t *testing.T) {
	repo := NewRepo(dbtest.Open(t))
	ctx := context.Background()

	a, err := repo.CreateWarehouse(ctx, " Main ", WHTMain)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := repo.CreateWarehouse(ctx, "Main", WHTMain)
	if err != nil {
		t.Fatalf("create again: %v", err)
	}
	if a.ID != b.ID || a.Name != "Main" {
		t.Fatalf("expected the same warehouse, got %+v and %+v", a, b)
	}

	if _, err := repo.SetWarehouseActive(ctx, a.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got, err := repo.GetWarehouseByID(ctx, a.ID)
	if err != nil || got == nil || got.Active {
		t.Fatalf("expected inactive warehouse, got %+v %v", got, err)
	}
	renamed, err := repo.UpdateWarehouseName(ctx, a.ID, "Central")
	if err != nil || renamed.Name != "Central" {
		t.Fatalf("rename: %+v %v", renamed, err)
	}
	if w, err := repo.SetWarehouseActive(ctx, 9999, true); err != nil || w != nil {
		t.Fatalf("missing warehouse update must be nil, nil: %+v %v", w, err)
	}
	missing, err := repo.GetWarehouseByID(ctx, 9999)
	if err != nil || missing != nil {
		t.Fatalf("missing warehouse must be nil, nil: %+v %v", missing, err)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	repo := NewRepo(dbtest.Open(t))
	ctx := context.Background()
	if _, err := repo.CreateWarehouse(ctx, "  ", WHTMain); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := repo.CreateWarehouse(ctx, "X", "garage"); err == nil {
		t.Fatalf("unknown type must be rejected")
	}
	if _, err := repo.CreateCategory(ctx, ""); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestProvincesBelongToCountry(t *testing.T) {
	repo := NewRepo(dbtest.Open(t))
	ctx := context.Background()

	tr, err := repo.CreateCountry(ctx, "Türkiye")
	if err != nil {
		t.Fatalf("country: %v", err)
	}
	de, _ := repo.CreateCountry(ctx, "Deutschland")
	if _, err := repo.CreateProvince(ctx, tr.ID, "Ankara"); err != nil {
		t.Fatalf("province: %v", err)
	}
	if _, err := repo.CreateProvince(ctx, tr.ID, "İzmir"); err != nil {
		t.Fatalf("province: %v", err)
	}
	if _, err := repo.CreateProvince(ctx, de.ID, "Bayern"); err != nil {
		t.Fatalf("province: %v", err)
	}

	if _, err := repo.CreateProvince(ctx, de.ID+1000, "Nowhere"); !errors.Is(err, ErrUnknownCountry) {
		t.Fatalf("expected ErrUnknownCountry, got %v", err)
	}

	list, err := repo.ListProvinces(ctx, tr.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 provinces, got %+v", list)
	}
	for _, p := range list {
		if p.CountryID != tr.ID {
			t.Fatalf("province %s from another country", p.Name)
		}
	}
}

func TestUnitsAndCategories(t *testing.T) {
	repo := NewRepo(dbtest.Open(t))
	ctx := context.Background()

	if _, err := repo.CreateUnit(ctx, "kilogram", "kg"); err != nil {
		t.Fatalf("unit: %v", err)
	}
	if _, err := repo.CreateUnit(ctx, "kilogram", "KG"); err != nil {
		t.Fatalf("unit upsert: %v", err)
	}
	units, err := repo.ListUnits(ctx)
	if err != nil || len(units) != 1 || units[0].Symbol != "KG" {
		t.Fatalf("units: %+v %v", units, err)
	}

	c1, _ := repo.CreateCategory(ctx, "Spare parts")
	c2, _ := repo.CreateCategory(ctx, "Spare parts")
	if c1 == nil || c2 == nil || c1.ID != c2.ID {
		t.Fatalf("category must be idempotent: %+v %+v", c1, c2)
	}
	if _, err := repo.SetCategoryActive(ctx, c1.ID, false); err != nil {
		t.Fatalf("deactivate category: %v", err)
	}
	got, err := repo.GetCategoryByID(ctx, c1.ID)
	if err != nil || got == nil || got.Active {
		t.Fatalf("expected inactive category, got %+v %v", got, err)
	}
	if list, _ := repo.ListCategories(ctx); len(list) != 1 {
		t.Fatalf("categories: %+v", list)
	}
}
