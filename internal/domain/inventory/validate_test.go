package inventory

import (
	"context"
	"testing"

	"github.com/Spok95/erp-backend/internal/infra/logger"
	"github.com/Spok95/erp-backend/internal/infra/metrics"
	"github.com/Spok95/erp-backend/internal/validation"
)

func TestValidateQuantityPrecision(t *testing.T) {
	tx := &Transaction{
		WarehouseID: 1,
		Direction:   DirOut,
		Items: []Item{
			{ProductID: 1, Quantity: d("0.0005")},
			{ProductID: 2, Quantity: d("0.0004")},
			{ProductID: 3, Quantity: d("1.25"), UnitCost: d("0.001")},
			{ProductID: 4, Quantity: d("100000000000")},
		},
	}
	v, ok := validation.As(validate(tx))
	if !ok {
		t.Fatalf("expected violations")
	}
	want := map[string]string{
		"items[0].quantity":  validation.CodeScale,
		"items[1].quantity":  validation.CodeScale,
		"items[2].unit_cost": validation.CodeScale,
		"items[3].quantity":  validation.CodeTooLarge,
	}
	for field, code := range want {
		if v[field] != code {
			t.Fatalf("%s: got %q, want %q (%v)", field, v[field], code, v)
		}
	}
	if _, ok := v["items[2].quantity"]; ok {
		t.Fatalf("3 decimals fit the column: %v", v)
	}
}

func TestApplyCountRejectsDuplicateAndPreciseRows(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, Options{}, logger.Nop(), metrics.New())
	_, err := svc.ApplyCount(context.Background(), 1, []CountLine{
		{ProductID: 7, Counted: d("10")},
		{ProductID: 7, Counted: d("10")},
		{ProductID: 8, Counted: d("1.0001")},
	}, "")
	v, ok := validation.As(err)
	if !ok {
		t.Fatalf("expected violations, got %v", err)
	}
	if v["lines[1].product_id"] != validation.CodeDuplicate {
		t.Fatalf("duplicate product row must be rejected: %v", v)
	}
	if _, ok := v["lines[0].product_id"]; ok {
		t.Fatalf("first occurrence is fine: %v", v)
	}
	if v["lines[2].counted"] != validation.CodeScale {
		t.Fatalf("counted with 4 decimals must be rejected: %v", v)
	}
}
