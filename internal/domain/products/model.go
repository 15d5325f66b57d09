package products

import (
	"time"

	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID             int64                     `json:"id"`
	Code           string                    `json:"code"`
	Barcode        string                    `json:"barcode"`
	Name           string                    `json:"name"`
	Kind           numbering.ProductCategory `json:"kind"`
	CategoryID     *int64                    `json:"category_id,omitempty"`
	UnitID         *int64                    `json:"unit_id,omitempty"`
	UnitPrice      decimal.Decimal           `json:"unit_price"`
	OpeningBalance decimal.Decimal           `json:"opening_balance"`
	Active         bool                      `json:"active"`
	CreatedAt      time.Time                 `json:"created_at"`
}

// NewProduct поля формы. Код и штрихкод выдаются при сохранении,
// штрихкод можно передать свой (заводской EAN-13).
type NewProduct struct {
	Name           string                    `json:"name"`
	Kind           numbering.ProductCategory `json:"kind"`
	Barcode        string                    `json:"barcode,omitempty"`
	CategoryID     *int64                    `json:"category_id,omitempty"`
	UnitID         *int64                    `json:"unit_id,omitempty"`
	UnitPrice      decimal.Decimal           `json:"unit_price"`
	OpeningBalance decimal.Decimal           `json:"opening_balance"`
}
