package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirIn  Direction = "in"
	DirOut Direction = "out"
)

func (d Direction) Valid() bool { return d == DirIn || d == DirOut }

// Sign знак изменения остатка: приход +q, расход −q.
func (d Direction) Sign(q decimal.Decimal) decimal.Decimal {
	if d == DirOut {
		return q.Neg()
	}
	return q
}

type Item struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type Transaction struct {
	ID          int64     `json:"id"`
	Number      string    `json:"number"`
	Date        time.Time `json:"date"`
	WarehouseID int64     `json:"warehouse_id"`
	Direction   Direction `json:"direction"`
	Note        string    `json:"note"`
	Items       []Item    `json:"items"`
	CreatedAt   time.Time `json:"created_at"`
}

type Balance struct {
	WarehouseID int64           `json:"warehouse_id"`
	ProductID   int64           `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Move одна строка проводки для карточки товара.
type Move struct {
	TransactionID int64           `json:"transaction_id"`
	Number        string          `json:"number"`
	Date          time.Time       `json:"date"`
	Direction     Direction       `json:"direction"`
	Quantity      decimal.Decimal `json:"quantity"`
}

type CardLine struct {
	Move
	Balance decimal.Decimal `json:"balance"`
}

type Card struct {
	WarehouseID int64           `json:"warehouse_id"`
	ProductID   int64           `json:"product_id"`
	Opening     decimal.Decimal `json:"opening"`
	Lines       []CardLine      `json:"lines"`
	Closing     decimal.Decimal `json:"closing"`
}

// Mismatch остаток в stock_balances разошёлся с пересчётом по истории.
type Mismatch struct {
	WarehouseID int64           `json:"warehouse_id"`
	ProductID   int64           `json:"product_id"`
	Maintained  decimal.Decimal `json:"maintained"`
	Expected    decimal.Decimal `json:"expected"`
}

// CountLine строка инвентаризации: сколько насчитали фактически.
type CountLine struct {
	WarehouseID int64           `json:"warehouse_id"`
	ProductID   int64           `json:"product_id"`
	Counted     decimal.Decimal `json:"counted"`
}

type LowStock struct {
	WarehouseID int64
	ProductID   int64
	Quantity    decimal.Decimal
	Threshold   decimal.Decimal
}
