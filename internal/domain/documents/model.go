package documents

import (
	"fmt"
	"time"

	"github.com/Spok95/erp-backend/internal/domain/inventory"
	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/Spok95/erp-backend/internal/domain/totals"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindQuotation     Kind = "quotation"
	KindCashInvoice   Kind = "cash_invoice"
	KindCreditInvoice Kind = "credit_invoice"
	KindPurchaseOrder Kind = "purchase_order"
	KindDispatchOrder Kind = "dispatch_order"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusFinal     Status = "final"
	StatusCancelled Status = "cancelled"
	StatusConverted Status = "converted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusFinal, StatusCancelled, StatusConverted:
		return true
	}
	return false
}

// kindMeta таблицы и счётчик у каждого вида свои. stock пустой, если
// проведение документа остатки не двигает.
type kindMeta struct {
	header string
	items  string
	number numbering.Kind
	stock  inventory.Direction
}

var kinds = map[Kind]kindMeta{
	KindQuotation:     {"quotations", "quotation_items", numbering.KindQuotation, ""},
	KindCashInvoice:   {"cash_invoices", "cash_invoice_items", numbering.KindCashInvoice, inventory.DirOut},
	KindCreditInvoice: {"credit_invoices", "credit_invoice_items", numbering.KindCreditInvoice, inventory.DirOut},
	KindPurchaseOrder: {"purchase_orders", "purchase_order_items", numbering.KindPurchaseOrder, inventory.DirIn},
	KindDispatchOrder: {"dispatch_orders", "dispatch_order_items", numbering.KindDispatchOrder, inventory.DirOut},
}

func metaFor(k Kind) (kindMeta, error) {
	s, ok := kinds[k]
	if !ok {
		return kindMeta{}, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	return s, nil
}

func Kinds() []Kind {
	return []Kind{KindQuotation, KindCashInvoice, KindCreditInvoice, KindPurchaseOrder, KindDispatchOrder}
}

type Item struct {
	Position           int             `json:"position"`
	ProductID          *int64          `json:"product_id,omitempty"`
	Description        string          `json:"description"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	TotalPrice         decimal.Decimal `json:"total_price"`
}

type Document struct {
	ID                 int64           `json:"id"`
	Kind               Kind            `json:"kind"`
	Number             string          `json:"number"`
	Date               time.Time       `json:"date"`
	Status             Status          `json:"status"`
	CounterpartyID     *int64          `json:"counterparty_id,omitempty"`
	WarehouseID        *int64          `json:"warehouse_id,omitempty"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	PaymentAmount      decimal.Decimal `json:"payment_amount"`
	ChangeAmount       decimal.Decimal `json:"change_amount"`
	SourceID           *int64          `json:"source_id,omitempty"`
	Note               string          `json:"note"`
	Items              []Item          `json:"items,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type DraftItem struct {
	ProductID          *int64          `json:"product_id,omitempty"`
	Description        string          `json:"description"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

// Draft то, что приходит с формы. Итоги на клиенте не доверяем, считаем заново.
type Draft struct {
	Date               time.Time       `json:"date"`
	CounterpartyID     *int64          `json:"counterparty_id,omitempty"`
	WarehouseID        *int64          `json:"warehouse_id,omitempty"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	PaymentAmount      decimal.Decimal `json:"payment_amount"`
	Note               string          `json:"note"`
	Items              []DraftItem     `json:"items"`
}

func (d Draft) totalsInput() totals.Input {
	in := totals.Input{
		Lines:              make([]totals.Line, 0, len(d.Items)),
		DiscountPercentage: d.DiscountPercentage,
		TaxAmount:          d.TaxAmount,
	}
	for _, it := range d.Items {
		in.Lines = append(in.Lines, totals.Line{
			Quantity:           it.Quantity,
			UnitPrice:          it.UnitPrice,
			DiscountPercentage: it.DiscountPercentage,
		})
	}
	return in
}

type Filter struct {
	Status         Status
	CounterpartyID int64
	From, To       time.Time
	Limit          int
}
