package treasury

import (
	"time"

	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/shopspring/decimal"
)

type VoucherType string

const (
	Receipt VoucherType = "receipt" // приходный ордер
	Payment VoucherType = "payment" // расходный ордер
)

func (t VoucherType) numberKind() (numbering.Kind, bool) {
	switch t {
	case Receipt:
		return numbering.KindReceiptVoucher, true
	case Payment:
		return numbering.KindPaymentVoucher, true
	}
	return "", false
}

type Line struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type Voucher struct {
	ID           int64           `json:"id"`
	Number       string          `json:"number"`
	Type         VoucherType     `json:"type"`
	Date         time.Time       `json:"date"`
	Counterparty string          `json:"counterparty"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Note         string          `json:"note"`
	Lines        []Line          `json:"lines"`
	CreatedAt    time.Time       `json:"created_at"`
}
