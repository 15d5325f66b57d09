package parties

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID          int64           `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	ProvinceID  *int64          `json:"province_id,omitempty"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
}

type NewCustomer struct {
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	ProvinceID  *int64          `json:"province_id,omitempty"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

type Employee struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
