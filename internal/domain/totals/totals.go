// Package totals считает суммы строк и документа. Все формы и сервисы
// используют только его, формулу нигде больше не повторяем.
package totals

import (
	"errors"
	"fmt"

	"github.com/Spok95/erp-backend/internal/validation"
	"github.com/shopspring/decimal"
)

var ErrInsufficientPayment = errors.New("totals: payment amount is less than total amount")

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

type Line struct {
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

type Input struct {
	Lines              []Line          `json:"items"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
}

type LineResult struct {
	Line
	TotalPrice decimal.Decimal `json:"total_price"`
}

type Result struct {
	Lines          []LineResult    `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// Round2 округляет до копеек, половина от нуля.
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// LineTotal = round2(q × p × (1 − d/100))
func LineTotal(l Line) decimal.Decimal {
	factor := one.Sub(l.DiscountPercentage.Div(hundred))
	return Round2(l.Quantity.Mul(l.UnitPrice).Mul(factor))
}

// Compute чистая функция: одинаковый вход даёт одинаковый результат.
// Скидка документа применяется к подытогу после скидок строк.
func Compute(in Input) Result {
	res := Result{
		Lines:     make([]LineResult, 0, len(in.Lines)),
		Subtotal:  decimal.Zero,
		TaxAmount: Round2(in.TaxAmount),
	}
	for _, l := range in.Lines {
		lt := LineTotal(l)
		res.Lines = append(res.Lines, LineResult{Line: l, TotalPrice: lt})
		res.Subtotal = res.Subtotal.Add(lt)
	}
	res.DiscountAmount = Round2(res.Subtotal.Mul(in.DiscountPercentage).Div(hundred))
	res.TotalAmount = res.Subtotal.Sub(res.DiscountAmount).Add(res.TaxAmount)
	return res
}

// Validate проверяет вход до любой записи в базу. Значения не клампим.
func Validate(in Input) error {
	v := validation.Violations{}
	for i, l := range in.Lines {
		prefix := fmt.Sprintf("items[%d].", i)
		validation.NonNegative(prefix+"quantity", l.Quantity, v)
		validation.Quantity(prefix+"quantity", l.Quantity, v)
		validation.NonNegative(prefix+"unit_price", l.UnitPrice, v)
		validation.Money(prefix+"unit_price", l.UnitPrice, v)
		validation.Range(prefix+"discount_percentage", l.DiscountPercentage, decimal.Zero, hundred, v)
		validation.Scale(prefix+"discount_percentage", l.DiscountPercentage, validation.PercentScale, v)
	}
	validation.Range("discount_percentage", in.DiscountPercentage, decimal.Zero, hundred, v)
	validation.Scale("discount_percentage", in.DiscountPercentage, validation.PercentScale, v)
	validation.NonNegative("tax_amount", in.TaxAmount, v)
	validation.Money("tax_amount", in.TaxAmount, v)
	if !v.Empty() {
		return v.Err()
	}

	// Входы по отдельности влезают, но произведение может переполнить колонку
	res := Compute(in)
	for i, l := range res.Lines {
		validation.Below(fmt.Sprintf("items[%d].total_price", i), l.TotalPrice, validation.MaxMoney, v)
	}
	validation.Below("subtotal", res.Subtotal, validation.MaxMoney, v)
	validation.Below("total_amount", res.TotalAmount, validation.MaxMoney, v)
	return v.Err()
}

// Payment для продажи за наличные: сдача = оплата − итог.
// Недоплата это ошибка, молча не округляем до нуля.
func Payment(total, paid decimal.Decimal) (decimal.Decimal, error) {
	if paid.LessThan(total) {
		return decimal.Zero, ErrInsufficientPayment
	}
	return paid.Sub(total), nil
}

// ValidatePayment то же самое, но в виде нарушения поля для формы.
func ValidatePayment(total, paid decimal.Decimal) error {
	v := validation.Violations{}
	validation.NonNegative("payment_amount", paid, v)
	validation.Money("payment_amount", paid, v)
	if !v.Empty() {
		return v.Err()
	}
	if _, err := Payment(total, paid); err != nil {
		v.Add("payment_amount", validation.CodeInsufficient)
		return fmt.Errorf("%w: %w", ErrInsufficientPayment, v.Err())
	}
	return nil
}
