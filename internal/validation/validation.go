package validation

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Коды нарушений, которые отдаются клиенту как есть
const (
	CodeRequired     = "required"
	CodeNegative     = "must_not_be_negative"
	CodePositive     = "must_be_positive"
	CodeOutOfRange   = "out_of_range"
	CodeInsufficient = "insufficient"
	CodeInvalid      = "invalid"
	CodeScale        = "too_many_decimals"
	CodeTooLarge     = "too_large"
	CodeDuplicate    = "duplicate"
)

// Точность колонок: деньги NUMERIC(14,2), количества NUMERIC(14,3),
// проценты NUMERIC(5,2). Значение, которое база округлит или не примет,
// отклоняем заранее, иначе пересчёт из сохранённых колонок разойдётся.
const (
	MoneyScale   = 2
	QtyScale     = 3
	PercentScale = 2
)

var (
	MaxMoney = decimal.New(1, 12) // NUMERIC(14,2): меньше 10^12
	MaxQty   = decimal.New(1, 11) // NUMERIC(14,3): меньше 10^11
)

// Violations поле -> код. Пустой набор ошибкой не считается, см. Err.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// Err возвращает nil для пустого набора, чтобы обычный if err != nil работал.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v Violations) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// As достаёт Violations из цепочки ошибок.
func As(err error) (Violations, bool) {
	var v Violations
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, CodeRequired)
	}
}

func RequiredID(field string, id int64, v Violations) {
	if id <= 0 {
		v.Add(field, CodeRequired)
	}
}

func NonNegative(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v.Add(field, CodeNegative)
	}
}

func Positive(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v.Add(field, CodePositive)
	}
}

func Range(field string, val, minVal, maxVal decimal.Decimal, v Violations) {
	if val.LessThan(minVal) || val.GreaterThan(maxVal) {
		v.Add(field, CodeOutOfRange)
	}
}

// Scale значение должно помещаться в places знаков после запятой без округления.
func Scale(field string, val decimal.Decimal, places int32, v Violations) {
	if !val.Equal(val.Round(places)) {
		v.Add(field, CodeScale)
	}
}

// Below |val| строго меньше limit.
func Below(field string, val, limit decimal.Decimal, v Violations) {
	if val.Abs().GreaterThanOrEqual(limit) {
		v.Add(field, CodeTooLarge)
	}
}

// Money точность и предел денежной колонки.
func Money(field string, val decimal.Decimal, v Violations) {
	Scale(field, val, MoneyScale, v)
	Below(field, val, MaxMoney, v)
}

// Quantity точность и предел колонки количества.
func Quantity(field string, val decimal.Decimal, v Violations) {
	Scale(field, val, QtyScale, v)
	Below(field, val, MaxQty, v)
}
