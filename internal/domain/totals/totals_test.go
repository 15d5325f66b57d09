package totals

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/Spok95/erp-backend/internal/validation"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name string
		line Line
		want string
	}{
		{"no discount", Line{Quantity: d("3"), UnitPrice: d("10.00")}, "30"},
		{"ten percent", Line{Quantity: d("3"), UnitPrice: d("10.00"), DiscountPercentage: d("10")}, "27"},
		{"full discount", Line{Quantity: d("5"), UnitPrice: d("9.99"), DiscountPercentage: d("100")}, "0"},
		{"rounds half up", Line{Quantity: d("1"), UnitPrice: d("0.125")}, "0.13"},
		{"fractional qty", Line{Quantity: d("0.333"), UnitPrice: d("3"), DiscountPercentage: d("12.5")}, "0.87"},
		{"zero qty", Line{Quantity: d("0"), UnitPrice: d("99")}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(tt.line)
			if !got.Equal(d(tt.want)) {
				t.Fatalf("LineTotal = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeInvoiceExample(t *testing.T) {
	res := Compute(Input{
		Lines: []Line{{Quantity: d("3"), UnitPrice: d("10.00"), DiscountPercentage: d("10")}},
	})
	if !res.Lines[0].TotalPrice.Equal(d("27.00")) {
		t.Fatalf("line total = %s", res.Lines[0].TotalPrice)
	}
	if !res.TotalAmount.Equal(d("27.00")) {
		t.Fatalf("total = %s", res.TotalAmount)
	}
}

func TestComputeDocumentDiscountAndTax(t *testing.T) {
	res := Compute(Input{
		Lines: []Line{
			{Quantity: d("2"), UnitPrice: d("50"), DiscountPercentage: d("10")}, // 90
			{Quantity: d("1"), UnitPrice: d("15.55")},                           // 15.55
		},
		DiscountPercentage: d("5"),
		TaxAmount:          d("7.5"),
	})
	if !res.Subtotal.Equal(d("105.55")) {
		t.Fatalf("subtotal = %s", res.Subtotal)
	}
	// 105.55 * 5% = 5.2775 -> 5.28
	if !res.DiscountAmount.Equal(d("5.28")) {
		t.Fatalf("discount = %s", res.DiscountAmount)
	}
	if !res.TotalAmount.Equal(d("107.77")) {
		t.Fatalf("total = %s", res.TotalAmount)
	}
}

func TestComputeEmpty(t *testing.T) {
	res := Compute(Input{DiscountPercentage: d("10")})
	if !res.Subtotal.IsZero() || !res.DiscountAmount.IsZero() || !res.TotalAmount.IsZero() {
		t.Fatalf("empty document must have zero totals: %+v", res)
	}
	if len(res.Lines) != 0 {
		t.Fatalf("no lines expected")
	}
}

func randomLines(r *rand.Rand, n int) []Line {
	lines := make([]Line, n)
	for i := range lines {
		lines[i] = Line{
			Quantity:           decimal.New(r.Int63n(100000), -3),
			UnitPrice:          decimal.New(r.Int63n(1000000), -2),
			DiscountPercentage: decimal.New(r.Int63n(10001), -2),
		}
	}
	return lines
}

func TestComputeProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		lines := randomLines(r, 1+r.Intn(8))
		in := Input{Lines: lines, DiscountPercentage: decimal.New(r.Int63n(10001), -2)}

		first := Compute(in)
		second := Compute(in)
		if first.TotalAmount.String() != second.TotalAmount.String() ||
			first.Subtotal.String() != second.Subtotal.String() {
			t.Fatalf("recompute changed result: %v vs %v", first, second)
		}

		sum := decimal.Zero
		for j, l := range lines {
			want := l.Quantity.Mul(l.UnitPrice).Mul(one.Sub(l.DiscountPercentage.Div(hundred))).Round(2)
			if !first.Lines[j].TotalPrice.Equal(want) {
				t.Fatalf("line %d: got %s want %s", j, first.Lines[j].TotalPrice, want)
			}
			sum = sum.Add(want)
		}
		if !first.Subtotal.Equal(sum) {
			t.Fatalf("subtotal %s != sum %s", first.Subtotal, sum)
		}

		reversed := make([]Line, len(lines))
		for j := range lines {
			reversed[len(lines)-1-j] = lines[j]
		}
		if got := Compute(Input{Lines: reversed, DiscountPercentage: in.DiscountPercentage}); !got.Subtotal.Equal(first.Subtotal) {
			t.Fatalf("subtotal depends on order: %s vs %s", got.Subtotal, first.Subtotal)
		}
	}
}

func TestValidate(t *testing.T) {
	ok := Input{Lines: []Line{{Quantity: d("1"), UnitPrice: d("1"), DiscountPercentage: d("100")}}}
	if err := Validate(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := Input{
		Lines: []Line{
			{Quantity: d("-1"), UnitPrice: d("1")},
			{Quantity: d("1"), UnitPrice: d("-0.01"), DiscountPercentage: d("100.01")},
		},
		DiscountPercentage: d("-5"),
		TaxAmount:          d("-1"),
	}
	v, isV := validation.As(Validate(bad))
	if !isV {
		t.Fatalf("expected violations")
	}
	for _, field := range []string{
		"items[0].quantity", "items[1].unit_price", "items[1].discount_percentage",
		"discount_percentage", "tax_amount",
	} {
		if _, ok := v[field]; !ok {
			t.Fatalf("missing violation for %s in %v", field, v)
		}
	}
}

func TestPayment(t *testing.T) {
	change, err := Payment(d("27.00"), d("50"))
	if err != nil || !change.Equal(d("23")) {
		t.Fatalf("change = %s err = %v", change, err)
	}
	change, err = Payment(d("27.00"), d("27.00"))
	if err != nil || !change.IsZero() {
		t.Fatalf("exact payment: change = %s err = %v", change, err)
	}
	if _, err := Payment(d("27.00"), d("26.99")); !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("expected ErrInsufficientPayment, got %v", err)
	}
}

func TestValidatePayment(t *testing.T) {
	err := ValidatePayment(d("10"), d("5"))
	if !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("expected ErrInsufficientPayment, got %v", err)
	}
	v, ok := validation.As(err)
	if !ok || v["payment_amount"] != validation.CodeInsufficient {
		t.Fatalf("expected payment_amount violation, got %v", v)
	}
	if err := ValidatePayment(d("10"), d("10")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsValuesColumnsWouldRound(t *testing.T) {
	in := Input{Lines: []Line{{Quantity: d("1000"), UnitPrice: d("0.005"), DiscountPercentage: d("33.333")}}}
	v, ok := validation.As(Validate(in))
	if !ok {
		t.Fatalf("expected violations for sub-cent price and 3-place discount")
	}
	if v["items[0].unit_price"] != validation.CodeScale || v["items[0].discount_percentage"] != validation.CodeScale {
		t.Fatalf("unexpected violations %v", v)
	}

	in = Input{Lines: []Line{{Quantity: d("0.0005"), UnitPrice: d("1")}}, TaxAmount: d("0.001"), DiscountPercentage: d("1.005")}
	v, _ = validation.As(Validate(in))
	for _, field := range []string{"items[0].quantity", "tax_amount", "discount_percentage"} {
		if v[field] != validation.CodeScale {
			t.Fatalf("%s: got %q in %v", field, v[field], v)
		}
	}

	// Принятый вход не меняется при записи в колонки, итог строки сходится
	okIn := Input{Lines: []Line{{Quantity: d("2.125"), UnitPrice: d("3.99"), DiscountPercentage: d("12.5")}}}
	if err := Validate(okIn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := okIn.Lines[0]
	stored := Line{Quantity: l.Quantity.Round(3), UnitPrice: l.UnitPrice.Round(2), DiscountPercentage: l.DiscountPercentage.Round(2)}
	if !LineTotal(stored).Equal(Compute(okIn).Lines[0].TotalPrice) {
		t.Fatalf("line total differs after column rounding")
	}
}

func TestValidateRejectsOverflow(t *testing.T) {
	in := Input{Lines: []Line{{Quantity: d("99999999"), UnitPrice: d("99999")}}}
	v, ok := validation.As(Validate(in))
	if !ok || v["items[0].total_price"] != validation.CodeTooLarge || v["total_amount"] != validation.CodeTooLarge {
		t.Fatalf("expected overflow violations, got %v", v)
	}
	v, _ = validation.As(Validate(Input{Lines: []Line{{Quantity: d("1"), UnitPrice: d("1000000000000")}}}))
	if v["items[0].unit_price"] != validation.CodeTooLarge {
		t.Fatalf("expected unit_price too_large, got %v", v)
	}
}

func TestValidatePaymentScale(t *testing.T) {
	err := ValidatePayment(d("10"), d("10.001"))
	if errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("scale error is not an underpayment: %v", err)
	}
	if v, ok := validation.As(err); !ok || v["payment_amount"] != validation.CodeScale {
		t.Fatalf("expected payment_amount scale violation, got %v", err)
	}
}
