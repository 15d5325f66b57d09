package numbering

import "fmt"

type Kind string

const (
	KindCustomer             Kind = "customer"
	KindProduct              Kind = "product"
	KindBarcode              Kind = "barcode"
	KindCashInvoice          Kind = "cash_invoice"
	KindCreditInvoice        Kind = "credit_invoice"
	KindQuotation            Kind = "quotation"
	KindPurchaseOrder        Kind = "purchase_order"
	KindDispatchOrder        Kind = "dispatch_order"
	KindWarehouseTransaction Kind = "warehouse_transaction"
	KindReceiptVoucher       Kind = "receipt_voucher"
	KindPaymentVoucher       Kind = "payment_voucher"
)

const defaultWidth = 6

// Series у каждого типа документа свой префикс и своя строка в counters.
// Procedure имя серверной функции с тем же счётчиком (см. миграцию 00004).
type Series struct {
	Kind      Kind
	Prefix    string
	Width     int
	Procedure string
}

var series = map[Kind]Series{
	KindCustomer:             {KindCustomer, "CU", defaultWidth, "generate_customer_code"},
	KindProduct:              {KindProduct, "P", defaultWidth, "generate_product_code"},
	KindBarcode:              {KindBarcode, barcodePrefix, barcodeWidth, "generate_barcode"},
	KindCashInvoice:          {KindCashInvoice, "CI", defaultWidth, "generate_cash_invoice_number"},
	KindCreditInvoice:        {KindCreditInvoice, "CR", defaultWidth, "generate_credit_invoice_number"},
	KindQuotation:            {KindQuotation, "QT", defaultWidth, "generate_quotation_number"},
	KindPurchaseOrder:        {KindPurchaseOrder, "PO", defaultWidth, "generate_purchase_order_number"},
	KindDispatchOrder:        {KindDispatchOrder, "DO", defaultWidth, "generate_dispatch_order_number"},
	KindWarehouseTransaction: {KindWarehouseTransaction, "WT", defaultWidth, "generate_warehouse_transaction_number"},
	KindReceiptVoucher:       {KindReceiptVoucher, "RV", defaultWidth, "generate_receipt_voucher_number"},
	KindPaymentVoucher:       {KindPaymentVoucher, "PV", defaultWidth, "generate_payment_voucher_number"},
}

func SeriesFor(k Kind) (Series, error) {
	s, ok := series[k]
	if !ok {
		return Series{}, fmt.Errorf("numbering: unknown kind %q", k)
	}
	return s, nil
}

func Kinds() []Kind {
	return []Kind{
		KindCustomer, KindProduct, KindBarcode, KindCashInvoice, KindCreditInvoice,
		KindQuotation, KindPurchaseOrder, KindDispatchOrder, KindWarehouseTransaction,
		KindReceiptVoucher, KindPaymentVoucher,
	}
}

// ProductCategory у товаров несколько префиксов, у каждого свой счётчик.
type ProductCategory string

const (
	ProductGeneral     ProductCategory = "general"
	ProductRawMaterial ProductCategory = "raw_material"
	ProductConsumable  ProductCategory = "consumable"
	ProductFinished    ProductCategory = "finished_good"
	ProductSparePart   ProductCategory = "spare_part"
)

var productPrefixes = map[ProductCategory]string{
	ProductGeneral:     "P",
	ProductRawMaterial: "M",
	ProductConsumable:  "C",
	ProductFinished:    "F",
	ProductSparePart:   "S",
}

func ProductPrefix(c ProductCategory) (string, error) {
	p, ok := productPrefixes[c]
	if !ok {
		return "", fmt.Errorf("numbering: unknown product category %q", c)
	}
	return p, nil
}

func ProductCategories() []ProductCategory {
	return []ProductCategory{ProductGeneral, ProductRawMaterial, ProductConsumable, ProductFinished, ProductSparePart}
}
