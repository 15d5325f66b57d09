// Package api JSON-эндпоинты поверх доменных сервисов.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Spok95/erp-backend/internal/domain/catalog"
	"github.com/Spok95/erp-backend/internal/domain/documents"
	"github.com/Spok95/erp-backend/internal/domain/inventory"
	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/Spok95/erp-backend/internal/domain/parties"
	"github.com/Spok95/erp-backend/internal/domain/products"
	"github.com/Spok95/erp-backend/internal/domain/treasury"
	"github.com/shopspring/decimal"
)

type NumberService interface {
	Next(ctx context.Context, k numbering.Kind) (string, error)
}

type DocumentService interface {
	Create(ctx context.Context, k documents.Kind, d documents.Draft) (*documents.Document, error)
	Get(ctx context.Context, k documents.Kind, id int64) (*documents.Document, error)
	List(ctx context.Context, k documents.Kind, f documents.Filter) ([]documents.Document, error)
	ReplaceItems(ctx context.Context, k documents.Kind, id int64, d documents.Draft) (*documents.Document, error)
	Finalize(ctx context.Context, k documents.Kind, id int64) (*documents.Document, error)
	Cancel(ctx context.Context, k documents.Kind, id int64) (*documents.Document, error)
	ConvertQuotation(ctx context.Context, quotationID int64, target documents.Kind, payment decimal.Decimal) (*documents.Document, error)
}

type StockService interface {
	Post(ctx context.Context, t inventory.Transaction) (*inventory.Transaction, error)
	Get(ctx context.Context, id int64) (*inventory.Transaction, error)
	Balance(ctx context.Context, warehouseID, productID int64) (decimal.Decimal, error)
	ListBalances(ctx context.Context, warehouseID int64) ([]inventory.Balance, error)
	ItemCard(ctx context.Context, warehouseID, productID int64) (inventory.Card, error)
	ApplyCount(ctx context.Context, warehouseID int64, lines []inventory.CountLine, note string) (inventory.CountResult, error)
}

type VoucherService interface {
	Create(ctx context.Context, v treasury.Voucher) (*treasury.Voucher, error)
	Get(ctx context.Context, id int64) (*treasury.Voucher, error)
}

type ProductStore interface {
	Create(ctx context.Context, in products.NewProduct) (*products.Product, error)
	GetByID(ctx context.Context, id int64) (*products.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*products.Product, error)
	Search(ctx context.Context, term string, limit int) ([]products.Product, error)
	List(ctx context.Context, onlyActive bool) ([]products.Product, error)
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*products.Product, error)
	SetActive(ctx context.Context, id int64, active bool) (*products.Product, error)
}

type CustomerStore interface {
	CreateCustomer(ctx context.Context, in parties.NewCustomer) (*parties.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*parties.Customer, error)
	ListCustomers(ctx context.Context, onlyActive bool) ([]parties.Customer, error)
	SetCustomerActive(ctx context.Context, id int64, active bool) (*parties.Customer, error)
}

type EmployeeStore interface {
	CreateEmployee(ctx context.Context, name, position string) (*parties.Employee, error)
	ListEmployees(ctx context.Context) ([]parties.Employee, error)
	SetEmployeeActive(ctx context.Context, id int64, active bool) (*parties.Employee, error)
}

type CatalogStore interface {
	CreateWarehouse(ctx context.Context, name string, t catalog.WarehouseType) (*catalog.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]catalog.Warehouse, error)
	UpdateWarehouseName(ctx context.Context, id int64, name string) (*catalog.Warehouse, error)
	SetWarehouseActive(ctx context.Context, id int64, active bool) (*catalog.Warehouse, error)
	CreateCategory(ctx context.Context, name string) (*catalog.Category, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	SetCategoryActive(ctx context.Context, id int64, active bool) (*catalog.Category, error)
	CreateUnit(ctx context.Context, name, symbol string) (*catalog.Unit, error)
	ListUnits(ctx context.Context) ([]catalog.Unit, error)
	CreateCountry(ctx context.Context, name string) (*catalog.Country, error)
	CreateProvince(ctx context.Context, countryID int64, name string) (*catalog.Province, error)
	ListProvinces(ctx context.Context, countryID int64) ([]catalog.Province, error)
}

// Deps всё, что нужно хендлеру. Пустые сервисы означают, что их маршруты не регистрируются.
type Deps struct {
	Numbers   NumberService
	Documents DocumentService
	Stock     StockService
	Vouchers  VoucherService
	Products  ProductStore
	Customers CustomerStore
	Employees EmployeeStore
	Catalog   CatalogStore
	Log       *slog.Logger
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler { return &Handler{Deps: d} }

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/totals", h.previewTotals)

	if h.Numbers != nil {
		mux.HandleFunc("POST /api/numbers/{kind}", h.nextNumber)
	}
	if h.Documents != nil {
		mux.HandleFunc("POST /api/documents/{kind}", h.createDocument)
		mux.HandleFunc("GET /api/documents/{kind}", h.listDocuments)
		mux.HandleFunc("GET /api/documents/{kind}/{id}", h.getDocument)
		mux.HandleFunc("PUT /api/documents/{kind}/{id}/items", h.replaceItems)
		mux.HandleFunc("POST /api/documents/{kind}/{id}/finalize", h.finalizeDocument)
		mux.HandleFunc("POST /api/documents/{kind}/{id}/cancel", h.cancelDocument)
		mux.HandleFunc("POST /api/quotations/{id}/convert", h.convertQuotation)
	}
	if h.Stock != nil {
		mux.HandleFunc("POST /api/warehouse-transactions", h.postTransaction)
		mux.HandleFunc("GET /api/warehouse-transactions/{id}", h.getTransaction)
		mux.HandleFunc("GET /api/stock", h.listStock)
		mux.HandleFunc("GET /api/stock/balance", h.stockBalance)
		mux.HandleFunc("GET /api/stock/card", h.itemCard)
		mux.HandleFunc("GET /api/stock/card/export", h.exportItemCard)
		mux.HandleFunc("GET /api/stock/export", h.exportStock)
		mux.HandleFunc("POST /api/stock/count", h.importCount)
	}
	if h.Vouchers != nil {
		mux.HandleFunc("POST /api/vouchers/{type}", h.createVoucher)
		mux.HandleFunc("GET /api/vouchers/{id}", h.getVoucher)
	}
	if h.Products != nil {
		mux.HandleFunc("POST /api/products", h.createProduct)
		mux.HandleFunc("GET /api/products", h.listProducts)
		mux.HandleFunc("GET /api/products/{id}", h.getProduct)
		mux.HandleFunc("PATCH /api/products/{id}", h.updateProduct)
	}
	if h.Customers != nil {
		mux.HandleFunc("POST /api/customers", h.createCustomer)
		mux.HandleFunc("GET /api/customers", h.listCustomers)
		mux.HandleFunc("GET /api/customers/{id}", h.getCustomer)
		mux.HandleFunc("PATCH /api/customers/{id}", h.updateCustomer)
	}
	if h.Employees != nil {
		mux.HandleFunc("POST /api/employees", h.createEmployee)
		mux.HandleFunc("GET /api/employees", h.listEmployees)
		mux.HandleFunc("PATCH /api/employees/{id}", h.updateEmployee)
	}
	if h.Catalog != nil {
		mux.HandleFunc("POST /api/warehouses", h.createWarehouse)
		mux.HandleFunc("GET /api/warehouses", h.listWarehouses)
		mux.HandleFunc("PATCH /api/warehouses/{id}", h.updateWarehouse)
		mux.HandleFunc("POST /api/categories", h.createCategory)
		mux.HandleFunc("GET /api/categories", h.listCategories)
		mux.HandleFunc("PATCH /api/categories/{id}", h.updateCategory)
		mux.HandleFunc("POST /api/units", h.createUnit)
		mux.HandleFunc("GET /api/units", h.listUnits)
		mux.HandleFunc("POST /api/countries", h.createCountry)
		mux.HandleFunc("POST /api/countries/{id}/provinces", h.createProvince)
		mux.HandleFunc("GET /api/countries/{id}/provinces", h.listProvinces)
	}
}
