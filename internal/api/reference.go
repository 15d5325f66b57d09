package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Spok95/erp-backend/internal/domain/catalog"
	"github.com/Spok95/erp-backend/internal/domain/parties"
	"github.com/Spok95/erp-backend/internal/domain/products"
	"github.com/Spok95/erp-backend/internal/validation"
	"github.com/shopspring/decimal"
)

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in products.NewProduct
	if !decode(w, r, &in) {
		return
	}
	p, err := h.Products.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusCreated, p)
}

// listProducts ?barcode= точное совпадение для сканера, ?q= ищет по коду,
// штрихкоду и названию, без параметров отдаёт все активные.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if barcode := q.Get("barcode"); barcode != "" {
		p, err := h.Products.GetByBarcode(r.Context(), barcode)
		if err != nil {
			writeError(w, r, h.Log, err)
			return
		}
		list := []products.Product{}
		if p != nil {
			list = append(list, *p)
		}
		JSON(w, http.StatusOK, list)
		return
	}
	var (
		list []products.Product
		err  error
	)
	if term := q.Get("q"); term != "" {
		limit := 0
		if raw := q.Get("limit"); raw != "" {
			if limit, err = strconv.Atoi(raw); err != nil || limit <= 0 {
				JSONError(w, http.StatusUnprocessableEntity, "validation_failed",
					validation.Violations{"limit": validation.CodeInvalid})
				return
			}
		}
		list, err = h.Products.Search(r.Context(), term, limit)
	} else {
		list, err = h.Products.List(r.Context(), true)
	}
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []products.Product{}
	}
	JSON(w, http.StatusOK, list)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.Products.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if p == nil {
		JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	JSON(w, http.StatusOK, p)
}

type productPatch struct {
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Active    *bool            `json:"active"`
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req productPatch
	if !decode(w, r, &req) {
		return
	}
	var (
		p   *products.Product
		err error
	)
	if req.UnitPrice != nil {
		if p, err = h.Products.UpdatePrice(r.Context(), id, *req.UnitPrice); err != nil {
			writeError(w, r, h.Log, err)
			return
		}
		if p == nil {
			JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
	}
	if req.Active != nil {
		if p, err = h.Products.SetActive(r.Context(), id, *req.Active); err != nil {
			writeError(w, r, h.Log, err)
			return
		}
		if p == nil {
			JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
	}
	if p == nil {
		JSONError(w, http.StatusBadRequest, "invalid_request", "nothing to update")
		return
	}
	JSON(w, http.StatusOK, p)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var in parties.NewCustomer
	if !decode(w, r, &in) {
		return
	}
	c, err := h.Customers.CreateCustomer(r.Context(), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusCreated, c)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Customers.ListCustomers(r.Context(), r.URL.Query().Get("all") == "")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []parties.Customer{}
	}
	JSON(w, http.StatusOK, list)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Customers.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if c == nil {
		JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	JSON(w, http.StatusOK, c)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Active *bool `json:"active"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Active == nil {
		JSONError(w, http.StatusBadRequest, "invalid_request", "nothing to update")
		return
	}
	c, err := h.Customers.SetCustomerActive(r.Context(), id, *req.Active)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if c == nil {
		JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	JSON(w, http.StatusOK, c)
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Position string `json:"position"`
	}
	if !decode(w, r, &req) {
		return
	}
	e, err := h.Employees.CreateEmployee(r.Context(), req.Name, req.Position)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusCreated, e)
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := h.Employees.ListEmployees(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []parties.Employee{}
	}
	JSON(w, http.StatusOK, list)
}

func (h *Handler) updateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Active *bool `json:"active"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Active == nil {
		JSONError(w, http.StatusBadRequest, "invalid_request", "nothing to update")
		return
	}
	e, err := h.Employees.SetEmployeeActive(r.Context(), id, *req.Active)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if e == nil {
		JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	JSON(w, http.StatusOK, e)
}

type warehouseRequest struct {
	Name string                `json:"name"`
	Type catalog.WarehouseType `json:"type"`
}

func (h *Handler) createWarehouse(w http.ResponseWriter, r *http.Request) {
	var req warehouseRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = catalog.WHTMain
	}
	wh, err := h.Catalog.CreateWarehouse(r.Context(), req.Name, req.Type)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyName) || !req.Type.Valid() {
			JSONError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
			return
		}
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusCreated, wh)
}

func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListWarehouses(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []catalog.Warehouse{}
	}
	JSON(w, http.StatusOK, list)
}

func (h *Handler) listProvinces(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.Catalog.ListProvinces(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []catalog.Province{}
	}
	JSON(w, http.StatusOK, list)
}

type warehousePatch struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

func (h *Handler) updateWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req warehousePatch
	if !decode(w, r, &req) {
		return
	}
	var (
		wh  *catalog.Warehouse
		err error
	)
	if req.Name != nil {
		if wh, err = h.Catalog.UpdateWarehouseName(r.Context(), id, *req.Name); err != nil {
			if errors.Is(err, catalog.ErrEmptyName) {
				JSONError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
				return
			}
			writeError(w, r, h.Log, err)
			return
		}
		if wh == nil {
			JSONError(w, http.StatusNotFound, "not_found", "warehouse not found")
			return
		}
	}
	if req.Active != nil {
		if wh, err = h.Catalog.SetWarehouseActive(r.Context(), id, *req.Active); err != nil {
			writeError(w, r, h.Log, err)
			return
		}
		if wh == nil {
			JSONError(w, http.StatusNotFound, "not_found", "warehouse not found")
			return
		}
	}
	if wh == nil {
		JSONError(w, http.StatusBadRequest, "invalid_request", "nothing to update")
		return
	}
	JSON(w, http.StatusOK, wh)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	c, err := h.Catalog.CreateCategory(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyName) {
			JSONError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
			return
		}
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusCreated, c)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []catalog.Category{}
	}
	JSON(w, http.StatusOK, list)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Active *bool `json:"active"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Active == nil {
		JSONError(w, http.StatusBadRequest, "invalid_request", "nothing to update")
		return
	}
	c, err := h.Catalog.SetCategoryActive(r.Context(), id, *req.Active)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if c == nil {
		JSONError(w, http.StatusNotFound, "not_found", "category not found")
		return
	}
	JSON(w, http.StatusOK, c)
}

// catalogError пустое имя это ошибка формы, остальное через writeError.
func (h *Handler) catalogError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, catalog.ErrEmptyName) {
		JSONError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return
	}
	writeError(w, r, h.Log, err)
}

func (h *Handler) createUnit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	}
	if !decode(w, r, &req) {
		return
	}
	u, err := h.Catalog.CreateUnit(r.Context(), req.Name, req.Symbol)
	if err != nil {
		h.catalogError(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, u)
}

func (h *Handler) createCountry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	c, err := h.Catalog.CreateCountry(r.Context(), req.Name)
	if err != nil {
		h.catalogError(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, c)
}

func (h *Handler) createProvince(w http.ResponseWriter, r *http.Request) {
	countryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	p, err := h.Catalog.CreateProvince(r.Context(), countryID, req.Name)
	if err != nil {
		h.catalogError(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, p)
}

func (h *Handler) listUnits(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListUnits(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []catalog.Unit{}
	}
	JSON(w, http.StatusOK, list)
}
