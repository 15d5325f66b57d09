package api

import (
	"fmt"
	"net/http"

	"github.com/Spok95/erp-backend/internal/domain/inventory"
	"github.com/Spok95/erp-backend/internal/report"
)

const maxUpload = 10 << 20

func (h *Handler) postTransaction(w http.ResponseWriter, r *http.Request) {
	var t inventory.Transaction
	if !decode(w, r, &t) {
		return
	}
	out, err := h.Stock.Post(r.Context(), t)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusCreated, out)
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.Stock.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, t)
}

func (h *Handler) listStock(w http.ResponseWriter, r *http.Request) {
	ids, ok := queryIDs(w, r, "warehouse_id")
	if !ok {
		return
	}
	list, err := h.Stock.ListBalances(r.Context(), ids[0])
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []inventory.Balance{}
	}
	JSON(w, http.StatusOK, list)
}

func (h *Handler) stockBalance(w http.ResponseWriter, r *http.Request) {
	ids, ok := queryIDs(w, r, "warehouse_id", "product_id")
	if !ok {
		return
	}
	qty, err := h.Stock.Balance(r.Context(), ids[0], ids[1])
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"warehouse_id": ids[0], "product_id": ids[1], "quantity": qty})
}

func (h *Handler) itemCard(w http.ResponseWriter, r *http.Request) {
	ids, ok := queryIDs(w, r, "warehouse_id", "product_id")
	if !ok {
		return
	}
	card, err := h.Stock.ItemCard(r.Context(), ids[0], ids[1])
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, card)
}

func writeXLSX(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) exportStock(w http.ResponseWriter, r *http.Request) {
	ids, ok := queryIDs(w, r, "warehouse_id")
	if !ok {
		return
	}
	list, err := h.Stock.ListBalances(r.Context(), ids[0])
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	data, err := report.StockSheet(list)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeXLSX(w, fmt.Sprintf("stock_%d.xlsx", ids[0]), data)
}

func (h *Handler) exportItemCard(w http.ResponseWriter, r *http.Request) {
	ids, ok := queryIDs(w, r, "warehouse_id", "product_id")
	if !ok {
		return
	}
	card, err := h.Stock.ItemCard(r.Context(), ids[0], ids[1])
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	data, err := report.ItemCardSheet(card)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeXLSX(w, fmt.Sprintf("item_card_%d_%d.xlsx", ids[0], ids[1]), data)
}

// importCount принимает заполненный лист остатков (multipart, поле file).
// Если хоть одна строка кривая, ничего не проводим и возвращаем номера строк.
func (h *Handler) importCount(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		JSONError(w, http.StatusBadRequest, "file_required", err.Error())
		return
	}
	defer func() { _ = file.Close() }()

	lines, rowErrs, err := report.ParseCountSheet(file)
	if err != nil {
		JSONError(w, http.StatusBadRequest, "invalid_sheet", err.Error())
		return
	}
	if len(rowErrs) > 0 {
		JSONError(w, http.StatusUnprocessableEntity, "invalid_rows", rowErrs)
		return
	}
	if len(lines) == 0 {
		JSONError(w, http.StatusUnprocessableEntity, "nothing_counted", nil)
		return
	}

	res, err := h.Stock.ApplyCount(r.Context(), lines[0].WarehouseID, lines, r.FormValue("note"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, res)
}
