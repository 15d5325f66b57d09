package api

import (
	"net/http"

	"github.com/Spok95/erp-backend/internal/domain/treasury"
)

func (h *Handler) createVoucher(w http.ResponseWriter, r *http.Request) {
	var v treasury.Voucher
	if !decode(w, r, &v) {
		return
	}
	v.Type = treasury.VoucherType(r.PathValue("type"))
	out, err := h.Vouchers.Create(r.Context(), v)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusCreated, out)
}

func (h *Handler) getVoucher(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	v, err := h.Vouchers.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, v)
}
