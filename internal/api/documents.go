package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Spok95/erp-backend/internal/domain/documents"
	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/Spok95/erp-backend/internal/domain/totals"
	"github.com/Spok95/erp-backend/internal/validation"
	"github.com/shopspring/decimal"
)

// previewTotals пересчёт формы на лету. Ничего не пишет.
func (h *Handler) previewTotals(w http.ResponseWriter, r *http.Request) {
	var in totals.Input
	if !decode(w, r, &in) {
		return
	}
	if err := totals.Validate(in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, totals.Compute(in))
}

func (h *Handler) nextNumber(w http.ResponseWriter, r *http.Request) {
	kind := numbering.Kind(r.PathValue("kind"))
	if _, err := numbering.SeriesFor(kind); err != nil {
		JSONError(w, http.StatusNotFound, "unknown_kind", string(kind))
		return
	}
	num, err := h.Numbers.Next(r.Context(), kind)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"number": num})
}

func (h *Handler) createDocument(w http.ResponseWriter, r *http.Request) {
	var d documents.Draft
	if !decode(w, r, &d) {
		return
	}
	doc, err := h.Documents.Create(r.Context(), documents.Kind(r.PathValue("kind")), d)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusCreated, doc)
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	doc, err := h.Documents.Get(r.Context(), documents.Kind(r.PathValue("kind")), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, doc)
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	list, err := h.Documents.List(r.Context(), documents.Kind(r.PathValue("kind")), f)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []documents.Document{}
	}
	JSON(w, http.StatusOK, list)
}

// parseFilter кривой параметр отклоняем, а не молча игнорируем:
// иначе клиент получит нефильтрованный список и не заметит.
func parseFilter(w http.ResponseWriter, r *http.Request) (documents.Filter, bool) {
	q := r.URL.Query()
	v := validation.Violations{}
	f := documents.Filter{Status: documents.Status(q.Get("status"))}
	if f.Status != "" && !f.Status.Valid() {
		v.Add("status", validation.CodeInvalid)
	}
	if raw := q.Get("counterparty_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			v.Add("counterparty_id", validation.CodeInvalid)
		}
		f.CounterpartyID = id
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			v.Add("limit", validation.CodeInvalid)
		}
		f.Limit = n
	}
	var err error
	if raw := q.Get("from"); raw != "" {
		if f.From, err = time.Parse(time.DateOnly, raw); err != nil {
			v.Add("from", validation.CodeInvalid)
		}
	}
	if raw := q.Get("to"); raw != "" {
		if f.To, err = time.Parse(time.DateOnly, raw); err != nil {
			v.Add("to", validation.CodeInvalid)
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		v.Add("to", validation.CodeOutOfRange)
	}
	if !v.Empty() {
		JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return documents.Filter{}, false
	}
	return f, true
}

func (h *Handler) replaceItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var d documents.Draft
	if !decode(w, r, &d) {
		return
	}
	doc, err := h.Documents.ReplaceItems(r.Context(), documents.Kind(r.PathValue("kind")), id, d)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, doc)
}

func (h *Handler) finalizeDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	doc, err := h.Documents.Finalize(r.Context(), documents.Kind(r.PathValue("kind")), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, doc)
}

func (h *Handler) cancelDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	doc, err := h.Documents.Cancel(r.Context(), documents.Kind(r.PathValue("kind")), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, doc)
}

type convertRequest struct {
	Target        documents.Kind  `json:"target"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
}

func (h *Handler) convertQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req convertRequest
	if !decode(w, r, &req) {
		return
	}
	doc, err := h.Documents.ConvertQuotation(r.Context(), id, req.Target, req.PaymentAmount)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	JSON(w, http.StatusCreated, doc)
}
