package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Spok95/erp-backend/internal/domain/catalog"
	"github.com/Spok95/erp-backend/internal/domain/documents"
	"github.com/Spok95/erp-backend/internal/domain/inventory"
	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/Spok95/erp-backend/internal/domain/products"
	"github.com/Spok95/erp-backend/internal/domain/treasury"
	"github.com/Spok95/erp-backend/internal/infra/db"
	"github.com/Spok95/erp-backend/internal/validation"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Details   any    `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

var notFound = []error{
	documents.ErrNotFound,
	documents.ErrUnknownKind,
	inventory.ErrNotFound,
	treasury.ErrNotFound,
	catalog.ErrUnknownCountry,
}

var conflict = []error{
	documents.ErrNotDraft,
	documents.ErrEmpty,
	documents.ErrNotConvertible,
	inventory.ErrInsufficientStock,
	products.ErrDuplicateBarcode,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func isUnique(err error) bool {
	_, ok := db.UniqueViolation(err)
	return ok
}

// writeError переводит доменные ошибки в HTTP. Всё неизвестное отдаётся как 500 без деталей.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	if v, ok := validation.As(err); ok {
		JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	switch {
	case errors.Is(err, numbering.ErrUnavailable):
		log.Warn("numbering unavailable", "path", r.URL.Path, "err", err)
		w.Header().Set("Retry-After", "1")
		JSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "numbering_unavailable", Retryable: true})
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("request timed out", "method", r.Method, "path", r.URL.Path, "err", err)
		w.Header().Set("Retry-After", "1")
		JSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "timeout", Retryable: true})
	case isAny(err, notFound):
		JSONError(w, http.StatusNotFound, "not_found", err.Error())
	case isAny(err, conflict):
		JSONError(w, http.StatusConflict, "conflict", err.Error())
	case isUnique(err):
		JSONError(w, http.StatusConflict, "duplicate", nil)
	default:
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

const maxBody = 1 << 20

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}
