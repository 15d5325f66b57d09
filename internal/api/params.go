package api

import (
	"net/http"
	"strconv"

	"github.com/Spok95/erp-backend/internal/validation"
)

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		JSONError(w, http.StatusBadRequest, "invalid_id", name)
		return 0, false
	}
	return id, true
}

// queryIDs разбирает обязательные числовые параметры запроса разом,
// чтобы клиент получил все ошибки в одном ответе.
func queryIDs(w http.ResponseWriter, r *http.Request, names ...string) ([]int64, bool) {
	v := validation.Violations{}
	out := make([]int64, len(names))
	q := r.URL.Query()
	for i, n := range names {
		raw := q.Get(n)
		if raw == "" {
			v.Add(n, validation.CodeRequired)
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			v.Add(n, validation.CodeInvalid)
			continue
		}
		out[i] = id
	}
	if !v.Empty() {
		JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return nil, false
	}
	return out, true
}
