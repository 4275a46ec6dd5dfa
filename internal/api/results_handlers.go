package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/kol-metrics/internal/pkg/httputil"
	"github.com/ignite/kol-metrics/internal/service/results"
)

// HandleListResults returns stored results.
//
//	GET /results?limit=200&platform=youtube&order=desc
func (h *Handlers) HandleListResults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := results.ListFilter{
		Platform: q.Get("platform"),
		Order:    results.Order(q.Get("order")),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httputil.BadRequest(w, "limit must be an integer")
			return
		}
		filter.Limit = n
	}

	rows, err := h.results.List(r.Context(), filter)
	if err != nil {
		if errors.Is(err, results.ErrInvalidOrder) {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"items": toItems(rows)})
}

// HandleUpdateNote replaces the notes of one result.
//
//	POST /results/{id}/note  form: note
func (h *Handlers) HandleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.BadRequest(w, "invalid result id")
		return
	}

	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		httputil.BadRequest(w, "invalid form body")
		return
	}
	notes, ok := r.PostForm["note"]
	if !ok || len(notes) == 0 {
		httputil.BadRequest(w, "note is required")
		return
	}

	row, err := h.results.UpdateNote(r.Context(), id, notes[0])
	if err != nil {
		if errors.Is(err, results.ErrNotFound) {
			httputil.NotFound(w, "result not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"status": "success", "item": toItem(*row)})
}

// HandleExport streams every stored result as a CSV attachment.
//
//	GET /export
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := h.results.Export(r.Context(), &buf); err != nil {
		if errors.Is(err, results.ErrNoResults) {
			httputil.NotFound(w, "no results yet")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=kol_results.csv")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
