package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiz-rewards-service/internal/app"
	"quiz-rewards-service/internal/domain"
)

// CatalogHandler serves the superadmin question CRUD.
type CatalogHandler struct {
	catalog *app.CatalogService
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var q domain.QuizQuestion
	if err := decodeJSON(r, &q); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.catalog.Create(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	questions, err := h.catalog.ListByDateLevel(r.Context(), chi.URLParam(r, "date"), chi.URLParam(r, "level"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	var q domain.QuizQuestion
	if err := decodeJSON(r, &q); err != nil {
		writeError(w, err)
		return
	}
	q.ID = chi.URLParam(r, "id")
	updated, err := h.catalog.Update(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
