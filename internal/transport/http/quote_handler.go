package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiz-rewards-service/internal/app"
)

// QuoteHandler serves the quote of the day and its admin CRUD.
type QuoteHandler struct {
	quotes *app.QuoteService
}

func (h *QuoteHandler) QuoteOfTheDay(w http.ResponseWriter, r *http.Request) {
	quote, err := h.quotes.QuoteOfTheDay(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.quotes.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

type quoteRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	quote, err := h.quotes.Create(r.Context(), req.Text, req.Author)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quote)
}

func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	quote, err := h.quotes.Update(r.Context(), chi.URLParam(r, "id"), req.Text, req.Author)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.quotes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
