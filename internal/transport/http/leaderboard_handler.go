package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"quiz-rewards-service/internal/app"
)

// LeaderboardHandler serves the ranking views.
type LeaderboardHandler struct {
	leaderboard *app.LeaderboardService
}

func intQuery(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

// Rank returns the paginated global leaderboard.
func (h *LeaderboardHandler) Rank(w http.ResponseWriter, r *http.Request) {
	page, err := h.leaderboard.Rank(r.Context(), intQuery(r, "page"), intQuery(r, "perPage"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Summary returns one student's per-level totals and global rank.
func (h *LeaderboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.leaderboard.Summarize(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Report streams the xlsx leaderboard export as a download.
func (h *LeaderboardHandler) Report(w http.ResponseWriter, r *http.Request) {
	data, err := h.leaderboard.Report(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="leaderboard-report.xlsx"`)
	if _, err := w.Write(data); err != nil {
		return
	}
}

// Charts returns the normalized per-date reward series.
func (h *LeaderboardHandler) Charts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	series, err := h.leaderboard.ChartSeries(r.Context(), app.ChartFilter{
		From:      q.Get("from"),
		To:        q.Get("to"),
		StudentID: q.Get("studentId"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}
