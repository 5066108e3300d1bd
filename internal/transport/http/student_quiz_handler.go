package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiz-rewards-service/internal/app"
	"quiz-rewards-service/internal/auth"
	"quiz-rewards-service/internal/domain"
)

// StudentQuizHandler serves the student-facing quiz endpoints. The student
// identity always comes from the verified token, never from the request body.
type StudentQuizHandler struct {
	progress *app.ProgressService
	catalog  *app.CatalogService
}

// Total returns the caller's grand diamond total.
func (h *StudentQuizHandler) Total(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	total, err := h.progress.TotalReward(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"totalDiamonds": total})
}

type questionsResponse struct {
	Questions []domain.QuizQuestion `json:"questions"`
	Progress  domain.ProgressRecord `json:"progress"`
}

// Questions returns the day's questions together with the caller's progress.
func (h *StudentQuizHandler) Questions(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	date := chi.URLParam(r, "date")
	level := chi.URLParam(r, "level")

	questions, record, err := h.progress.QuestionsWithProgress(r.Context(), claims.UserID, date, level)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questionsResponse{Questions: questions, Progress: record})
}

type answerRequest struct {
	Date          string `json:"date"`
	Level         string `json:"level"`
	QuestionID    string `json:"questionId"`
	IsCorrect     *bool  `json:"isCorrect"`
	SelectedIndex *int   `json:"selectedIndex"`
}

// Answer records one attempt. When the client sends selectedIndex the
// correctness is derived here by comparing against the stored question, so a
// tampered isCorrect flag cannot award diamonds for a wrong answer.
func (h *StudentQuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var correct bool
	switch {
	case req.SelectedIndex != nil:
		question, err := h.catalog.Get(r.Context(), req.QuestionID)
		if err != nil {
			writeError(w, err)
			return
		}
		correct = *req.SelectedIndex == question.CorrectIndex
	case req.IsCorrect != nil:
		correct = *req.IsCorrect
	default:
		writeError(w, domain.MissingField("isCorrect"))
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	outcome, err := h.progress.RecordAnswer(r.Context(), claims.UserID, req.Date, req.Level, req.QuestionID, correct)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}
