package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quiz-rewards-service/internal/app"
	"quiz-rewards-service/internal/auth"
	"quiz-rewards-service/internal/domain"
	"quiz-rewards-service/internal/infra/memory"
	transport "quiz-rewards-service/internal/transport/http"
)

type fixture struct {
	router      http.Handler
	auth        *auth.Service
	accounts    *app.AccountService
	progress    *app.ProgressService
	catalog     *app.CatalogService
	quotes      *app.QuoteService
	broadcaster *app.LeaderboardBroadcaster

	student domain.Student
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	students := memory.NewStudentStore()
	progressStore := memory.NewProgressStore(students)
	catalogStore := memory.NewCatalogStore()

	accounts := app.NewAccountService(students, memory.NewAdminStore(), memory.NewUserStore())
	progress := app.NewProgressService(progressStore, catalogStore)
	leaderboard := app.NewLeaderboardService(progressStore, students)
	catalog := app.NewCatalogService(catalogStore)
	quotes := app.NewQuoteService(memory.NewQuoteStore())
	broadcaster := app.NewLeaderboardBroadcaster()
	authSvc := auth.NewService("test-secret", time.Hour)

	student, err := accounts.CreateStudent(context.Background(), domain.Student{
		Name:  "Ada",
		Email: "ada@example.com",
	}, "pass1234")
	if err != nil {
		t.Fatalf("seed student: %v", err)
	}

	router := transport.NewRouter(transport.Deps{
		Auth:        authSvc,
		Accounts:    accounts,
		Progress:    progress,
		Leaderboard: leaderboard,
		Catalog:     catalog,
		Quotes:      quotes,
		Broadcaster: broadcaster,
	})

	return &fixture{
		router:      router,
		auth:        authSvc,
		accounts:    accounts,
		progress:    progress,
		catalog:     catalog,
		quotes:      quotes,
		broadcaster: broadcaster,
		student:     student,
	}
}

func (f *fixture) studentToken(t *testing.T) string {
	t.Helper()
	token, err := f.auth.Issue(f.student.ID, f.student.Role, f.student.Email)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (f *fixture) superAdminToken(t *testing.T) string {
	t.Helper()
	token, err := f.auth.Issue("admin-1", "superadmin", "root@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) seedQuestion(t *testing.T, date, level string, correctIndex int) domain.QuizQuestion {
	t.Helper()
	q, err := f.catalog.Create(context.Background(), domain.QuizQuestion{
		Date:         date,
		Level:        level,
		Question:     "pick one",
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: correctIndex,
	})
	if err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return q
}

func TestStudentLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/students/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "pass1234",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token   string         `json:"token"`
		Student domain.Student `json:"student"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a token")
	}
	if resp.Student.ID != f.student.ID {
		t.Fatalf("expected student %s, got %s", f.student.ID, resp.Student.ID)
	}

	rec = f.do(t, http.MethodPost, "/api/students/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}
}

func TestAnswerDerivesCorrectnessFromSelectedIndex(t *testing.T) {
	f := newFixture(t)
	q := f.seedQuestion(t, "2025-05-20", "beginner", 2)
	token := f.studentToken(t)

	// Wrong pick first: the attempt counts but nothing is awarded.
	rec := f.do(t, http.MethodPost, "/api/student-quiz/answer", token, map[string]interface{}{
		"date":          "2025-05-20",
		"level":         "beginner",
		"questionId":    q.ID,
		"isCorrect":     true,
		"selectedIndex": 0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var outcome domain.AnswerOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if outcome.TotalReward != 0 {
		t.Fatalf("expected no reward for a wrong pick, got %d", outcome.TotalReward)
	}

	rec = f.do(t, http.MethodPost, "/api/student-quiz/answer", token, map[string]interface{}{
		"date":          "2025-05-20",
		"level":         "beginner",
		"questionId":    q.ID,
		"selectedIndex": 2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if outcome.TotalReward != 5 {
		t.Fatalf("expected 5 diamonds on the second attempt, got %d", outcome.TotalReward)
	}
	if !outcome.Completed {
		t.Fatalf("expected completion with the single question answered")
	}

	rec = f.do(t, http.MethodGet, "/api/student-quiz/total", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var total struct {
		TotalDiamonds int `json:"totalDiamonds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &total); err != nil {
		t.Fatalf("decode total: %v", err)
	}
	if total.TotalDiamonds != 5 {
		t.Fatalf("expected grand total 5, got %d", total.TotalDiamonds)
	}
}

func TestAnswerRequiresCorrectnessField(t *testing.T) {
	f := newFixture(t)
	token := f.studentToken(t)

	rec := f.do(t, http.MethodPost, "/api/student-quiz/answer", token, map[string]interface{}{
		"date":       "2025-05-20",
		"level":      "beginner",
		"questionId": "q1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestQuestionsReturnsProgress(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "2025-05-20", "beginner", 0)
	token := f.studentToken(t)

	rec := f.do(t, http.MethodGet, "/api/student-quiz/2025-05-20/beginner", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Questions []domain.QuizQuestion `json:"questions"`
		Progress  domain.ProgressRecord `json:"progress"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(resp.Questions))
	}
	if resp.Progress.StudentID != f.student.ID {
		t.Fatalf("expected progress for %s, got %s", f.student.ID, resp.Progress.StudentID)
	}
	if resp.Progress.Completed {
		t.Fatalf("expected an open record with questions published")
	}
}

func TestCatalogMutationsRequireSuperAdmin(t *testing.T) {
	f := newFixture(t)
	body := map[string]interface{}{
		"date":         "2025-05-20",
		"level":        "beginner",
		"question":     "pick one",
		"options":      []string{"a", "b", "c", "d"},
		"correctIndex": 1,
	}

	rec := f.do(t, http.MethodPost, "/api/quiz/", f.studentToken(t), body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student token, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/quiz/", f.superAdminToken(t), body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for superadmin, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPost, "/api/quiz/", "", body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
}

func TestLeaderboardEndpoints(t *testing.T) {
	f := newFixture(t)
	q := f.seedQuestion(t, "2025-05-20", "advanced", 0)

	ctx := context.Background()
	if _, err := f.progress.RecordAnswer(ctx, f.student.ID, "2025-05-20", "advanced", q.ID, true); err != nil {
		t.Fatalf("seed progress: %v", err)
	}
	token := f.studentToken(t)

	rec := f.do(t, http.MethodGet, "/api/leaderboard?page=1&perPage=5", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var page domain.LeaderboardPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.TotalCount != 1 || len(page.PageList) != 1 || page.PageList[0].Score != 30 {
		t.Fatalf("unexpected page: %+v", page)
	}

	rec = f.do(t, http.MethodGet, "/api/leaderboard/summary/"+f.student.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var summary domain.StudentSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Levels.Advanced != 30 || summary.Rank == nil || *summary.Rank != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	rec = f.do(t, http.MethodGet, "/api/leaderboard/report", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("expected workbook bytes")
	}

	rec = f.do(t, http.MethodGet, "/api/leaderboard/charts?from=bad-date", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad date, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/leaderboard/charts", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var series domain.ChartSeries
	if err := json.Unmarshal(rec.Body.Bytes(), &series); err != nil {
		t.Fatalf("decode series: %v", err)
	}
	if len(series.Dates) != 1 || series.Advanced[0] != 20 {
		t.Fatalf("unexpected series: %+v", series)
	}
}

func TestQuoteOfTheDay(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/quotes/wotd", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with an empty pool, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/quotes/", f.superAdminToken(t), map[string]string{
		"text":   "stay curious",
		"author": "anon",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/quotes/wotd", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var quote domain.Quote
	if err := json.Unmarshal(rec.Body.Bytes(), &quote); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if quote.Text != "stay curious" {
		t.Fatalf("unexpected quote: %+v", quote)
	}
}

func TestChangeStudentPassword(t *testing.T) {
	f := newFixture(t)
	token := f.studentToken(t)

	rec := f.do(t, http.MethodPost, "/api/students/change-password", token, map[string]string{
		"currentPassword": "pass1234",
		"newPassword":     "fresh5678",
		"confirmPassword": "fresh5678",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPost, "/api/students/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "fresh5678",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login with the new password, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/students/change-password", token, map[string]string{
		"currentPassword": "nope",
		"newPassword":     "x",
		"confirmPassword": "y",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for mismatched confirmation, got %d", rec.Code)
	}
}

func TestUserCRUDRequiresSuperAdmin(t *testing.T) {
	f := newFixture(t)
	admin := f.superAdminToken(t)

	rec := f.do(t, http.MethodPost, "/api/users/", admin, map[string]string{
		"name":     "Sam",
		"email":    "sam@example.com",
		"password": "pw123456",
		"role":     "teacher",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var user domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Role != "teacher" {
		t.Fatalf("expected role preserved, got %q", user.Role)
	}

	rec = f.do(t, http.MethodGet, "/api/users/?role=teacher", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var users []domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 teacher, got %d", len(users))
	}

	rec = f.do(t, http.MethodGet, "/api/users/", f.studentToken(t), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student token, got %d", rec.Code)
	}
}
