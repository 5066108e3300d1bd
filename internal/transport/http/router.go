package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"quiz-rewards-service/internal/app"
	"quiz-rewards-service/internal/auth"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Auth           *auth.Service
	Accounts       *app.AccountService
	Progress       *app.ProgressService
	Leaderboard    *app.LeaderboardService
	Catalog        *app.CatalogService
	Quotes         *app.QuoteService
	Broadcaster    *app.LeaderboardBroadcaster
	AllowedOrigins []string
}

// NewRouter assembles the full route tree. Login and the quote of the day
// are public; everything else requires a bearer token, with content and
// account mutations further gated to superadmins.
func NewRouter(deps Deps) http.Handler {
	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	accounts := &AccountHandler{accounts: deps.Accounts, auth: deps.Auth}
	quiz := &StudentQuizHandler{progress: deps.Progress, catalog: deps.Catalog}
	leaderboard := &LeaderboardHandler{leaderboard: deps.Leaderboard}
	catalog := &CatalogHandler{catalog: deps.Catalog}
	quotes := &QuoteHandler{quotes: deps.Quotes}
	ws := NewWSHandler(deps.Broadcaster)

	authed := auth.Middleware(deps.Auth)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/students/login", accounts.StudentLogin)
		r.Post("/admins/login", accounts.AdminLogin)
		r.Get("/quotes/wotd", quotes.QuoteOfTheDay)

		r.Group(func(r chi.Router) {
			r.Use(authed)

			r.Route("/student-quiz", func(r chi.Router) {
				r.Get("/total", quiz.Total)
				r.Get("/{date}/{level}", quiz.Questions)
				r.Post("/answer", quiz.Answer)
			})

			r.Route("/leaderboard", func(r chi.Router) {
				r.Get("/", leaderboard.Rank)
				r.Get("/summary/{id}", leaderboard.Summary)
				r.Get("/report", leaderboard.Report)
				r.Get("/charts", leaderboard.Charts)
			})

			r.Route("/quiz", func(r chi.Router) {
				r.Use(auth.RequireSuperAdmin)
				r.Post("/", catalog.Create)
				r.Get("/{date}/{level}", catalog.List)
				r.Put("/{id}", catalog.Update)
				r.Delete("/{id}", catalog.Delete)
			})

			r.Route("/quotes", func(r chi.Router) {
				r.Use(auth.RequireSuperAdmin)
				r.Get("/", quotes.List)
				r.Post("/", quotes.Create)
				r.Put("/{id}", quotes.Update)
				r.Delete("/{id}", quotes.Delete)
			})

			r.Route("/students", func(r chi.Router) {
				r.Get("/", accounts.ListStudents)
				r.Post("/change-password", accounts.ChangeStudentPassword)
				r.Get("/{id}", accounts.GetStudent)

				r.Group(func(r chi.Router) {
					r.Use(auth.RequireSuperAdmin)
					r.Post("/", accounts.CreateStudent)
					r.Put("/{id}", accounts.UpdateStudent)
					r.Delete("/{id}", accounts.DeleteStudent)
				})
			})

			r.Route("/admins", func(r chi.Router) {
				r.Use(auth.RequireSuperAdmin)
				r.Get("/", accounts.ListAdmins)
				r.Post("/", accounts.CreateAdmin)
				r.Get("/{id}", accounts.GetAdmin)
				r.Put("/{id}", accounts.UpdateAdmin)
				r.Delete("/{id}", accounts.DeleteAdmin)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(auth.RequireSuperAdmin)
				r.Get("/", accounts.ListUsers)
				r.Post("/", accounts.CreateUser)
				r.Get("/{id}", accounts.GetUser)
				r.Put("/{id}", accounts.UpdateUser)
				r.Delete("/{id}", accounts.DeleteUser)
			})
		})
	})

	r.With(authed).Get("/ws/leaderboard", ws.ServeWS)

	return r
}
