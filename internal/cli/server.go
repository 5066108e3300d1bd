package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-rewards-service/internal/app"
	"quiz-rewards-service/internal/auth"
	"quiz-rewards-service/internal/config"
	"quiz-rewards-service/internal/infra/memory"
	"quiz-rewards-service/internal/infra/postgres"
	rediscache "quiz-rewards-service/internal/infra/redis"
	transport "quiz-rewards-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz rewards server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var (
		progressRepo app.ProgressRepository
		catalogRepo  app.CatalogRepository
		studentRepo  app.StudentRepository
		adminRepo    app.AdminRepository
		userRepo     app.UserRepository
		quoteRepo    app.QuoteRepository
	)
	if pool != nil {
		progressRepo = postgres.NewProgressRepository(pool)
		catalogRepo = postgres.NewCatalogRepository(pool)
		studentRepo = postgres.NewStudentRepository(pool)
		adminRepo = postgres.NewAdminRepository(pool)
		userRepo = postgres.NewUserRepository(pool)
		quoteRepo = postgres.NewQuoteRepository(pool)
	} else {
		log.Printf("postgres url not configured, using in-memory stores")
		students := memory.NewStudentStore()
		progressRepo = memory.NewProgressStore(students)
		catalogRepo = memory.NewCatalogStore()
		studentRepo = students
		adminRepo = memory.NewAdminStore()
		userRepo = memory.NewUserStore()
		quoteRepo = memory.NewQuoteStore()
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cacheTTL := config.TTLDuration(cfg.Catalog.CacheTTL, 10*time.Minute)
		catalogRepo = rediscache.NewCatalogCache(catalogRepo, client, cacheTTL)
	}

	accounts := app.NewAccountService(studentRepo, adminRepo, userRepo)
	progress := app.NewProgressService(progressRepo, catalogRepo)
	leaderboard := app.NewLeaderboardService(progressRepo, studentRepo)
	catalog := app.NewCatalogService(catalogRepo)
	quotes := app.NewQuoteService(quoteRepo)
	authSvc := auth.NewService(cfg.Auth.Secret, config.TTLDuration(cfg.Auth.TokenTTL, 8*time.Hour))

	broadcaster := app.NewLeaderboardBroadcaster()
	progress.OnScored(func(ctx context.Context) {
		page, err := leaderboard.Rank(ctx, 1, 10)
		if err != nil {
			log.Printf("refresh leaderboard: %v", err)
			return
		}
		broadcaster.Publish(page)
	})

	router := transport.NewRouter(transport.Deps{
		Auth:           authSvc,
		Accounts:       accounts,
		Progress:       progress,
		Leaderboard:    leaderboard,
		Catalog:        catalog,
		Quotes:         quotes,
		Broadcaster:    broadcaster,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz rewards service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
