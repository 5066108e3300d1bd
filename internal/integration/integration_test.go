package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-rewards-service/internal/app"
	"quiz-rewards-service/internal/domain"
	"quiz-rewards-service/internal/infra/postgres"
	pgmigrations "quiz-rewards-service/internal/infra/postgres/migrations"
	infraredis "quiz-rewards-service/internal/infra/redis"
)

func TestAnswerFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	applyMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	students := postgres.NewStudentRepository(pool)
	progressRepo := postgres.NewProgressRepository(pool)
	catalogRepo := infraredis.NewCatalogCache(postgres.NewCatalogRepository(pool), redisClient, 5*time.Minute)

	accounts := app.NewAccountService(students, postgres.NewAdminRepository(pool), postgres.NewUserRepository(pool))
	catalog := app.NewCatalogService(catalogRepo)
	progress := app.NewProgressService(progressRepo, catalogRepo)
	leaderboard := app.NewLeaderboardService(progressRepo, students)

	student, err := accounts.CreateStudent(ctx, domain.Student{Name: "Alice", Email: "alice@example.com"}, "pw123456")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}

	q1, err := catalog.Create(ctx, domain.QuizQuestion{
		Date:         "2025-05-20",
		Level:        "intermediate",
		Question:     "first",
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: 1,
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	q2, err := catalog.Create(ctx, domain.QuizQuestion{
		Date:         "2025-05-20",
		Level:        "intermediate",
		Question:     "second",
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: 2,
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	// Wrong then correct on the first question: second attempt pays 15.
	outcome, err := progress.RecordAnswer(ctx, student.ID, "2025-05-20", "intermediate", q1.ID, false)
	if err != nil {
		t.Fatalf("record wrong answer: %v", err)
	}
	if outcome.TotalReward != 0 || outcome.Completed {
		t.Fatalf("unexpected outcome after wrong answer: %+v", outcome)
	}
	outcome, err = progress.RecordAnswer(ctx, student.ID, "2025-05-20", "intermediate", q1.ID, true)
	if err != nil {
		t.Fatalf("record correct answer: %v", err)
	}
	if outcome.TotalReward != 15 {
		t.Fatalf("expected 15 diamonds, got %d", outcome.TotalReward)
	}
	if outcome.Completed {
		t.Fatalf("expected record open with one question left")
	}

	// First-try correct on the second question completes the quiz.
	outcome, err = progress.RecordAnswer(ctx, student.ID, "2025-05-20", "intermediate", q2.ID, true)
	if err != nil {
		t.Fatalf("record final answer: %v", err)
	}
	if outcome.TotalReward != 35 || !outcome.Completed {
		t.Fatalf("expected completion with 35 diamonds, got %+v", outcome)
	}

	// Completed records block further submissions without an error.
	outcome, err = progress.RecordAnswer(ctx, student.ID, "2025-05-20", "intermediate", q1.ID, true)
	if err != nil {
		t.Fatalf("record blocked answer: %v", err)
	}
	if !outcome.Blocked {
		t.Fatalf("expected blocked outcome, got %+v", outcome)
	}

	total, err := progress.TotalReward(ctx, student.ID)
	if err != nil {
		t.Fatalf("total reward: %v", err)
	}
	if total != 35 {
		t.Fatalf("expected grand total 35, got %d", total)
	}

	page, err := leaderboard.Rank(ctx, 1, 10)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if page.TotalCount != 1 || page.PageList[0].Score != 35 || page.PageList[0].Rank != 1 {
		t.Fatalf("unexpected leaderboard: %+v", page)
	}

	summary, err := leaderboard.Summarize(ctx, student.ID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.Levels.Intermediate != 35 || summary.Rank == nil || *summary.Rank != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func applyMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
