package memory

import (
	"context"
	"sync"
	"testing"

	"quiz-rewards-service/internal/app"
	"quiz-rewards-service/internal/domain"
)

func newProgressStoreFixture(t *testing.T) (*ProgressStore, *StudentStore) {
	t.Helper()
	students := NewStudentStore()
	return NewProgressStore(students), students
}

func addTestStudent(t *testing.T, students *StudentStore, id, name, email string) {
	t.Helper()
	_, err := students.Create(context.Background(), domain.Student{ID: id, Name: name, Email: email})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
}

func TestEnsureAnswerIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newProgressStoreFixture(t)

	if _, err := store.FindOrCreate(ctx, "s1", "2025-05-20", "beginner"); err != nil {
		t.Fatalf("find or create: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := store.EnsureAnswer(ctx, "s1", "2025-05-20", "beginner", "q1"); err != nil {
			t.Fatalf("ensure answer: %v", err)
		}
	}

	record, err := store.Find(ctx, "s1", "2025-05-20", "beginner")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(record.Answers) != 1 {
		t.Fatalf("expected a single answer slot, got %d", len(record.Answers))
	}
}

func TestSetAnswerCorrectKeepsFirstReward(t *testing.T) {
	ctx := context.Background()
	store, _ := newProgressStoreFixture(t)

	if _, err := store.FindOrCreate(ctx, "s1", "2025-05-20", "beginner"); err != nil {
		t.Fatalf("find or create: %v", err)
	}
	if err := store.EnsureAnswer(ctx, "s1", "2025-05-20", "beginner", "q1"); err != nil {
		t.Fatalf("ensure answer: %v", err)
	}
	if err := store.SetAnswerCorrect(ctx, "s1", "2025-05-20", "beginner", "q1", 10); err != nil {
		t.Fatalf("set correct: %v", err)
	}
	if err := store.SetAnswerCorrect(ctx, "s1", "2025-05-20", "beginner", "q1", 3); err != nil {
		t.Fatalf("set correct again: %v", err)
	}

	record, err := store.Find(ctx, "s1", "2025-05-20", "beginner")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if record.Answers[0].EarnedReward != 10 {
		t.Fatalf("expected the first reward to stick, got %d", record.Answers[0].EarnedReward)
	}
}

func TestConcurrentIncrementsNeverLoseAttempts(t *testing.T) {
	ctx := context.Background()
	store, _ := newProgressStoreFixture(t)

	if _, err := store.FindOrCreate(ctx, "s1", "2025-05-20", "beginner"); err != nil {
		t.Fatalf("find or create: %v", err)
	}
	if err := store.EnsureAnswer(ctx, "s1", "2025-05-20", "beginner", "q1"); err != nil {
		t.Fatalf("ensure answer: %v", err)
	}

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.IncrementAttempt(ctx, "s1", "2025-05-20", "beginner", "q1"); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	record, err := store.Find(ctx, "s1", "2025-05-20", "beginner")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if record.Answers[0].Attempts != workers {
		t.Fatalf("expected %d attempts, got %d", workers, record.Answers[0].Attempts)
	}
}

func TestTotalsByStudentDropsOrphanRecords(t *testing.T) {
	ctx := context.Background()
	store, students := newProgressStoreFixture(t)
	addTestStudent(t, students, "s1", "Ada", "ada@example.com")

	for _, sid := range []string{"s1", "ghost"} {
		if _, err := store.FindOrCreate(ctx, sid, "2025-05-20", "beginner"); err != nil {
			t.Fatalf("find or create: %v", err)
		}
		if err := store.SaveTotals(ctx, sid, "2025-05-20", "beginner", 10, false); err != nil {
			t.Fatalf("save totals: %v", err)
		}
	}

	totals, err := store.TotalsByStudent(ctx)
	if err != nil {
		t.Fatalf("totals by student: %v", err)
	}
	if len(totals) != 1 || totals[0].StudentID != "s1" || totals[0].Total != 10 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

func TestTotalsByDateLevelFilters(t *testing.T) {
	ctx := context.Background()
	store, _ := newProgressStoreFixture(t)

	seed := func(sid, date, level string, total int) {
		if _, err := store.FindOrCreate(ctx, sid, date, level); err != nil {
			t.Fatalf("find or create: %v", err)
		}
		if err := store.SaveTotals(ctx, sid, date, level, total, false); err != nil {
			t.Fatalf("save totals: %v", err)
		}
	}
	seed("s1", "2025-05-19", "beginner", 10)
	seed("s1", "2025-05-20", "beginner", 20)
	seed("s2", "2025-05-20", "advanced", 30)
	seed("s1", "2025-05-21", "beginner", 40)

	rows, err := store.TotalsByDateLevel(ctx, app.ChartFilter{From: "2025-05-20", To: "2025-05-20"})
	if err != nil {
		t.Fatalf("totals by date level: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows inside the range, got %d: %+v", len(rows), rows)
	}

	rows, err = store.TotalsByDateLevel(ctx, app.ChartFilter{StudentID: "s2"})
	if err != nil {
		t.Fatalf("totals by date level: %v", err)
	}
	if len(rows) != 1 || rows[0].Level != "advanced" || rows[0].Total != 30 {
		t.Fatalf("unexpected rows for s2: %+v", rows)
	}
}
