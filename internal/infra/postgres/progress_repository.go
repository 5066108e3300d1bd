package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-rewards-service/internal/app"
	"quiz-rewards-service/internal/domain"
)

// ProgressRepository persists progress records in Postgres. The attempt
// counter and the correct flag are mutated through single conditional
// UPDATEs so concurrent submissions for the same question serialize at the
// storage layer.
type ProgressRepository struct {
	pool *pgxpool.Pool
}

func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

func (r *ProgressRepository) FindOrCreate(ctx context.Context, studentID, date, level string) (domain.ProgressRecord, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO quiz_progress (id, student_id, date, level)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id, date, level) DO NOTHING`,
		uuid.NewString(), studentID, date, level)
	if err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("insert progress: %w", err)
	}
	return r.Find(ctx, studentID, date, level)
}

func (r *ProgressRepository) Find(ctx context.Context, studentID, date, level string) (domain.ProgressRecord, error) {
	var record domain.ProgressRecord
	err := r.pool.QueryRow(ctx, `
		SELECT id, student_id, date, level, total_reward, completed
		FROM quiz_progress
		WHERE student_id=$1 AND date=$2 AND level=$3`,
		studentID, date, level).
		Scan(&record.ID, &record.StudentID, &record.Date, &record.Level, &record.TotalReward, &record.Completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ProgressRecord{}, domain.ErrProgressNotFound
	}
	if err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("select progress: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT question_id, attempts, earned_reward, is_correct
		FROM progress_answers
		WHERE progress_id=$1
		ORDER BY seq`, record.ID)
	if err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("select answers: %w", err)
	}
	defer rows.Close()

	record.Answers = []domain.AnswerAttempt{}
	for rows.Next() {
		var a domain.AnswerAttempt
		if err := rows.Scan(&a.QuestionID, &a.Attempts, &a.EarnedReward, &a.IsCorrect); err != nil {
			return domain.ProgressRecord{}, fmt.Errorf("scan answer: %w", err)
		}
		record.Answers = append(record.Answers, a)
	}
	return record, rows.Err()
}

func (r *ProgressRepository) EnsureAnswer(ctx context.Context, studentID, date, level, questionID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO progress_answers (progress_id, question_id)
		SELECT id, $4 FROM quiz_progress
		WHERE student_id=$1 AND date=$2 AND level=$3
		ON CONFLICT (progress_id, question_id) DO NOTHING`,
		studentID, date, level, questionID)
	if err != nil {
		return fmt.Errorf("ensure answer: %w", err)
	}
	return nil
}

func (r *ProgressRepository) IncrementAttempt(ctx context.Context, studentID, date, level, questionID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE progress_answers a SET attempts = a.attempts + 1
		FROM quiz_progress p
		WHERE a.progress_id = p.id
		  AND p.student_id=$1 AND p.date=$2 AND p.level=$3
		  AND a.question_id=$4`,
		studentID, date, level, questionID)
	if err != nil {
		return fmt.Errorf("increment attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProgressNotFound
	}
	return nil
}

func (r *ProgressRepository) SetAnswerCorrect(ctx context.Context, studentID, date, level, questionID string, reward int) error {
	// Conditional on NOT is_correct: a concurrent duplicate never rewrites
	// the reward earned by the first correct submission.
	_, err := r.pool.Exec(ctx, `
		UPDATE progress_answers a SET is_correct = TRUE, earned_reward = $5
		FROM quiz_progress p
		WHERE a.progress_id = p.id
		  AND p.student_id=$1 AND p.date=$2 AND p.level=$3
		  AND a.question_id=$4 AND NOT a.is_correct`,
		studentID, date, level, questionID, reward)
	if err != nil {
		return fmt.Errorf("set answer correct: %w", err)
	}
	return nil
}

func (r *ProgressRepository) SaveTotals(ctx context.Context, studentID, date, level string, totalReward int, completed bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE quiz_progress SET total_reward=$4, completed=$5
		WHERE student_id=$1 AND date=$2 AND level=$3`,
		studentID, date, level, totalReward, completed)
	if err != nil {
		return fmt.Errorf("save totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProgressNotFound
	}
	return nil
}

func (r *ProgressRepository) TotalForStudent(ctx context.Context, studentID string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_reward), 0) FROM quiz_progress WHERE student_id=$1`,
		studentID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum rewards: %w", err)
	}
	return total, nil
}

func (r *ProgressRepository) TotalsByStudent(ctx context.Context) ([]domain.StudentTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.student_id, s.name, s.email, COALESCE(SUM(p.total_reward), 0)
		FROM quiz_progress p
		JOIN students s ON s.id = p.student_id
		GROUP BY p.student_id, s.name, s.email
		ORDER BY p.student_id`)
	if err != nil {
		return nil, fmt.Errorf("aggregate by student: %w", err)
	}
	defer rows.Close()

	totals := make([]domain.StudentTotal, 0)
	for rows.Next() {
		var t domain.StudentTotal
		if err := rows.Scan(&t.StudentID, &t.Name, &t.Email, &t.Total); err != nil {
			return nil, fmt.Errorf("scan student total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *ProgressRepository) TotalsByStudentLevel(ctx context.Context, studentID string) ([]domain.LevelTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT level, COALESCE(SUM(total_reward), 0)
		FROM quiz_progress
		WHERE student_id=$1
		GROUP BY level
		ORDER BY level`, studentID)
	if err != nil {
		return nil, fmt.Errorf("aggregate by level: %w", err)
	}
	defer rows.Close()

	totals := make([]domain.LevelTotal, 0)
	for rows.Next() {
		var t domain.LevelTotal
		if err := rows.Scan(&t.Level, &t.Total); err != nil {
			return nil, fmt.Errorf("scan level total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *ProgressRepository) TotalsByStudentDateLevel(ctx context.Context) ([]domain.StudentDateLevelTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.student_id, s.name, s.email, p.date, p.level, COALESCE(SUM(p.total_reward), 0)
		FROM quiz_progress p
		JOIN students s ON s.id = p.student_id
		GROUP BY p.student_id, s.name, s.email, p.date, p.level
		ORDER BY p.student_id, p.date, p.level`)
	if err != nil {
		return nil, fmt.Errorf("aggregate report: %w", err)
	}
	defer rows.Close()

	totals := make([]domain.StudentDateLevelTotal, 0)
	for rows.Next() {
		var t domain.StudentDateLevelTotal
		if err := rows.Scan(&t.StudentID, &t.Name, &t.Email, &t.Date, &t.Level, &t.Total); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *ProgressRepository) TotalsByDateLevel(ctx context.Context, filter app.ChartFilter) ([]domain.DateLevelTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date, level, COALESCE(SUM(total_reward), 0)
		FROM quiz_progress
		WHERE ($1 = '' OR student_id = $1)
		  AND ($2 = '' OR to_date(date, 'YYYY-MM-DD') >= to_date($2, 'YYYY-MM-DD'))
		  AND ($3 = '' OR to_date(date, 'YYYY-MM-DD') <= to_date($3, 'YYYY-MM-DD'))
		GROUP BY date, level
		ORDER BY date, level`,
		filter.StudentID, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("aggregate chart: %w", err)
	}
	defer rows.Close()

	totals := make([]domain.DateLevelTotal, 0)
	for rows.Next() {
		var t domain.DateLevelTotal
		if err := rows.Scan(&t.Date, &t.Level, &t.Total); err != nil {
			return nil, fmt.Errorf("scan chart row: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
