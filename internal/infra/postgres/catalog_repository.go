package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-rewards-service/internal/domain"
)

// CatalogRepository persists quiz questions; options are stored as JSONB.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) Create(ctx context.Context, q domain.QuizQuestion) (domain.QuizQuestion, error) {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return domain.QuizQuestion{}, fmt.Errorf("marshal options: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO quiz_questions (id, date, level, question, options, correct_index, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		q.ID, q.Date, q.Level, q.Question, options, q.CorrectIndex, q.ImageURL)
	if err != nil {
		return domain.QuizQuestion{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

func (r *CatalogRepository) Get(ctx context.Context, id string) (domain.QuizQuestion, error) {
	var q domain.QuizQuestion
	var options []byte
	err := r.pool.QueryRow(ctx, `
		SELECT id, date, level, question, options, correct_index, image_url
		FROM quiz_questions WHERE id=$1`, id).
		Scan(&q.ID, &q.Date, &q.Level, &q.Question, &options, &q.CorrectIndex, &q.ImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizQuestion{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.QuizQuestion{}, fmt.Errorf("select question: %w", err)
	}
	if err := json.Unmarshal(options, &q.Options); err != nil {
		return domain.QuizQuestion{}, fmt.Errorf("unmarshal options: %w", err)
	}
	return q, nil
}

func (r *CatalogRepository) Update(ctx context.Context, q domain.QuizQuestion) (domain.QuizQuestion, error) {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return domain.QuizQuestion{}, fmt.Errorf("marshal options: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE quiz_questions
		SET question=$2, options=$3, correct_index=$4, image_url=$5
		WHERE id=$1`,
		q.ID, q.Question, options, q.CorrectIndex, q.ImageURL)
	if err != nil {
		return domain.QuizQuestion{}, fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.QuizQuestion{}, domain.ErrQuestionNotFound
	}
	return r.Get(ctx, q.ID)
}

func (r *CatalogRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quiz_questions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (r *CatalogRepository) ListByDateLevel(ctx context.Context, date, level string) ([]domain.QuizQuestion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, date, level, question, options, correct_index, image_url
		FROM quiz_questions
		WHERE date=$1 AND level=$2
		ORDER BY created_at`, date, level)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	questions := make([]domain.QuizQuestion, 0)
	for rows.Next() {
		var q domain.QuizQuestion
		var options []byte
		if err := rows.Scan(&q.ID, &q.Date, &q.Level, &q.Question, &options, &q.CorrectIndex, &q.ImageURL); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *CatalogRepository) CountByDateLevel(ctx context.Context, date, level string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM quiz_questions WHERE date=$1 AND level=$2`,
		date, level).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}
