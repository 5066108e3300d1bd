package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-rewards-service/internal/domain"
)

// QuoteRepository persists quotes.
type QuoteRepository struct {
	pool *pgxpool.Pool
}

func NewQuoteRepository(pool *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{pool: pool}
}

func (r *QuoteRepository) Create(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO quotes (id, text, author, created_at)
		VALUES ($1, $2, $3, $4)`,
		q.ID, q.Text, q.Author, q.CreatedAt)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("insert quote: %w", err)
	}
	return q, nil
}

func (r *QuoteRepository) Update(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	var updated domain.Quote
	err := r.pool.QueryRow(ctx, `
		UPDATE quotes SET text=$2, author=$3 WHERE id=$1
		RETURNING id, text, author, created_at`,
		q.ID, q.Text, q.Author).
		Scan(&updated.ID, &updated.Text, &updated.Author, &updated.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quote{}, domain.ErrQuoteNotFound
	}
	if err != nil {
		return domain.Quote{}, fmt.Errorf("update quote: %w", err)
	}
	return updated, nil
}

func (r *QuoteRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quotes WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuoteNotFound
	}
	return nil
}

func (r *QuoteRepository) List(ctx context.Context) ([]domain.Quote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, text, author, created_at FROM quotes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]domain.Quote, 0)
	for rows.Next() {
		var q domain.Quote
		if err := rows.Scan(&q.ID, &q.Text, &q.Author, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func (r *QuoteRepository) Random(ctx context.Context) (domain.Quote, error) {
	var q domain.Quote
	err := r.pool.QueryRow(ctx, `
		SELECT id, text, author, created_at FROM quotes ORDER BY random() LIMIT 1`).
		Scan(&q.ID, &q.Text, &q.Author, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quote{}, domain.ErrQuoteNotFound
	}
	if err != nil {
		return domain.Quote{}, fmt.Errorf("random quote: %w", err)
	}
	return q, nil
}
