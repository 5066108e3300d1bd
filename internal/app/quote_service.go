package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quiz-rewards-service/internal/domain"
)

// QuoteService manages the quote-of-the-day pool.
type QuoteService struct {
	quotes QuoteRepository
}

func NewQuoteService(quotes QuoteRepository) *QuoteService {
	return &QuoteService{quotes: quotes}
}

// QuoteOfTheDay returns a random quote; ErrQuoteNotFound when the pool is empty.
func (s *QuoteService) QuoteOfTheDay(ctx context.Context) (domain.Quote, error) {
	return s.quotes.Random(ctx)
}

// List returns all quotes, newest first.
func (s *QuoteService) List(ctx context.Context) ([]domain.Quote, error) {
	return s.quotes.List(ctx)
}

// Create stores a new quote.
func (s *QuoteService) Create(ctx context.Context, text, author string) (domain.Quote, error) {
	if text == "" {
		return domain.Quote{}, domain.MissingField("text")
	}
	return s.quotes.Create(ctx, domain.Quote{
		ID:        uuid.NewString(),
		Text:      text,
		Author:    author,
		CreatedAt: time.Now(),
	})
}

// Update replaces a quote's text and author.
func (s *QuoteService) Update(ctx context.Context, id, text, author string) (domain.Quote, error) {
	if text == "" {
		return domain.Quote{}, domain.MissingField("text")
	}
	return s.quotes.Update(ctx, domain.Quote{ID: id, Text: text, Author: author})
}

// Delete removes a quote.
func (s *QuoteService) Delete(ctx context.Context, id string) error {
	return s.quotes.Delete(ctx, id)
}
