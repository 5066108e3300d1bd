package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"quiz-rewards-service/internal/domain"
)

// QuoteStore is an in-memory implementation of app.QuoteRepository.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes map[string]domain.Quote
}

func NewQuoteStore() *QuoteStore {
	return &QuoteStore{quotes: make(map[string]domain.Quote)}
}

func (s *QuoteStore) Create(_ context.Context, q domain.Quote) (domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[q.ID] = q
	return q, nil
}

func (s *QuoteStore) Update(_ context.Context, q domain.Quote) (domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.quotes[q.ID]
	if !ok {
		return domain.Quote{}, domain.ErrQuoteNotFound
	}
	existing.Text = q.Text
	existing.Author = q.Author
	s.quotes[q.ID] = existing
	return existing, nil
}

func (s *QuoteStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quotes[id]; !ok {
		return domain.ErrQuoteNotFound
	}
	delete(s.quotes, id)
	return nil
}

func (s *QuoteStore) List(_ context.Context) ([]domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *QuoteStore) Random(_ context.Context) (domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.quotes) == 0 {
		return domain.Quote{}, domain.ErrQuoteNotFound
	}
	ids := make([]string, 0, len(s.quotes))
	for id := range s.quotes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return s.quotes[ids[rand.Intn(len(ids))]], nil
}
