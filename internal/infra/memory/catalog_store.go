package memory

import (
	"context"
	"sync"

	"quiz-rewards-service/internal/domain"
)

// CatalogStore is an in-memory implementation of app.CatalogRepository.
type CatalogStore struct {
	mu        sync.RWMutex
	questions map[string]domain.QuizQuestion
	order     []string
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{questions: make(map[string]domain.QuizQuestion)}
}

func (s *CatalogStore) Create(_ context.Context, q domain.QuizQuestion) (domain.QuizQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.ID] = q
	s.order = append(s.order, q.ID)
	return q, nil
}

func (s *CatalogStore) Get(_ context.Context, id string) (domain.QuizQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.QuizQuestion{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (s *CatalogStore) Update(_ context.Context, q domain.QuizQuestion) (domain.QuizQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.ID]; !ok {
		return domain.QuizQuestion{}, domain.ErrQuestionNotFound
	}
	s.questions[q.ID] = q
	return q, nil
}

func (s *CatalogStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, id)
	for i, qid := range s.order {
		if qid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *CatalogStore) ListByDateLevel(_ context.Context, date, level string) ([]domain.QuizQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizQuestion, 0)
	for _, id := range s.order {
		q := s.questions[id]
		if q.Date == date && q.Level == level {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *CatalogStore) CountByDateLevel(ctx context.Context, date, level string) (int, error) {
	questions, err := s.ListByDateLevel(ctx, date, level)
	if err != nil {
		return 0, err
	}
	return len(questions), nil
}
