package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"quiz-rewards-service/internal/domain"
)

// CatalogService manages quiz questions. All mutations are superadmin-only;
// that gate lives in the transport layer.
type CatalogService struct {
	catalog CatalogRepository
}

func NewCatalogService(catalog CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func validateQuestion(q domain.QuizQuestion) error {
	switch {
	case q.Date == "":
		return domain.MissingField("date")
	case q.Question == "":
		return domain.MissingField("question")
	case len(q.Options) != 4:
		return domain.InvalidField("options", "exactly 4 options required")
	case q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options):
		return domain.InvalidField("correctIndex", "out of range")
	}
	if _, err := domain.ParseLevel(q.Level); err != nil {
		return domain.InvalidField("level", "expected beginner, intermediate, or advanced")
	}
	return nil
}

// Create validates and stores a new question.
func (s *CatalogService) Create(ctx context.Context, q domain.QuizQuestion) (domain.QuizQuestion, error) {
	if err := validateQuestion(q); err != nil {
		return domain.QuizQuestion{}, err
	}
	q.ID = uuid.NewString()
	created, err := s.catalog.Create(ctx, q)
	if err != nil {
		return domain.QuizQuestion{}, fmt.Errorf("create question: %w", err)
	}
	return created, nil
}

// Get returns one question by ID.
func (s *CatalogService) Get(ctx context.Context, id string) (domain.QuizQuestion, error) {
	return s.catalog.Get(ctx, id)
}

// Update replaces the question text, options, answer index, and image.
func (s *CatalogService) Update(ctx context.Context, q domain.QuizQuestion) (domain.QuizQuestion, error) {
	existing, err := s.catalog.Get(ctx, q.ID)
	if err != nil {
		return domain.QuizQuestion{}, err
	}
	// Date and level stay fixed once published; only the content changes.
	q.Date = existing.Date
	q.Level = existing.Level
	if err := validateQuestion(q); err != nil {
		return domain.QuizQuestion{}, err
	}
	updated, err := s.catalog.Update(ctx, q)
	if err != nil {
		return domain.QuizQuestion{}, fmt.Errorf("update question: %w", err)
	}
	return updated, nil
}

// Delete removes a question.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	return s.catalog.Delete(ctx, id)
}

// ListByDateLevel returns all questions for the (date, level) key.
func (s *CatalogService) ListByDateLevel(ctx context.Context, date, level string) ([]domain.QuizQuestion, error) {
	questions, err := s.catalog.ListByDateLevel(ctx, date, level)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}
