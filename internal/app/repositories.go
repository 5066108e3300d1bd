package app

import (
	"context"

	"quiz-rewards-service/internal/domain"
)

// ChartFilter narrows chart aggregation to one student and/or an inclusive
// calendar-date range. Empty fields mean "no filter".
type ChartFilter struct {
	From      string
	To        string
	StudentID string
}

// ProgressRepository persists progress records and answer attempts.
//
// IncrementAttempt and SetAnswerCorrect must be single conditional updates
// at the storage layer: two concurrent submissions for the same question
// must never both observe the same pre-increment counter.
type ProgressRepository interface {
	FindOrCreate(ctx context.Context, studentID, date, level string) (domain.ProgressRecord, error)
	Find(ctx context.Context, studentID, date, level string) (domain.ProgressRecord, error)
	EnsureAnswer(ctx context.Context, studentID, date, level, questionID string) error
	IncrementAttempt(ctx context.Context, studentID, date, level, questionID string) error
	SetAnswerCorrect(ctx context.Context, studentID, date, level, questionID string, reward int) error
	SaveTotals(ctx context.Context, studentID, date, level string, totalReward int, completed bool) error

	TotalForStudent(ctx context.Context, studentID string) (int, error)
	TotalsByStudent(ctx context.Context) ([]domain.StudentTotal, error)
	TotalsByStudentLevel(ctx context.Context, studentID string) ([]domain.LevelTotal, error)
	TotalsByStudentDateLevel(ctx context.Context) ([]domain.StudentDateLevelTotal, error)
	TotalsByDateLevel(ctx context.Context, filter ChartFilter) ([]domain.DateLevelTotal, error)
}

// CatalogRepository persists quiz questions keyed by (date, level).
type CatalogRepository interface {
	Create(ctx context.Context, q domain.QuizQuestion) (domain.QuizQuestion, error)
	Get(ctx context.Context, id string) (domain.QuizQuestion, error)
	Update(ctx context.Context, q domain.QuizQuestion) (domain.QuizQuestion, error)
	Delete(ctx context.Context, id string) error
	ListByDateLevel(ctx context.Context, date, level string) ([]domain.QuizQuestion, error)
	CountByDateLevel(ctx context.Context, date, level string) (int, error)
}

// StudentRepository persists student accounts.
type StudentRepository interface {
	Create(ctx context.Context, s domain.Student) (domain.Student, error)
	Get(ctx context.Context, id string) (domain.Student, error)
	GetByEmail(ctx context.Context, email string) (domain.Student, error)
	List(ctx context.Context) ([]domain.Student, error)
	Update(ctx context.Context, s domain.Student) (domain.Student, error)
	Delete(ctx context.Context, id string) error
}

// AdminRepository persists admin accounts.
type AdminRepository interface {
	Create(ctx context.Context, a domain.Admin) (domain.Admin, error)
	Get(ctx context.Context, id string) (domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (domain.Admin, error)
	List(ctx context.Context) ([]domain.Admin, error)
	Update(ctx context.Context, a domain.Admin) (domain.Admin, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository persists generic accounts.
type UserRepository interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
	Get(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context, role string) ([]domain.User, error)
	Update(ctx context.Context, u domain.User) (domain.User, error)
	Delete(ctx context.Context, id string) error
}

// QuoteRepository persists quotes for the quote-of-the-day feature.
type QuoteRepository interface {
	Create(ctx context.Context, q domain.Quote) (domain.Quote, error)
	Update(ctx context.Context, q domain.Quote) (domain.Quote, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Quote, error)
	Random(ctx context.Context) (domain.Quote, error)
}
