package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-rewards-service/internal/app"
	"quiz-rewards-service/internal/domain"
)

// ProgressStore is an in-memory implementation of app.ProgressRepository.
// A single mutex serializes all mutations, which gives the same
// lost-update protection the conditional SQL updates provide in Postgres.
type ProgressStore struct {
	students *StudentStore

	mu      sync.RWMutex
	records map[progressKey]*domain.ProgressRecord
}

type progressKey struct {
	studentID string
	date      string
	level     string
}

// NewProgressStore builds a store; students backs the display-field joins
// in the aggregation queries.
func NewProgressStore(students *StudentStore) *ProgressStore {
	return &ProgressStore{
		students: students,
		records:  make(map[progressKey]*domain.ProgressRecord),
	}
}

func (s *ProgressStore) FindOrCreate(_ context.Context, studentID, date, level string) (domain.ProgressRecord, error) {
	key := progressKey{studentID, date, level}

	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[key]
	if !ok {
		record = &domain.ProgressRecord{
			ID:        uuid.NewString(),
			StudentID: studentID,
			Date:      date,
			Level:     level,
			Answers:   []domain.AnswerAttempt{},
		}
		s.records[key] = record
	}
	return cloneRecord(record), nil
}

func (s *ProgressStore) Find(_ context.Context, studentID, date, level string) (domain.ProgressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[progressKey{studentID, date, level}]
	if !ok {
		return domain.ProgressRecord{}, domain.ErrProgressNotFound
	}
	return cloneRecord(record), nil
}

func (s *ProgressStore) EnsureAnswer(_ context.Context, studentID, date, level, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[progressKey{studentID, date, level}]
	if !ok {
		return domain.ErrProgressNotFound
	}
	if record.Answer(questionID) == nil {
		record.Answers = append(record.Answers, domain.AnswerAttempt{QuestionID: questionID})
	}
	return nil
}

func (s *ProgressStore) IncrementAttempt(_ context.Context, studentID, date, level, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[progressKey{studentID, date, level}]
	if !ok {
		return domain.ErrProgressNotFound
	}
	answer := record.Answer(questionID)
	if answer == nil {
		return domain.ErrProgressNotFound
	}
	answer.Attempts++
	return nil
}

func (s *ProgressStore) SetAnswerCorrect(_ context.Context, studentID, date, level, questionID string, reward int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[progressKey{studentID, date, level}]
	if !ok {
		return domain.ErrProgressNotFound
	}
	answer := record.Answer(questionID)
	if answer == nil {
		return domain.ErrProgressNotFound
	}
	if answer.IsCorrect {
		return nil
	}
	answer.IsCorrect = true
	answer.EarnedReward = reward
	return nil
}

func (s *ProgressStore) SaveTotals(_ context.Context, studentID, date, level string, totalReward int, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[progressKey{studentID, date, level}]
	if !ok {
		return domain.ErrProgressNotFound
	}
	record.TotalReward = totalReward
	record.Completed = completed
	return nil
}

func (s *ProgressStore) TotalForStudent(_ context.Context, studentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for key, record := range s.records {
		if key.studentID == studentID {
			total += record.TotalReward
		}
	}
	return total, nil
}

func (s *ProgressStore) TotalsByStudent(ctx context.Context) ([]domain.StudentTotal, error) {
	s.mu.RLock()
	sums := make(map[string]int)
	for key, record := range s.records {
		sums[key.studentID] += record.TotalReward
	}
	s.mu.RUnlock()

	totals := make([]domain.StudentTotal, 0, len(sums))
	for studentID, total := range sums {
		student, err := s.students.Get(ctx, studentID)
		if err != nil {
			continue // mirror the SQL inner join: orphan records drop out
		}
		totals = append(totals, domain.StudentTotal{
			StudentID: studentID,
			Name:      student.Name,
			Email:     student.Email,
			Total:     total,
		})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].StudentID < totals[j].StudentID })
	return totals, nil
}

func (s *ProgressStore) TotalsByStudentLevel(_ context.Context, studentID string) ([]domain.LevelTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sums := make(map[string]int)
	for key, record := range s.records {
		if key.studentID == studentID {
			sums[key.level] += record.TotalReward
		}
	}
	totals := make([]domain.LevelTotal, 0, len(sums))
	for level, total := range sums {
		totals = append(totals, domain.LevelTotal{Level: level, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Level < totals[j].Level })
	return totals, nil
}

func (s *ProgressStore) TotalsByStudentDateLevel(ctx context.Context) ([]domain.StudentDateLevelTotal, error) {
	s.mu.RLock()
	keys := make([]progressKey, 0, len(s.records))
	sums := make(map[progressKey]int, len(s.records))
	for key, record := range s.records {
		keys = append(keys, key)
		sums[key] += record.TotalReward
	}
	s.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].studentID != keys[j].studentID {
			return keys[i].studentID < keys[j].studentID
		}
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].level < keys[j].level
	})

	rows := make([]domain.StudentDateLevelTotal, 0, len(keys))
	for _, key := range keys {
		student, err := s.students.Get(ctx, key.studentID)
		if err != nil {
			continue
		}
		rows = append(rows, domain.StudentDateLevelTotal{
			StudentID: key.studentID,
			Name:      student.Name,
			Email:     student.Email,
			Date:      key.date,
			Level:     key.level,
			Total:     sums[key],
		})
	}
	return rows, nil
}

func (s *ProgressStore) TotalsByDateLevel(_ context.Context, filter app.ChartFilter) ([]domain.DateLevelTotal, error) {
	var from, to time.Time
	var err error
	if filter.From != "" {
		if from, err = time.Parse("2006-01-02", filter.From); err != nil {
			return nil, err
		}
	}
	if filter.To != "" {
		if to, err = time.Parse("2006-01-02", filter.To); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	type dateLevel struct{ date, level string }
	sums := make(map[dateLevel]int)
	for key, record := range s.records {
		if filter.StudentID != "" && key.studentID != filter.StudentID {
			continue
		}
		if filter.From != "" || filter.To != "" {
			day, err := time.Parse("2006-01-02", key.date)
			if err != nil {
				continue
			}
			if filter.From != "" && day.Before(from) {
				continue
			}
			if filter.To != "" && day.After(to) {
				continue
			}
		}
		sums[dateLevel{key.date, key.level}] += record.TotalReward
	}
	s.mu.RUnlock()

	rows := make([]domain.DateLevelTotal, 0, len(sums))
	for key, total := range sums {
		rows = append(rows, domain.DateLevelTotal{Date: key.date, Level: key.level, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].Level < rows[j].Level
	})
	return rows, nil
}

func cloneRecord(record *domain.ProgressRecord) domain.ProgressRecord {
	clone := *record
	clone.Answers = make([]domain.AnswerAttempt, len(record.Answers))
	copy(clone.Answers, record.Answers)
	return clone
}
