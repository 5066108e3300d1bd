package app

import (
	"context"
	"fmt"

	"quiz-rewards-service/internal/domain"
)

// ProgressService implements the answer-scoring flow: it looks up or creates
// the per-(student, date, level) progress record, counts the attempt through
// an atomic storage-level increment, awards diamonds on the first correct
// attempt, and keeps the derived totals consistent.
type ProgressService struct {
	progress ProgressRepository
	catalog  CatalogRepository
	onScored func(ctx context.Context)
}

func NewProgressService(progress ProgressRepository, catalog CatalogRepository) *ProgressService {
	return &ProgressService{progress: progress, catalog: catalog}
}

// OnScored registers a callback invoked after every successfully scored
// answer, used to fan out live leaderboard updates.
func (s *ProgressService) OnScored(fn func(ctx context.Context)) {
	s.onScored = fn
}

// RecordAnswer records one answer attempt and returns the updated snapshot.
//
// The attempt counter is incremented by a conditional update at the storage
// layer, and the record is re-read afterwards before any reward is computed;
// an in-memory copy mutated earlier in the request is never trusted for the
// post-increment count.
func (s *ProgressService) RecordAnswer(ctx context.Context, studentID, date, level, questionID string, correct bool) (domain.AnswerOutcome, error) {
	switch {
	case studentID == "":
		return domain.AnswerOutcome{}, domain.MissingField("studentId")
	case date == "":
		return domain.AnswerOutcome{}, domain.MissingField("date")
	case level == "":
		return domain.AnswerOutcome{}, domain.MissingField("level")
	case questionID == "":
		return domain.AnswerOutcome{}, domain.MissingField("questionId")
	}

	record, err := s.progress.FindOrCreate(ctx, studentID, date, level)
	if err != nil {
		return domain.AnswerOutcome{}, fmt.Errorf("find progress: %w", err)
	}

	if record.Completed {
		return domain.AnswerOutcome{
			Blocked:     true,
			TotalReward: record.TotalReward,
			Completed:   true,
			Answers:     record.Answers,
		}, nil
	}

	if err := s.progress.EnsureAnswer(ctx, studentID, date, level, questionID); err != nil {
		return domain.AnswerOutcome{}, fmt.Errorf("ensure answer: %w", err)
	}
	if err := s.progress.IncrementAttempt(ctx, studentID, date, level, questionID); err != nil {
		return domain.AnswerOutcome{}, fmt.Errorf("increment attempt: %w", err)
	}

	record, err = s.progress.Find(ctx, studentID, date, level)
	if err != nil {
		return domain.AnswerOutcome{}, fmt.Errorf("reload progress: %w", err)
	}
	answer := record.Answer(questionID)
	if answer == nil {
		return domain.AnswerOutcome{}, domain.ErrProgressNotFound
	}

	// First-correct wins: a duplicate correct submission counts the attempt
	// but never recomputes the reward.
	if correct && !answer.IsCorrect {
		reward := domain.Reward(level, answer.Attempts)
		if err := s.progress.SetAnswerCorrect(ctx, studentID, date, level, questionID, reward); err != nil {
			return domain.AnswerOutcome{}, fmt.Errorf("set answer correct: %w", err)
		}
		answer.IsCorrect = true
		answer.EarnedReward = reward
	}

	total := record.SumRewards()
	questionCount, err := s.catalog.CountByDateLevel(ctx, date, level)
	if err != nil {
		return domain.AnswerOutcome{}, fmt.Errorf("count questions: %w", err)
	}
	completed := questionCount == 0 || record.CorrectCount() == questionCount

	if err := s.progress.SaveTotals(ctx, studentID, date, level, total, completed); err != nil {
		return domain.AnswerOutcome{}, fmt.Errorf("save totals: %w", err)
	}

	if s.onScored != nil {
		s.onScored(ctx)
	}

	return domain.AnswerOutcome{
		Success:     true,
		TotalReward: total,
		Completed:   completed,
		Answers:     record.Answers,
	}, nil
}

// QuestionsWithProgress returns the catalog questions for (date, level)
// together with the caller's progress record, creating the record when
// absent. An empty catalog marks the record completed immediately.
func (s *ProgressService) QuestionsWithProgress(ctx context.Context, studentID, date, level string) ([]domain.QuizQuestion, domain.ProgressRecord, error) {
	if studentID == "" {
		return nil, domain.ProgressRecord{}, domain.MissingField("studentId")
	}

	questions, err := s.catalog.ListByDateLevel(ctx, date, level)
	if err != nil {
		return nil, domain.ProgressRecord{}, fmt.Errorf("list questions: %w", err)
	}

	record, err := s.progress.FindOrCreate(ctx, studentID, date, level)
	if err != nil {
		return nil, domain.ProgressRecord{}, fmt.Errorf("find progress: %w", err)
	}

	if len(questions) == 0 && !record.Completed {
		record.Completed = true
		if err := s.progress.SaveTotals(ctx, studentID, date, level, record.TotalReward, true); err != nil {
			return nil, domain.ProgressRecord{}, fmt.Errorf("save totals: %w", err)
		}
	}

	if record.Answers == nil {
		record.Answers = []domain.AnswerAttempt{}
	}
	return questions, record, nil
}

// TotalReward returns the student's grand diamond total across all records.
func (s *ProgressService) TotalReward(ctx context.Context, studentID string) (int, error) {
	if studentID == "" {
		return 0, domain.MissingField("studentId")
	}
	total, err := s.progress.TotalForStudent(ctx, studentID)
	if err != nil {
		return 0, fmt.Errorf("sum rewards: %w", err)
	}
	return total, nil
}
