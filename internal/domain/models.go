package domain

import "time"

// QuizQuestion is one multiple-choice question published for a (date, level) key.
type QuizQuestion struct {
	ID           string   `json:"id"`
	Date         string   `json:"date"` // calendar day, e.g. 2025-05-20
	Level        string   `json:"level"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	ImageURL     string   `json:"imageUrl,omitempty"`
}

// AnswerAttempt tracks a student's tries against a single question.
// At most one attempt record exists per question per progress record.
type AnswerAttempt struct {
	QuestionID   string `json:"questionId"`
	Attempts     int    `json:"attempts"`
	EarnedReward int    `json:"earnedDiamonds"`
	IsCorrect    bool   `json:"isCorrect"`
}

// ProgressRecord holds a student's answer history for one (date, level) quiz.
// Unique per (StudentID, Date, Level); TotalReward is always recomputed from
// the answer list, never incremented in place.
type ProgressRecord struct {
	ID          string          `json:"id"`
	StudentID   string          `json:"studentId"`
	Date        string          `json:"date"`
	Level       string          `json:"level"`
	Answers     []AnswerAttempt `json:"answers"`
	TotalReward int             `json:"totalDiamonds"`
	Completed   bool            `json:"completed"`
}

// CorrectCount returns how many answers are marked correct.
func (p ProgressRecord) CorrectCount() int {
	n := 0
	for _, a := range p.Answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// SumRewards returns the sum of earned rewards across all answers.
func (p ProgressRecord) SumRewards() int {
	total := 0
	for _, a := range p.Answers {
		total += a.EarnedReward
	}
	return total
}

// Answer returns the attempt for questionID, or nil if none exists yet.
func (p *ProgressRecord) Answer(questionID string) *AnswerAttempt {
	for i := range p.Answers {
		if p.Answers[i].QuestionID == questionID {
			return &p.Answers[i]
		}
	}
	return nil
}

// AnswerOutcome is the result of recording one answer attempt.
type AnswerOutcome struct {
	Success     bool            `json:"success"`
	Blocked     bool            `json:"blocked,omitempty"`
	TotalReward int             `json:"totalDiamonds"`
	Completed   bool            `json:"completed"`
	Answers     []AnswerAttempt `json:"answers"`
}

// Student is a quiz participant.
type Student struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	DOB          string `json:"dob,omitempty"`
	Gender       string `json:"gender,omitempty"`
	ClassName    string `json:"className,omitempty"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// Admin manages quiz content; superadmins additionally manage accounts.
type Admin struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	DOB          string `json:"dob,omitempty"`
	Gender       string `json:"gender,omitempty"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// User is a generic account with a free-form role.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Quote is shown as the quote of the day; unrelated to quiz data.
type Quote struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// LeaderboardEntry is one ranked row of the global leaderboard.
type LeaderboardEntry struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Score     int    `json:"score"`
	Rank      int    `json:"rank"`
}

// LeaderboardPage is a paginated view over the full ranking.
type LeaderboardPage struct {
	Top3       []LeaderboardEntry `json:"top3"`
	TotalCount int                `json:"totalCount"`
	Page       int                `json:"page"`
	PerPage    int                `json:"perPage"`
	PageList   []LeaderboardEntry `json:"pageList"`
}

// LevelTotals buckets reward sums by difficulty.
type LevelTotals struct {
	Beginner     int `json:"beginner"`
	Intermediate int `json:"intermediate"`
	Advanced     int `json:"advanced"`
}

// StudentSummary reports one student's per-level totals and global rank.
// Rank is nil when the student has no progress records.
type StudentSummary struct {
	Student StudentRef  `json:"student"`
	Levels  LevelTotals `json:"levels"`
	Overall int         `json:"overall"`
	Rank    *int        `json:"rank"`
}

// StudentRef is the display subset of a student joined into aggregates.
type StudentRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ChartSeries is a date-bucketed view of rewards, normalized per level cap.
type ChartSeries struct {
	Dates        []string    `json:"dates"`
	Beginner     []int       `json:"beginner"`
	Intermediate []int       `json:"intermediate"`
	Advanced     []int       `json:"advanced"`
	Totals       LevelTotals `json:"totals"`
}

// Aggregation rows returned by the progress repositories.

// StudentTotal is (student, summed reward) for the global ranking, joined
// with the student's display fields.
type StudentTotal struct {
	StudentID string
	Name      string
	Email     string
	Total     int
}

// LevelTotal is (stored level string, summed reward) for one student.
type LevelTotal struct {
	Level string
	Total int
}

// StudentDateLevelTotal feeds the report export, joined with display fields.
type StudentDateLevelTotal struct {
	StudentID string
	Name      string
	Email     string
	Date      string
	Level     string
	Total     int
}

// DateLevelTotal feeds the chart series.
type DateLevelTotal struct {
	Date  string
	Level string
	Total int
}
