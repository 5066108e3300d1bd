package app

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"quiz-rewards-service/internal/domain"
)

// LeaderboardService computes read-only views over all progress records:
// the global ranking, per-student summaries, the spreadsheet report, and
// date-bucketed chart series. It never mutates progress data.
type LeaderboardService struct {
	progress ProgressRepository
	students StudentRepository
}

func NewLeaderboardService(progress ProgressRepository, students StudentRepository) *LeaderboardService {
	return &LeaderboardService{progress: progress, students: students}
}

// ranked returns the full descending-by-total ranking. Ties break on
// ascending student ID so the order is stable across calls.
func (s *LeaderboardService) ranked(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	totals, err := s.progress.TotalsByStudent(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate totals: %w", err)
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total != totals[j].Total {
			return totals[i].Total > totals[j].Total
		}
		return totals[i].StudentID < totals[j].StudentID
	})

	entries := make([]domain.LeaderboardEntry, len(totals))
	for i, t := range totals {
		name := t.Name
		if name == "" {
			name = t.Email
		}
		entries[i] = domain.LeaderboardEntry{
			StudentID: t.StudentID,
			Name:      name,
			Email:     t.Email,
			Score:     t.Total,
			Rank:      i + 1,
		}
	}
	return entries, nil
}

// Rank returns the paginated leaderboard. Top3 always holds the first three
// entries regardless of the requested page; page and perPage default to 1
// and 10 and are floored to 1.
func (s *LeaderboardService) Rank(ctx context.Context, page, perPage int) (domain.LeaderboardPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	entries, err := s.ranked(ctx)
	if err != nil {
		return domain.LeaderboardPage{}, err
	}

	top3 := entries
	if len(top3) > 3 {
		top3 = top3[:3]
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(entries) {
		start = len(entries)
	}
	if end > len(entries) {
		end = len(entries)
	}

	return domain.LeaderboardPage{
		Top3:       top3,
		TotalCount: len(entries),
		Page:       page,
		PerPage:    perPage,
		PageList:   entries[start:end],
	}, nil
}

// Summarize reports one student's per-level totals, overall total, and
// global rank. Rank is nil when the student has no progress records.
func (s *LeaderboardService) Summarize(ctx context.Context, studentID string) (domain.StudentSummary, error) {
	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return domain.StudentSummary{}, err
	}

	levelTotals, err := s.progress.TotalsByStudentLevel(ctx, studentID)
	if err != nil {
		return domain.StudentSummary{}, fmt.Errorf("aggregate levels: %w", err)
	}

	var levels domain.LevelTotals
	for _, lt := range levelTotals {
		switch domain.BucketLevel(lt.Level) {
		case domain.LevelBeginner:
			levels.Beginner += lt.Total
		case domain.LevelIntermediate:
			levels.Intermediate += lt.Total
		case domain.LevelAdvanced:
			levels.Advanced += lt.Total
		}
	}

	entries, err := s.ranked(ctx)
	if err != nil {
		return domain.StudentSummary{}, err
	}
	var rank *int
	for _, e := range entries {
		if e.StudentID == studentID {
			r := e.Rank
			rank = &r
			break
		}
	}

	return domain.StudentSummary{
		Student: domain.StudentRef{ID: student.ID, Name: student.Name, Email: student.Email},
		Levels:  levels,
		Overall: levels.Beginner + levels.Intermediate + levels.Advanced,
		Rank:    rank,
	}, nil
}

type reportLine struct {
	beginner     int
	intermediate int
	advanced     int
}

type reportStudent struct {
	name  string
	email string
	dates map[string]*reportLine
	order []string

	beginnerTotal     int
	beginnerDays      int
	intermediateTotal int
	intermediateDays  int
	advancedTotal     int
	advancedDays      int
}

// Report builds the xlsx export: one row per (student, date) with per-level
// and total columns, then a summary block with per-level averages per
// student (level total divided by the number of dates that level was
// played; zero plays divide by 1) and the mean of the three as overall.
func (s *LeaderboardService) Report(ctx context.Context) ([]byte, error) {
	rows, err := s.progress.TotalsByStudentDateLevel(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate report: %w", err)
	}

	byStudent := make(map[string]*reportStudent)
	studentOrder := make([]string, 0)

	for _, r := range rows {
		st, ok := byStudent[r.StudentID]
		if !ok {
			st = &reportStudent{name: r.Name, email: r.Email, dates: make(map[string]*reportLine)}
			byStudent[r.StudentID] = st
			studentOrder = append(studentOrder, r.StudentID)
		}
		line, ok := st.dates[r.Date]
		if !ok {
			line = &reportLine{}
			st.dates[r.Date] = line
			st.order = append(st.order, r.Date)
		}
		switch domain.BucketLevel(r.Level) {
		case domain.LevelBeginner:
			line.beginner += r.Total
			st.beginnerTotal += r.Total
			st.beginnerDays++
		case domain.LevelIntermediate:
			line.intermediate += r.Total
			st.intermediateTotal += r.Total
			st.intermediateDays++
		case domain.LevelAdvanced:
			line.advanced += r.Total
			st.advancedTotal += r.Total
			st.advancedDays++
		}
	}

	wb := excelize.NewFile()
	const sheet = "Leaderboard"
	wb.SetSheetName(wb.GetSheetName(0), sheet)

	widths := []float64{25, 30, 15, 15, 15, 15, 15}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = wb.SetColWidth(sheet, col, col, w)
	}

	rowNum := 1
	writeRow := func(values ...interface{}) {
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		_ = wb.SetSheetRow(sheet, cell, &values)
		rowNum++
	}

	writeRow("Name", "Email", "Date", "Beginner", "Intermediate", "Advanced", "Total")
	for _, sid := range studentOrder {
		st := byStudent[sid]
		for _, d := range st.order {
			line := st.dates[d]
			writeRow(st.name, st.email, d,
				line.beginner, line.intermediate, line.advanced,
				line.beginner+line.intermediate+line.advanced)
		}
	}

	writeRow()
	writeRow("STUDENT AVERAGE SUMMARY")
	writeRow("Name", "", "", "Avg Beginner", "Avg Intermediate", "Avg Advanced", "Overall Avg")
	for _, sid := range studentOrder {
		st := byStudent[sid]
		ab := float64(st.beginnerTotal) / float64(max(st.beginnerDays, 1))
		ai := float64(st.intermediateTotal) / float64(max(st.intermediateDays, 1))
		aa := float64(st.advancedTotal) / float64(max(st.advancedDays, 1))
		overall := (ab + ai + aa) / 3
		writeRow(st.name, "", "",
			fmt.Sprintf("%.2f", ab), fmt.Sprintf("%.2f", ai),
			fmt.Sprintf("%.2f", aa), fmt.Sprintf("%.2f", overall))
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ChartSeries groups rewards by (date, level), optionally filtered to one
// student and an inclusive date range, and normalizes each date's sum to a
// percentage of the per-level cap.
func (s *LeaderboardService) ChartSeries(ctx context.Context, filter ChartFilter) (domain.ChartSeries, error) {
	if filter.From != "" {
		if _, err := time.Parse("2006-01-02", filter.From); err != nil {
			return domain.ChartSeries{}, domain.InvalidField("from", "expected YYYY-MM-DD")
		}
	}
	if filter.To != "" {
		if _, err := time.Parse("2006-01-02", filter.To); err != nil {
			return domain.ChartSeries{}, domain.InvalidField("to", "expected YYYY-MM-DD")
		}
	}

	rows, err := s.progress.TotalsByDateLevel(ctx, filter)
	if err != nil {
		return domain.ChartSeries{}, fmt.Errorf("aggregate chart: %w", err)
	}

	perDate := make(map[string]*reportLine)
	dates := make([]string, 0)
	var totals domain.LevelTotals

	for _, r := range rows {
		line, ok := perDate[r.Date]
		if !ok {
			line = &reportLine{}
			perDate[r.Date] = line
			dates = append(dates, r.Date)
		}
		switch domain.BucketLevel(r.Level) {
		case domain.LevelBeginner:
			line.beginner += r.Total
			totals.Beginner += r.Total
		case domain.LevelIntermediate:
			line.intermediate += r.Total
			totals.Intermediate += r.Total
		case domain.LevelAdvanced:
			line.advanced += r.Total
			totals.Advanced += r.Total
		}
	}
	sort.Strings(dates)

	series := domain.ChartSeries{
		Dates:        dates,
		Beginner:     make([]int, len(dates)),
		Intermediate: make([]int, len(dates)),
		Advanced:     make([]int, len(dates)),
		Totals:       totals,
	}
	for i, d := range dates {
		line := perDate[d]
		series.Beginner[i] = normalize(line.beginner, domain.BeginnerChartCap)
		series.Intermediate[i] = normalize(line.intermediate, domain.IntermediateChartCap)
		series.Advanced[i] = normalize(line.advanced, domain.AdvancedChartCap)
	}
	return series, nil
}

func normalize(sum, capacity int) int {
	if capacity == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(capacity) * 100))
}
