package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/studytrack/studytrack-api/internal/dates"
	"github.com/studytrack/studytrack-api/internal/models"
	appErrors "github.com/studytrack/studytrack-api/pkg/errors"
)

// DashboardStats is the landing-page aggregate for one user.
type DashboardStats struct {
	ActiveCount    int              `json:"active_count"`
	OverdueCount   int              `json:"overdue_count"`
	DueSoonCount   int              `json:"due_soon_count"`
	CompletedCount int              `json:"completed_count"`
	AverageGrade   *float64         `json:"average_grade,omitempty"`
	Upcoming       []AssignmentView `json:"upcoming"`
	RecentGrades   []GradeView      `json:"recent_grades"`
}

// DashboardService aggregates assignments and grades for the landing page.
type DashboardService struct {
	assignments assignmentRepository
	grades      gradeRepository
	clock       dates.Clock
	logger      *zap.Logger
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(assignments assignmentRepository, grades gradeRepository, clock dates.Clock, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = dates.System
	}
	return &DashboardService{assignments: assignments, grades: grades, clock: clock, logger: logger}
}

const upcomingLimit = 5
const recentGradesLimit = 5

// Stats builds the dashboard for one user.
func (s *DashboardService) Stats(ctx context.Context, studentID string) (*DashboardStats, error) {
	assignments, err := s.assignments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	grades, err := s.grades.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}

	now := s.clock.Now()
	stats := &DashboardStats{Upcoming: []AssignmentView{}, RecentGrades: []GradeView{}}

	for _, a := range assignments {
		if a.Completed() {
			stats.CompletedCount++
			continue
		}
		stats.ActiveCount++
		if dates.IsOverdue(now, a.DueDate) {
			stats.OverdueCount++
		} else if dates.IsDueSoon(now, a.DueDate) {
			stats.DueSoonCount++
		}
		if !dates.IsOverdue(now, a.DueDate) && len(stats.Upcoming) < upcomingLimit {
			stats.Upcoming = append(stats.Upcoming, AssignmentView{
				Assignment: a,
				Urgency:    dates.UrgencyFor(now, a.DueDate),
				DueLabel:   dates.FormatDueDateWithTime(now, a.DueDate, a.DueTime),
			})
		}
	}

	if len(grades) > 0 {
		var total float64
		for _, g := range grades {
			total += g.Value
		}
		avg := round1(total / float64(len(grades)))
		stats.AverageGrade = &avg

		sorted := make([]models.Grade, len(grades))
		copy(sorted, grades)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].DateReceived.After(sorted[j].DateReceived)
		})
		for i, g := range sorted {
			if i == recentGradesLimit {
				break
			}
			stats.RecentGrades = append(stats.RecentGrades, newGradeView(g))
		}
	}

	return stats, nil
}
