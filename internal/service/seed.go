package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/studytrack/studytrack-api/internal/models"
)

type seedAssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
}

type seedGradeRepository interface {
	Create(ctx context.Context, grade *models.Grade) error
}

type seedNotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// DemoSeeder populates a freshly registered account with starter
// assignments, grades and a welcome notification so the first dashboard
// is not empty.
type DemoSeeder struct {
	assignments   seedAssignmentRepository
	grades        seedGradeRepository
	notifications seedNotificationRepository
	logger        *zap.Logger
}

// NewDemoSeeder constructs a DemoSeeder instance.
func NewDemoSeeder(assignments seedAssignmentRepository, grades seedGradeRepository, notifications seedNotificationRepository, logger *zap.Logger) *DemoSeeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DemoSeeder{assignments: assignments, grades: grades, notifications: notifications, logger: logger}
}

// SeedFor writes the demo records owned by the given user.
func (s *DemoSeeder) SeedFor(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	day := 24 * time.Hour
	author := &models.Author{ID: user.ID, Role: user.Role, Name: "You"}

	assignments := []models.Assignment{
		{
			Title:       "Math Homework - Chapter 5",
			Description: "Complete exercises 1-20 on page 142",
			ClassName:   "Mathematics",
			Subject:     "Math",
			DueDate:     now.Add(2 * day),
			DueTime:     "23:59",
			Type:        models.AssignmentDaily,
			Status:      models.StatusNotStarted,
			StudentID:   user.ID,
			CreatedBy:   author,
		},
		{
			Title:       "Science Lab Report",
			Description: "Write a report on the photosynthesis experiment",
			ClassName:   "Science",
			Subject:     "Science",
			DueDate:     now.Add(5 * day),
			DueTime:     "23:59",
			Type:        models.AssignmentProject,
			Status:      models.StatusInProgress,
			StudentID:   user.ID,
			CreatedBy:   author,
			Milestones: []models.Milestone{
				{ID: "ms1", Title: "Research", DueDate: now.Add(1 * day), Status: models.StatusCompleted},
				{ID: "ms2", Title: "First Draft", DueDate: now.Add(3 * day), Status: models.StatusInProgress},
				{ID: "ms3", Title: "Final Draft", DueDate: now.Add(5 * day), Status: models.StatusNotStarted},
			},
		},
		{
			Title:       "English Essay",
			Description: "Compare and contrast essay on two novels",
			ClassName:   "English",
			Subject:     "English",
			DueDate:     now.Add(-1 * day),
			DueTime:     "23:59",
			Type:        models.AssignmentDaily,
			Status:      models.StatusNotStarted,
			StudentID:   user.ID,
			CreatedBy:   author,
		},
	}
	for i := range assignments {
		if err := s.assignments.Create(ctx, &assignments[i]); err != nil {
			return fmt.Errorf("seed assignment %q: %w", assignments[i].Title, err)
		}
	}

	grades := []models.Grade{
		{AssignmentName: "Quiz 1", ClassName: "Mathematics", Value: 92, DateReceived: now.Add(-7 * day), StudentID: user.ID},
		{AssignmentName: "Test Chapter 4", ClassName: "Mathematics", Value: 85, DateReceived: now.Add(-14 * day), StudentID: user.ID},
		{AssignmentName: "Lab Report 1", ClassName: "Science", Value: 88, DateReceived: now.Add(-10 * day), StudentID: user.ID},
		{AssignmentName: "Essay Draft", ClassName: "English", Value: 78, DateReceived: now.Add(-5 * day), StudentID: user.ID},
	}
	for i := range grades {
		if err := s.grades.Create(ctx, &grades[i]); err != nil {
			return fmt.Errorf("seed grade %q: %w", grades[i].AssignmentName, err)
		}
	}

	welcome := &models.Notification{
		UserID:  user.ID,
		Type:    models.NotificationSystem,
		Title:   "Welcome to StudyTrack!",
		Message: "Your account is ready. Start by adding your assignments and tracking your progress!",
		Urgency: "low",
	}
	if err := s.notifications.Create(ctx, welcome); err != nil {
		return fmt.Errorf("seed welcome notification: %w", err)
	}

	s.logger.Info("seeded demo data", zap.String("user_id", user.ID))
	return nil
}
