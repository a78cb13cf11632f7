package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studytrack/studytrack-api/internal/dates"
	"github.com/studytrack/studytrack-api/internal/models"
	"github.com/studytrack/studytrack-api/pkg/jobs"
)

type reminderUserRepository interface {
	List(ctx context.Context) ([]models.User, error)
}

type reminderAssignmentRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Assignment, error)
}

type reminderNotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ExistsReminderForAssignment(ctx context.Context, userID, assignmentID string) (bool, error)
}

// ReminderConfig controls the due-date scan.
type ReminderConfig struct {
	Interval   time.Duration
	WindowDays int
}

// ReminderService periodically scans for upcoming or overdue work and
// raises reminder notifications. Each assignment is reminded at most
// once per user.
type ReminderService struct {
	users         reminderUserRepository
	assignments   reminderAssignmentRepository
	notifications reminderNotificationRepository
	clock         dates.Clock
	logger        *zap.Logger
	metrics       *MetricsService
	config        ReminderConfig

	queue  *jobs.Queue
	cancel context.CancelFunc
}

// NewReminderService constructs a ReminderService instance.
func NewReminderService(users reminderUserRepository, assignments reminderAssignmentRepository, notifications reminderNotificationRepository, clock dates.Clock, logger *zap.Logger, config ReminderConfig) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = dates.System
	}
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	if config.WindowDays <= 0 {
		config.WindowDays = 1
	}
	s := &ReminderService{
		users:         users,
		assignments:   assignments,
		notifications: notifications,
		clock:         clock,
		logger:        logger,
		config:        config,
	}
	s.queue = jobs.NewQueue("reminders", s.handleScan, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: time.Minute,
		Logger:     logger,
	})
	return s
}

// SetMetrics wires the reminder counter. A nil service is accepted.
func (s *ReminderService) SetMetrics(metrics *MetricsService) {
	s.metrics = metrics
}

// Start launches the scan loop. An immediate scan runs first so a fresh
// process does not wait a full interval.
func (s *ReminderService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.queue.Start(ctx)
	s.enqueueScan()

	go func() {
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.enqueueScan()
			}
		}
	}()
}

// Stop halts the scan loop and waits for in-flight scans.
func (s *ReminderService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.queue.Stop()
}

func (s *ReminderService) enqueueScan() {
	if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: "reminder-scan"}); err != nil {
		s.logger.Warn("failed to enqueue reminder scan", zap.Error(err))
	}
}

func (s *ReminderService) handleScan(ctx context.Context, _ jobs.Job) error {
	created, err := s.Scan(ctx)
	if err != nil {
		return err
	}
	if created > 0 {
		s.metrics.RecordReminders(created)
		s.logger.Info("reminder scan finished", zap.Int("created", created))
	}
	return nil
}

// Scan walks every user with notifications enabled and reminds them of
// incomplete assignments that are overdue or due within the window.
// It returns the number of reminders created.
func (s *ReminderService) Scan(ctx context.Context) (int, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	now := s.clock.Now()
	created := 0
	for _, user := range users {
		if !user.Settings.NotificationsEnabled {
			continue
		}
		assignments, err := s.assignments.ListByStudent(ctx, user.ID)
		if err != nil {
			s.logger.Warn("failed to list assignments for reminder scan", zap.String("user_id", user.ID), zap.Error(err))
			continue
		}
		for i := range assignments {
			a := assignments[i]
			if a.Completed() || a.DueDate.IsZero() {
				continue
			}
			days := dates.DaysUntil(now, a.DueDate)
			if days > s.config.WindowDays {
				continue
			}
			exists, err := s.notifications.ExistsReminderForAssignment(ctx, user.ID, a.ID)
			if err != nil {
				s.logger.Warn("failed to check existing reminder", zap.String("assignment_id", a.ID), zap.Error(err))
				continue
			}
			if exists {
				continue
			}

			urgency := dates.UrgencyFor(now, a.DueDate)
			message := fmt.Sprintf("%q is due %s.", a.Title, dates.FormatDueDateWithTime(now, a.DueDate, a.DueTime))
			if urgency == dates.UrgencyOverdue {
				message = fmt.Sprintf("%q was due %s.", a.Title, a.DueDate.Format("Jan 2"))
			}
			n := &models.Notification{
				UserID:       user.ID,
				Type:         models.NotificationReminder,
				Title:        "Assignment reminder",
				Message:      message,
				AssignmentID: &a.ID,
				Urgency:      string(urgency),
			}
			if err := s.notifications.Create(ctx, n); err != nil {
				s.logger.Warn("failed to create reminder", zap.String("assignment_id", a.ID), zap.Error(err))
				continue
			}
			created++
		}
	}
	return created, nil
}
