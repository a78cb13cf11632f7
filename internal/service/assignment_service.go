package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studytrack/studytrack-api/internal/dates"
	"github.com/studytrack/studytrack-api/internal/models"
	appErrors "github.com/studytrack/studytrack-api/pkg/errors"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Assignment, error)
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

type assignmentNotifier interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// AssignmentView decorates an assignment with display fields.
type AssignmentView struct {
	models.Assignment
	Urgency  dates.Urgency `json:"urgency"`
	DueLabel string        `json:"due_label"`
}

// GroupedAssignments carries the five due-date buckets as views.
type GroupedAssignments struct {
	Overdue  []AssignmentView `json:"overdue"`
	Today    []AssignmentView `json:"today"`
	Tomorrow []AssignmentView `json:"tomorrow"`
	ThisWeek []AssignmentView `json:"this_week"`
	Later    []AssignmentView `json:"later"`
}

// AssignmentService provides schoolwork-tracking use cases.
type AssignmentService struct {
	repo      assignmentRepository
	notifier  assignmentNotifier
	clock     dates.Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(repo assignmentRepository, notifier assignmentNotifier, clock dates.Clock, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = dates.System
	}
	return &AssignmentService{repo: repo, notifier: notifier, clock: clock, validator: validate, logger: logger}
}

// List returns the user's assignments, optionally filtered by status and
// type, sorted by due date ascending.
func (s *AssignmentService) List(ctx context.Context, studentID string, filter models.AssignmentFilter) ([]AssignmentView, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid filter")
	}

	assignments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}

	now := s.clock.Now()
	views := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		views = append(views, s.view(now, a))
	}
	return views, nil
}

// Get returns a single assignment owned by the user.
func (s *AssignmentService) Get(ctx context.Context, studentID, id string) (*AssignmentView, error) {
	assignment, err := s.loadOwned(ctx, studentID, id)
	if err != nil {
		return nil, err
	}
	v := s.view(s.clock.Now(), *assignment)
	return &v, nil
}

// Create records a new assignment for the user and raises a notification
// about it. Notification failure does not fail the create.
func (s *AssignmentService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateAssignmentRequest) (*AssignmentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	dueTime := req.DueTime
	if dueTime == "" {
		dueTime = "23:59"
	}
	assignment := &models.Assignment{
		Title:       req.Title,
		Description: req.Description,
		ClassID:     req.ClassID,
		ClassName:   req.ClassName,
		Subject:     req.Subject,
		DueDate:     req.DueDate,
		DueTime:     dueTime,
		Type:        req.Type,
		Status:      models.StatusNotStarted,
		StudentID:   claims.UserID,
		CreatedBy:   &models.Author{ID: claims.UserID, Role: claims.Role, Name: claims.FullName},
		Milestones:  req.Milestones,
		Recurrence:  req.Recurrence,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to create assignment")
	}

	now := s.clock.Now()
	s.notify(ctx, &models.Notification{
		UserID:       claims.UserID,
		Type:         models.NotificationAssignment,
		Title:        "New assignment added",
		Message:      fmt.Sprintf("%q is due %s", assignment.Title, dates.FormatDueDate(now, assignment.DueDate)),
		AssignmentID: &assignment.ID,
		Urgency:      string(dates.UrgencyFor(now, assignment.DueDate)),
	})

	v := s.view(now, *assignment)
	return &v, nil
}

// Update applies partial edits to an assignment owned by the user.
func (s *AssignmentService) Update(ctx context.Context, studentID, id string, req models.UpdateAssignmentRequest) (*AssignmentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	assignment, err := s.loadOwned(ctx, studentID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Description != nil {
		assignment.Description = *req.Description
	}
	if req.ClassName != nil {
		assignment.ClassName = *req.ClassName
	}
	if req.Subject != nil {
		assignment.Subject = *req.Subject
	}
	if req.DueDate != nil {
		assignment.DueDate = *req.DueDate
	}
	if req.DueTime != nil {
		assignment.DueTime = *req.DueTime
	}
	if req.Type != nil {
		assignment.Type = *req.Type
	}
	if req.Milestones != nil {
		assignment.Milestones = req.Milestones
	}
	if req.Recurrence != nil {
		assignment.Recurrence = req.Recurrence
	}

	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to update assignment")
	}

	v := s.view(s.clock.Now(), *assignment)
	return &v, nil
}

// UpdateStatus changes the progress of an assignment. Completing one
// raises a notification.
func (s *AssignmentService) UpdateStatus(ctx context.Context, studentID, id string, req models.UpdateStatusRequest) (*AssignmentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	assignment, err := s.loadOwned(ctx, studentID, id)
	if err != nil {
		return nil, err
	}

	wasCompleted := assignment.Completed()
	assignment.Status = req.Status
	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to update status")
	}

	if assignment.Completed() && !wasCompleted {
		s.notify(ctx, &models.Notification{
			UserID:       studentID,
			Type:         models.NotificationAssignment,
			Title:        "Assignment completed",
			Message:      fmt.Sprintf("You finished %q. Nice work!", assignment.Title),
			AssignmentID: &assignment.ID,
			Urgency:      string(dates.UrgencyLow),
		})
	}

	v := s.view(s.clock.Now(), *assignment)
	return &v, nil
}

// UpdateMilestoneStatus changes the progress of one milestone of a
// project assignment.
func (s *AssignmentService) UpdateMilestoneStatus(ctx context.Context, studentID, id, milestoneID string, req models.UpdateStatusRequest) (*AssignmentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	assignment, err := s.loadOwned(ctx, studentID, id)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range assignment.Milestones {
		if assignment.Milestones[i].ID == milestoneID {
			assignment.Milestones[i].Status = req.Status
			found = true
			break
		}
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "milestone not found")
	}

	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to update milestone")
	}

	v := s.view(s.clock.Now(), *assignment)
	return &v, nil
}

// Delete removes an assignment. Deleting an already-absent record
// succeeds; deleting someone else's is forbidden.
func (s *AssignmentService) Delete(ctx context.Context, studentID, id string) error {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if assignment.StudentID != studentID {
		return appErrors.Clone(appErrors.ErrForbidden, "assignment belongs to another user")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to delete assignment")
	}
	return nil
}

// Grouped returns the user's assignments split into due-date buckets.
func (s *AssignmentService) Grouped(ctx context.Context, studentID string) (*GroupedAssignments, error) {
	assignments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}

	now := s.clock.Now()
	buckets := dates.GroupByDueDate(now, assignments)
	return &GroupedAssignments{
		Overdue:  s.views(now, buckets.Overdue),
		Today:    s.views(now, buckets.Today),
		Tomorrow: s.views(now, buckets.Tomorrow),
		ThisWeek: s.views(now, buckets.ThisWeek),
		Later:    s.views(now, buckets.Later),
	}, nil
}

// Calendar returns the user's assignments for one month keyed by day
// (2006-01-02).
func (s *AssignmentService) Calendar(ctx context.Context, studentID string, year int, month time.Month) (map[string][]models.Assignment, error) {
	assignments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}

	days := make(map[string][]models.Assignment)
	for _, a := range assignments {
		if a.DueDate.IsZero() || a.DueDate.Year() != year || a.DueDate.Month() != month {
			continue
		}
		key := dates.FormatForInput(a.DueDate)
		days[key] = append(days[key], a)
	}
	return days, nil
}

func (s *AssignmentService) loadOwned(ctx context.Context, studentID, id string) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if assignment.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "assignment belongs to another user")
	}
	return assignment, nil
}

func (s *AssignmentService) view(now time.Time, a models.Assignment) AssignmentView {
	return AssignmentView{
		Assignment: a,
		Urgency:    dates.UrgencyFor(now, a.DueDate),
		DueLabel:   dates.FormatDueDateWithTime(now, a.DueDate, a.DueTime),
	}
}

func (s *AssignmentService) views(now time.Time, assignments []models.Assignment) []AssignmentView {
	views := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, s.view(now, a))
	}
	return views
}

func (s *AssignmentService) notify(ctx context.Context, n *models.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Create(ctx, n); err != nil {
		s.logger.Warn("failed to create notification", zap.String("user_id", n.UserID), zap.Error(err))
	}
}
