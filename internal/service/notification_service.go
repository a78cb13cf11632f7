package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studytrack/studytrack-api/internal/models"
	appErrors "github.com/studytrack/studytrack-api/pkg/errors"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

type notificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
	ClearAll(ctx context.Context, userID string) error
}

// NotificationList pairs a user's notifications with the unread count.
type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

// NotificationService provides the per-user message feed.
type NotificationService struct {
	repo      notificationRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs a NotificationService instance.
func NewNotificationService(repo notificationRepository, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NotificationService{repo: repo, validator: validate, logger: logger}
}

// List returns the user's notifications newest first, with the unread
// count.
func (s *NotificationService) List(ctx context.Context, userID string) (*NotificationList, error) {
	notifications, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}
	return &NotificationList{Notifications: notifications, UnreadCount: unread}, nil
}

// Create records a notification addressed to the caller.
func (s *NotificationService) Create(ctx context.Context, userID string, req models.CreateNotificationRequest) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notification payload")
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = "low"
	}
	notification := &models.Notification{
		UserID:       userID,
		Type:         req.Type,
		Title:        req.Title,
		Message:      req.Message,
		AssignmentID: req.AssignmentID,
		Urgency:      urgency,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to create notification")
	}
	return notification, nil
}

// MarkRead flips one notification owned by the user to read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) (*models.Notification, error) {
	if _, err := s.loadOwned(ctx, userID, id); err != nil {
		return nil, err
	}
	notification, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to mark notification read")
	}
	return notification, nil
}

// MarkAllRead flips every notification of the user to read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to mark notifications read")
	}
	return nil
}

// Delete removes one notification owned by the user. Absent records are
// a no-op.
func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}
	if notification.UserID != userID {
		return appErrors.Clone(appErrors.ErrForbidden, "notification belongs to another user")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to delete notification")
	}
	return nil
}

// ClearAll removes every notification of the user.
func (s *NotificationService) ClearAll(ctx context.Context, userID string) error {
	if err := s.repo.ClearAll(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to clear notifications")
	}
	return nil
}

func (s *NotificationService) loadOwned(ctx context.Context, userID, id string) (*models.Notification, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}
	if notification.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "notification belongs to another user")
	}
	return notification, nil
}
