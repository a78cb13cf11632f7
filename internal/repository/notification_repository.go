package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/studytrack/studytrack-api/internal/models"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

// NotificationRepository provides record-store access for notifications.
type NotificationRepository struct {
	store *kvstore.Store
}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(store *kvstore.Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

func (r *NotificationRepository) load() ([]models.Notification, int64, error) {
	var notifications []models.Notification
	version, err := r.store.Load(collectionNotifications, &notifications)
	if err != nil {
		return nil, 0, fmt.Errorf("load notifications: %w", err)
	}
	return notifications, version, nil
}

// Create appends a new notification. New notifications are unread.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	notifications, version, err := r.load()
	if err != nil {
		return err
	}

	notification.ID = models.NewID()
	notification.IsRead = false
	notification.CreatedAt = time.Now().UTC()

	notifications = append(notifications, *notification)
	if _, err := r.store.Save(collectionNotifications, version, notifications); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	return nil
}

// FindByID returns a notification by identifier.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	notifications, _, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range notifications {
		if notifications[i].ID == id {
			n := notifications[i]
			return &n, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, _, err := r.load()
	if err != nil {
		return nil, err
	}
	owned := make([]models.Notification, 0)
	for _, n := range notifications {
		if n.UserID == userID {
			owned = append(owned, n)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return owned, nil
}

// ExistsReminderForAssignment reports whether a reminder notification
// already references the given assignment for the user. Used by the
// reminder scanner to avoid duplicates.
func (r *NotificationRepository) ExistsReminderForAssignment(ctx context.Context, userID, assignmentID string) (bool, error) {
	notifications, _, err := r.load()
	if err != nil {
		return false, err
	}
	for _, n := range notifications {
		if n.UserID == userID && n.Type == models.NotificationReminder &&
			n.AssignmentID != nil && *n.AssignmentID == assignmentID {
			return true, nil
		}
	}
	return false, nil
}

// MarkRead flips the read flag on a single notification.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	notifications, version, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range notifications {
		if notifications[i].ID == id {
			notifications[i].IsRead = true
			if _, err := r.store.Save(collectionNotifications, version, notifications); err != nil {
				return nil, fmt.Errorf("save notifications: %w", err)
			}
			n := notifications[i]
			return &n, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

// MarkAllRead flips the read flag on every notification of a user.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	notifications, version, err := r.load()
	if err != nil {
		return err
	}
	changed := false
	for i := range notifications {
		if notifications[i].UserID == userID && !notifications[i].IsRead {
			notifications[i].IsRead = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if _, err := r.store.Save(collectionNotifications, version, notifications); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	return nil
}

// Delete removes a notification. Deleting an absent ID is not an error.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	notifications, version, err := r.load()
	if err != nil {
		return err
	}
	remaining := notifications[:0]
	for _, n := range notifications {
		if n.ID != id {
			remaining = append(remaining, n)
		}
	}
	if _, err := r.store.Save(collectionNotifications, version, remaining); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	return nil
}

// ClearAll removes every notification belonging to a user.
func (r *NotificationRepository) ClearAll(ctx context.Context, userID string) error {
	notifications, version, err := r.load()
	if err != nil {
		return err
	}
	remaining := notifications[:0]
	for _, n := range notifications {
		if n.UserID != userID {
			remaining = append(remaining, n)
		}
	}
	if _, err := r.store.Save(collectionNotifications, version, remaining); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	return nil
}
