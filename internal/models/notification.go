package models

import "time"

// NotificationType labels what produced a notification.
type NotificationType string

const (
	NotificationSystem     NotificationType = "system"
	NotificationReminder   NotificationType = "reminder"
	NotificationAssignment NotificationType = "assignment"
	NotificationClass      NotificationType = "class"
)

// CreateNotificationRequest carries the fields for a caller-created
// notification.
type CreateNotificationRequest struct {
	Type         NotificationType `json:"type" validate:"required,oneof=system reminder assignment class"`
	Title        string           `json:"title" validate:"required"`
	Message      string           `json:"message"`
	AssignmentID *string          `json:"assignment_id,omitempty"`
	Urgency      string           `json:"urgency" validate:"omitempty,oneof=overdue urgent high medium low"`
}

// Notification is a per-user message, mutated only via its read flag.
type Notification struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	Type         NotificationType `json:"type"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	AssignmentID *string          `json:"assignment_id,omitempty"`
	Urgency      string           `json:"urgency"`
	IsRead       bool             `json:"is_read"`
	CreatedAt    time.Time        `json:"created_at"`
}
