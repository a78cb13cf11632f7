package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studytrack/studytrack-api/internal/models"
	appErrors "github.com/studytrack/studytrack-api/pkg/errors"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

type mockNotificationRepo struct {
	notifications []models.Notification
	nextID        int
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	m.nextID++
	n.ID = "n" + string(rune('0'+m.nextID))
	n.IsRead = false
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *mockNotificationRepo) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			n := m.notifications[i]
			return &n, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			m.notifications[i].IsRead = true
			n := m.notifications[i]
			return &n, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	for i := range m.notifications {
		if m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id string) error {
	kept := m.notifications[:0]
	for _, n := range m.notifications {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	m.notifications = kept
	return nil
}

func (m *mockNotificationRepo) ClearAll(ctx context.Context, userID string) error {
	kept := m.notifications[:0]
	for _, n := range m.notifications {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	m.notifications = kept
	return nil
}

func newNotificationService(repo *mockNotificationRepo) *NotificationService {
	return NewNotificationService(repo, validator.New(), zap.NewNop())
}

func TestNotificationListCountsUnread(t *testing.T) {
	repo := &mockNotificationRepo{notifications: []models.Notification{
		{ID: "n1", UserID: "u1", IsRead: true},
		{ID: "n2", UserID: "u1", IsRead: false},
		{ID: "n3", UserID: "u1", IsRead: false},
		{ID: "n4", UserID: "u2", IsRead: false},
	}}
	svc := newNotificationService(repo)

	list, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, list.Notifications, 3)
	assert.Equal(t, 2, list.UnreadCount)
}

func TestNotificationCreateDefaultsUrgency(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := newNotificationService(repo)

	n, err := svc.Create(context.Background(), "u1", models.CreateNotificationRequest{
		Type:  models.NotificationSystem,
		Title: "Heads up",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", n.UserID)
	assert.Equal(t, "low", n.Urgency)
	assert.False(t, n.IsRead)
}

func TestNotificationMarkReadEnforcesOwnership(t *testing.T) {
	repo := &mockNotificationRepo{notifications: []models.Notification{
		{ID: "n1", UserID: "u2"},
	}}
	svc := newNotificationService(repo)

	_, err := svc.MarkRead(context.Background(), "u1", "n1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	n, err := svc.MarkRead(context.Background(), "u2", "n1")
	require.NoError(t, err)
	assert.True(t, n.IsRead)
}

func TestNotificationDeleteIdempotentButOwned(t *testing.T) {
	repo := &mockNotificationRepo{notifications: []models.Notification{
		{ID: "n1", UserID: "u1"},
		{ID: "n2", UserID: "u2"},
	}}
	svc := newNotificationService(repo)

	require.NoError(t, svc.Delete(context.Background(), "u1", "n1"))
	require.NoError(t, svc.Delete(context.Background(), "u1", "n1"))

	err := svc.Delete(context.Background(), "u1", "n2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestNotificationClearAll(t *testing.T) {
	repo := &mockNotificationRepo{notifications: []models.Notification{
		{ID: "n1", UserID: "u1"},
		{ID: "n2", UserID: "u2"},
	}}
	svc := newNotificationService(repo)

	require.NoError(t, svc.ClearAll(context.Background(), "u1"))
	assert.Len(t, repo.notifications, 1)
	assert.Equal(t, "u2", repo.notifications[0].UserID)
}
