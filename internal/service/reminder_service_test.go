package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studytrack/studytrack-api/internal/models"
)

type mockReminderUserRepo struct {
	users []models.User
}

func (m *mockReminderUserRepo) List(ctx context.Context) ([]models.User, error) {
	return m.users, nil
}

type mockReminderNotificationRepo struct {
	created  []models.Notification
	existing map[string]bool // userID+assignmentID
}

func (m *mockReminderNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	m.created = append(m.created, *n)
	if m.existing == nil {
		m.existing = make(map[string]bool)
	}
	m.existing[n.UserID+"/"+*n.AssignmentID] = true
	return nil
}

func (m *mockReminderNotificationRepo) ExistsReminderForAssignment(ctx context.Context, userID, assignmentID string) (bool, error) {
	return m.existing[userID+"/"+assignmentID], nil
}

func newReminderService(users *mockReminderUserRepo, assignments *mockAssignmentRepo, notifications *mockReminderNotificationRepo) *ReminderService {
	return NewReminderService(users, assignments, notifications, fixedClock{testNow}, zap.NewNop(), ReminderConfig{
		Interval:   time.Hour,
		WindowDays: 1,
	})
}

func TestReminderScanCreatesDueSoonReminders(t *testing.T) {
	users := &mockReminderUserRepo{users: []models.User{
		{ID: "u1", Settings: models.UserSettings{NotificationsEnabled: true}},
	}}
	assignments := &mockAssignmentRepo{assignments: []models.Assignment{
		{ID: "a1", StudentID: "u1", Title: "Due tomorrow", Status: models.StatusNotStarted, DueDate: testNow.AddDate(0, 0, 1)},
		{ID: "a2", StudentID: "u1", Title: "Overdue", Status: models.StatusNotStarted, DueDate: testNow.AddDate(0, 0, -2)},
		{ID: "a3", StudentID: "u1", Title: "Far out", Status: models.StatusNotStarted, DueDate: testNow.AddDate(0, 0, 10)},
		{ID: "a4", StudentID: "u1", Title: "Done", Status: models.StatusCompleted, DueDate: testNow},
	}}
	notifications := &mockReminderNotificationRepo{}
	svc := newReminderService(users, assignments, notifications)

	created, err := svc.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	ids := make(map[string]models.Notification)
	for _, n := range notifications.created {
		require.NotNil(t, n.AssignmentID)
		ids[*n.AssignmentID] = n
		assert.Equal(t, models.NotificationReminder, n.Type)
	}
	assert.Contains(t, ids, "a1")
	assert.Contains(t, ids, "a2")
	assert.Equal(t, "overdue", ids["a2"].Urgency)
	assert.Equal(t, "urgent", ids["a1"].Urgency)
}

func TestReminderScanIsIdempotentPerAssignment(t *testing.T) {
	users := &mockReminderUserRepo{users: []models.User{
		{ID: "u1", Settings: models.UserSettings{NotificationsEnabled: true}},
	}}
	assignments := &mockAssignmentRepo{assignments: []models.Assignment{
		{ID: "a1", StudentID: "u1", Title: "Due today", Status: models.StatusNotStarted, DueDate: testNow},
	}}
	notifications := &mockReminderNotificationRepo{}
	svc := newReminderService(users, assignments, notifications)

	created, err := svc.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	created, err = svc.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, notifications.created, 1)
}

func TestReminderScanRespectsNotificationSetting(t *testing.T) {
	users := &mockReminderUserRepo{users: []models.User{
		{ID: "u1", Settings: models.UserSettings{NotificationsEnabled: false}},
	}}
	assignments := &mockAssignmentRepo{assignments: []models.Assignment{
		{ID: "a1", StudentID: "u1", Title: "Due today", Status: models.StatusNotStarted, DueDate: testNow},
	}}
	notifications := &mockReminderNotificationRepo{}
	svc := newReminderService(users, assignments, notifications)

	created, err := svc.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Empty(t, notifications.created)
}
