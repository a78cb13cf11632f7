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

type mockProfileRepo struct {
	user      *models.User
	updateErr error
	updated   bool
}

func (m *mockProfileRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, kvstore.ErrNotFound
	}
	u := *m.user
	return &u, nil
}

func (m *mockProfileRepo) Update(ctx context.Context, user *models.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.user = user
	m.updated = true
	return nil
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestUserServiceGetStripsPassword(t *testing.T) {
	repo := &mockProfileRepo{user: &models.User{ID: "u1", Email: "amira@example.com", Password: "secret"}}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	info, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "amira@example.com", info.Email)
}

func TestUserServiceGetNotFound(t *testing.T) {
	svc := NewUserService(&mockProfileRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUserServiceUpdateProfilePartial(t *testing.T) {
	repo := &mockProfileRepo{user: &models.User{ID: "u1", FullName: "Old Name", SchoolID: "S-1"}}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	info, err := svc.UpdateProfile(context.Background(), "u1", models.UpdateProfileRequest{FullName: strPtr("New Name")})
	require.NoError(t, err)
	assert.Equal(t, "New Name", info.FullName)
	assert.Equal(t, "S-1", info.SchoolID)
	assert.True(t, repo.updated)
}

func TestUserServiceUpdateSettingsToggles(t *testing.T) {
	repo := &mockProfileRepo{user: &models.User{
		ID:       "u1",
		Settings: models.UserSettings{NotificationsEnabled: true, DarkMode: false},
	}}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	info, err := svc.UpdateSettings(context.Background(), "u1", models.UpdateSettingsRequest{DarkMode: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, info.Settings.DarkMode)
	assert.True(t, info.Settings.NotificationsEnabled)
}
