package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studytrack/studytrack-api/internal/models"
	appErrors "github.com/studytrack/studytrack-api/pkg/errors"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

type mockUserRepo struct {
	users     []*models.User
	createErr error
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "u" + time.Now().Format("150405.000000000")
	m.users = append(m.users, user)
	return nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

type mockSessionRepo struct {
	sessions  []*models.Session
	createErr error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *models.Session) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.sessions = append(m.sessions, session)
	return nil
}

func (m *mockSessionRepo) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	for _, s := range m.sessions {
		if s.Token == token {
			return s, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

func (m *mockSessionRepo) DeleteByUser(ctx context.Context, userID string) error {
	kept := m.sessions[:0]
	for _, s := range m.sessions {
		if s.UserID != userID {
			kept = append(kept, s)
		}
	}
	m.sessions = kept
	return nil
}

type mockSeeder struct {
	seededFor []string
	err       error
}

func (m *mockSeeder) SeedFor(ctx context.Context, user *models.User) error {
	if m.err != nil {
		return m.err
	}
	m.seededFor = append(m.seededFor, user.ID)
	return nil
}

func newAuthService(users *mockUserRepo, sessions *mockSessionRepo, seeder demoSeeder, seed bool) *AuthService {
	return NewAuthService(users, sessions, seeder, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "studytrack",
		SeedDemoData:      seed,
	})
}

func registerRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Email:    "amira@example.com",
		Password: "password",
		FullName: "Amira Hassan",
		SchoolID: "S-1001",
		Role:     models.RoleStudent,
	}
}

func TestRegisterCreatesAccountAndSession(t *testing.T) {
	users := &mockUserRepo{}
	sessions := &mockSessionRepo{}
	seeder := &mockSeeder{}
	svc := newAuthService(users, sessions, seeder, true)

	res, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "amira@example.com", res.User.Email)
	assert.True(t, res.User.Settings.NotificationsEnabled)
	assert.False(t, res.User.Settings.DarkMode)
	require.Len(t, users.users, 1)
	require.Len(t, sessions.sessions, 1)
	assert.Equal(t, []string{users.users[0].ID}, seeder.seededFor)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	users := &mockUserRepo{users: []*models.User{{ID: "u1", Email: "amira@example.com"}}}
	svc := newAuthService(users, &mockSessionRepo{}, nil, false)

	_, err := svc.Register(context.Background(), registerRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	// The rejection happens before any write.
	assert.Len(t, users.users, 1)
}

func TestRegisterSeedFailureDoesNotFailRegistration(t *testing.T) {
	users := &mockUserRepo{}
	seeder := &mockSeeder{err: assert.AnError}
	svc := newAuthService(users, &mockSessionRepo{}, seeder, true)

	_, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)
	assert.Len(t, users.users, 1)
}

func TestLoginSuccess(t *testing.T) {
	users := &mockUserRepo{users: []*models.User{{
		ID: "u1", Email: "amira@example.com", Password: "password",
		FullName: "Amira Hassan", Role: models.RoleStudent,
	}}}
	sessions := &mockSessionRepo{}
	svc := newAuthService(users, sessions, nil, false)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "amira@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "u1", res.User.ID)
	require.Len(t, sessions.sessions, 1)
	assert.Equal(t, res.AccessToken, sessions.sessions[0].Token)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newAuthService(&mockUserRepo{}, &mockSessionRepo{}, nil, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginWrongPassword(t *testing.T) {
	users := &mockUserRepo{users: []*models.User{{ID: "u1", Email: "amira@example.com", Password: "password"}}}
	svc := newAuthService(users, &mockSessionRepo{}, nil, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "amira@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLogoutRemovesSession(t *testing.T) {
	sessions := &mockSessionRepo{sessions: []*models.Session{{ID: "s1", UserID: "u1", Token: "tok"}}}
	svc := newAuthService(&mockUserRepo{}, sessions, nil, false)

	require.NoError(t, svc.Logout(context.Background(), "tok"))
	assert.Empty(t, sessions.sessions)

	// Unknown token is a no-op.
	require.NoError(t, svc.Logout(context.Background(), "tok"))
}

func TestValidateTokenRoundtrip(t *testing.T) {
	svc := newAuthService(&mockUserRepo{}, &mockSessionRepo{}, nil, false)
	user := &models.User{ID: "u1", Email: "amira@example.com", FullName: "Amira Hassan", Role: models.RoleStudent}

	token, _, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)

	_, err = svc.ValidateToken(token + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
