package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studytrack/studytrack-api/internal/models"
	"github.com/studytrack/studytrack-api/internal/service"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

type stubUserRepo struct {
	users []*models.User
}

func (m *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "u1"
	m.users = append(m.users, user)
	return nil
}

func (m *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

func (m *stubUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

func (m *stubUserRepo) Update(ctx context.Context, user *models.User) error {
	for i, u := range m.users {
		if u.ID == user.ID {
			m.users[i] = user
			return nil
		}
	}
	return kvstore.ErrNotFound
}

type stubSessionRepo struct {
	sessions []*models.Session
}

func (m *stubSessionRepo) Create(ctx context.Context, session *models.Session) error {
	m.sessions = append(m.sessions, session)
	return nil
}

func (m *stubSessionRepo) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	for _, s := range m.sessions {
		if s.Token == token {
			return s, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

func (m *stubSessionRepo) DeleteByUser(ctx context.Context, userID string) error {
	kept := m.sessions[:0]
	for _, s := range m.sessions {
		if s.UserID != userID {
			kept = append(kept, s)
		}
	}
	m.sessions = kept
	return nil
}

func newAuthTestHandler(users *stubUserRepo) *AuthHandler {
	auth := service.NewAuthService(users, &stubSessionRepo{}, nil, nil, nil, service.AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "studytrack",
	})
	userSvc := service.NewUserService(users, nil, nil)
	return NewAuthHandler(auth, userSvc)
}

func TestAuthHandlerRegisterSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthTestHandler(&stubUserRepo{})

	body := `{"email":"amira@example.com","password":"password","full_name":"Amira Hassan","school_id":"S-1001","role":"student"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Register(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.Equal(t, "amira@example.com", envelope.Data.User.Email)
}

func TestAuthHandlerRegisterDuplicateEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthTestHandler(&stubUserRepo{users: []*models.User{
		{ID: "u0", Email: "amira@example.com"},
	}})

	body := `{"email":"amira@example.com","password":"password","full_name":"Amira Hassan","school_id":"S-1001","role":"student"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Register(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthHandlerLoginWrongPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthTestHandler(&stubUserRepo{users: []*models.User{
		{ID: "u1", Email: "amira@example.com", Password: "password"},
	}})

	body := `{"email":"amira@example.com","password":"nope"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
