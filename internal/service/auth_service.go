package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/studytrack/studytrack-api/internal/models"
	appErrors "github.com/studytrack/studytrack-api/pkg/errors"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

type authUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type authSessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type demoSeeder interface {
	SeedFor(ctx context.Context, user *models.User) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	SeedDemoData      bool
}

// AuthService provides register, login and session validation use cases.
type AuthService struct {
	users     authUserRepository
	sessions  authSessionRepository
	seeder    demoSeeder
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance. seeder may be nil when
// demo seeding is disabled.
func NewAuthService(users authUserRepository, sessions authSessionRepository, seeder demoSeeder, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{users: users, sessions: sessions, seeder: seeder, validator: validate, logger: logger, config: config}
}

// Register creates a new account and opens a session for it. The duplicate
// email check lives here, not in the repository: the store itself accepts
// any record and uniqueness is an account-creation rule.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid register payload")
	}

	_, err := s.users.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an account with this email already exists")
	}
	if !errors.Is(err, kvstore.ErrNotFound) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing accounts")
	}

	user := &models.User{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		SchoolID: req.SchoolID,
		Role:     req.Role,
		Settings: models.UserSettings{NotificationsEnabled: true, DarkMode: false},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to create account")
	}

	if s.config.SeedDemoData && s.seeder != nil {
		if err := s.seeder.SeedFor(ctx, user); err != nil {
			s.logger.Warn("failed to seed demo data for new account", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return s.openSession(ctx, user, "", "")
}

// Login authenticates a user and opens a session.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "no account found with this email")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch account")
	}

	if user.Password != req.Password {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "incorrect password")
	}

	return s.openSession(ctx, user, req.IP, req.UserAgent)
}

// Logout removes the session carrying the given token. Unknown tokens are
// a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if err := s.sessions.DeleteByUser(ctx, session.UserID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to close session")
	}
	return nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) openSession(ctx context.Context, user *models.User, ip, userAgent string) (*models.LoginResponse, error) {
	accessToken, expiresAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	session := &models.Session{
		UserID:    user.ID,
		Token:     accessToken,
		ExpiresAt: expiresAt,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to persist session")
	}

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    time.Now().UTC(),
		User:        user.Info(),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
