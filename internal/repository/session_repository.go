package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/studytrack/studytrack-api/internal/models"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

// SessionRepository persists login sessions in the record store.
type SessionRepository struct {
	store *kvstore.Store
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(store *kvstore.Store) *SessionRepository {
	return &SessionRepository{store: store}
}

func (r *SessionRepository) load() ([]models.Session, int64, error) {
	var sessions []models.Session
	version, err := r.store.Load(collectionSessions, &sessions)
	if err != nil {
		return nil, 0, fmt.Errorf("load sessions: %w", err)
	}
	return sessions, version, nil
}

// Create stores a session, replacing any prior session of the same user
// so a single login pointer exists per account.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	sessions, version, err := r.load()
	if err != nil {
		return err
	}

	session.ID = uuid.NewString()
	session.CreatedAt = time.Now().UTC()

	remaining := sessions[:0]
	for _, s := range sessions {
		if s.UserID != session.UserID {
			remaining = append(remaining, s)
		}
	}
	remaining = append(remaining, *session)
	if _, err := r.store.Save(collectionSessions, version, remaining); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}

// FindByToken returns the session carrying the given token.
func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	sessions, _, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].Token == token {
			s := sessions[i]
			return &s, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

// DeleteByUser removes every session of a user. Absent sessions are not
// an error.
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	sessions, version, err := r.load()
	if err != nil {
		return err
	}
	remaining := sessions[:0]
	for _, s := range sessions {
		if s.UserID != userID {
			remaining = append(remaining, s)
		}
	}
	if _, err := r.store.Save(collectionSessions, version, remaining); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}
