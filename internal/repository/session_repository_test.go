package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studytrack/studytrack-api/internal/models"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

func TestSessionCreateReplacesPriorSession(t *testing.T) {
	repo := NewSessionRepository(newTestStore(t))
	ctx := context.Background()

	first := &models.Session{UserID: "u1", Token: "tok-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, first))
	second := &models.Session{UserID: "u1", Token: "tok-2", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, second))

	// The old token no longer resolves; one login pointer per account.
	_, err := repo.FindByToken(ctx, "tok-1")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	found, err := repo.FindByToken(ctx, "tok-2")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.UserID)
	assert.NotEmpty(t, found.ID)
}

func TestSessionDeleteByUser(t *testing.T) {
	repo := NewSessionRepository(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Session{UserID: "u1", Token: "tok-1"}))
	require.NoError(t, repo.Create(ctx, &models.Session{UserID: "u2", Token: "tok-2"}))

	require.NoError(t, repo.DeleteByUser(ctx, "u1"))

	_, err := repo.FindByToken(ctx, "tok-1")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	// Other users' sessions survive, and deleting again is a no-op.
	_, err = repo.FindByToken(ctx, "tok-2")
	require.NoError(t, err)
	require.NoError(t, repo.DeleteByUser(ctx, "u1"))
}
