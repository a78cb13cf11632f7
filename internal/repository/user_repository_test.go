package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studytrack/studytrack-api/internal/models"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

func TestUserFindByEmailCaseInsensitive(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	ctx := context.Background()

	user := &models.User{Email: "student@example.com", FullName: "Sam Student", Role: models.RoleStudent}
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindByEmail(ctx, "STUDENT@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestUserRepositoryAllowsDuplicateEmails(t *testing.T) {
	// Uniqueness is the register flow's responsibility; the repository
	// itself performs no check.
	repo := NewUserRepository(newTestStore(t))
	ctx := context.Background()

	first := &models.User{Email: "dup@example.com", Role: models.RoleStudent}
	second := &models.User{Email: "dup@example.com", Role: models.RoleStudent}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserFindStudentsBySchoolIDs(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@x.com", SchoolID: "S-1", Role: models.RoleStudent}))
	require.NoError(t, repo.Create(ctx, &models.User{Email: "b@x.com", SchoolID: "S-2", Role: models.RoleStudent}))
	// A teacher carrying a matching school ID must not resolve as a student.
	require.NoError(t, repo.Create(ctx, &models.User{Email: "t@x.com", SchoolID: "S-3", Role: models.RoleTeacher}))

	matched, err := repo.FindStudentsBySchoolIDs(ctx, []string{"S-1", "S-3", "S-9"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "a@x.com", matched[0].Email)

	matched, err = repo.FindStudentsBySchoolIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestUserUpdate(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	ctx := context.Background()

	user := &models.User{Email: "a@x.com", FullName: "Old Name", Role: models.RoleStudent}
	require.NoError(t, repo.Create(ctx, user))

	user.FullName = "New Name"
	user.Settings.DarkMode = true
	require.NoError(t, repo.Update(ctx, user))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", found.FullName)
	assert.True(t, found.Settings.DarkMode)
	assert.True(t, found.UpdatedAt.After(found.CreatedAt) || found.UpdatedAt.Equal(found.CreatedAt))
}
