package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studytrack/studytrack-api/internal/models"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

func newTestStore(t *testing.T) *kvstore.Store {
	t.Helper()
	store, err := kvstore.Open(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestAssignmentCreateRoundTrip(t *testing.T) {
	repo := NewAssignmentRepository(newTestStore(t))
	ctx := context.Background()

	classID := "c1"
	assignment := &models.Assignment{
		Title:       "Math Homework - Chapter 5",
		Description: "Complete exercises 1-20 on page 142",
		ClassID:     &classID,
		ClassName:   "Mathematics",
		Subject:     "Math",
		DueDate:     time.Date(2024, 5, 20, 23, 59, 0, 0, time.UTC),
		DueTime:     "23:59",
		Type:        models.AssignmentDaily,
		Status:      models.StatusNotStarted,
		StudentID:   "s1",
	}

	require.NoError(t, repo.Create(ctx, assignment))
	assert.NotEmpty(t, assignment.ID)
	assert.False(t, assignment.CreatedAt.IsZero())
	assert.False(t, assignment.UpdatedAt.IsZero())

	found, err := repo.FindByID(ctx, assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, assignment, found)
}

func TestAssignmentFindByIDNotFound(t *testing.T) {
	repo := NewAssignmentRepository(newTestStore(t))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestAssignmentUpdateNotFound(t *testing.T) {
	repo := NewAssignmentRepository(newTestStore(t))

	err := repo.Update(context.Background(), &models.Assignment{ID: "missing"})
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestAssignmentDeleteIsIdempotent(t *testing.T) {
	repo := NewAssignmentRepository(newTestStore(t))
	ctx := context.Background()

	assignment := &models.Assignment{Title: "Essay", StudentID: "s1"}
	require.NoError(t, repo.Create(ctx, assignment))

	require.NoError(t, repo.Delete(ctx, assignment.ID))
	// Second delete of the same ID still succeeds.
	require.NoError(t, repo.Delete(ctx, assignment.ID))

	_, err := repo.FindByID(ctx, assignment.ID)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestAssignmentListByStudentSortedByDueDate(t *testing.T) {
	repo := NewAssignmentRepository(newTestStore(t))
	ctx := context.Background()

	due := func(offset int) time.Time {
		return time.Date(2024, 5, 15, 23, 59, 0, 0, time.UTC).AddDate(0, 0, offset)
	}
	require.NoError(t, repo.Create(ctx, &models.Assignment{Title: "later", StudentID: "s1", DueDate: due(5)}))
	require.NoError(t, repo.Create(ctx, &models.Assignment{Title: "sooner", StudentID: "s1", DueDate: due(1)}))
	require.NoError(t, repo.Create(ctx, &models.Assignment{Title: "other student", StudentID: "s2", DueDate: due(0)}))

	listed, err := repo.ListByStudent(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "sooner", listed[0].Title)
	assert.Equal(t, "later", listed[1].Title)
}

func TestAssignmentListByClass(t *testing.T) {
	repo := NewAssignmentRepository(newTestStore(t))
	ctx := context.Background()

	classID := "c1"
	require.NoError(t, repo.Create(ctx, &models.Assignment{Title: "in class", StudentID: "s1", ClassID: &classID}))
	require.NoError(t, repo.Create(ctx, &models.Assignment{Title: "unattached", StudentID: "s1"}))

	listed, err := repo.ListByClass(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "in class", listed[0].Title)
}
