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

type mockClassRepo struct {
	classes []models.Class
	nextID  int
}

func (m *mockClassRepo) Create(ctx context.Context, c *models.Class) error {
	m.nextID++
	c.ID = "c" + string(rune('0'+m.nextID))
	if c.StudentIDs == nil {
		c.StudentIDs = []string{}
	}
	m.classes = append(m.classes, *c)
	return nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	for i := range m.classes {
		if m.classes[i].ID == id {
			c := m.classes[i]
			return &c, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

func (m *mockClassRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error) {
	var out []models.Class
	for _, c := range m.classes {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockClassRepo) ListByStudentSchoolID(ctx context.Context, schoolID string) ([]models.Class, error) {
	var out []models.Class
	for _, c := range m.classes {
		if c.HasStudent(schoolID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockClassRepo) Update(ctx context.Context, c *models.Class) error {
	for i := range m.classes {
		if m.classes[i].ID == c.ID {
			m.classes[i] = *c
			return nil
		}
	}
	return kvstore.ErrNotFound
}

func (m *mockClassRepo) Delete(ctx context.Context, id string) error {
	kept := m.classes[:0]
	for _, c := range m.classes {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	m.classes = kept
	return nil
}

type mockClassUserRepo struct {
	students []models.User
}

func (m *mockClassUserRepo) FindStudentsBySchoolIDs(ctx context.Context, schoolIDs []string) ([]models.User, error) {
	wanted := make(map[string]struct{}, len(schoolIDs))
	for _, id := range schoolIDs {
		wanted[id] = struct{}{}
	}
	var out []models.User
	for _, s := range m.students {
		if _, ok := wanted[s.SchoolID]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockClassUserRepo) FindStudentBySchoolID(ctx context.Context, schoolID string) (*models.User, error) {
	for i := range m.students {
		if m.students[i].SchoolID == schoolID {
			s := m.students[i]
			return &s, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

func teacherClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher, FullName: "Mr. Okafor"}
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "u1", Role: models.RoleStudent, FullName: "Amira Hassan"}
}

func newClassService(classes *mockClassRepo, users *mockClassUserRepo, notifier *mockNotifier) *ClassService {
	return NewClassService(classes, users, notifier, validator.New(), zap.NewNop())
}

func TestClassCreateStampsTeacher(t *testing.T) {
	repo := &mockClassRepo{}
	svc := newClassService(repo, &mockClassUserRepo{}, nil)

	class, err := svc.Create(context.Background(), teacherClaims(), models.CreateClassRequest{
		Name: "Algebra II", Subject: "Math",
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", class.TeacherID)
	assert.Equal(t, "Mr. Okafor", class.TeacherName)
	assert.NotNil(t, class.StudentIDs)
	assert.Empty(t, class.StudentIDs)
}

func TestClassListForRole(t *testing.T) {
	repo := &mockClassRepo{classes: []models.Class{
		{ID: "c1", TeacherID: "t1", StudentIDs: []string{"S-1001"}},
		{ID: "c2", TeacherID: "t2", StudentIDs: []string{"S-2002"}},
	}}
	svc := newClassService(repo, &mockClassUserRepo{}, nil)

	owned, err := svc.ListFor(context.Background(), teacherClaims(), "")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "c1", owned[0].ID)

	enrolled, err := svc.ListFor(context.Background(), studentClaims(), "S-1001")
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, "c1", enrolled[0].ID)
}

func TestClassGetResolvesRoster(t *testing.T) {
	repo := &mockClassRepo{classes: []models.Class{
		{ID: "c1", TeacherID: "t1", StudentIDs: []string{"S-1001", "S-9999"}},
	}}
	users := &mockClassUserRepo{students: []models.User{
		{ID: "u1", SchoolID: "S-1001", Role: models.RoleStudent, FullName: "Amira Hassan"},
	}}
	svc := newClassService(repo, users, nil)

	detail, err := svc.Get(context.Background(), teacherClaims(), "", "c1")
	require.NoError(t, err)
	// S-9999 has no matching account and silently resolves to nothing.
	require.Len(t, detail.Students, 1)
	assert.Equal(t, "Amira Hassan", detail.Students[0].FullName)
}

func TestClassGetMembershipChecks(t *testing.T) {
	repo := &mockClassRepo{classes: []models.Class{
		{ID: "c1", TeacherID: "t1", StudentIDs: []string{"S-1001"}},
	}}
	svc := newClassService(repo, &mockClassUserRepo{}, nil)

	_, err := svc.Get(context.Background(), studentClaims(), "S-1001", "c1")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), studentClaims(), "S-0000", "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	other := &models.JWTClaims{UserID: "t2", Role: models.RoleTeacher}
	_, err = svc.Get(context.Background(), other, "", "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestClassAddStudent(t *testing.T) {
	repo := &mockClassRepo{classes: []models.Class{
		{ID: "c1", Name: "Algebra II", TeacherID: "t1", TeacherName: "Mr. Okafor", StudentIDs: []string{}},
	}}
	users := &mockClassUserRepo{students: []models.User{
		{ID: "u1", SchoolID: "S-1001", Role: models.RoleStudent},
	}}
	notifier := &mockNotifier{}
	svc := newClassService(repo, users, notifier)

	class, err := svc.AddStudent(context.Background(), "t1", "c1", models.AddStudentRequest{SchoolID: "S-1001"})
	require.NoError(t, err)
	assert.Equal(t, []string{"S-1001"}, class.StudentIDs)
	require.Len(t, notifier.created, 1)
	assert.Equal(t, "u1", notifier.created[0].UserID)
	assert.Equal(t, models.NotificationClass, notifier.created[0].Type)

	// Duplicate enrolment is rejected.
	_, err = svc.AddStudent(context.Background(), "t1", "c1", models.AddStudentRequest{SchoolID: "S-1001"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// Unknown school ID is rejected.
	_, err = svc.AddStudent(context.Background(), "t1", "c1", models.AddStudentRequest{SchoolID: "S-404"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClassRemoveStudent(t *testing.T) {
	repo := &mockClassRepo{classes: []models.Class{
		{ID: "c1", TeacherID: "t1", StudentIDs: []string{"S-1001", "S-2002"}},
	}}
	svc := newClassService(repo, &mockClassUserRepo{}, nil)

	class, err := svc.RemoveStudent(context.Background(), "t1", "c1", "S-1001")
	require.NoError(t, err)
	assert.Equal(t, []string{"S-2002"}, class.StudentIDs)

	// Removing an absent member is a no-op.
	class, err = svc.RemoveStudent(context.Background(), "t1", "c1", "S-1001")
	require.NoError(t, err)
	assert.Equal(t, []string{"S-2002"}, class.StudentIDs)
}

func TestClassDeleteOwnership(t *testing.T) {
	repo := &mockClassRepo{classes: []models.Class{{ID: "c1", TeacherID: "t1"}}}
	svc := newClassService(repo, &mockClassUserRepo{}, nil)

	err := svc.Delete(context.Background(), "t2", "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), "t1", "c1"))
	require.NoError(t, svc.Delete(context.Background(), "t1", "c1"))
}
