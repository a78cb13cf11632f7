package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studytrack/studytrack-api/internal/models"
	appErrors "github.com/studytrack/studytrack-api/pkg/errors"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

type classRepository interface {
	Create(ctx context.Context, class *models.Class) error
	FindByID(ctx context.Context, id string) (*models.Class, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error)
	ListByStudentSchoolID(ctx context.Context, schoolID string) ([]models.Class, error)
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
}

type classUserRepository interface {
	FindStudentsBySchoolIDs(ctx context.Context, schoolIDs []string) ([]models.User, error)
	FindStudentBySchoolID(ctx context.Context, schoolID string) (*models.User, error)
}

// ClassService provides class roster use cases. Rosters store school IDs,
// so resolving members goes through the user repository.
type ClassService struct {
	classes   classRepository
	users     classUserRepository
	notifier  assignmentNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService instance.
func NewClassService(classes classRepository, users classUserRepository, notifier assignmentNotifier, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{classes: classes, users: users, notifier: notifier, validator: validate, logger: logger}
}

// ListFor returns the classes visible to the caller: owned classes for
// teachers, enrolled classes for students.
func (s *ClassService) ListFor(ctx context.Context, claims *models.JWTClaims, schoolID string) ([]models.Class, error) {
	var (
		classes []models.Class
		err     error
	)
	if claims.Role == models.RoleTeacher {
		classes, err = s.classes.ListByTeacher(ctx, claims.UserID)
	} else {
		classes, err = s.classes.ListByStudentSchoolID(ctx, schoolID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// Get returns a class with its resolved roster. Teachers see their own
// classes; students see classes they are enrolled in.
func (s *ClassService) Get(ctx context.Context, claims *models.JWTClaims, schoolID, id string) (*models.ClassDetail, error) {
	class, err := s.loadClass(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case claims.Role == models.RoleTeacher && class.TeacherID == claims.UserID:
	case claims.Role == models.RoleStudent && class.HasStudent(schoolID):
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not a member of this class")
	}

	students, err := s.users.FindStudentsBySchoolIDs(ctx, class.StudentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve roster")
	}
	roster := make([]models.UserInfo, 0, len(students))
	for i := range students {
		roster = append(roster, students[i].Info())
	}
	return &models.ClassDetail{Class: *class, Students: roster}, nil
}

// Create opens a new class owned by the calling teacher.
func (s *ClassService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class := &models.Class{
		Name:        req.Name,
		Subject:     req.Subject,
		Description: req.Description,
		Color:       req.Color,
		TeacherID:   claims.UserID,
		TeacherName: claims.FullName,
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to create class")
	}
	return class, nil
}

// Update applies partial edits to a class owned by the calling teacher.
func (s *ClassService) Update(ctx context.Context, teacherID, id string, req models.UpdateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class, err := s.loadOwned(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.Subject != nil {
		class.Subject = *req.Subject
	}
	if req.Description != nil {
		class.Description = *req.Description
	}
	if req.Color != nil {
		class.Color = *req.Color
	}

	if err := s.classes.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to update class")
	}
	return class, nil
}

// Delete removes a class owned by the calling teacher. Absent classes
// are a no-op.
func (s *ClassService) Delete(ctx context.Context, teacherID, id string) error {
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.TeacherID != teacherID {
		return appErrors.Clone(appErrors.ErrForbidden, "class belongs to another teacher")
	}
	if err := s.classes.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to delete class")
	}
	return nil
}

// AddStudent enrols a student into the class by school ID. The account
// must exist with the student role and must not already be enrolled. The
// student is told about the enrolment.
func (s *ClassService) AddStudent(ctx context.Context, teacherID, id string, req models.AddStudentRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrolment payload")
	}

	class, err := s.loadOwned(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	if class.HasStudent(req.SchoolID) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled")
	}

	student, err := s.users.FindStudentBySchoolID(ctx, req.SchoolID)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no student found with this school ID")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up student")
	}

	class.StudentIDs = append(class.StudentIDs, req.SchoolID)
	if err := s.classes.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to update roster")
	}

	if s.notifier != nil {
		n := &models.Notification{
			UserID:  student.ID,
			Type:    models.NotificationClass,
			Title:   "Added to a class",
			Message: "You were added to " + class.Name + " by " + class.TeacherName + ".",
			Urgency: "low",
		}
		if err := s.notifier.Create(ctx, n); err != nil {
			s.logger.Warn("failed to notify enrolled student", zap.String("user_id", student.ID), zap.Error(err))
		}
	}

	return class, nil
}

// RemoveStudent drops a school ID from the roster. Removing an absent
// member is a no-op.
func (s *ClassService) RemoveStudent(ctx context.Context, teacherID, id, schoolID string) (*models.Class, error) {
	class, err := s.loadOwned(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}

	kept := class.StudentIDs[:0]
	for _, sid := range class.StudentIDs {
		if sid != schoolID {
			kept = append(kept, sid)
		}
	}
	class.StudentIDs = kept

	if err := s.classes.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to update roster")
	}
	return class, nil
}

func (s *ClassService) loadClass(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

func (s *ClassService) loadOwned(ctx context.Context, teacherID, id string) (*models.Class, error) {
	class, err := s.loadClass(ctx, id)
	if err != nil {
		return nil, err
	}
	if class.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "class belongs to another teacher")
	}
	return class, nil
}
