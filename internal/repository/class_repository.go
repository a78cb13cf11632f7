package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/studytrack/studytrack-api/internal/models"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

// ClassRepository provides record-store access for classes.
type ClassRepository struct {
	store *kvstore.Store
}

// NewClassRepository creates a new instance of ClassRepository.
func NewClassRepository(store *kvstore.Store) *ClassRepository {
	return &ClassRepository{store: store}
}

func (r *ClassRepository) load() ([]models.Class, int64, error) {
	var classes []models.Class
	version, err := r.store.Load(collectionClasses, &classes)
	if err != nil {
		return nil, 0, fmt.Errorf("load classes: %w", err)
	}
	return classes, version, nil
}

// Create appends a new class, stamping ID and timestamps. The roster
// starts empty.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	classes, version, err := r.load()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	class.ID = models.NewID()
	class.CreatedAt = now
	class.UpdatedAt = now
	if class.StudentIDs == nil {
		class.StudentIDs = []string{}
	}

	classes = append(classes, *class)
	if _, err := r.store.Save(collectionClasses, version, classes); err != nil {
		return fmt.Errorf("save classes: %w", err)
	}
	return nil
}

// FindByID returns a class by identifier.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	classes, _, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range classes {
		if classes[i].ID == id {
			c := classes[i]
			return &c, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

// ListByTeacher returns the classes owned by a teacher.
func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error) {
	classes, _, err := r.load()
	if err != nil {
		return nil, err
	}
	owned := make([]models.Class, 0)
	for _, c := range classes {
		if c.TeacherID == teacherID {
			owned = append(owned, c)
		}
	}
	return owned, nil
}

// ListByStudentSchoolID returns the classes whose roster contains the
// given school ID.
func (r *ClassRepository) ListByStudentSchoolID(ctx context.Context, schoolID string) ([]models.Class, error) {
	classes, _, err := r.load()
	if err != nil {
		return nil, err
	}
	enrolled := make([]models.Class, 0)
	for _, c := range classes {
		if c.HasStudent(schoolID) {
			enrolled = append(enrolled, c)
		}
	}
	return enrolled, nil
}

// Update replaces the stored class matching the record's ID.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	classes, version, err := r.load()
	if err != nil {
		return err
	}
	for i := range classes {
		if classes[i].ID == class.ID {
			class.UpdatedAt = time.Now().UTC()
			classes[i] = *class
			if _, err := r.store.Save(collectionClasses, version, classes); err != nil {
				return fmt.Errorf("save classes: %w", err)
			}
			return nil
		}
	}
	return kvstore.ErrNotFound
}

// Delete removes a class. Deleting an absent ID is not an error.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	classes, version, err := r.load()
	if err != nil {
		return err
	}
	remaining := classes[:0]
	for _, c := range classes {
		if c.ID != id {
			remaining = append(remaining, c)
		}
	}
	if _, err := r.store.Save(collectionClasses, version, remaining); err != nil {
		return fmt.Errorf("save classes: %w", err)
	}
	return nil
}
