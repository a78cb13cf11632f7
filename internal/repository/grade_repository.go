package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/studytrack/studytrack-api/internal/models"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

// GradeRepository provides record-store access for grades.
type GradeRepository struct {
	store *kvstore.Store
}

// NewGradeRepository creates a new instance of GradeRepository.
func NewGradeRepository(store *kvstore.Store) *GradeRepository {
	return &GradeRepository{store: store}
}

func (r *GradeRepository) load() ([]models.Grade, int64, error) {
	var grades []models.Grade
	version, err := r.store.Load(collectionGrades, &grades)
	if err != nil {
		return nil, 0, fmt.Errorf("load grades: %w", err)
	}
	return grades, version, nil
}

// Create appends a new grade, stamping ID and timestamps.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	grades, version, err := r.load()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	grade.ID = models.NewID()
	grade.CreatedAt = now
	grade.UpdatedAt = now

	grades = append(grades, *grade)
	if _, err := r.store.Save(collectionGrades, version, grades); err != nil {
		return fmt.Errorf("save grades: %w", err)
	}
	return nil
}

// FindByID returns a grade by identifier.
func (r *GradeRepository) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	grades, _, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range grades {
		if grades[i].ID == id {
			g := grades[i]
			return &g, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

// ListByStudent returns a student's grades sorted by date received,
// most recent first.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	grades, _, err := r.load()
	if err != nil {
		return nil, err
	}
	owned := make([]models.Grade, 0)
	for _, g := range grades {
		if g.StudentID == studentID {
			owned = append(owned, g)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].DateReceived.After(owned[j].DateReceived)
	})
	return owned, nil
}

// Update replaces the stored grade matching the record's ID.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	grades, version, err := r.load()
	if err != nil {
		return err
	}
	for i := range grades {
		if grades[i].ID == grade.ID {
			grade.UpdatedAt = time.Now().UTC()
			grades[i] = *grade
			if _, err := r.store.Save(collectionGrades, version, grades); err != nil {
				return fmt.Errorf("save grades: %w", err)
			}
			return nil
		}
	}
	return kvstore.ErrNotFound
}

// Delete removes a grade. Deleting an absent ID is not an error.
func (r *GradeRepository) Delete(ctx context.Context, id string) error {
	grades, version, err := r.load()
	if err != nil {
		return err
	}
	remaining := grades[:0]
	for _, g := range grades {
		if g.ID != id {
			remaining = append(remaining, g)
		}
	}
	if _, err := r.store.Save(collectionGrades, version, remaining); err != nil {
		return fmt.Errorf("save grades: %w", err)
	}
	return nil
}
