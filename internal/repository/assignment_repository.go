package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/studytrack/studytrack-api/internal/models"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

// AssignmentRepository provides record-store access for assignments.
type AssignmentRepository struct {
	store *kvstore.Store
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(store *kvstore.Store) *AssignmentRepository {
	return &AssignmentRepository{store: store}
}

func (r *AssignmentRepository) load() ([]models.Assignment, int64, error) {
	var assignments []models.Assignment
	version, err := r.store.Load(collectionAssignments, &assignments)
	if err != nil {
		return nil, 0, fmt.Errorf("load assignments: %w", err)
	}
	return assignments, version, nil
}

// Create appends a new assignment, stamping ID and timestamps.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	assignments, version, err := r.load()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	assignment.ID = models.NewID()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	assignments = append(assignments, *assignment)
	if _, err := r.store.Save(collectionAssignments, version, assignments); err != nil {
		return fmt.Errorf("save assignments: %w", err)
	}
	return nil
}

// FindByID returns an assignment by identifier.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	assignments, _, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range assignments {
		if assignments[i].ID == id {
			a := assignments[i]
			return &a, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

// ListByStudent returns the assignments owned by a student, sorted by
// due date ascending.
func (r *AssignmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Assignment, error) {
	assignments, _, err := r.load()
	if err != nil {
		return nil, err
	}
	owned := make([]models.Assignment, 0)
	for _, a := range assignments {
		if a.StudentID == studentID {
			owned = append(owned, a)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].DueDate.Before(owned[j].DueDate)
	})
	return owned, nil
}

// ListByClass returns the assignments attached to a class.
func (r *AssignmentRepository) ListByClass(ctx context.Context, classID string) ([]models.Assignment, error) {
	assignments, _, err := r.load()
	if err != nil {
		return nil, err
	}
	matched := make([]models.Assignment, 0)
	for _, a := range assignments {
		if a.ClassID != nil && *a.ClassID == classID {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

// Update replaces the stored assignment matching the record's ID.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	assignments, version, err := r.load()
	if err != nil {
		return err
	}
	for i := range assignments {
		if assignments[i].ID == assignment.ID {
			assignment.UpdatedAt = time.Now().UTC()
			assignments[i] = *assignment
			if _, err := r.store.Save(collectionAssignments, version, assignments); err != nil {
				return fmt.Errorf("save assignments: %w", err)
			}
			return nil
		}
	}
	return kvstore.ErrNotFound
}

// Delete removes an assignment. Deleting an absent ID is not an error.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	assignments, version, err := r.load()
	if err != nil {
		return err
	}
	remaining := assignments[:0]
	for _, a := range assignments {
		if a.ID != id {
			remaining = append(remaining, a)
		}
	}
	if _, err := r.store.Save(collectionAssignments, version, remaining); err != nil {
		return fmt.Errorf("save assignments: %w", err)
	}
	return nil
}
