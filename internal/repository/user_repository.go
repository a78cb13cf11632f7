package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studytrack/studytrack-api/internal/models"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

// UserRepository provides record-store access for accounts.
type UserRepository struct {
	store *kvstore.Store
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(store *kvstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) load() ([]models.User, int64, error) {
	var users []models.User
	version, err := r.store.Load(collectionUsers, &users)
	if err != nil {
		return nil, 0, fmt.Errorf("load users: %w", err)
	}
	return users, version, nil
}

// Create appends a new user, stamping ID and timestamps.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	users, version, err := r.load()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user.ID = models.NewID()
	user.CreatedAt = now
	user.UpdatedAt = now

	users = append(users, *user)
	if _, err := r.store.Save(collectionUsers, version, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	users, _, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			u := users[i]
			return &u, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

// FindByEmail returns a user by email address, case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	users, _, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			u := users[i]
			return &u, nil
		}
	}
	return nil, kvstore.ErrNotFound
}

// Update replaces the stored user matching the record's ID.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	users, version, err := r.load()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == user.ID {
			user.UpdatedAt = time.Now().UTC()
			users[i] = *user
			if _, err := r.store.Save(collectionUsers, version, users); err != nil {
				return fmt.Errorf("save users: %w", err)
			}
			return nil
		}
	}
	return kvstore.ErrNotFound
}

// List returns every stored user.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	users, _, err := r.load()
	if err != nil {
		return nil, err
	}
	return users, nil
}

// FindStudentsBySchoolIDs resolves class enrolment: school IDs are
// matched against the SchoolID of accounts with the student role.
func (r *UserRepository) FindStudentsBySchoolIDs(ctx context.Context, schoolIDs []string) ([]models.User, error) {
	if len(schoolIDs) == 0 {
		return []models.User{}, nil
	}
	users, _, err := r.load()
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(schoolIDs))
	for _, id := range schoolIDs {
		wanted[id] = struct{}{}
	}
	matched := make([]models.User, 0, len(schoolIDs))
	for _, u := range users {
		if u.Role != models.RoleStudent {
			continue
		}
		if _, ok := wanted[u.SchoolID]; ok {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

// FindStudentBySchoolID returns the student account carrying the given
// school ID.
func (r *UserRepository) FindStudentBySchoolID(ctx context.Context, schoolID string) (*models.User, error) {
	users, _, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Role == models.RoleStudent && users[i].SchoolID == schoolID {
			u := users[i]
			return &u, nil
		}
	}
	return nil, kvstore.ErrNotFound
}
