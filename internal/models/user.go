package models

import "time"

// UserRole distinguishes the two account types.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
)

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// UserSettings holds per-user preferences.
type UserSettings struct {
	NotificationsEnabled bool `json:"notifications_enabled"`
	DarkMode             bool `json:"dark_mode"`
}

// User represents an account in the users collection. The password is
// persisted as entered; it is never serialised into API responses, which
// carry UserInfo instead.
type User struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	Password  string       `json:"password"`
	FullName  string       `json:"full_name"`
	SchoolID  string       `json:"school_id"`
	Role      UserRole     `json:"role"`
	Settings  UserSettings `json:"settings"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Info converts the user to its response representation.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		SchoolID: u.SchoolID,
		Role:     u.Role,
		Settings: u.Settings,
	}
}

// UpdateProfileRequest carries the editable profile fields. Nil fields are
// left unchanged.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1"`
	SchoolID *string `json:"school_id,omitempty" validate:"omitempty,min=1"`
}

// UpdateSettingsRequest carries preference toggles. Nil fields are left
// unchanged.
type UpdateSettingsRequest struct {
	NotificationsEnabled *bool `json:"notifications_enabled,omitempty"`
	DarkMode             *bool `json:"dark_mode,omitempty"`
}

// UserInfo describes a user in API responses, without the password.
type UserInfo struct {
	ID       string       `json:"id"`
	Email    string       `json:"email"`
	FullName string       `json:"full_name"`
	SchoolID string       `json:"school_id"`
	Role     UserRole     `json:"role"`
	Settings UserSettings `json:"settings"`
}
