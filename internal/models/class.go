package models

import "time"

// Class is a teacher-owned course roster.
//
// StudentIDs holds school IDs (the user-chosen SchoolID strings), not User
// record IDs. This matches the persisted data of the original application;
// resolving enrolment to users means scanning accounts and matching
// SchoolID together with the student role. See DESIGN.md.
type Class struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	TeacherID   string    `json:"teacher_id"`
	TeacherName string    `json:"teacher_name"`
	StudentIDs  []string  `json:"student_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasStudent reports whether the given school ID is enrolled.
func (c *Class) HasStudent(schoolID string) bool {
	for _, id := range c.StudentIDs {
		if id == schoolID {
			return true
		}
	}
	return false
}

// CreateClassRequest carries the fields for a new class.
type CreateClassRequest struct {
	Name        string `json:"name" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// UpdateClassRequest carries partial edits. Nil fields are left unchanged.
type UpdateClassRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Subject     *string `json:"subject,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// AddStudentRequest enrols a student into a class by school ID.
type AddStudentRequest struct {
	SchoolID string `json:"school_id" validate:"required"`
}

// ClassDetail pairs a class with its resolved student roster.
type ClassDetail struct {
	Class    Class      `json:"class"`
	Students []UserInfo `json:"students"`
}
