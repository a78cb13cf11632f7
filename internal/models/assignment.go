package models

import "time"

// AssignmentType classifies how an assignment recurs.
type AssignmentType string

const (
	AssignmentDaily     AssignmentType = "daily"
	AssignmentProject   AssignmentType = "project"
	AssignmentRecurring AssignmentType = "recurring"
)

// AssignmentStatus tracks completion progress.
type AssignmentStatus string

const (
	StatusNotStarted AssignmentStatus = "not-started"
	StatusInProgress AssignmentStatus = "in-progress"
	StatusCompleted  AssignmentStatus = "completed"
)

// Valid reports whether the status is one of the known values.
func (s AssignmentStatus) Valid() bool {
	return s == StatusNotStarted || s == StatusInProgress || s == StatusCompleted
}

// Milestone is an intermediate step of a project assignment.
type Milestone struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	DueDate time.Time        `json:"due_date"`
	Status  AssignmentStatus `json:"status"`
}

// Recurrence describes how a recurring assignment repeats.
type Recurrence struct {
	Pattern    string     `json:"pattern"`
	DaysOfWeek []string   `json:"days_of_week,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

// Author records who created an assignment.
type Author struct {
	ID   string   `json:"id"`
	Role UserRole `json:"role"`
	Name string   `json:"name"`
}

// Assignment is a unit of schoolwork owned by a student.
type Assignment struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ClassID     *string          `json:"class_id"`
	ClassName   string           `json:"class_name"`
	Subject     string           `json:"subject"`
	DueDate     time.Time        `json:"due_date"`
	DueTime     string           `json:"due_time"`
	Type        AssignmentType   `json:"type"`
	Status      AssignmentStatus `json:"status"`
	StudentID   string           `json:"student_id"`
	CreatedBy   *Author          `json:"created_by,omitempty"`
	Milestones  []Milestone      `json:"milestones,omitempty"`
	Recurrence  *Recurrence      `json:"recurrence,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Completed reports whether the assignment is done.
func (a *Assignment) Completed() bool {
	return a.Status == StatusCompleted
}

// CreateAssignmentRequest carries the fields for a new assignment.
type CreateAssignmentRequest struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description"`
	ClassID     *string     `json:"class_id"`
	ClassName   string      `json:"class_name"`
	Subject     string      `json:"subject"`
	DueDate     time.Time   `json:"due_date" validate:"required"`
	DueTime     string      `json:"due_time"`
	Type        AssignmentType `json:"type" validate:"required,oneof=daily project recurring"`
	Milestones  []Milestone `json:"milestones,omitempty"`
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
}

// UpdateAssignmentRequest carries partial edits. Nil fields are left
// unchanged.
type UpdateAssignmentRequest struct {
	Title       *string     `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string     `json:"description,omitempty"`
	ClassName   *string     `json:"class_name,omitempty"`
	Subject     *string     `json:"subject,omitempty"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	DueTime     *string     `json:"due_time,omitempty"`
	Type        *AssignmentType `json:"type,omitempty" validate:"omitempty,oneof=daily project recurring"`
	Milestones  []Milestone `json:"milestones,omitempty"`
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
}

// UpdateStatusRequest changes an assignment's progress.
type UpdateStatusRequest struct {
	Status AssignmentStatus `json:"status" validate:"required,oneof=not-started in-progress completed"`
}

// AssignmentFilter narrows list results.
type AssignmentFilter struct {
	Status AssignmentStatus `form:"status" validate:"omitempty,oneof=not-started in-progress completed"`
	Type   AssignmentType   `form:"type" validate:"omitempty,oneof=daily project recurring"`
}
