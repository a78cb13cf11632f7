package models

import "time"

// Grade records a received mark for a piece of work, on a 0-100 scale.
type Grade struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"student_id"`
	AssignmentName string    `json:"assignment_name"`
	ClassID        *string   `json:"class_id"`
	ClassName      string    `json:"class_name"`
	Value          float64   `json:"grade"`
	DateReceived   time.Time `json:"date_received"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateGradeRequest carries the fields for a new grade entry.
type CreateGradeRequest struct {
	AssignmentName string    `json:"assignment_name" validate:"required"`
	ClassID        *string   `json:"class_id"`
	ClassName      string    `json:"class_name"`
	Grade          float64   `json:"grade" validate:"min=0,max=100"`
	DateReceived   time.Time `json:"date_received"`
	Notes          string    `json:"notes,omitempty"`
}

// UpdateGradeRequest carries partial edits. Nil fields are left unchanged.
type UpdateGradeRequest struct {
	AssignmentName *string    `json:"assignment_name,omitempty" validate:"omitempty,min=1"`
	ClassName      *string    `json:"class_name,omitempty"`
	Grade          *float64   `json:"grade,omitempty" validate:"omitempty,min=0,max=100"`
	DateReceived   *time.Time `json:"date_received,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

// GradeBand buckets a 0-100 value into display tiers. Boundaries are
// inclusive upward: exactly 90 is the top band.
type GradeBand string

const (
	BandExcellent GradeBand = "excellent" // 90-100
	BandGood      GradeBand = "good"      // 80-89
	BandFair      GradeBand = "fair"      // 70-79
	BandWarning   GradeBand = "warning"   // 60-69
	BandPoor      GradeBand = "poor"      // below 60
)

// BandFor returns the band a grade value falls into.
func BandFor(value float64) GradeBand {
	switch {
	case value >= 90:
		return BandExcellent
	case value >= 80:
		return BandGood
	case value >= 70:
		return BandFair
	case value >= 60:
		return BandWarning
	default:
		return BandPoor
	}
}

// Label returns the numeric range the band covers.
func (b GradeBand) Label() string {
	switch b {
	case BandExcellent:
		return "90-100"
	case BandGood:
		return "80-89"
	case BandFair:
		return "70-79"
	case BandWarning:
		return "60-69"
	default:
		return "below 60"
	}
}

// Color returns the display color associated with the band.
func (b GradeBand) Color() string {
	switch b {
	case BandExcellent:
		return "green"
	case BandGood:
		return "blue"
	case BandFair:
		return "yellow"
	case BandWarning:
		return "orange"
	default:
		return "red"
	}
}
