// Package dates holds the due-date math behind urgency tiers, overdue
// checks, and the five-way grouping used by list and dashboard views.
// Every function takes the current time explicitly so callers inject a
// Clock and tests stay deterministic.
package dates

import (
	"time"

	"github.com/studytrack/studytrack-api/internal/models"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System is the wall-clock Clock used outside tests.
var System Clock = systemClock{}

// Urgency classifies due-date proximity.
type Urgency string

const (
	UrgencyOverdue Urgency = "overdue"
	UrgencyUrgent  Urgency = "urgent"
	UrgencyHigh    Urgency = "high"
	UrgencyMedium  Urgency = "medium"
	UrgencyLow     Urgency = "low"
)

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysUntil returns the calendar-day difference between now and due:
// 0 for the same day, 1 for tomorrow, negative for past days. Using
// start-of-day deltas keeps the result independent of the wall-clock
// hour on either side.
func DaysUntil(now, due time.Time) int {
	delta := StartOfDay(due).Sub(StartOfDay(now))
	return int(delta / (24 * time.Hour))
}

// IsOverdue reports whether due falls strictly before the start of
// today. A due date of today is not overdue.
func IsOverdue(now, due time.Time) bool {
	if due.IsZero() {
		return false
	}
	return due.Before(StartOfDay(now))
}

// IsToday reports whether due falls on the current calendar day.
func IsToday(now, due time.Time) bool {
	return DaysUntil(now, due) == 0
}

// IsTomorrow reports whether due falls on the next calendar day.
func IsTomorrow(now, due time.Time) bool {
	return DaysUntil(now, due) == 1
}

// SameWeek reports whether due falls inside the Sunday-started week
// containing now.
func SameWeek(now, due time.Time) bool {
	weekStart := StartOfDay(now).AddDate(0, 0, -int(now.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 7)
	return !due.Before(weekStart) && due.Before(weekEnd)
}

// IsDueSoon reports whether due lands within the next seven calendar
// days, today included.
func IsDueSoon(now, due time.Time) bool {
	if due.IsZero() {
		return false
	}
	days := DaysUntil(now, due)
	return days >= 0 && days <= 7
}

// UrgencyFor maps a due date to its urgency tier. Boundaries are
// inclusive on the low side, so a due date of today (zero days out)
// is urgent.
func UrgencyFor(now, due time.Time) Urgency {
	if due.IsZero() {
		return UrgencyLow
	}
	if IsOverdue(now, due) {
		return UrgencyOverdue
	}
	switch days := DaysUntil(now, due); {
	case days <= 1:
		return UrgencyUrgent
	case days <= 2:
		return UrgencyHigh
	case days <= 7:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// Buckets partitions assignments by due-date relation to now. Every
// assignment lands in exactly one bucket.
type Buckets struct {
	Overdue  []models.Assignment `json:"overdue"`
	Today    []models.Assignment `json:"today"`
	Tomorrow []models.Assignment `json:"tomorrow"`
	ThisWeek []models.Assignment `json:"this_week"`
	Later    []models.Assignment `json:"later"`
}

// Total returns the number of assignments across all buckets.
func (b Buckets) Total() int {
	return len(b.Overdue) + len(b.Today) + len(b.Tomorrow) + len(b.ThisWeek) + len(b.Later)
}

// GroupByDueDate splits assignments into the five display buckets.
// Only incomplete work can be overdue; a completed assignment with a
// past due date falls through to its calendar bucket instead.
func GroupByDueDate(now time.Time, assignments []models.Assignment) Buckets {
	b := Buckets{
		Overdue:  []models.Assignment{},
		Today:    []models.Assignment{},
		Tomorrow: []models.Assignment{},
		ThisWeek: []models.Assignment{},
		Later:    []models.Assignment{},
	}
	for _, a := range assignments {
		switch {
		case IsOverdue(now, a.DueDate) && !a.Completed():
			b.Overdue = append(b.Overdue, a)
		case IsToday(now, a.DueDate):
			b.Today = append(b.Today, a)
		case IsTomorrow(now, a.DueDate):
			b.Tomorrow = append(b.Tomorrow, a)
		case SameWeek(now, a.DueDate):
			b.ThisWeek = append(b.ThisWeek, a)
		default:
			b.Later = append(b.Later, a)
		}
	}
	return b
}
