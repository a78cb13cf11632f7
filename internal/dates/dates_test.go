package dates

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studytrack/studytrack-api/internal/models"
)

// Wednesday, May 15 2024. The surrounding Sunday-started week runs
// May 12 through May 18.
var now = time.Date(2024, 5, 15, 10, 30, 0, 0, time.UTC)

func day(offset int) time.Time {
	return time.Date(2024, 5, 15, 23, 59, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestDaysUntil(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"later today", day(0), 0},
		{"tomorrow just after midnight", time.Date(2024, 5, 16, 0, 1, 0, 0, time.UTC), 1},
		{"yesterday", day(-1), -1},
		{"next week", day(7), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(now, tt.due))
		})
	}
}

func TestIsOverdue(t *testing.T) {
	assert.True(t, IsOverdue(now, day(-1)))
	assert.True(t, IsOverdue(now, day(-30)))

	// Due today is not overdue, even if the timestamp already passed.
	assert.False(t, IsOverdue(now, time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)))
	assert.False(t, IsOverdue(now, day(0)))
	assert.False(t, IsOverdue(now, day(3)))
	assert.False(t, IsOverdue(now, time.Time{}))
}

func TestIsDueSoon(t *testing.T) {
	assert.True(t, IsDueSoon(now, day(0)))
	assert.True(t, IsDueSoon(now, day(7)))
	assert.False(t, IsDueSoon(now, day(8)))
	assert.False(t, IsDueSoon(now, day(-1)))
	assert.False(t, IsDueSoon(now, time.Time{}))
}

func TestUrgencyFor(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		want Urgency
	}{
		{"yesterday is overdue", day(-1), UrgencyOverdue},
		{"today is urgent", day(0), UrgencyUrgent},
		{"tomorrow is urgent", day(1), UrgencyUrgent},
		{"two days out is high", day(2), UrgencyHigh},
		{"three days out is medium", day(3), UrgencyMedium},
		{"a week out is medium", day(7), UrgencyMedium},
		{"beyond a week is low", day(8), UrgencyLow},
		{"no due date is low", time.Time{}, UrgencyLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UrgencyFor(now, tt.due))
		})
	}
}

func TestSameWeek(t *testing.T) {
	assert.True(t, SameWeek(now, time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC)))  // Sunday
	assert.True(t, SameWeek(now, time.Date(2024, 5, 18, 23, 0, 0, 0, time.UTC))) // Saturday
	assert.False(t, SameWeek(now, time.Date(2024, 5, 19, 0, 0, 0, 0, time.UTC))) // next Sunday
	assert.False(t, SameWeek(now, time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC)))
}

func assignment(id string, due time.Time, status models.AssignmentStatus) models.Assignment {
	return models.Assignment{ID: id, Title: id, DueDate: due, Status: status, StudentID: "s1"}
}

func TestGroupByDueDateBuckets(t *testing.T) {
	input := []models.Assignment{
		assignment("overdue", day(-2), models.StatusNotStarted),
		assignment("today", day(0), models.StatusInProgress),
		assignment("tomorrow", day(1), models.StatusNotStarted),
		assignment("friday", day(2), models.StatusNotStarted), // Friday, same week
		assignment("next-month", day(20), models.StatusNotStarted),
	}

	got := GroupByDueDate(now, input)

	require.Len(t, got.Overdue, 1)
	assert.Equal(t, "overdue", got.Overdue[0].ID)
	require.Len(t, got.Today, 1)
	assert.Equal(t, "today", got.Today[0].ID)
	require.Len(t, got.Tomorrow, 1)
	assert.Equal(t, "tomorrow", got.Tomorrow[0].ID)
	require.Len(t, got.ThisWeek, 1)
	assert.Equal(t, "friday", got.ThisWeek[0].ID)
	require.Len(t, got.Later, 1)
	assert.Equal(t, "next-month", got.Later[0].ID)
}

func TestGroupByDueDateCompletedNeverOverdue(t *testing.T) {
	// Completed Monday of this week: past due, but completed work skips
	// the overdue bucket and falls through to its calendar bucket.
	completed := assignment("done", day(-2), models.StatusCompleted)
	// Completed far in the past lands in later.
	ancient := assignment("ancient", day(-60), models.StatusCompleted)

	got := GroupByDueDate(now, []models.Assignment{completed, ancient})

	assert.Empty(t, got.Overdue)
	require.Len(t, got.ThisWeek, 1)
	assert.Equal(t, "done", got.ThisWeek[0].ID)
	require.Len(t, got.Later, 1)
	assert.Equal(t, "ancient", got.Later[0].ID)
}

func TestGroupByDueDatePartitionIsExhaustiveAndDisjoint(t *testing.T) {
	var input []models.Assignment
	statuses := []models.AssignmentStatus{models.StatusNotStarted, models.StatusInProgress, models.StatusCompleted}
	for offset := -10; offset <= 10; offset++ {
		for _, status := range statuses {
			input = append(input, assignment(
				string(status)+"@"+strconv.Itoa(offset), day(offset), status))
		}
	}

	got := GroupByDueDate(now, input)
	assert.Equal(t, len(input), got.Total())

	seen := map[string]int{}
	for _, bucket := range [][]models.Assignment{got.Overdue, got.Today, got.Tomorrow, got.ThisWeek, got.Later} {
		for _, a := range bucket {
			seen[a.ID]++
		}
	}
	for id, count := range seen {
		assert.Equalf(t, 1, count, "assignment %s appeared %d times", id, count)
	}
	assert.Len(t, seen, len(input))
}

func TestSpecScenarios(t *testing.T) {
	t.Run("yesterday not-started", func(t *testing.T) {
		a := assignment("a", day(-1), models.StatusNotStarted)
		assert.True(t, IsOverdue(now, a.DueDate))
		assert.Equal(t, UrgencyOverdue, UrgencyFor(now, a.DueDate))
		got := GroupByDueDate(now, []models.Assignment{a})
		require.Len(t, got.Overdue, 1)
	})

	t.Run("today not-started", func(t *testing.T) {
		a := assignment("a", day(0), models.StatusNotStarted)
		assert.False(t, IsOverdue(now, a.DueDate))
		assert.Equal(t, UrgencyUrgent, UrgencyFor(now, a.DueDate))
		got := GroupByDueDate(now, []models.Assignment{a})
		require.Len(t, got.Today, 1)
		assert.Empty(t, got.Overdue)
	})
}

func TestFormatDueDate(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		want string
	}{
		{"today", day(0), "Today"},
		{"tomorrow", day(1), "Tomorrow"},
		{"overdue", time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC), "Overdue (May 10)"},
		{"this week", day(2), "Friday"},
		{"later", time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC), "Jun 20, 2024"},
		{"zero", time.Time{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDueDate(now, tt.due))
		})
	}
}

func TestFormatDueDateWithTime(t *testing.T) {
	assert.Equal(t, "Today at 14:00", FormatDueDateWithTime(now, day(0), "14:00"))
	assert.Equal(t, "Today", FormatDueDateWithTime(now, day(0), "23:59"))
	assert.Equal(t, "Tomorrow", FormatDueDateWithTime(now, day(1), ""))
}

func TestRelativeTime(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"just now", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"hours ago", now.Add(-3 * time.Hour), "3 hours ago"},
		{"days ago", now.Add(-72 * time.Hour), "3 days ago"},
		{"future hours", now.Add(2*time.Hour + time.Minute), "in 2 hours"},
		{"future days", now.Add(49 * time.Hour), "in 2 days"},
		{"months ago", now.Add(-24 * time.Hour * 65), "2 months ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(now, tt.t))
		})
	}
}

func TestFormatForInput(t *testing.T) {
	assert.Equal(t, "2024-05-15", FormatForInput(now))
	assert.Equal(t, "", FormatForInput(time.Time{}))
}
