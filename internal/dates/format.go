package dates

import (
	"fmt"
	"time"
)

// FormatDueDate renders a due date for display: "Today", "Tomorrow",
// "Overdue (Jan 2)", the weekday name inside the current week, or a
// full date otherwise.
func FormatDueDate(now, due time.Time) string {
	if due.IsZero() {
		return ""
	}
	switch {
	case IsToday(now, due):
		return "Today"
	case IsTomorrow(now, due):
		return "Tomorrow"
	case IsOverdue(now, due):
		return fmt.Sprintf("Overdue (%s)", due.Format("Jan 2"))
	case SameWeek(now, due):
		return due.Format("Monday")
	default:
		return due.Format("Jan 2, 2006")
	}
}

// FormatDueDateWithTime appends the due time unless it is the default
// end-of-day value.
func FormatDueDateWithTime(now, due time.Time, dueTime string) string {
	if due.IsZero() {
		return ""
	}
	dateStr := FormatDueDate(now, due)
	if dueTime != "" && dueTime != "23:59" {
		return fmt.Sprintf("%s at %s", dateStr, dueTime)
	}
	return dateStr
}

// FormatForInput renders a date as an HTML date-input value.
func FormatForInput(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// RelativeTime renders a coarse human distance between now and t,
// such as "3 days ago" or "in 2 hours".
func RelativeTime(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	past := d >= 0
	if !past {
		d = -d
	}

	var phrase string
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		phrase = plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		phrase = plural(int(d.Hours()), "hour")
	case d < 30*24*time.Hour:
		phrase = plural(int(d.Hours()/24), "day")
	case d < 365*24*time.Hour:
		phrase = plural(int(d.Hours()/(24*30)), "month")
	default:
		phrase = plural(int(d.Hours()/(24*365)), "year")
	}

	if past {
		return phrase + " ago"
	}
	return "in " + phrase
}

func plural(n int, unit string) string {
	if n <= 1 {
		n = 1
	}
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
