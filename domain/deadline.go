package domain

import (
	"fmt"
	"time"
)

// DisplayLayout formats timestamps in the task details view.
const DisplayLayout = "Jan 02, 2006 at 03:04 PM"

const (
	WarningCompletedLate   = "✅ Completed after deadline."
	WarningCompletedOnTime = "✅ Completed on time."
	WarningOverdue         = "⚠️ Did not complete the task on time"
)

// Deadline describes how a task stands against its due date. At most one of
// the fields is set.
type Deadline struct {
	TimeRemaining string
	Warning       string
}

// DeadlineFor evaluates a YYYY-MM-DD due date at now. The deadline is the end
// of the due day in now's location. Empty or malformed dates yield a zero
// Deadline.
func DeadlineFor(dueDate string, done bool, now time.Time) Deadline {
	if dueDate == "" {
		return Deadline{}
	}
	day, err := time.ParseInLocation(DueDateLayout, dueDate, now.Location())
	if err != nil {
		return Deadline{}
	}
	end := day.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	late := now.After(end)
	switch {
	case done && late:
		return Deadline{Warning: WarningCompletedLate}
	case done:
		return Deadline{Warning: WarningCompletedOnTime}
	case late:
		return Deadline{Warning: WarningOverdue}
	}
	left := end.Sub(now)
	days := int(left / (24 * time.Hour))
	hours := int((left % (24 * time.Hour)) / time.Hour)
	if days > 0 {
		return Deadline{TimeRemaining: fmt.Sprintf("%d days and %d hours remaining", days, hours)}
	}
	return Deadline{TimeRemaining: fmt.Sprintf("%d hours remaining", hours)}
}

// FormatDisplayTime renders t for the details view, or "N/A" when unset.
func FormatDisplayTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(DisplayLayout)
}
