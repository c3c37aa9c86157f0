package triage

import (
	"time"

	"github.com/fieldcrm/triaged/internal/model"
)

// Buckets is the due-date trisection of a task list. Every input task lands
// in exactly one slice; categorization never drops a task.
type Buckets struct {
	Overdue  []model.UnifiedTask
	DueToday []model.UnifiedTask
	Upcoming []model.UnifiedTask
}

func (b Buckets) Total() int {
	return len(b.Overdue) + len(b.DueToday) + len(b.Upcoming)
}

// Categorize partitions tasks by comparing due dates against a single
// "today" derived once from now. Comparisons are date-only; time of day on
// either side is ignored.
func Categorize(tasks []model.UnifiedTask, now time.Time) Buckets {
	today := model.DateOnly(now)
	var b Buckets
	for _, task := range tasks {
		due := model.DateOnly(task.DueDate)
		switch {
		case due.Before(today):
			b.Overdue = append(b.Overdue, task)
		case due.Equal(today):
			b.DueToday = append(b.DueToday, task)
		default:
			b.Upcoming = append(b.Upcoming, task)
		}
	}
	return b
}

// OverdueSeverity is the escalation tier for an overdue task, used only for
// display emphasis.
type OverdueSeverity string

const (
	SeverityNone     OverdueSeverity = ""
	SeverityWarning  OverdueSeverity = "warning"
	SeverityDanger   OverdueSeverity = "danger"
	SeverityCritical OverdueSeverity = "critical"
	SeverityStale    OverdueSeverity = "stale"
)

// Severity maps days overdue to a tier. Upper bounds are inclusive:
// 1-3 warning, 4-7 danger, 8-30 critical, over 30 stale.
func Severity(dueDate, now time.Time) OverdueSeverity {
	days := DaysOverdue(dueDate, now)
	switch {
	case days <= 0:
		return SeverityNone
	case days <= 3:
		return SeverityWarning
	case days <= 7:
		return SeverityDanger
	case days <= 30:
		return SeverityCritical
	default:
		return SeverityStale
	}
}

// DaysOverdue counts whole calendar days between the due date and now,
// positive when the due date is in the past.
func DaysOverdue(dueDate, now time.Time) int {
	today := model.DateOnly(now)
	due := model.DateOnly(dueDate)
	return int(today.Sub(due) / (24 * time.Hour))
}
