package triage

import (
	"time"

	"github.com/fieldcrm/triaged/internal/model"
)

type DateRange string

const (
	RangeAll    DateRange = "all"
	Range7Days  DateRange = "7days"
	Range30Days DateRange = "30days"
	RangeCustom DateRange = "custom"
)

func (r DateRange) IsValid() bool {
	switch r {
	case RangeAll, Range7Days, Range30Days, RangeCustom:
		return true
	default:
		return false
	}
}

// TypeFilterAll matches every task type.
const TypeFilterAll = "all"

// Filters is a plain value object holding the active visibility filters for
// the batch view. It is always replaced wholesale, never patched field by
// field, so a stale custom range can never survive a preset selection.
type Filters struct {
	TaskType   string
	DateRange  DateRange
	CustomFrom *time.Time
	CustomTo   *time.Time

	ShowOverdue   bool
	ShowDueToday  bool
	ShowUpcoming  bool
	ShowTriaged   bool
	ShowDismissed bool
}

// DefaultFilters matches the view-mount defaults: active work visible,
// resolved statuses hidden.
func DefaultFilters() Filters {
	return Filters{
		TaskType:     TypeFilterAll,
		DateRange:    RangeAll,
		ShowOverdue:  true,
		ShowDueToday: true,
		ShowUpcoming: true,
	}
}

// WithDateRange returns a copy with the range replaced. Choosing any preset
// clears previously entered custom bounds.
func (f Filters) WithDateRange(r DateRange) Filters {
	out := f
	out.DateRange = r
	if r != RangeCustom {
		out.CustomFrom = nil
		out.CustomTo = nil
	}
	return out
}

// WithCustomRange returns a copy using an explicit window.
func (f Filters) WithCustomRange(from, to *time.Time) Filters {
	out := f
	out.DateRange = RangeCustom
	out.CustomFrom = from
	out.CustomTo = to
	return out
}

// WithTaskType returns a copy filtered to one task type, or all.
func (f Filters) WithTaskType(taskType string) Filters {
	out := f
	out.TaskType = taskType
	return out
}

// Statuses lists the task statuses the fetch must include to satisfy the
// current toggles. Pending is always fetched; the due-date toggles only
// affect which buckets render, not what is read.
func (f Filters) Statuses() []model.TaskStatus {
	statuses := []model.TaskStatus{model.StatusPending}
	if f.ShowTriaged {
		statuses = append(statuses, model.StatusTriaged)
	}
	if f.ShowDismissed {
		statuses = append(statuses, model.StatusDismissed)
	}
	return statuses
}

// Window resolves the date range to concrete fetch bounds. Presets bound
// only the upper end so overdue work stays in scope; nil means unbounded.
func (f Filters) Window(now time.Time) (from, to *time.Time) {
	today := model.DateOnly(now)
	switch f.DateRange {
	case Range7Days:
		upper := today.AddDate(0, 0, 7)
		return nil, &upper
	case Range30Days:
		upper := today.AddDate(0, 0, 30)
		return nil, &upper
	case RangeCustom:
		return f.CustomFrom, f.CustomTo
	default:
		return nil, nil
	}
}

// MatchesType reports whether a task passes the task-type post-filter.
func (f Filters) MatchesType(task model.UnifiedTask) bool {
	if f.TaskType == "" || f.TaskType == TypeFilterAll {
		return true
	}
	return string(task.Type) == f.TaskType
}
