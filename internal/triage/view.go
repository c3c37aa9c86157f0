package triage

import (
	"time"

	"github.com/fieldcrm/triaged/internal/model"
)

// Section identifies one display group of the batch view, in fixed order.
type Section string

const (
	SectionOverdue   Section = "overdue"
	SectionDueToday  Section = "due_today"
	SectionUpcoming  Section = "upcoming"
	SectionTriaged   Section = "triaged"
	SectionDismissed Section = "dismissed"
)

// SectionOrder is the fixed display order of the batch view.
var SectionOrder = []Section{
	SectionOverdue,
	SectionDueToday,
	SectionUpcoming,
	SectionTriaged,
	SectionDismissed,
}

// ViewState is the derived, render-ready shape of one task snapshot under
// the active filters. All fields are recomputed from scratch whenever the
// snapshot or the filters change.
type ViewState struct {
	Sections map[Section][]model.UnifiedTask
	Visible  []model.UnifiedTask
	Counts   map[Section]int
}

// Derive computes the visible task list from a fetched snapshot. The three
// due-date sections hold pending tasks bucketed by due date; triaged and
// dismissed are picked out by status. Only sections whose visibility toggle
// is on contribute to Visible, concatenated in SectionOrder. Counts always
// reflect the full snapshot regardless of toggles.
func Derive(tasks []model.UnifiedTask, filters Filters, now time.Time) ViewState {
	pending := make([]model.UnifiedTask, 0, len(tasks))
	triaged := make([]model.UnifiedTask, 0)
	dismissed := make([]model.UnifiedTask, 0)
	for _, task := range tasks {
		if !filters.MatchesType(task) {
			continue
		}
		switch task.Status {
		case model.StatusTriaged:
			triaged = append(triaged, task)
		case model.StatusDismissed:
			dismissed = append(dismissed, task)
		case model.StatusPending:
			pending = append(pending, task)
		}
	}

	buckets := Categorize(pending, now)
	sections := map[Section][]model.UnifiedTask{
		SectionOverdue:   buckets.Overdue,
		SectionDueToday:  buckets.DueToday,
		SectionUpcoming:  buckets.Upcoming,
		SectionTriaged:   triaged,
		SectionDismissed: dismissed,
	}

	counts := make(map[Section]int, len(sections))
	for section, items := range sections {
		counts[section] = len(items)
	}

	visible := make([]model.UnifiedTask, 0, len(tasks))
	for _, section := range SectionOrder {
		if !sectionVisible(section, filters) {
			continue
		}
		visible = append(visible, sections[section]...)
	}

	return ViewState{Sections: sections, Visible: visible, Counts: counts}
}

// ShowsSection reports whether a section's visibility toggle is on.
func (f Filters) ShowsSection(section Section) bool {
	return sectionVisible(section, f)
}

func sectionVisible(section Section, filters Filters) bool {
	switch section {
	case SectionOverdue:
		return filters.ShowOverdue
	case SectionDueToday:
		return filters.ShowDueToday
	case SectionUpcoming:
		return filters.ShowUpcoming
	case SectionTriaged:
		return filters.ShowTriaged
	case SectionDismissed:
		return filters.ShowDismissed
	default:
		return false
	}
}
