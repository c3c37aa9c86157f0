package update

import (
	"github.com/fieldcrm/triaged/internal/model"
	"github.com/fieldcrm/triaged/internal/triage"
	"github.com/fieldcrm/triaged/internal/views"
)

var sectionTitles = map[triage.Section]string{
	triage.SectionOverdue:   "overdue",
	triage.SectionDueToday:  "due today",
	triage.SectionUpcoming:  "upcoming",
	triage.SectionTriaged:   "triaged",
	triage.SectionDismissed: "dismissed",
}

func (m Model) batchPanelData() views.BatchPanelData {
	cursorTask, hasCursor := m.currentTask()
	now := m.deps.Clock()

	var sections []views.BatchSectionData
	for _, section := range triage.SectionOrder {
		data := views.BatchSectionData{
			Title:     sectionTitles[section],
			Count:     m.ViewState.Counts[section],
			Collapsed: m.Collapsed[section],
		}
		if !m.Filters.ShowsSection(section) {
			data.Hidden = true
			sections = append(sections, data)
			continue
		}
		for _, task := range m.ViewState.Sections[section] {
			item := views.BatchItemData{
				ID:          task.ID,
				Title:       task.Title,
				Source:      string(task.Source),
				TaskType:    string(task.Type),
				ContactName: task.ContactName,
				CadenceName: task.CadenceName,
				DueDate:     task.DueDate.Format("2006-01-02"),
				Selected:    m.Selection.Has(task.Ref()),
				AtCursor:    hasCursor && cursorTask.Ref() == task.Ref(),
			}
			if section == triage.SectionOverdue {
				item.Severity = string(triage.Severity(task.DueDate, now))
				item.DaysOverdue = triage.DaysOverdue(task.DueDate, now)
			}
			data.Items = append(data.Items, item)
		}
		sections = append(sections, data)
	}

	return views.BatchPanelData{
		Sections:      sections,
		SelectedCount: m.Selection.Count(),
	}
}

func (m Model) toolbarData() views.ToolbarData {
	toggles := []string{
		toggleLabel("1:overdue", m.Filters.ShowOverdue),
		toggleLabel("2:today", m.Filters.ShowDueToday),
		toggleLabel("3:upcoming", m.Filters.ShowUpcoming),
		toggleLabel("4:triaged", m.Filters.ShowTriaged),
		toggleLabel("5:dismissed", m.Filters.ShowDismissed),
	}
	rangeLabel := string(m.Filters.DateRange)
	if m.Filters.DateRange == triage.RangeCustom {
		rangeLabel = "custom"
		if m.Filters.CustomFrom != nil {
			rangeLabel += " " + m.Filters.CustomFrom.Format("2006-01-02")
		}
		if m.Filters.CustomTo != nil {
			rangeLabel += "..." + m.Filters.CustomTo.Format("2006-01-02")
		}
	}
	return views.ToolbarData{
		TaskType:      m.Filters.TaskType,
		DateRange:     rangeLabel,
		Toggles:       toggles,
		SelectedCount: m.Selection.Count(),
	}
}

func toggleLabel(name string, on bool) string {
	if on {
		return "[" + name + "]"
	}
	return " " + name + " "
}

func (m Model) detailData() views.DetailData {
	task, ok := m.currentTask()
	if !ok {
		return views.DetailData{}
	}
	data := views.DetailData{
		Title:       task.Title,
		Source:      string(task.Source),
		TaskType:    string(task.Type),
		ContactName: task.ContactName,
		CadenceName: task.CadenceName,
		DueDate:     task.DueDate.Format("2006-01-02"),
		Status:      string(task.Status),
	}
	now := m.deps.Clock()
	if task.Status == model.StatusPending && task.DueDate.Before(model.DateOnly(now)) {
		data.Severity = string(triage.Severity(task.DueDate, now))
		data.DaysOverdue = triage.DaysOverdue(task.DueDate, now)
	}
	if task.Notes != "" {
		data.NotesView = views.RenderMarkdown(task.Notes)
	}
	return data
}
