package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fieldcrm/triaged/internal/model"
	"github.com/fieldcrm/triaged/internal/triage"
)

func (m Model) handleBatchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.ViewState.Visible)-1 {
			m.Cursor++
		}
	case " ":
		if task, ok := m.currentTask(); ok {
			m.Selection.Toggle(task.Ref())
		}
	case "x":
		if task, ok := m.currentTask(); ok {
			if section, found := m.sectionOf(task.Ref()); found {
				m.Selection.ToggleSection(m.ViewState.Sections[section])
			}
		}
	case "u":
		m.Selection.Clear()
		m.Status = StatusBar{Text: "selection cleared"}
	case "c":
		return m.openCompleteDialog()
	case "t":
		refs := m.transitionTargets()
		if len(refs) == 0 {
			m.Status = StatusBar{Text: "nothing to triage", IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: fmt.Sprintf("triaging %d task(s)...", len(refs))}
		return m, m.triageCmd(refs)
	case "d":
		refs := m.transitionTargets()
		if len(refs) == 0 {
			m.Status = StatusBar{Text: "nothing to dismiss", IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: fmt.Sprintf("dismissing %d task(s)...", len(refs))}
		return m, m.dismissCmd(refs)
	case "z":
		if task, ok := m.currentTask(); ok {
			if section, found := m.sectionOf(task.Ref()); found {
				m.Collapsed[section] = !m.Collapsed[section]
			}
		}
	case "f":
		return m.cycleTaskType()
	case "r":
		return m.cycleDateRange()
	case "1":
		return m.toggleSection(triage.SectionOverdue)
	case "2":
		return m.toggleSection(triage.SectionDueToday)
	case "3":
		return m.toggleSection(triage.SectionUpcoming)
	case "4":
		return m.toggleSection(triage.SectionTriaged)
	case "5":
		return m.toggleSection(triage.SectionDismissed)
	}
	return m, nil
}

func (m Model) openCompleteDialog() (Model, tea.Cmd) {
	refs := m.transitionTargets()
	if len(refs) == 0 {
		m.Status = StatusBar{Text: "nothing to complete", IsError: true}
		return m, nil
	}
	m.dialog = CompleteDialogState{Active: true, Targets: refs}
	m.notesArea.Reset()
	m.notesArea.Focus()
	m.Status = StatusBar{Text: fmt.Sprintf("completing %d task(s), notes required", len(refs))}
	return m, nil
}

var taskTypeCycle = []string{
	triage.TypeFilterAll,
	string(model.TypeCall),
	string(model.TypeEmail),
	string(model.TypeText),
	string(model.TypeMeeting),
	string(model.TypeSendMailer),
	string(model.TypeOther),
}

func (m Model) cycleTaskType() (Model, tea.Cmd) {
	next := taskTypeCycle[0]
	for i, t := range taskTypeCycle {
		if t == m.Filters.TaskType {
			next = taskTypeCycle[(i+1)%len(taskTypeCycle)]
			break
		}
	}
	return m.setFilters(m.Filters.WithTaskType(next))
}

var dateRangeCycle = []triage.DateRange{triage.RangeAll, triage.Range7Days, triage.Range30Days}

func (m Model) cycleDateRange() (Model, tea.Cmd) {
	next := dateRangeCycle[0]
	for i, r := range dateRangeCycle {
		if r == m.Filters.DateRange {
			next = dateRangeCycle[(i+1)%len(dateRangeCycle)]
			break
		}
	}
	return m.setFilters(m.Filters.WithDateRange(next))
}

func (m Model) toggleSection(section triage.Section) (Model, tea.Cmd) {
	f := m.Filters
	switch section {
	case triage.SectionOverdue:
		f.ShowOverdue = !f.ShowOverdue
	case triage.SectionDueToday:
		f.ShowDueToday = !f.ShowDueToday
	case triage.SectionUpcoming:
		f.ShowUpcoming = !f.ShowUpcoming
	case triage.SectionTriaged:
		f.ShowTriaged = !f.ShowTriaged
	case triage.SectionDismissed:
		f.ShowDismissed = !f.ShowDismissed
	}
	return m.setFilters(f)
}

// setFilters replaces the filter object wholesale and re-fetches under the
// new predicates.
func (m Model) setFilters(f triage.Filters) (Model, tea.Cmd) {
	m.Filters = f
	m.refreshDerived()
	m.Loading = true
	return m, m.fetchCmd()
}
