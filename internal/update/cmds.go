package update

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fieldcrm/triaged/internal/model"
	"github.com/fieldcrm/triaged/internal/tasks"
)

func (m Model) fetchCmd() tea.Cmd {
	deps := m.deps
	query := m.query()
	return func() tea.Msg {
		loaded, err := deps.Fetcher.Fetch(context.Background(), deps.UserID, query)
		if err != nil {
			return FetchFailedMsg{Err: err}
		}
		return TasksLoadedMsg{Tasks: loaded}
	}
}

// query maps the active filters onto the combined read's contract.
func (m Model) query() tasks.Query {
	from, to := m.Filters.Window(m.deps.Clock())
	return tasks.Query{
		Statuses: m.Filters.Statuses(),
		DueFrom:  from,
		DueTo:    to,
		TaskType: m.Filters.TaskType,
	}
}

func (m Model) completeCmd(refs []model.TaskRef, notes string) tea.Cmd {
	deps := m.deps
	if len(refs) == 1 {
		ref := refs[0]
		return func() tea.Msg {
			return TransitionDoneMsg{Verb: "completed", Err: deps.Engine.Complete(context.Background(), ref, notes)}
		}
	}
	return func() tea.Msg {
		result, err := deps.Engine.BulkComplete(context.Background(), refs, notes)
		return BulkDoneMsg{Verb: "completed", Result: result, Err: err}
	}
}

func (m Model) triageCmd(refs []model.TaskRef) tea.Cmd {
	deps := m.deps
	if len(refs) == 1 {
		ref := refs[0]
		return func() tea.Msg {
			return TransitionDoneMsg{Verb: "triaged", Err: deps.Engine.Triage(context.Background(), ref)}
		}
	}
	return func() tea.Msg {
		result, err := deps.Engine.BulkTriage(context.Background(), refs)
		return BulkDoneMsg{Verb: "triaged", Result: result, Err: err}
	}
}

func (m Model) dismissCmd(refs []model.TaskRef) tea.Cmd {
	deps := m.deps
	if len(refs) == 1 {
		ref := refs[0]
		return func() tea.Msg {
			return TransitionDoneMsg{Verb: "dismissed", Err: deps.Engine.Dismiss(context.Background(), ref)}
		}
	}
	return func() tea.Msg {
		result, err := deps.Engine.BulkDismiss(context.Background(), refs)
		return BulkDoneMsg{Verb: "dismissed", Result: result, Err: err}
	}
}

func (m Model) quickAddCmd(title string) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		task, err := deps.Fetcher.QuickAdd(context.Background(), deps.UserID, title, deps.Clock(), "", "")
		return TaskAddedMsg{Task: task, Err: err}
	}
}

func waitForInvalidationCmd(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return SnapshotStaleMsg{}
	}
}
