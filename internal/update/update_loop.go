package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fieldcrm/triaged/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), waitForInvalidationCmd(m.deps.Invalidations))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.dialog.Active {
			return m.handleDialogKey(typed)
		}
		if m.quickAdd.Active {
			return m.handleQuickAddKey(typed)
		}
		if m.palette.Active {
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case m.Keys.Palette:
			m.palette.Active = true
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			return m, nil
		case m.Keys.QuickAdd:
			m.quickAdd.Active = true
			m.quickAddInput.Focus()
			return m, nil
		case m.Keys.Refresh:
			m.Loading = true
			m.Status = StatusBar{Text: "refreshing..."}
			return m, tea.Batch(m.fetchCmd(), m.refreshSpinner.Tick)
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		return m.handleBatchKey(typed)

	case spinner.TickMsg:
		if m.Loading {
			var cmd tea.Cmd
			m.refreshSpinner, cmd = m.refreshSpinner.Update(typed)
			return m, cmd
		}

	case TasksLoadedMsg:
		m.Tasks = typed.Tasks
		m.Loading = false
		m.LastError = nil
		m.refreshDerived()
		m.Status = StatusBar{Text: fmt.Sprintf("%d task(s) loaded", len(typed.Tasks))}
		return m, nil

	case FetchFailedMsg:
		// Any read failure means no tasks; never synthesize partial results.
		m.Tasks = nil
		m.Loading = false
		m.LastError = typed.Err
		m.refreshDerived()
		m.Status = StatusBar{Text: "error: " + typed.Err.Error(), IsError: true}
		return m, nil

	case TransitionDoneMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: "error: " + typed.Err.Error(), IsError: true}
			return m, nil
		}
		m.Selection.Clear()
		m.Loading = true
		m.Status = StatusBar{Text: "task " + typed.Verb}
		return m, m.fetchCmd()

	case BulkDoneMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: "error: " + typed.Err.Error(), IsError: true}
			return m, nil
		}
		m.Selection.Clear()
		m.Loading = true
		if typed.Result.FailedCount() > 0 {
			m.Status = StatusBar{Text: typed.Result.Summary(), IsError: true}
		} else {
			m.Status = StatusBar{Text: fmt.Sprintf("%d task(s) %s", typed.Result.Attempted, typed.Verb)}
		}
		return m, m.fetchCmd()

	case TaskAddedMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: "error: " + typed.Err.Error(), IsError: true}
			return m, nil
		}
		m.Loading = true
		m.Status = StatusBar{Text: "added: " + typed.Task.Title}
		return m, m.fetchCmd()

	case SnapshotStaleMsg:
		m.Loading = true
		m.Status = StatusBar{Text: "tasks changed, refreshing..."}
		return m, tea.Batch(m.fetchCmd(), waitForInvalidationCmd(m.deps.Invalidations))

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil

	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := views.RenderBatchPanel(m.batchPanelData())
	rightPane := views.RenderToolbar(m.toolbarData())

	switch {
	case m.dialog.Active:
		rightPane += "\n\n" + views.RenderCompleteDialog(views.CompleteDialogData{
			Active:      true,
			TargetCount: len(m.dialog.Targets),
			NotesView:   m.notesArea.View(),
			ErrorText:   m.dialog.Err,
		})
	case m.quickAdd.Active:
		rightPane += "\n\n" + views.RenderQuickAdd(views.QuickAddData{Active: true, InputView: m.quickAddInput.View()})
	case m.palette.Active:
		rightPane += "\n\n" + views.RenderPalette(views.PaletteData{Active: true, InputView: m.commandInput.View()})
	default:
		rightPane += "\n\n" + views.RenderDetailPanel(m.detailData())
	}
	if m.HelpVisible {
		rightPane += "\n\n" + views.RenderHelpPanel(views.HelpPanelData{Bindings: helpBindings})
	}

	notification := ""
	if m.Loading {
		notification = m.refreshSpinner.View() + " loading tasks"
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("triaged | user: %s | visible: %d | selected: %d", m.deps.UserID, len(m.ViewState.Visible), m.Selection.Count()),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		Notification: notification,
		Footer:       "keys: j/k move | space select | c complete | t triage | d dismiss | a add | / cmd | ? help | q quit",
	})
}

var helpBindings = []string{
	"j/k        move cursor",
	"space      select task",
	"x          select/deselect section",
	"u          clear selection",
	"c          complete (notes required)",
	"t          triage",
	"d          dismiss",
	"a          quick add task",
	"f          cycle task type filter",
	"r          cycle date range",
	"1-5        toggle sections",
	"z          collapse section",
	"R          refresh",
	"/          command palette",
	"q          quit",
}
