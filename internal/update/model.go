package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/fieldcrm/triaged/internal/engine"
	"github.com/fieldcrm/triaged/internal/model"
	"github.com/fieldcrm/triaged/internal/tasks"
	"github.com/fieldcrm/triaged/internal/triage"
)

// TaskFetcher is the read side of the batch view.
type TaskFetcher interface {
	Fetch(ctx context.Context, userID string, q tasks.Query) ([]model.UnifiedTask, error)
	QuickAdd(ctx context.Context, userID, title string, due time.Time, taskType model.TaskType, contactID string) (model.UnifiedTask, error)
}

// Transitioner is the write side: the status transition engine.
type Transitioner interface {
	Complete(ctx context.Context, ref model.TaskRef, notes string) error
	Triage(ctx context.Context, ref model.TaskRef) error
	Dismiss(ctx context.Context, ref model.TaskRef) error
	BulkComplete(ctx context.Context, refs []model.TaskRef, notes string) (engine.BulkResult, error)
	BulkTriage(ctx context.Context, refs []model.TaskRef) (engine.BulkResult, error)
	BulkDismiss(ctx context.Context, refs []model.TaskRef) (engine.BulkResult, error)
}

type Deps struct {
	Fetcher TaskFetcher
	Engine  Transitioner
	UserID  string
	// Invalidations delivers one value whenever the task snapshot may be
	// stale. Nil disables realtime refresh.
	Invalidations <-chan struct{}
	Clock         func() time.Time
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Quit     string
	Help     string
	Refresh  string
	QuickAdd string
	Palette  string
}

type CompleteDialogState struct {
	Active  bool
	Targets []model.TaskRef
	Err     string
}

type QuickAddState struct {
	Active bool
}

type PaletteState struct {
	Active bool
}

type Model struct {
	deps Deps

	Tasks     []model.UnifiedTask
	Filters   triage.Filters
	Selection *triage.Selection
	ViewState triage.ViewState
	Cursor    int
	Collapsed map[triage.Section]bool

	Status      StatusBar
	LastError   error
	HelpVisible bool
	Loading     bool
	Quitting    bool
	Keys        GlobalKeyMap

	dialog   CompleteDialogState
	quickAdd QuickAddState
	palette  PaletteState

	notesArea      textarea.Model
	quickAddInput  textinput.Model
	commandInput   textinput.Model
	refreshSpinner spinner.Model
}

type TasksLoadedMsg struct {
	Tasks []model.UnifiedTask
}

type FetchFailedMsg struct {
	Err error
}

type TransitionDoneMsg struct {
	Verb string
	Err  error
}

type BulkDoneMsg struct {
	Verb   string
	Result engine.BulkResult
	Err    error
}

type TaskAddedMsg struct {
	Task model.UnifiedTask
	Err  error
}

// SnapshotStaleMsg arrives from the invalidation channel: re-fetch before
// trusting any derived view again.
type SnapshotStaleMsg struct{}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

func NewModel(deps Deps) Model {
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return time.Now().UTC() }
	}

	notes := textarea.New()
	notes.Placeholder = "what happened?"
	notes.SetHeight(3)

	quickAddInput := textinput.New()
	quickAddInput.Placeholder = "task title"

	commandInput := textinput.New()
	commandInput.Placeholder = "/complete <notes>"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		deps:      deps,
		Loading:   true,
		Filters:   triage.DefaultFilters(),
		Selection: triage.NewSelection(),
		Collapsed: make(map[triage.Section]bool),
		Keys: GlobalKeyMap{
			Quit:     "q",
			Help:     "?",
			Refresh:  "R",
			QuickAdd: "a",
			Palette:  "/",
		},
		notesArea:      notes,
		quickAddInput:  quickAddInput,
		commandInput:   commandInput,
		refreshSpinner: sp,
	}
	m.refreshDerived()
	return m
}

// refreshDerived recomputes every derived view from the current snapshot
// plus filter state, then keeps the cursor inside the visible list.
func (m *Model) refreshDerived() {
	m.ViewState = triage.Derive(m.Tasks, m.Filters, m.deps.Clock())
	if m.Cursor >= len(m.ViewState.Visible) {
		m.Cursor = len(m.ViewState.Visible) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m Model) currentTask() (model.UnifiedTask, bool) {
	if len(m.ViewState.Visible) == 0 || m.Cursor < 0 || m.Cursor >= len(m.ViewState.Visible) {
		return model.UnifiedTask{}, false
	}
	return m.ViewState.Visible[m.Cursor], true
}

// sectionOf locates the section holding a task in the current view.
func (m Model) sectionOf(ref model.TaskRef) (triage.Section, bool) {
	for _, section := range triage.SectionOrder {
		for _, task := range m.ViewState.Sections[section] {
			if task.Ref() == ref {
				return section, true
			}
		}
	}
	return "", false
}

// transitionTargets resolves what a transition key acts on: the selection
// when non-empty, otherwise the task under the cursor.
func (m Model) transitionTargets() []model.TaskRef {
	if m.Selection.Count() > 0 {
		return m.Selection.Refs()
	}
	if task, ok := m.currentTask(); ok {
		return []model.TaskRef{task.Ref()}
	}
	return nil
}
