package update

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fieldcrm/triaged/internal/engine"
	"github.com/fieldcrm/triaged/internal/model"
	"github.com/fieldcrm/triaged/internal/tasks"
	"github.com/fieldcrm/triaged/internal/triage"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	tasks   []model.UnifiedTask
	err     error
	fetches int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string, _ tasks.Query) ([]model.UnifiedTask, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.tasks, nil
}

func (f *fakeFetcher) QuickAdd(_ context.Context, _ string, title string, due time.Time, taskType model.TaskType, _ string) (model.UnifiedTask, error) {
	task := model.UnifiedTask{
		ID:      "new-1",
		Source:  model.SourceManual,
		Title:   title,
		Status:  model.StatusPending,
		DueDate: model.DateOnly(due),
		Type:    taskType,
	}
	f.tasks = append(f.tasks, task)
	return task, nil
}

type fakeEngine struct {
	completed []model.TaskRef
	triaged   []model.TaskRef
	dismissed []model.TaskRef
	notes     string
	failRefs  map[model.TaskRef]error
}

func (e *fakeEngine) Complete(_ context.Context, ref model.TaskRef, notes string) error {
	if err := e.failRefs[ref]; err != nil {
		return err
	}
	e.completed = append(e.completed, ref)
	e.notes = notes
	return nil
}

func (e *fakeEngine) Triage(_ context.Context, ref model.TaskRef) error {
	if err := e.failRefs[ref]; err != nil {
		return err
	}
	e.triaged = append(e.triaged, ref)
	return nil
}

func (e *fakeEngine) Dismiss(_ context.Context, ref model.TaskRef) error {
	if err := e.failRefs[ref]; err != nil {
		return err
	}
	e.dismissed = append(e.dismissed, ref)
	return nil
}

func (e *fakeEngine) BulkComplete(ctx context.Context, refs []model.TaskRef, notes string) (engine.BulkResult, error) {
	result := engine.BulkResult{Attempted: len(refs)}
	for _, ref := range refs {
		if err := e.Complete(ctx, ref, notes); err != nil {
			result.Failures = append(result.Failures, engine.Failure{Ref: ref, Err: err})
		}
	}
	return result, nil
}

func (e *fakeEngine) BulkTriage(ctx context.Context, refs []model.TaskRef) (engine.BulkResult, error) {
	result := engine.BulkResult{Attempted: len(refs)}
	for _, ref := range refs {
		if err := e.Triage(ctx, ref); err != nil {
			result.Failures = append(result.Failures, engine.Failure{Ref: ref, Err: err})
		}
	}
	return result, nil
}

func (e *fakeEngine) BulkDismiss(ctx context.Context, refs []model.TaskRef) (engine.BulkResult, error) {
	result := engine.BulkResult{Attempted: len(refs)}
	for _, ref := range refs {
		if err := e.Dismiss(ctx, ref); err != nil {
			result.Failures = append(result.Failures, engine.Failure{Ref: ref, Err: err})
		}
	}
	return result, nil
}

func sampleTasks() []model.UnifiedTask {
	return []model.UnifiedTask{
		{ID: "m-1", Source: model.SourceManual, Title: "call back lead", Status: model.StatusPending, DueDate: testNow.AddDate(0, 0, -5), Type: model.TypeCall},
		{ID: "c-1", Source: model.SourceCadence, Title: "day 3 email", Status: model.StatusPending, DueDate: testNow, Type: model.TypeEmail, CadenceName: "new lead"},
		{ID: "m-2", Source: model.SourceManual, Title: "prep meeting", Status: model.StatusPending, DueDate: testNow.AddDate(0, 0, 4), Type: model.TypeMeeting},
	}
}

func testModel(t *testing.T, fetcher *fakeFetcher, eng *fakeEngine) Model {
	t.Helper()
	if fetcher == nil {
		fetcher = &fakeFetcher{tasks: sampleTasks()}
	}
	if eng == nil {
		eng = &fakeEngine{}
	}
	return NewModel(Deps{
		Fetcher: fetcher,
		Engine:  eng,
		UserID:  "user-1",
		Clock:   func() time.Time { return testNow },
	})
}

func loaded(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(TasksLoadedMsg{Tasks: sampleTasks()})
	return updated.(Model)
}

func keyPress(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestNewModelDefaults(t *testing.T) {
	m := testModel(t, nil, nil)
	if m.Filters.TaskType != triage.TypeFilterAll {
		t.Fatalf("expected default type filter all, got %q", m.Filters.TaskType)
	}
	if m.Filters.DateRange != triage.RangeAll {
		t.Fatalf("expected default range all, got %q", m.Filters.DateRange)
	}
	if m.Filters.ShowTriaged || m.Filters.ShowDismissed {
		t.Fatalf("expected resolved sections hidden by default: %+v", m.Filters)
	}
	if !m.Loading {
		t.Fatal("expected model to start loading")
	}
	if m.Keys.Quit != "q" || m.Keys.Palette != "/" {
		t.Fatalf("unexpected key map: %+v", m.Keys)
	}
}

func TestTasksLoadedDerivesSections(t *testing.T) {
	m := loaded(t, testModel(t, nil, nil))
	if m.Loading {
		t.Fatal("expected loading cleared")
	}
	if got := m.ViewState.Counts[triage.SectionOverdue]; got != 1 {
		t.Fatalf("expected 1 overdue, got %d", got)
	}
	if got := m.ViewState.Counts[triage.SectionDueToday]; got != 1 {
		t.Fatalf("expected 1 due today, got %d", got)
	}
	if got := m.ViewState.Counts[triage.SectionUpcoming]; got != 1 {
		t.Fatalf("expected 1 upcoming, got %d", got)
	}
	want := []string{"m-1", "c-1", "m-2"}
	if len(m.ViewState.Visible) != len(want) {
		t.Fatalf("expected %d visible tasks, got %d", len(want), len(m.ViewState.Visible))
	}
	for i, id := range want {
		if m.ViewState.Visible[i].ID != id {
			t.Fatalf("visible[%d]: expected %s, got %s", i, id, m.ViewState.Visible[i].ID)
		}
	}
}

func TestFetchFailureClearsSnapshot(t *testing.T) {
	m := loaded(t, testModel(t, nil, nil))
	updated, _ := m.Update(FetchFailedMsg{Err: errors.New("disk gone")})
	m = updated.(Model)
	if len(m.ViewState.Visible) != 0 {
		t.Fatalf("expected empty view after fetch failure, got %d tasks", len(m.ViewState.Visible))
	}
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "disk gone") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestSelectionKeys(t *testing.T) {
	m := loaded(t, testModel(t, nil, nil))

	m, _ = keyPress(t, m, " ")
	if m.Selection.Count() != 1 {
		t.Fatalf("expected 1 selected, got %d", m.Selection.Count())
	}
	m, _ = keyPress(t, m, " ")
	if m.Selection.Count() != 0 {
		t.Fatalf("expected toggle to deselect, got %d", m.Selection.Count())
	}

	// Section toggle on a fully unselected section selects all of it.
	m, _ = keyPress(t, m, "x")
	if m.Selection.Count() != 1 {
		t.Fatalf("expected overdue section selected, got %d", m.Selection.Count())
	}
	m, _ = keyPress(t, m, "u")
	if m.Selection.Count() != 0 {
		t.Fatalf("expected selection cleared, got %d", m.Selection.Count())
	}
}

func TestCompleteDialogRequiresNotesBeforeEngineCall(t *testing.T) {
	eng := &fakeEngine{}
	m := loaded(t, testModel(t, nil, eng))

	m, _ = keyPress(t, m, "c")
	if !m.dialog.Active {
		t.Fatal("expected complete dialog open")
	}

	m, cmd := keyPress(t, m, "enter")
	if cmd != nil {
		t.Fatal("expected no command while notes are empty")
	}
	if m.dialog.Err == "" {
		t.Fatal("expected validation error for empty notes")
	}
	if len(eng.completed) != 0 {
		t.Fatalf("engine called before notes were provided: %v", eng.completed)
	}

	m, _ = keyPress(t, m, "spoke with contact")
	m, cmd = keyPress(t, m, "enter")
	if m.dialog.Active {
		t.Fatal("expected dialog closed after submit")
	}
	if cmd == nil {
		t.Fatal("expected completion command")
	}

	updated, _ := m.Update(cmd())
	m = updated.(Model)
	if len(eng.completed) != 1 || eng.completed[0].ID != "m-1" {
		t.Fatalf("unexpected completions: %v", eng.completed)
	}
	if eng.notes != "spoke with contact" {
		t.Fatalf("unexpected notes: %q", eng.notes)
	}
	if !strings.Contains(m.Status.Text, "completed") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestDialogEscCancels(t *testing.T) {
	eng := &fakeEngine{}
	m := loaded(t, testModel(t, nil, eng))
	m, _ = keyPress(t, m, "c")
	m, _ = keyPress(t, m, "esc")
	if m.dialog.Active {
		t.Fatal("expected dialog closed")
	}
	if len(eng.completed) != 0 {
		t.Fatal("expected no engine call on cancel")
	}
}

func TestTriageActsOnSelection(t *testing.T) {
	eng := &fakeEngine{}
	m := loaded(t, testModel(t, nil, eng))

	m, _ = keyPress(t, m, " ")
	m, _ = keyPress(t, m, "j")
	m, _ = keyPress(t, m, " ")

	m, cmd := keyPress(t, m, "t")
	if cmd == nil {
		t.Fatal("expected triage command")
	}
	updated, _ := m.Update(cmd())
	m = updated.(Model)

	if len(eng.triaged) != 2 {
		t.Fatalf("expected 2 triaged, got %d", len(eng.triaged))
	}
	if m.Selection.Count() != 0 {
		t.Fatal("expected selection cleared after bulk transition")
	}
}

func TestDismissFallsBackToCursor(t *testing.T) {
	eng := &fakeEngine{}
	m := loaded(t, testModel(t, nil, eng))

	m, cmd := keyPress(t, m, "d")
	if cmd == nil {
		t.Fatal("expected dismiss command")
	}
	updated, _ := m.Update(cmd())
	m = updated.(Model)
	if len(eng.dismissed) != 1 || eng.dismissed[0].ID != "m-1" {
		t.Fatalf("unexpected dismissals: %v", eng.dismissed)
	}
}

func TestBulkPartialFailureSurfacesSummary(t *testing.T) {
	m := loaded(t, testModel(t, nil, nil))
	m, _ = keyPress(t, m, " ")

	result := engine.BulkResult{
		Attempted: 5,
		Failures:  []engine.Failure{{Ref: model.TaskRef{ID: "m-9", Source: model.SourceManual}, Err: errors.New("gone")}},
	}
	updated, _ := m.Update(BulkDoneMsg{Verb: "dismissed", Result: result})
	m = updated.(Model)

	if !m.Status.IsError || !strings.Contains(m.Status.Text, "1 of 5 failed") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	if m.Selection.Count() != 0 {
		t.Fatal("expected selection cleared after bulk result")
	}
}

func TestSectionVisibilityKeysRefetch(t *testing.T) {
	m := loaded(t, testModel(t, nil, nil))

	m, cmd := keyPress(t, m, "4")
	if !m.Filters.ShowTriaged {
		t.Fatal("expected triaged section enabled")
	}
	if cmd == nil {
		t.Fatal("expected refetch after filter change")
	}

	m, _ = keyPress(t, m, "4")
	if m.Filters.ShowTriaged {
		t.Fatal("expected triaged section disabled again")
	}
}

func TestDateRangeCycleClearsCustomBounds(t *testing.T) {
	m := loaded(t, testModel(t, nil, nil))
	from := testNow.AddDate(0, 0, -10)
	to := testNow.AddDate(0, 0, 10)
	m.Filters = m.Filters.WithCustomRange(&from, &to)

	m, _ = keyPress(t, m, "r")
	if m.Filters.DateRange == triage.RangeCustom {
		t.Fatalf("expected a preset range, got %q", m.Filters.DateRange)
	}
	if m.Filters.CustomFrom != nil || m.Filters.CustomTo != nil {
		t.Fatalf("expected custom bounds cleared: %+v", m.Filters)
	}
}

func TestTaskTypeCycle(t *testing.T) {
	m := loaded(t, testModel(t, nil, nil))
	m, cmd := keyPress(t, m, "f")
	if m.Filters.TaskType != string(model.TypeCall) {
		t.Fatalf("expected call filter, got %q", m.Filters.TaskType)
	}
	if cmd == nil {
		t.Fatal("expected refetch after filter change")
	}
}

func TestSnapshotStaleRefetches(t *testing.T) {
	m := loaded(t, testModel(t, nil, nil))
	updated, cmd := m.Update(SnapshotStaleMsg{})
	m = updated.(Model)
	if !m.Loading {
		t.Fatal("expected loading after stale snapshot")
	}
	if cmd == nil {
		t.Fatal("expected refetch command")
	}
}

func TestQuickAddFlow(t *testing.T) {
	fetcher := &fakeFetcher{tasks: sampleTasks()}
	m := loaded(t, testModel(t, fetcher, nil))

	m, _ = keyPress(t, m, "a")
	if !m.quickAdd.Active {
		t.Fatal("expected quick add active")
	}
	m, _ = keyPress(t, m, "follow up on quote")
	m, cmd := keyPress(t, m, "enter")
	if m.quickAdd.Active {
		t.Fatal("expected quick add closed")
	}
	if cmd == nil {
		t.Fatal("expected add command")
	}

	msg := cmd()
	added, ok := msg.(TaskAddedMsg)
	if !ok {
		t.Fatalf("expected TaskAddedMsg, got %T", msg)
	}
	if added.Task.Title != "follow up on quote" {
		t.Fatalf("unexpected title: %q", added.Task.Title)
	}
	if !added.Task.DueDate.Equal(model.DateOnly(testNow)) {
		t.Fatalf("expected due today, got %v", added.Task.DueDate)
	}
}

func TestPaletteRangeCommand(t *testing.T) {
	m := loaded(t, testModel(t, nil, nil))

	m, _ = keyPress(t, m, "/")
	if !m.palette.Active {
		t.Fatal("expected palette active")
	}
	m, _ = keyPress(t, m, "range 7days")
	m, cmd := keyPress(t, m, "enter")
	if m.palette.Active {
		t.Fatal("expected palette closed")
	}
	if m.Filters.DateRange != triage.Range7Days {
		t.Fatalf("expected 7days range, got %q", m.Filters.DateRange)
	}
	if cmd == nil {
		t.Fatal("expected refetch command")
	}
}

func TestPaletteUnknownCommand(t *testing.T) {
	m := loaded(t, testModel(t, nil, nil))
	m, _ = keyPress(t, m, "/")
	m, _ = keyPress(t, m, "explode")
	m, _ = keyPress(t, m, "enter")
	if !m.Status.IsError {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
}

func TestQuitKey(t *testing.T) {
	m := loaded(t, testModel(t, nil, nil))
	m, cmd := keyPress(t, m, "q")
	if !m.Quitting {
		t.Fatal("expected quitting flag")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestViewContainsCoreState(t *testing.T) {
	m := loaded(t, testModel(t, nil, nil))
	m.Status = StatusBar{Text: "3 task(s) loaded"}
	out := m.View()
	if !strings.Contains(out, "call back lead") {
		t.Fatalf("expected overdue task in output: %q", out)
	}
	if !strings.Contains(out, "status: 3 task(s) loaded") {
		t.Fatalf("expected status line in output: %q", out)
	}
	if !strings.Contains(out, "overdue (1)") {
		t.Fatalf("expected section header in output: %q", out)
	}
}
