package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldcrm/triaged/internal/model"
	"github.com/fieldcrm/triaged/internal/session"
	"github.com/fieldcrm/triaged/internal/storage"
)

// fakeRepo is an in-memory stand-in for the two write paths with per-task
// failure injection.
type fakeRepo struct {
	mu          sync.Mutex
	manual      map[string]storage.ManualTask
	cadence     map[string]storage.CadenceTask
	failManual  map[string]error
	failCadence map[string]error
	writeCalls  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		manual:      make(map[string]storage.ManualTask),
		cadence:     make(map[string]storage.CadenceTask),
		failManual:  make(map[string]error),
		failCadence: make(map[string]error),
	}
}

func (f *fakeRepo) ListUserTasks(ctx context.Context, filter storage.UserTaskFilter) ([]storage.UserTaskRow, error) {
	return nil, nil
}

func (f *fakeRepo) CreateManualTask(ctx context.Context, in storage.ManualTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.manual[in.ID] = in
	return nil
}

func (f *fakeRepo) GetManualTask(ctx context.Context, id string) (storage.ManualTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.manual[id]
	if !ok {
		return storage.ManualTask{}, storage.ErrNotFound
	}
	return task, nil
}

func (f *fakeRepo) UpdateManualTask(ctx context.Context, id string, patch storage.StatusPatch) (storage.ManualTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls++
	if err := f.failManual[id]; err != nil {
		return storage.ManualTask{}, err
	}
	task, ok := f.manual[id]
	if !ok {
		return storage.ManualTask{}, storage.ErrNotFound
	}
	if task.Status != "pending" {
		return storage.ManualTask{}, fmt.Errorf("%w: %s is %s", storage.ErrNotPending, id, task.Status)
	}
	applyPatch(&task.Status, &task.Notes, &task.CompletedBy, &task.CompletedAt, patch)
	f.manual[id] = task
	return task, nil
}

func (f *fakeRepo) CreateCadenceTask(ctx context.Context, in storage.CadenceTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cadence[in.ID] = in
	return nil
}

func (f *fakeRepo) GetCadenceTask(ctx context.Context, id string) (storage.CadenceTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.cadence[id]
	if !ok {
		return storage.CadenceTask{}, storage.ErrNotFound
	}
	return task, nil
}

func (f *fakeRepo) UpdateCadenceTask(ctx context.Context, id string, patch storage.StatusPatch) (storage.CadenceTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls++
	if err := f.failCadence[id]; err != nil {
		return storage.CadenceTask{}, err
	}
	task, ok := f.cadence[id]
	if !ok {
		return storage.CadenceTask{}, storage.ErrNotFound
	}
	if task.Status != "pending" {
		return storage.CadenceTask{}, fmt.Errorf("%w: %s is %s", storage.ErrNotPending, id, task.Status)
	}
	applyPatch(&task.Status, &task.Notes, &task.CompletedBy, &task.CompletedAt, patch)
	f.cadence[id] = task
	return task, nil
}

func (f *fakeRepo) CreateContact(ctx context.Context, in storage.Contact) error { return nil }
func (f *fakeRepo) CreateCadence(ctx context.Context, in storage.Cadence) error { return nil }

func (f *fakeRepo) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeCalls
}

func applyPatch(status, notes, completedBy *string, completedAt **time.Time, patch storage.StatusPatch) {
	*status = patch.Status
	if patch.Notes != nil {
		*notes = *patch.Notes
	}
	if patch.CompletedBy != nil {
		*completedBy = *patch.CompletedBy
	}
	if patch.CompletedAt != nil {
		at := *patch.CompletedAt
		*completedAt = &at
	}
}

func testEngine(repo storage.Repository) *Engine {
	users := session.StaticProvider{User: session.User{ID: "user-1", Name: "Riley"}}
	eng := New(repo, users, nil)
	return eng.WithClock(func() time.Time {
		return time.Date(2026, 8, 30, 16, 0, 0, 0, time.UTC)
	})
}

func seedPendingManual(repo *fakeRepo, ids ...string) []model.TaskRef {
	refs := make([]model.TaskRef, 0, len(ids))
	for _, id := range ids {
		repo.manual[id] = storage.ManualTask{ID: id, UserID: "user-1", Title: "task " + id, Status: "pending"}
		refs = append(refs, model.TaskRef{ID: id, Source: model.SourceManual})
	}
	return refs
}

func TestCompleteStampsAndRoutesBySource(t *testing.T) {
	repo := newFakeRepo()
	seedPendingManual(repo, "m1")
	repo.cadence["c1"] = storage.CadenceTask{ID: "c1", UserID: "user-1", Status: "pending"}
	eng := testEngine(repo)
	ctx := context.Background()

	require.NoError(t, eng.Complete(ctx, model.TaskRef{ID: "m1", Source: model.SourceManual}, "spoke with Dana"))
	require.NoError(t, eng.Complete(ctx, model.TaskRef{ID: "c1", Source: model.SourceCadence}, "sent the intro email"))

	manual := repo.manual["m1"]
	require.Equal(t, "completed", manual.Status)
	require.Equal(t, "spoke with Dana", manual.Notes)
	require.Equal(t, "user-1", manual.CompletedBy)
	require.NotNil(t, manual.CompletedAt)
	require.Equal(t, time.Date(2026, 8, 30, 16, 0, 0, 0, time.UTC), *manual.CompletedAt)

	cadence := repo.cadence["c1"]
	require.Equal(t, "completed", cadence.Status)
}

func TestCompleteRejectsEmptyNotesBeforeAnyWrite(t *testing.T) {
	repo := newFakeRepo()
	seedPendingManual(repo, "m1")
	eng := testEngine(repo)

	err := eng.Complete(context.Background(), model.TaskRef{ID: "m1", Source: model.SourceManual}, "   ")
	require.ErrorIs(t, err, ErrEmptyNotes)
	require.Equal(t, 0, repo.writes(), "backing store must not be touched on validation failure")
}

func TestCompleteFailsUnauthenticated(t *testing.T) {
	repo := newFakeRepo()
	seedPendingManual(repo, "m1")
	eng := New(repo, session.NoneProvider{}, nil)

	err := eng.Complete(context.Background(), model.TaskRef{ID: "m1", Source: model.SourceManual}, "notes")
	require.ErrorIs(t, err, session.ErrUnauthenticated)
	require.Equal(t, 0, repo.writes())
}

func TestTransitionOnTerminalTaskIsRejected(t *testing.T) {
	repo := newFakeRepo()
	repo.manual["m1"] = storage.ManualTask{ID: "m1", Status: "triaged"}
	eng := testEngine(repo)

	err := eng.Dismiss(context.Background(), model.TaskRef{ID: "m1", Source: model.SourceManual})
	require.ErrorIs(t, err, storage.ErrNotPending)
}

func TestTriageAndDismissNeedNoNotes(t *testing.T) {
	repo := newFakeRepo()
	seedPendingManual(repo, "m1", "m2")
	eng := testEngine(repo)
	ctx := context.Background()

	require.NoError(t, eng.Triage(ctx, model.TaskRef{ID: "m1", Source: model.SourceManual}))
	require.NoError(t, eng.Dismiss(ctx, model.TaskRef{ID: "m2", Source: model.SourceManual}))
	require.Equal(t, "triaged", repo.manual["m1"].Status)
	require.Equal(t, "dismissed", repo.manual["m2"].Status)
	require.Empty(t, repo.manual["m1"].CompletedBy)
	require.Nil(t, repo.manual["m1"].CompletedAt)
}

func TestBulkCompletePartialFailure(t *testing.T) {
	repo := newFakeRepo()
	refs := seedPendingManual(repo, "m1", "m2", "m3", "m4", "m5")
	repo.failManual["m3"] = errors.New("backing store rejected the write")
	eng := testEngine(repo)

	result, err := eng.BulkComplete(context.Background(), refs, "batch wrap-up")
	require.NoError(t, err)
	require.Equal(t, 5, result.Attempted)
	require.Equal(t, 1, result.FailedCount())
	require.Equal(t, "m3", result.Failures[0].Ref.ID)
	require.Equal(t, "1 of 5 failed", result.Summary())

	for _, id := range []string{"m1", "m2", "m4", "m5"} {
		require.Equal(t, "completed", repo.manual[id].Status, "sibling %s must not be rolled back", id)
	}
	require.Equal(t, "pending", repo.manual["m3"].Status)
}

func TestBulkCompleteValidatesNotesUpFront(t *testing.T) {
	repo := newFakeRepo()
	refs := seedPendingManual(repo, "m1", "m2")
	eng := testEngine(repo)

	_, err := eng.BulkComplete(context.Background(), refs, "")
	require.ErrorIs(t, err, ErrEmptyNotes)
	require.Equal(t, 0, repo.writes())
}

func TestBulkTriageAcrossSources(t *testing.T) {
	repo := newFakeRepo()
	refs := seedPendingManual(repo, "m1")
	repo.cadence["c1"] = storage.CadenceTask{ID: "c1", Status: "pending"}
	refs = append(refs, model.TaskRef{ID: "c1", Source: model.SourceCadence})
	eng := testEngine(repo)

	result, err := eng.BulkTriage(context.Background(), refs)
	require.NoError(t, err)
	require.Equal(t, 0, result.FailedCount())
	require.Equal(t, "triaged", repo.manual["m1"].Status)
	require.Equal(t, "triaged", repo.cadence["c1"].Status)
}

func TestBulkRejectsEmptyRequest(t *testing.T) {
	eng := testEngine(newFakeRepo())
	_, err := eng.BulkDismiss(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoTasks)
}

func TestBulkAttemptsEveryTaskExactlyOnce(t *testing.T) {
	repo := newFakeRepo()
	refs := seedPendingManual(repo, "m1", "m2", "m3")
	repo.failManual["m1"] = errors.New("boom")
	repo.failManual["m2"] = errors.New("boom")
	eng := testEngine(repo)

	result, err := eng.BulkDismiss(context.Background(), refs)
	require.NoError(t, err)
	require.Equal(t, 2, result.FailedCount())
	require.Equal(t, 3, repo.writes())
}
