// Package engine is the status transition engine: the one place that moves
// tasks out of pending, alone or in bulk, dispatching by task source to the
// matching backing-store write path.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fieldcrm/triaged/internal/model"
	"github.com/fieldcrm/triaged/internal/session"
	"github.com/fieldcrm/triaged/internal/storage"
)

var (
	ErrEmptyNotes = errors.New("engine: completion notes are required")
	ErrNoTasks    = errors.New("engine: no tasks in bulk request")
)

// bulkLimit caps concurrently in-flight writes during a bulk transition.
const bulkLimit = 8

type Engine struct {
	repo  storage.Repository
	users session.UserProvider
	clock func() time.Time
	log   *zap.Logger
}

func New(repo storage.Repository, users session.UserProvider, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		repo:  repo,
		users: users,
		clock: func() time.Time { return time.Now().UTC() },
		log:   log,
	}
}

// WithClock substitutes the completion timestamp source. Test hook.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// Complete moves a pending task to completed, stamping who finished it,
// when, and the required notes. Validation happens before any store call.
func (e *Engine) Complete(ctx context.Context, ref model.TaskRef, notes string) error {
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return ErrEmptyNotes
	}
	user, err := e.users.CurrentUser(ctx)
	if err != nil {
		return err
	}

	now := e.clock()
	patch := storage.StatusPatch{
		Status:      string(model.StatusCompleted),
		Notes:       &trimmed,
		CompletedBy: &user.ID,
		CompletedAt: &now,
	}
	if err := e.update(ctx, ref, patch); err != nil {
		return err
	}
	e.log.Info("task completed",
		zap.String("task_id", ref.ID),
		zap.String("source", string(ref.Source)),
		zap.String("completed_by", user.ID))
	return nil
}

// Triage marks a task intentionally skipped. No notes required.
func (e *Engine) Triage(ctx context.Context, ref model.TaskRef) error {
	if err := e.update(ctx, ref, storage.StatusPatch{Status: string(model.StatusTriaged)}); err != nil {
		return err
	}
	e.log.Info("task triaged", zap.String("task_id", ref.ID), zap.String("source", string(ref.Source)))
	return nil
}

// Dismiss marks a task no longer relevant. No notes required.
func (e *Engine) Dismiss(ctx context.Context, ref model.TaskRef) error {
	if err := e.update(ctx, ref, storage.StatusPatch{Status: string(model.StatusDismissed)}); err != nil {
		return err
	}
	e.log.Info("task dismissed", zap.String("task_id", ref.ID), zap.String("source", string(ref.Source)))
	return nil
}

// update routes the patch to the write path owning the task's source.
// Both paths share the payload shape; only the table differs.
func (e *Engine) update(ctx context.Context, ref model.TaskRef, patch storage.StatusPatch) error {
	switch ref.Source {
	case model.SourceManual:
		_, err := e.repo.UpdateManualTask(ctx, ref.ID, patch)
		return err
	case model.SourceCadence:
		_, err := e.repo.UpdateCadenceTask(ctx, ref.ID, patch)
		return err
	default:
		return fmt.Errorf("%w: %q", model.ErrInvalidSource, ref.Source)
	}
}

// Failure records one task's outcome inside a bulk transition.
type Failure struct {
	Ref model.TaskRef
	Err error
}

// BulkResult is the aggregate outcome of a bulk transition. A result with
// FailedCount > 0 is still a finished operation, not an error: successes
// are never rolled back because some siblings failed.
type BulkResult struct {
	Attempted int
	Failures  []Failure
}

func (r BulkResult) FailedCount() int {
	return len(r.Failures)
}

func (r BulkResult) Summary() string {
	if r.FailedCount() == 0 {
		return fmt.Sprintf("%d of %d succeeded", r.Attempted, r.Attempted)
	}
	return fmt.Sprintf("%d of %d failed", r.FailedCount(), r.Attempted)
}

// BulkComplete completes every referenced task concurrently with shared
// notes. Each task is attempted exactly once; failures are tallied, never
// fatal to the batch. Notes and user are validated once, up front, before
// any write is issued.
func (e *Engine) BulkComplete(ctx context.Context, refs []model.TaskRef, notes string) (BulkResult, error) {
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return BulkResult{}, ErrEmptyNotes
	}
	user, err := e.users.CurrentUser(ctx)
	if err != nil {
		return BulkResult{}, err
	}

	return e.bulk(ctx, refs, func(ctx context.Context, ref model.TaskRef) error {
		now := e.clock()
		return e.update(ctx, ref, storage.StatusPatch{
			Status:      string(model.StatusCompleted),
			Notes:       &trimmed,
			CompletedBy: &user.ID,
			CompletedAt: &now,
		})
	})
}

func (e *Engine) BulkTriage(ctx context.Context, refs []model.TaskRef) (BulkResult, error) {
	return e.bulk(ctx, refs, func(ctx context.Context, ref model.TaskRef) error {
		return e.update(ctx, ref, storage.StatusPatch{Status: string(model.StatusTriaged)})
	})
}

func (e *Engine) BulkDismiss(ctx context.Context, refs []model.TaskRef) (BulkResult, error) {
	return e.bulk(ctx, refs, func(ctx context.Context, ref model.TaskRef) error {
		return e.update(ctx, ref, storage.StatusPatch{Status: string(model.StatusDismissed)})
	})
}

// bulk fans the per-task operation out over all refs. The group never
// cancels on individual failure: every worker returns nil and records its
// own outcome, so one bad record cannot starve its siblings.
func (e *Engine) bulk(ctx context.Context, refs []model.TaskRef, op func(context.Context, model.TaskRef) error) (BulkResult, error) {
	if len(refs) == 0 {
		return BulkResult{}, ErrNoTasks
	}

	var mu sync.Mutex
	result := BulkResult{Attempted: len(refs)}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkLimit)
	for _, ref := range refs {
		g.Go(func() error {
			if err := op(ctx, ref); err != nil {
				mu.Lock()
				result.Failures = append(result.Failures, Failure{Ref: ref, Err: err})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if result.FailedCount() > 0 {
		e.log.Warn("bulk transition finished with failures",
			zap.Int("attempted", result.Attempted),
			zap.Int("failed", result.FailedCount()))
	}
	return result, nil
}
