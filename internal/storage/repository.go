package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("storage: not found")

	// ErrNotPending is returned by the status update paths when the task
	// exists but has already left pending. Stamps are never overwritten.
	ErrNotPending = errors.New("storage: task is not pending")
)

type Repository interface {
	// ListUserTasks is the combined read over both origin tables.
	// It fails atomically: any error yields no rows.
	ListUserTasks(ctx context.Context, filter UserTaskFilter) ([]UserTaskRow, error)

	CreateManualTask(ctx context.Context, in ManualTask) error
	GetManualTask(ctx context.Context, id string) (ManualTask, error)
	UpdateManualTask(ctx context.Context, id string, patch StatusPatch) (ManualTask, error)

	CreateCadenceTask(ctx context.Context, in CadenceTask) error
	GetCadenceTask(ctx context.Context, id string) (CadenceTask, error)
	UpdateCadenceTask(ctx context.Context, id string, patch StatusPatch) (CadenceTask, error)

	CreateContact(ctx context.Context, in Contact) error
	CreateCadence(ctx context.Context, in Cadence) error
}
