// Package tasks normalizes the two task origins into the unified shape.
// Everything downstream of Fetch is origin-agnostic.
package tasks

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fieldcrm/triaged/internal/model"
	"github.com/fieldcrm/triaged/internal/storage"
)

var (
	ErrEmptyTitle = errors.New("tasks: title is required")
	ErrNoUser     = errors.New("tasks: user id is required")
)

// Query mirrors the combined read's native predicates plus the two
// post-filters the backend cannot apply. Task volumes per user are small,
// so filtering task type and contact client-side is fine.
type Query struct {
	Statuses  []model.TaskStatus
	DueFrom   *time.Time
	DueTo     *time.Time
	TaskType  string
	ContactID string
}

type Service struct {
	repo storage.Repository
	log  *zap.Logger
}

func NewService(repo storage.Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

// Fetch runs the combined read and tags every row with its origin. Failure
// is atomic: any error means no tasks, never partial results.
func (s *Service) Fetch(ctx context.Context, userID string, q Query) ([]model.UnifiedTask, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrNoUser
	}

	statuses := make([]string, 0, len(q.Statuses))
	for _, st := range q.Statuses {
		statuses = append(statuses, string(st))
	}
	rows, err := s.repo.ListUserTasks(ctx, storage.UserTaskFilter{
		UserID:   userID,
		Statuses: statuses,
		DueFrom:  q.DueFrom,
		DueTo:    q.DueTo,
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.UnifiedTask, 0, len(rows))
	for _, row := range rows {
		task := normalize(row)
		if q.TaskType != "" && q.TaskType != "all" && string(task.Type) != q.TaskType {
			continue
		}
		if q.ContactID != "" && task.ContactID != q.ContactID {
			continue
		}
		out = append(out, task)
	}
	s.log.Debug("fetched user tasks",
		zap.String("user_id", userID),
		zap.Int("rows", len(rows)),
		zap.Int("after_post_filter", len(out)))
	return out, nil
}

// QuickAdd creates a pending manual task due on the given day.
func (s *Service) QuickAdd(ctx context.Context, userID, title string, due time.Time, taskType model.TaskType, contactID string) (model.UnifiedTask, error) {
	if strings.TrimSpace(userID) == "" {
		return model.UnifiedTask{}, ErrNoUser
	}
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return model.UnifiedTask{}, ErrEmptyTitle
	}
	if taskType != "" && !taskType.IsValid() {
		return model.UnifiedTask{}, model.ErrInvalidType
	}

	row := storage.ManualTask{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     trimmed,
		Status:    string(model.StatusPending),
		DueDate:   model.DateOnly(due),
		TaskType:  string(taskType),
		ContactID: contactID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateManualTask(ctx, row); err != nil {
		return model.UnifiedTask{}, err
	}
	s.log.Info("manual task created", zap.String("task_id", row.ID), zap.String("user_id", userID))

	return model.UnifiedTask{
		ID:        row.ID,
		Source:    model.SourceManual,
		Title:     row.Title,
		Status:    model.StatusPending,
		DueDate:   row.DueDate,
		Type:      taskType,
		ContactID: contactID,
	}, nil
}

func normalize(row storage.UserTaskRow) model.UnifiedTask {
	return model.UnifiedTask{
		ID:          row.ID,
		Source:      model.TaskSource(row.Source),
		Title:       row.Title,
		Status:      model.TaskStatus(row.Status),
		DueDate:     row.DueDate,
		Type:        model.TaskType(row.TaskType),
		ContactID:   row.ContactID,
		ContactName: row.ContactName,
		CadenceName: row.CadenceName,
		Notes:       row.Notes,
		CompletedBy: row.CompletedBy,
		CompletedAt: row.CompletedAt,
	}
}
