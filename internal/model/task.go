package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidSource = errors.New("model: invalid task source")
	ErrInvalidStatus = errors.New("model: invalid task status")
	ErrInvalidType   = errors.New("model: invalid task type")
)

// TaskSource identifies which origin store owns a task record. Task IDs are
// only unique within a source, so every reference to a task carries the pair.
type TaskSource string

const (
	SourceManual  TaskSource = "manual"
	SourceCadence TaskSource = "cadence"
)

func (s TaskSource) IsValid() bool {
	switch s {
	case SourceManual, SourceCadence:
		return true
	default:
		return false
	}
}

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
	StatusTriaged   TaskStatus = "triaged"
	StatusDismissed TaskStatus = "dismissed"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusTriaged, StatusDismissed:
		return true
	default:
		return false
	}
}

// Terminal reports whether no transition out of the status is possible.
// The lifecycle is one-way: once a task leaves pending it stays resolved.
func (s TaskStatus) Terminal() bool {
	return s != StatusPending
}

type TaskType string

const (
	TypeCall       TaskType = "call"
	TypeEmail      TaskType = "email"
	TypeText       TaskType = "text"
	TypeMeeting    TaskType = "meeting"
	TypeSendMailer TaskType = "send_mailer"
	TypeOther      TaskType = "other"
)

func (t TaskType) IsValid() bool {
	switch t {
	case TypeCall, TypeEmail, TypeText, TypeMeeting, TypeSendMailer, TypeOther:
		return true
	default:
		return false
	}
}

// TaskRef is the composite key (id, source) used for selection membership
// and transition requests.
type TaskRef struct {
	ID     string
	Source TaskSource
}

// UnifiedTask is the common projection of a task from either origin store.
// Instances are derived on every fetch and never mutated in place; all
// status changes go through the backing store and show up after re-fetch.
type UnifiedTask struct {
	ID          string
	Source      TaskSource
	Title       string
	Status      TaskStatus
	DueDate     time.Time
	Type        TaskType
	ContactID   string
	ContactName string
	CadenceName string
	Notes       string
	CompletedBy string
	CompletedAt *time.Time
}

func (t UnifiedTask) Ref() TaskRef {
	return TaskRef{ID: t.ID, Source: t.Source}
}

func (t UnifiedTask) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if !t.Source.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSource, t.Source)
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if t.Type != "" && !t.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if t.DueDate.IsZero() {
		return errors.New("model: task due_date is required")
	}
	if t.CadenceName != "" && t.Source != SourceCadence {
		return errors.New("model: cadence_name is only valid for cadence tasks")
	}
	if t.Status == StatusCompleted && t.CompletedAt == nil {
		return errors.New("model: completed_at is required when task status is completed")
	}
	if t.Status != StatusCompleted && t.CompletedAt != nil {
		return errors.New("model: completed_at must be nil when task status is not completed")
	}
	return nil
}

// DateOnly truncates a timestamp to midnight UTC. Due-date bucketing never
// looks at time of day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
