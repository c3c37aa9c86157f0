package storage

import "time"

type Contact struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type Cadence struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type ManualTask struct {
	ID          string
	UserID      string
	Title       string
	Status      string
	DueDate     time.Time
	TaskType    string
	ContactID   string
	Notes       string
	CompletedBy string
	CompletedAt *time.Time
	CreatedAt   time.Time
}

type CadenceTask struct {
	ID          string
	UserID      string
	CadenceID   string
	Title       string
	Status      string
	DueDate     time.Time
	TaskType    string
	ContactID   string
	Notes       string
	CompletedBy string
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// UserTaskRow is one row of the combined read over both task tables, with
// contact and cadence display names joined in.
type UserTaskRow struct {
	ID          string
	Source      string
	UserID      string
	Title       string
	Status      string
	DueDate     time.Time
	TaskType    string
	ContactID   string
	ContactName string
	CadenceName string
	Notes       string
	CompletedBy string
	CompletedAt *time.Time
	CreatedAt   time.Time
}

type UserTaskFilter struct {
	UserID   string
	Statuses []string
	DueFrom  *time.Time
	DueTo    *time.Time
}

// StatusPatch is the shared payload shape of the two status update paths.
// Nil fields are left untouched.
type StatusPatch struct {
	Status      string
	Notes       *string
	CompletedBy *string
	CompletedAt *time.Time
}
