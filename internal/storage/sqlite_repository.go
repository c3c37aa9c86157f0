package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	sqliteTimeLayout = time.RFC3339Nano
	sqliteDateLayout = "2006-01-02"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// DB exposes the underlying handle for migrations.
func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

const userTaskColumns = `id, source, user_id, title, status, due_date, task_type, contact_id, contact_name, cadence_name, notes, completed_by, completed_at, created_at`

func (r *SQLiteRepository) ListUserTasks(ctx context.Context, filter UserTaskFilter) ([]UserTaskRow, error) {
	if filter.UserID == "" {
		return nil, errors.New("storage: user id is required")
	}
	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = []string{"pending"}
	}

	where, half := userTaskPredicate(filter, statuses)
	query := fmt.Sprintf(`
		SELECT %s FROM (
			SELECT t.id, 'manual' AS source, t.user_id, t.title, t.status, t.due_date,
			       t.task_type, t.contact_id, COALESCE(c.name, '') AS contact_name,
			       '' AS cadence_name, t.notes, t.completed_by, t.completed_at, t.created_at
			FROM manual_tasks t
			LEFT JOIN contacts c ON c.id = t.contact_id
			WHERE %s
			UNION ALL
			SELECT t.id, 'cadence' AS source, t.user_id, t.title, t.status, t.due_date,
			       t.task_type, t.contact_id, COALESCE(c.name, '') AS contact_name,
			       COALESCE(cad.name, '') AS cadence_name, t.notes, t.completed_by, t.completed_at, t.created_at
			FROM cadence_tasks t
			LEFT JOIN contacts c ON c.id = t.contact_id
			LEFT JOIN cadences cad ON cad.id = t.cadence_id
			WHERE %s
		)
		ORDER BY due_date ASC, created_at ASC`, userTaskColumns, where, where)

	args := append(half, half...)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]UserTaskRow, 0)
	for rows.Next() {
		row, scanErr := scanUserTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func userTaskPredicate(filter UserTaskFilter, statuses []string) (string, []any) {
	clauses := []string{"t.user_id = ?"}
	args := []any{filter.UserID}

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
	clauses = append(clauses, "t.status IN ("+marks+")")
	for _, s := range statuses {
		args = append(args, s)
	}
	if filter.DueFrom != nil {
		clauses = append(clauses, "t.due_date >= ?")
		args = append(args, mustDate(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		clauses = append(clauses, "t.due_date <= ?")
		args = append(args, mustDate(*filter.DueTo))
	}
	return strings.Join(clauses, " AND "), args
}

func (r *SQLiteRepository) CreateManualTask(ctx context.Context, in ManualTask) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO manual_tasks (id, user_id, title, status, due_date, task_type, contact_id, notes, completed_by, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.UserID, in.Title, in.Status, mustDate(in.DueDate), in.TaskType,
		nullString(in.ContactID), in.Notes, in.CompletedBy, nullTime(in.CompletedAt), mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetManualTask(ctx context.Context, id string) (ManualTask, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, status, due_date, task_type, contact_id, notes, completed_by, completed_at, created_at
		FROM manual_tasks WHERE id = ?`, id)
	task, err := scanManualTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ManualTask{}, ErrNotFound
		}
		return ManualTask{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) UpdateManualTask(ctx context.Context, id string, patch StatusPatch) (ManualTask, error) {
	if err := r.applyStatusPatch(ctx, "manual_tasks", id, patch); err != nil {
		return ManualTask{}, err
	}
	return r.GetManualTask(ctx, id)
}

func (r *SQLiteRepository) CreateCadenceTask(ctx context.Context, in CadenceTask) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cadence_tasks (id, user_id, cadence_id, title, status, due_date, task_type, contact_id, notes, completed_by, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.UserID, in.CadenceID, in.Title, in.Status, mustDate(in.DueDate), in.TaskType,
		nullString(in.ContactID), in.Notes, in.CompletedBy, nullTime(in.CompletedAt), mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetCadenceTask(ctx context.Context, id string) (CadenceTask, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, cadence_id, title, status, due_date, task_type, contact_id, notes, completed_by, completed_at, created_at
		FROM cadence_tasks WHERE id = ?`, id)
	task, err := scanCadenceTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CadenceTask{}, ErrNotFound
		}
		return CadenceTask{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) UpdateCadenceTask(ctx context.Context, id string, patch StatusPatch) (CadenceTask, error) {
	if err := r.applyStatusPatch(ctx, "cadence_tasks", id, patch); err != nil {
		return CadenceTask{}, err
	}
	return r.GetCadenceTask(ctx, id)
}

// applyStatusPatch performs the conditional transition write. The pending
// guard lives in the WHERE clause so a race between two transitions can
// never double-stamp a task: the loser affects zero rows.
func (r *SQLiteRepository) applyStatusPatch(ctx context.Context, table, id string, patch StatusPatch) error {
	sets := []string{"status = ?"}
	args := []any{patch.Status}
	if patch.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *patch.Notes)
	}
	if patch.CompletedBy != nil {
		sets = append(sets, "completed_by = ?")
		args = append(args, *patch.CompletedBy)
	}
	if patch.CompletedAt != nil {
		sets = append(sets, "completed_at = ?")
		args = append(args, mustTime(*patch.CompletedAt))
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ? AND status = 'pending'`, table, strings.Join(sets, ", "))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var status string
	err = r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT status FROM %s WHERE id = ?`, table), id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s is %s", ErrNotPending, id, status)
}

func (r *SQLiteRepository) CreateContact(ctx context.Context, in Contact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts (id, name, created_at)
		VALUES (?, ?, ?)`,
		in.ID, in.Name, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) CreateCadence(ctx context.Context, in Cadence) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cadences (id, name, created_at)
		VALUES (?, ?, ?)`,
		in.ID, in.Name, mustTime(in.CreatedAt),
	)
	return err
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func mustDate(v time.Time) string {
	return v.UTC().Format(sqliteDateLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func parseDate(v string) (time.Time, error) {
	return time.ParseInLocation(sqliteDateLayout, v, time.UTC)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUserTask(s scanner) (UserTaskRow, error) {
	var out UserTaskRow
	var due string
	var taskType, contactID sql.NullString
	var completed sql.NullString
	var created string
	if err := s.Scan(&out.ID, &out.Source, &out.UserID, &out.Title, &out.Status, &due,
		&taskType, &contactID, &out.ContactName, &out.CadenceName, &out.Notes,
		&out.CompletedBy, &completed, &created); err != nil {
		return UserTaskRow{}, err
	}
	dueDate, err := parseDate(due)
	if err != nil {
		return UserTaskRow{}, err
	}
	completedAt, err := parseNullableTime(completed)
	if err != nil {
		return UserTaskRow{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return UserTaskRow{}, err
	}
	out.DueDate = dueDate
	out.TaskType = taskType.String
	out.ContactID = contactID.String
	out.CompletedAt = completedAt
	out.CreatedAt = createdAt
	return out, nil
}

func scanManualTask(s scanner) (ManualTask, error) {
	var out ManualTask
	var due string
	var taskType, contactID sql.NullString
	var completed sql.NullString
	var created string
	if err := s.Scan(&out.ID, &out.UserID, &out.Title, &out.Status, &due,
		&taskType, &contactID, &out.Notes, &out.CompletedBy, &completed, &created); err != nil {
		return ManualTask{}, err
	}
	dueDate, err := parseDate(due)
	if err != nil {
		return ManualTask{}, err
	}
	completedAt, err := parseNullableTime(completed)
	if err != nil {
		return ManualTask{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return ManualTask{}, err
	}
	out.DueDate = dueDate
	out.TaskType = taskType.String
	out.ContactID = contactID.String
	out.CompletedAt = completedAt
	out.CreatedAt = createdAt
	return out, nil
}

func scanCadenceTask(s scanner) (CadenceTask, error) {
	var out CadenceTask
	var due string
	var taskType, contactID sql.NullString
	var completed sql.NullString
	var created string
	if err := s.Scan(&out.ID, &out.UserID, &out.CadenceID, &out.Title, &out.Status, &due,
		&taskType, &contactID, &out.Notes, &out.CompletedBy, &completed, &created); err != nil {
		return CadenceTask{}, err
	}
	dueDate, err := parseDate(due)
	if err != nil {
		return CadenceTask{}, err
	}
	completedAt, err := parseNullableTime(completed)
	if err != nil {
		return CadenceTask{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return CadenceTask{}, err
	}
	out.DueDate = dueDate
	out.TaskType = taskType.String
	out.ContactID = contactID.String
	out.CompletedAt = completedAt
	out.CreatedAt = createdAt
	return out, nil
}
