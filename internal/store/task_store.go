package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/model"
)

const taskColumns = "id, title, description, status, deadline, creator_id, created_at, updated_at, completed_at, deleted_at"

// CreateTask inserts a new task. Generates a UUID if ID is empty.
// Assignees on the struct are written to the join table in the same
// transaction.
func (s *SQLStore) CreateTask(ctx context.Context, t model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task title must not be empty")
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = model.TaskStatusActive
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.Title, t.Description, t.Status, utcPtr(t.Deadline),
		t.CreatorID, t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
		utcPtr(t.CompletedAt), utcPtr(t.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}

	for _, userID := range dedupStrings(t.Assignees) {
		_, err = tx.ExecContext(ctx, s.rebind(
			"INSERT INTO task_assignees (task_id, user_id) VALUES (?, ?)"),
			t.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("assigning task %s to %s: %w", t.ID, userID, err)
		}
	}

	return tx.Commit()
}

// UpdateTask updates title, description, and deadline of an existing task.
// Status transitions go through SetTaskStatus instead.
func (s *SQLStore) UpdateTask(ctx context.Context, t model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task title must not be empty")
	}

	result, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE tasks SET title = ?, description = ?, deadline = ?, updated_at = ?
		WHERE id = ?`),
		t.Title, t.Description, utcPtr(t.Deadline), time.Now().UTC(), t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", t.ID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTaskByID retrieves a single task by ID, including its assignees.
func (s *SQLStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	row := s.db.QueryRowxContext(ctx, s.rebind(
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?"), id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	assignees, err := s.taskAssignees(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Assignees = assignees
	return &t, nil
}

// ListTasks retrieves tasks matching the filter, newest first. The urgency
// ordering for the active view is derived client-side.
func (s *SQLStore) ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	var conditions []string
	var args []interface{}

	query := "SELECT " + taskColumns + " FROM tasks"
	if filter.AssigneeID != nil {
		query = "SELECT " + prefixColumns(taskColumns, "tasks.") +
			" FROM tasks INNER JOIN task_assignees ON tasks.id = task_assignees.task_id"
		conditions = append(conditions, "task_assignees.user_id = ?")
		args = append(args, *filter.AssigneeID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "tasks.status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "(tasks.title LIKE ? OR tasks.description LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY tasks.created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tasks {
		assignees, err := s.taskAssignees(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Assignees = assignees
	}

	return tasks, nil
}

// SetTaskStatus applies a status transition, setting or clearing the
// completion and deletion timestamps together with the status.
func (s *SQLStore) SetTaskStatus(
	ctx context.Context,
	id, status string,
	completedAt, deletedAt *time.Time,
) error {
	result, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE tasks SET status = ?, completed_at = ?, deleted_at = ?, updated_at = ?
		WHERE id = ?`),
		status, utcPtr(completedAt), utcPtr(deletedAt), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("setting task %s status to %s: %w", id, status, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SetTaskAssignees replaces the assignee set for a task.
func (s *SQLStore) SetTaskAssignees(ctx context.Context, taskID string, userIDs []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(
		"DELETE FROM task_assignees WHERE task_id = ?"), taskID); err != nil {
		return fmt.Errorf("clearing assignees for task %s: %w", taskID, err)
	}

	for _, userID := range dedupStrings(userIDs) {
		if _, err := tx.ExecContext(ctx, s.rebind(
			"INSERT INTO task_assignees (task_id, user_id) VALUES (?, ?)"),
			taskID, userID); err != nil {
			return fmt.Errorf("assigning task %s to %s: %w", taskID, userID, err)
		}
	}

	return tx.Commit()
}

// HardDeleteTask permanently removes a task, its assignment rows, and its
// comment thread. Irreversible.
func (s *SQLStore) HardDeleteTask(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Comments hang off (entity_type, entity_id), not a foreign key.
	if _, err := tx.ExecContext(ctx, s.rebind(
		"DELETE FROM comments WHERE entity_type = ? AND entity_id = ?"),
		model.CommentEntityTask, id); err != nil {
		return fmt.Errorf("deleting comments for task %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, s.rebind("DELETE FROM tasks WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// ListExpiredDeleted returns soft-deleted tasks whose deletion timestamp is
// older than the given cutoff.
func (s *SQLStore) ListExpiredDeleted(ctx context.Context, deletedBefore time.Time) ([]model.Task, error) {
	rows, err := s.db.QueryxContext(ctx, s.rebind(
		"SELECT "+taskColumns+" FROM tasks WHERE status = ? AND deleted_at < ?"),
		model.TaskStatusDeleted, deletedBefore.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying expired deleted tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// taskAssignees loads the assignee ids for a task.
func (s *SQLStore) taskAssignees(ctx context.Context, taskID string) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, s.rebind(
		"SELECT user_id FROM task_assignees WHERE task_id = ? ORDER BY user_id"), taskID)
	if err != nil {
		return nil, fmt.Errorf("loading assignees for task %s: %w", taskID, err)
	}
	return ids, nil
}

// scanTask scans a task row.
func scanTask(row interface{ Scan(dest ...interface{}) error }) (model.Task, error) {
	var (
		t           model.Task
		deadline    *time.Time
		completedAt *time.Time
		deletedAt   *time.Time
	)

	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &deadline,
		&t.CreatorID, &t.CreatedAt, &t.UpdatedAt, &completedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, err
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("scanning task row: %w", err)
	}

	t.Deadline = deadline
	t.CompletedAt = completedAt
	t.DeletedAt = deletedAt
	return t, nil
}

// prefixColumns qualifies a comma-separated column list with a table prefix.
func prefixColumns(columns, prefix string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = prefix + p
	}
	return strings.Join(parts, ", ")
}

// utcPtr normalizes an optional timestamp to UTC.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// dedupStrings removes duplicates while preserving order.
func dedupStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
