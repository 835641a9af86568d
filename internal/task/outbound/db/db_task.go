package db

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/task/entity"
)

const taskColumns = `id, title, description, assigned_to, created_by, status, due_date, task_type, attachment_key, created_at, updated_at`

func scanTask(row interface{ Scan(dest ...any) error }) (*entity.Task, error) {
	var t entity.Task
	var status string

	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.AssignedTo, &t.CreatedBy,
		&status, &t.DueDate, &t.TaskType, &t.AttachmentKey, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = entity.StatusFromString(status)
	return &t, nil
}

func (s *DB) GetTaskByID(ctx context.Context, id int64) (_ *entity.Task, err error) {
	ctx, span := s.startSpan(ctx, "GetTaskByID")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	t, err := scanTask(row)
	if err != nil {
		return nil, s.mapError(err)
	}
	return t, nil
}

func (s *DB) GetTaskList(ctx context.Context, filter entity.TaskListFilter) (_ []entity.TaskWithNames, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "GetTaskList")
	defer func() { s.endSpan(span, err) }()

	where := []string{"TRUE"}
	args := []any{}

	if filter.CreatedBy != 0 {
		args = append(args, filter.CreatedBy)
		where = append(where, `t.created_by = $`+strconv.Itoa(len(args)))
	}
	if filter.AssignedTo != 0 {
		args = append(args, filter.AssignedTo)
		where = append(where, `t.assigned_to = $`+strconv.Itoa(len(args)))
	}
	if !filter.Status.IsUnknown() {
		args = append(args, filter.Status.String())
		where = append(where, `t.status = $`+strconv.Itoa(len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		where = append(where, `LOWER(t.title) LIKE $`+strconv.Itoa(len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int64
	if err = s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM tasks t WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := `
		SELECT t.` + strings.ReplaceAll(taskColumns, ", ", ", t.") + `,
		       COALESCE(a.first_name || ' ' || a.last_name, ''),
		       COALESCE(c.first_name || ' ' || c.last_name, '')
		FROM tasks t
		LEFT JOIN users a ON a.id = t.assigned_to
		LEFT JOIN users c ON c.id = t.created_by
		WHERE ` + cond + `
		ORDER BY t.created_at DESC
		LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	tasks, err := collectTasksWithNames(rows)
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	return tasks, total, nil
}

func (s *DB) GetTasksSince(ctx context.Context, since time.Time) (_ []entity.TaskWithNames, err error) {
	ctx, span := s.startSpan(ctx, "GetTasksSince")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT t.`+strings.ReplaceAll(taskColumns, ", ", ", t.")+`,
		       COALESCE(a.first_name || ' ' || a.last_name, ''),
		       COALESCE(c.first_name || ' ' || c.last_name, '')
		FROM tasks t
		LEFT JOIN users a ON a.id = t.assigned_to
		LEFT JOIN users c ON c.id = t.created_by
		WHERE t.created_at >= $1
		ORDER BY t.created_at`,
		since,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	tasks, err := collectTasksWithNames(rows)
	if err != nil {
		return nil, s.mapError(err)
	}
	return tasks, nil
}

func collectTasksWithNames(rows pgx.Rows) ([]entity.TaskWithNames, error) {
	var out []entity.TaskWithNames
	for rows.Next() {
		var t entity.TaskWithNames
		var status string

		err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.AssignedTo, &t.CreatedBy,
			&status, &t.DueDate, &t.TaskType, &t.AttachmentKey, &t.CreatedAt, &t.UpdatedAt,
			&t.AssignedToName, &t.CreatedByName,
		)
		if err != nil {
			return nil, err
		}

		t.Status = entity.StatusFromString(status)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *DB) CreateTask(ctx context.Context, in entity.NewTask) (err error) {
	ctx, span := s.startSpan(ctx, "CreateTask")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO tasks (id, title, description, assigned_to, created_by, status, due_date, task_type, attachment_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		in.ID, in.Title, in.Description, in.AssignedTo, in.CreatedBy,
		in.Status.String(), in.DueDate, in.TaskType, in.AttachmentKey,
	)
	return s.mapError(err)
}

// CreateTasks inserts the whole batch in one transaction so a bulk
// assignment is all-or-nothing.
func (s *DB) CreateTasks(ctx context.Context, in []entity.NewTask) (err error) {
	ctx, span := s.startSpan(ctx, "CreateTasks")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return s.mapError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, t := range in {
		if _, err = tx.Exec(ctx, `
			INSERT INTO tasks (id, title, description, assigned_to, created_by, status, due_date, task_type, attachment_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t.ID, t.Title, t.Description, t.AssignedTo, t.CreatedBy,
			t.Status.String(), t.DueDate, t.TaskType, t.AttachmentKey,
		); err != nil {
			return s.mapError(err)
		}
	}

	return s.mapError(tx.Commit(ctx))
}

func (s *DB) UpdateTask(ctx context.Context, in entity.UpdateTask) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateTask")
	defer func() { s.endSpan(span, err) }()

	set := []string{"updated_at = NOW()"}
	args := []any{}

	add := func(col string, val any) {
		args = append(args, val)
		set = append(set, col+" = $"+strconv.Itoa(len(args)))
	}

	if in.Title != nil {
		add("title", *in.Title)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.AssignedTo != nil {
		add("assigned_to", *in.AssignedTo)
	}
	if in.Status != nil {
		add("status", in.Status.String())
	}
	if in.DueDate != nil {
		add("due_date", *in.DueDate)
	}
	if in.TaskType != nil {
		add("task_type", *in.TaskType)
	}

	args = append(args, in.ID)
	query := `UPDATE tasks SET ` + strings.Join(set, ", ") + ` WHERE id = $` + strconv.Itoa(len(args))

	tag, err := s.conn.Exec(ctx, query, args...)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}

// UpdateTaskStatus only matches when the task is assigned to the caller, so
// ownership is enforced in the same statement.
func (s *DB) UpdateTaskStatus(ctx context.Context, id, assignedTo int64, st entity.Status) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateTaskStatus")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE tasks SET status = $1, updated_at = NOW() WHERE id = $2 AND assigned_to = $3`,
		st.String(), id, assignedTo,
	)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}

func (s *DB) DeleteTask(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteTask")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}

func (s *DB) GetPerson(ctx context.Context, userID int64) (_ *entity.Person, err error) {
	ctx, span := s.startSpan(ctx, "GetPerson")
	defer func() { s.endSpan(span, err) }()

	var p entity.Person
	err = s.conn.QueryRow(ctx, `
		SELECT id, email, first_name || ' ' || last_name, role
		FROM users WHERE id = $1 AND deleted_at IS NULL`,
		userID,
	).Scan(&p.ID, &p.Email, &p.FullName, &p.Role)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &p, nil
}
