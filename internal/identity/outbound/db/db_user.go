package db

import (
	"context"
	"strconv"
	"strings"

	"github.com/taskgrid/taskgrid/internal/identity/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
)

const userColumns = `id, username, email, first_name, last_name, role, password, otp_code, otp_sent_at, created_at, updated_at`

func (s *DB) scanUser(row interface{ Scan(dest ...any) error }) (*entity.User, error) {
	var u entity.User
	var role string

	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&role, &u.Password, &u.OtpCode, &u.OtpSentAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Role = entity.RoleFromString(role)
	return &u, nil
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND deleted_at IS NULL`, email)

	u, err := s.scanUser(row)
	if err != nil {
		return nil, s.mapError(err)
	}
	return u, nil
}

func (s *DB) GetUserByUsername(ctx context.Context, username string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByUsername")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 AND deleted_at IS NULL`, username)

	u, err := s.scanUser(row)
	if err != nil {
		return nil, s.mapError(err)
	}
	return u, nil
}

func (s *DB) GetUserByID(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id)

	u, err := s.scanUser(row)
	if err != nil {
		return nil, s.mapError(err)
	}
	return u, nil
}

func (s *DB) GetUserList(ctx context.Context, filter entity.UserListFilter) (_ []entity.User, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "GetUserList")
	defer func() { s.endSpan(span, err) }()

	where := []string{"deleted_at IS NULL"}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		n := len(args)
		where = append(where, `(LOWER(username) LIKE $`+strconv.Itoa(n)+` OR LOWER(email) LIKE $`+strconv.Itoa(n)+`)`)
	}
	if !filter.Role.IsUnknown() {
		args = append(args, filter.Role.String())
		where = append(where, `role = $`+strconv.Itoa(len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int64
	if err = s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + cond +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		u, serr := s.scanUser(rows)
		if serr != nil {
			return nil, 0, s.mapError(serr)
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, s.mapError(err)
	}

	return users, total, nil
}

func (s *DB) CreateUser(ctx context.Context, in entity.NewUser) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO users (id, username, email, first_name, last_name, role, password)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		in.ID, in.Username, in.Email, in.FirstName, in.LastName, in.Role.String(), in.Password,
	)
	return s.mapError(err)
}

func (s *DB) UpdateUser(ctx context.Context, in entity.UpdateUser) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUser")
	defer func() { s.endSpan(span, err) }()

	set := []string{"updated_at = NOW()", "updated_by = $1"}
	args := []any{in.UpdatedBy}

	add := func(col string, val any) {
		args = append(args, val)
		set = append(set, col+" = $"+strconv.Itoa(len(args)))
	}

	if in.Username != nil {
		add("username", *in.Username)
	}
	if in.Email != nil {
		add("email", *in.Email)
	}
	if in.FirstName != nil {
		add("first_name", *in.FirstName)
	}
	if in.LastName != nil {
		add("last_name", *in.LastName)
	}
	if in.Role != nil {
		add("role", in.Role.String())
	}

	args = append(args, in.ID)
	query := `UPDATE users SET ` + strings.Join(set, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) + ` AND deleted_at IS NULL`

	tag, err := s.conn.Exec(ctx, query, args...)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}

func (s *DB) DeleteUser(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteUser")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `UPDATE users SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}
