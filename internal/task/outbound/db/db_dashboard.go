package db

import (
	"context"
	"time"

	"github.com/taskgrid/taskgrid/internal/task/entity"
)

const statusCountsExpr = `
	COUNT(*),
	COUNT(*) FILTER (WHERE status = 'Pending'),
	COUNT(*) FILTER (WHERE status = 'In Progress'),
	COUNT(*) FILTER (WHERE status = 'Completed')`

func (s *DB) GetTeacherDashboard(ctx context.Context, teacherID int64, now time.Time) (_ *entity.TeacherDashboard, err error) {
	ctx, span := s.startSpan(ctx, "GetTeacherDashboard")
	defer func() { s.endSpan(span, err) }()

	var d entity.TeacherDashboard

	err = s.conn.QueryRow(ctx, `
		SELECT `+statusCountsExpr+`,
		       COUNT(DISTINCT assigned_to) FILTER (WHERE assigned_to IS NOT NULL),
		       COUNT(*) FILTER (WHERE due_date::date = $2::date),
		       COUNT(*) FILTER (WHERE created_at >= $2 - INTERVAL '7 days')
		FROM tasks WHERE created_by = $1`,
		teacherID, now,
	).Scan(
		&d.Counts.Total, &d.Counts.Pending, &d.Counts.InProgress, &d.Counts.Completed,
		&d.StudentsCount, &d.DueToday, &d.NewThisWeek,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &d, nil
}

func (s *DB) GetStudentDashboard(ctx context.Context, studentID int64, now time.Time) (_ *entity.StudentDashboard, err error) {
	ctx, span := s.startSpan(ctx, "GetStudentDashboard")
	defer func() { s.endSpan(span, err) }()

	var d entity.StudentDashboard

	err = s.conn.QueryRow(ctx, `
		SELECT `+statusCountsExpr+`,
		       COUNT(*) FILTER (WHERE due_date::date = $2::date AND status <> 'Completed')
		FROM tasks WHERE assigned_to = $1`,
		studentID, now,
	).Scan(
		&d.Counts.Total, &d.Counts.Pending, &d.Counts.InProgress, &d.Counts.Completed,
		&d.DueToday,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &d, nil
}

func (s *DB) GetAdminDashboard(ctx context.Context, now time.Time) (_ *entity.AdminDashboard, err error) {
	ctx, span := s.startSpan(ctx, "GetAdminDashboard")
	defer func() { s.endSpan(span, err) }()

	var d entity.AdminDashboard

	err = s.conn.QueryRow(ctx, `
		SELECT `+statusCountsExpr+`,
		       COUNT(*) FILTER (WHERE created_at >= $1 - INTERVAL '7 days')
		FROM tasks`,
		now,
	).Scan(
		&d.Counts.Total, &d.Counts.Pending, &d.Counts.InProgress, &d.Counts.Completed,
		&d.NewThisWeek,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	err = s.conn.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE role = 'Teacher'),
		       COUNT(*) FILTER (WHERE role = 'Student')
		FROM users WHERE deleted_at IS NULL`,
	).Scan(&d.UsersTotal, &d.TeachersCount, &d.StudentsCount)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &d, nil
}
