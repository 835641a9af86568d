package usecase

import (
	"context"
	"log/slog"

	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/jwt"
	"github.com/taskgrid/taskgrid/internal/shared/constant"
)

type TeacherDashboardOutput struct {
	TotalTasks      int64
	PendingTasks    int64
	InProgressTasks int64
	CompletedTasks  int64
	ProgressPct     int
	StudentsCount   int64
	DueToday        int64
	NewThisWeek     int64
}

func (s *Usecase) DashboardTeacher(ctx context.Context) (*TeacherDashboardOutput, error) {
	ctx, span := s.startSpan(ctx, "DashboardTeacher")
	defer span.End()

	clm, err := s.requireRole(ctx, constant.RoleTeacher)
	if err != nil {
		return nil, err
	}

	d, err := s.repoDB.GetTeacherDashboard(ctx, clm.UserID, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get teacher dashboard", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &TeacherDashboardOutput{
		TotalTasks:      d.Counts.Total,
		PendingTasks:    d.Counts.Pending,
		InProgressTasks: d.Counts.InProgress,
		CompletedTasks:  d.Counts.Completed,
		ProgressPct:     d.Counts.ProgressPct(),
		StudentsCount:   d.StudentsCount,
		DueToday:        d.DueToday,
		NewThisWeek:     d.NewThisWeek,
	}, nil
}

type StudentDashboardOutput struct {
	TotalTasks      int64
	PendingTasks    int64
	InProgressTasks int64
	CompletedTasks  int64
	ProgressPct     int
	DueToday        int64
}

func (s *Usecase) DashboardStudent(ctx context.Context) (*StudentDashboardOutput, error) {
	ctx, span := s.startSpan(ctx, "DashboardStudent")
	defer span.End()

	clm, err := s.requireRole(ctx, constant.RoleStudent)
	if err != nil {
		return nil, err
	}

	d, err := s.repoDB.GetStudentDashboard(ctx, clm.UserID, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get student dashboard", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &StudentDashboardOutput{
		TotalTasks:      d.Counts.Total,
		PendingTasks:    d.Counts.Pending,
		InProgressTasks: d.Counts.InProgress,
		CompletedTasks:  d.Counts.Completed,
		ProgressPct:     d.Counts.ProgressPct(),
		DueToday:        d.DueToday,
	}, nil
}

type AdminDashboardOutput struct {
	TotalTasks      int64
	PendingTasks    int64
	InProgressTasks int64
	CompletedTasks  int64
	ProgressPct     int
	UsersTotal      int64
	TeachersCount   int64
	StudentsCount   int64
	NewThisWeek     int64
}

func (s *Usecase) DashboardAdmin(ctx context.Context) (*AdminDashboardOutput, error) {
	ctx, span := s.startSpan(ctx, "DashboardAdmin")
	defer span.End()

	if _, err := s.requireRole(ctx, constant.RoleAdmin); err != nil {
		return nil, err
	}

	d, err := s.repoDB.GetAdminDashboard(ctx, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get admin dashboard", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &AdminDashboardOutput{
		TotalTasks:      d.Counts.Total,
		PendingTasks:    d.Counts.Pending,
		InProgressTasks: d.Counts.InProgress,
		CompletedTasks:  d.Counts.Completed,
		ProgressPct:     d.Counts.ProgressPct(),
		UsersTotal:      d.UsersTotal,
		TeachersCount:   d.TeachersCount,
		StudentsCount:   d.StudentsCount,
		NewThisWeek:     d.NewThisWeek,
	}, nil
}

func (s *Usecase) requireRole(ctx context.Context, role string) (*jwt.Claims, error) {
	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermissionTasks, constant.ActionRead)
	if err != nil {
		return nil, err
	}

	if clm.UserRole != role {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}
