package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/shared/constant"
	"github.com/taskgrid/taskgrid/internal/task/entity"
)

type TaskListInput struct {
	Status string `validate:"omitempty,oneof=Pending 'In Progress' Completed"`
	Search string
	Page   int32 `validate:"omitempty,min=1"`
	Limit  int32 `validate:"omitempty,min=1,max=100"`
}

type TaskListItem struct {
	ID             int64
	Title          string
	Description    string
	Status         string
	DueDate        *time.Time
	TaskType       string
	AssignedTo     *int64
	AssignedToName string
	CreatedBy      int64
	CreatedByName  string
	CreatedAt      time.Time
}

type TaskListOutput struct {
	Tasks []TaskListItem
	Total int64
}

// TaskList is scoped by role: teachers see tasks they created, students
// tasks assigned to them, admins everything.
func (s *Usecase) TaskList(ctx context.Context, in TaskListInput) (*TaskListOutput, error) {
	ctx, span := s.startSpan(ctx, "TaskList")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermissionTasks, constant.ActionRead)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = 20
	}

	filter := entity.TaskListFilter{
		Status: entity.StatusFromString(in.Status),
		Search: strings.TrimSpace(in.Search),
		Limit:  in.Limit,
		Offset: (in.Page - 1) * in.Limit,
	}

	switch clm.UserRole {
	case constant.RoleTeacher:
		filter.CreatedBy = clm.UserID
	case constant.RoleStudent:
		filter.AssignedTo = clm.UserID
	}

	tasks, total, err := s.repoDB.GetTaskList(ctx, filter)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get task list", "error", err)
		return nil, goerror.NewServer(err)
	}

	out := &TaskListOutput{Total: total, Tasks: make([]TaskListItem, 0, len(tasks))}
	for _, t := range tasks {
		out.Tasks = append(out.Tasks, TaskListItem{
			ID:             t.ID,
			Title:          t.Title,
			Description:    t.Description,
			Status:         t.Status.String(),
			DueDate:        t.DueDate,
			TaskType:       t.TaskType,
			AssignedTo:     t.AssignedTo,
			AssignedToName: t.AssignedToName,
			CreatedBy:      t.CreatedBy,
			CreatedByName:  t.CreatedByName,
			CreatedAt:      t.CreatedAt,
		})
	}

	return out, nil
}
