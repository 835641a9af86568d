package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/jwt"
	"github.com/taskgrid/taskgrid/internal/shared/constant"
	"github.com/taskgrid/taskgrid/internal/task/entity"
)

type TaskUpdateInput struct {
	ID          int64   `validate:"required"`
	Title       *string `validate:"omitempty,min=3,max=200"`
	Description *string `validate:"omitempty,max=2000"`
	AssignedTo  *int64
	Status      *string `validate:"omitempty,oneof=Pending 'In Progress' Completed"`
	DueDate     *time.Time
	TaskType    *string `validate:"omitempty,max=50"`
}

func (s *Usecase) TaskUpdate(ctx context.Context, in TaskUpdateInput) error {
	ctx, span := s.startSpan(ctx, "TaskUpdate")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermissionTasks, constant.ActionWrite)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	task, err := s.loadOwnedTask(ctx, in.ID, clm)
	if err != nil {
		return err
	}

	upd := entity.UpdateTask{
		ID:          task.ID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		TaskType:    in.TaskType,
	}
	if in.Status != nil {
		st := entity.StatusFromString(*in.Status)
		upd.Status = &st
	}

	if in.AssignedTo != nil {
		if _, rerr := s.resolveStudent(ctx, *in.AssignedTo); rerr != nil {
			if errors.Is(rerr, goerror.ErrNotFound) {
				return goerror.NewBusiness("assignee not found", goerror.CodeInvalidInput)
			}
			var gerr *goerror.Error
			if errors.As(rerr, &gerr) {
				return rerr
			}
			slog.ErrorContext(ctx, "failed to repo get person", "user_id", *in.AssignedTo, "error", rerr)
			return goerror.NewServer(rerr)
		}
		upd.AssignedTo = in.AssignedTo
	}

	if err := s.repoDB.UpdateTask(ctx, upd); err != nil {
		slog.ErrorContext(ctx, "failed to repo update task", "task_id", task.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

func (s *Usecase) TaskDelete(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "TaskDelete")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermissionTasks, constant.ActionDelete)
	if err != nil {
		return err
	}

	task, err := s.loadOwnedTask(ctx, id, clm)
	if err != nil {
		return err
	}

	if err := s.repoDB.DeleteTask(ctx, task.ID); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete task", "task_id", task.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

// loadOwnedTask fetches the task and verifies the caller may modify it:
// the creator, or an admin.
func (s *Usecase) loadOwnedTask(ctx context.Context, id int64, clm *jwt.Claims) (*entity.Task, error) {
	task, err := s.repoDB.GetTaskByID(ctx, id)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("task not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get task by id", "task_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}

	if task.CreatedBy != clm.UserID && clm.UserRole != constant.RoleAdmin {
		return nil, goerror.NewBusiness("only the creator may modify this task", goerror.CodeForbidden)
	}

	return task, nil
}
