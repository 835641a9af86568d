package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/shared/constant"
	"github.com/taskgrid/taskgrid/internal/task/entity"
)

type TaskStatusUpdateInput struct {
	ID     int64  `validate:"required"`
	Status string `validate:"required,oneof=Pending 'In Progress' Completed"`
}

// TaskStatusUpdate is the one mutation a student may perform, and only on
// tasks assigned to them.
func (s *Usecase) TaskStatusUpdate(ctx context.Context, in TaskStatusUpdateInput) error {
	ctx, span := s.startSpan(ctx, "TaskStatusUpdate")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermissionTasks, constant.ActionRead)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	st := entity.StatusFromString(in.Status)

	err = s.repoDB.UpdateTaskStatus(ctx, in.ID, clm.UserID, st)
	if errors.Is(err, goerror.ErrNotFound) {
		// Either the task does not exist or it belongs to someone else.
		// One answer for both keeps assignment private.
		return goerror.NewBusiness("task not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update task status", "task_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
