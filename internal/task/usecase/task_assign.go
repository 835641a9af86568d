package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/idempotency"
	"github.com/taskgrid/taskgrid/internal/shared/constant"
	"github.com/taskgrid/taskgrid/internal/task/entity"
)

type TaskAssignInput struct {
	IdempotencyKey string  `validate:"required,min=8,max=128"`
	Title          string  `validate:"required,min=3,max=200"`
	Description    string  `validate:"max=2000"`
	AssignedTo     []int64 `validate:"required,min=1,max=100,unique"`
	DueDate        *time.Time
	TaskType       string `validate:"omitempty,max=50"`
}

type TaskAssignOutput struct {
	TaskIDs []int64
}

// TaskAssign creates one task per student in a single write. The
// idempotency key makes a retried submit a no-op instead of a duplicate
// fan-out.
func (s *Usecase) TaskAssign(ctx context.Context, in TaskAssignInput) (*TaskAssignOutput, error) {
	ctx, span := s.startSpan(ctx, "TaskAssign")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermissionTasks, constant.ActionWrite)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	assignees := make([]*entity.Person, 0, len(in.AssignedTo))
	for _, id := range in.AssignedTo {
		p, rerr := s.resolveStudent(ctx, id)
		if errors.Is(rerr, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("assignee not found", goerror.CodeInvalidInput)
		}
		if rerr != nil {
			var gerr *goerror.Error
			if errors.As(rerr, &gerr) {
				return nil, rerr
			}
			slog.ErrorContext(ctx, "failed to repo get person", "user_id", id, "error", rerr)
			return nil, goerror.NewServer(rerr)
		}
		assignees = append(assignees, p)
	}

	var out TaskAssignOutput

	err = s.idemp.Exec(ctx, "task:assign:"+in.IdempotencyKey, func(ctx context.Context) error {
		tasks := make([]entity.NewTask, 0, len(assignees))
		for _, p := range assignees {
			id := p.ID
			tasks = append(tasks, entity.NewTask{
				ID:          s.uid.Generate(),
				Title:       in.Title,
				Description: in.Description,
				AssignedTo:  &id,
				CreatedBy:   clm.UserID,
				Status:      entity.StatusPending,
				DueDate:     in.DueDate,
				TaskType:    in.TaskType,
			})
		}

		if err := s.repoDB.CreateTasks(ctx, tasks); err != nil {
			slog.ErrorContext(ctx, "failed to repo create tasks", "error", err)
			return err
		}

		name := creatorName(ctx, s, clm.UserID)
		for i, task := range tasks {
			out.TaskIDs = append(out.TaskIDs, task.ID)
			s.publishAssigned(ctx, task, assignees[i], name)
		}

		return nil
	})
	if errors.Is(err, idempotency.ErrAlreadyInProgress) || errors.Is(err, idempotency.ErrAlreadyCompleted) {
		slog.WarnContext(ctx, "duplicate task assign submit", "idempotency_key", in.IdempotencyKey)
		return nil, goerror.NewBusiness("assignment already processed", goerror.CodeConflict)
	}
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	return &out, nil
}
