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

type TaskCreateInput struct {
	Title       string `validate:"required,min=3,max=200"`
	Description string `validate:"max=2000"`
	AssignedTo  int64  `validate:"required"`
	DueDate     *time.Time
	TaskType    string `validate:"omitempty,max=50"`
}

type TaskCreateOutput struct {
	ID int64
}

func (s *Usecase) TaskCreate(ctx context.Context, in TaskCreateInput) (*TaskCreateOutput, error) {
	ctx, span := s.startSpan(ctx, "TaskCreate")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermissionTasks, constant.ActionWrite)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	assignee, err := s.resolveStudent(ctx, in.AssignedTo)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("assignee not found", goerror.CodeInvalidInput)
	}
	if err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			return nil, err
		}
		slog.ErrorContext(ctx, "failed to repo get person", "user_id", in.AssignedTo, "error", err)
		return nil, goerror.NewServer(err)
	}

	task := entity.NewTask{
		ID:          s.uid.Generate(),
		Title:       in.Title,
		Description: in.Description,
		AssignedTo:  &in.AssignedTo,
		CreatedBy:   clm.UserID,
		Status:      entity.StatusPending,
		DueDate:     in.DueDate,
		TaskType:    in.TaskType,
	}

	if err := s.repoDB.CreateTask(ctx, task); err != nil {
		slog.ErrorContext(ctx, "failed to repo create task", "error", err)
		return nil, goerror.NewServer(err)
	}

	s.publishAssigned(ctx, task, assignee, creatorName(ctx, s, clm.UserID))

	return &TaskCreateOutput{ID: task.ID}, nil
}

// creatorName is best effort, the event tolerates an empty sender name.
func creatorName(ctx context.Context, s *Usecase, userID int64) string {
	p, err := s.repoDB.GetPerson(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "failed to repo get person", "user_id", userID, "error", err)
		return ""
	}
	return p.FullName
}
