package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/shared/constant"
)

type UserDetailInput struct {
	ID int64 `validate:"required"`
}

type UserDetailOutput struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      string
	CreatedAt time.Time
}

func (s *Usecase) UserDetail(ctx context.Context, in UserDetailInput) (*UserDetailOutput, error) {
	ctx, span := s.startSpan(ctx, "UserDetail")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermissionUsers, constant.ActionRead); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByID(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &UserDetailOutput{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role.String(),
		CreatedAt: user.CreatedAt,
	}, nil
}
