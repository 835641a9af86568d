package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/shared/constant"
)

type UserDeleteInput struct {
	ID int64 `validate:"required"`
}

func (s *Usecase) UserDelete(ctx context.Context, in UserDeleteInput) error {
	ctx, span := s.startSpan(ctx, "UserDelete")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermissionUsers, constant.ActionDelete)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if clm.UserID == in.ID {
		return goerror.NewBusiness("cannot delete your own account", goerror.CodeInvalidInput)
	}

	err = s.repoDB.DeleteUser(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete user", "user_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	if rerr := s.repoDB.RevokeAllRefreshToken(ctx, in.ID); rerr != nil {
		slog.WarnContext(ctx, "failed to repo revoke all refresh token", "user_id", in.ID, "error", rerr)
	}

	return nil
}
