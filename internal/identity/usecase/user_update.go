package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taskgrid/taskgrid/internal/identity/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/shared/constant"
)

type UserUpdateInput struct {
	ID        int64   `validate:"required"`
	Username  *string `validate:"omitempty,alphanum,min=3,max=30"`
	Email     *string `validate:"omitempty,email"`
	FirstName *string `validate:"omitempty,alphaspace,max=50"`
	LastName  *string `validate:"omitempty,alphaspace,max=50"`
	Role      *string `validate:"omitempty,oneof=Admin Teacher Student"`
}

func (s *Usecase) UserUpdate(ctx context.Context, in UserUpdateInput) error {
	ctx, span := s.startSpan(ctx, "UserUpdate")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermissionUsers, constant.ActionWrite)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	upd := entity.UpdateUser{
		ID:        in.ID,
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		UpdatedBy: clm.UserID,
	}
	if in.Role != nil {
		role := entity.RoleFromString(*in.Role)
		upd.Role = &role
	}

	err = s.repoDB.UpdateUser(ctx, upd)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}
	if errors.Is(err, goerror.ErrConflict) {
		return goerror.NewBusiness("email or username already taken", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update user", "user_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
