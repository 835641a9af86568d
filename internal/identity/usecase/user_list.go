package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taskgrid/taskgrid/internal/identity/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/shared/constant"
)

type UserListInput struct {
	Search string
	Role   string `validate:"omitempty,oneof=Admin Teacher Student"`
	Page   int32  `validate:"omitempty,min=1"`
	Limit  int32  `validate:"omitempty,min=1,max=100"`
}

type UserListItem struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      string
}

type UserListOutput struct {
	Users []UserListItem
	Total int64
}

func (s *Usecase) UserList(ctx context.Context, in UserListInput) (*UserListOutput, error) {
	ctx, span := s.startSpan(ctx, "UserList")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermissionUsers, constant.ActionRead); err != nil {
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

	users, total, err := s.repoDB.GetUserList(ctx, entity.UserListFilter{
		Search: strings.TrimSpace(in.Search),
		Role:   entity.RoleFromString(in.Role),
		Limit:  in.Limit,
		Offset: (in.Page - 1) * in.Limit,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user list", "error", err)
		return nil, goerror.NewServer(err)
	}

	out := &UserListOutput{Total: total, Users: make([]UserListItem, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, UserListItem{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      u.Role.String(),
		})
	}

	return out, nil
}
