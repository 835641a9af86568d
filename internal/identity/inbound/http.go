package inbound

import (
	"context"

	"github.com/taskgrid/taskgrid/internal/identity/usecase"
	"github.com/taskgrid/taskgrid/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	RegisterVerify(ctx context.Context, in usecase.RegisterVerifyInput) (*usecase.RegisterVerifyOutput, error)

	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	LoginVerify(ctx context.Context, in usecase.LoginVerifyInput) (*usecase.LoginVerifyOutput, error)
	ResendOTP(ctx context.Context, in usecase.ResendOTPInput) (*usecase.ResendOTPOutput, error)

	Logout(ctx context.Context, in usecase.LogoutInput) error
	RefreshToken(ctx context.Context, in usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error)

	UserList(ctx context.Context, in usecase.UserListInput) (*usecase.UserListOutput, error)
	UserDetail(ctx context.Context, in usecase.UserDetailInput) (*usecase.UserDetailOutput, error)
	UserUpdate(ctx context.Context, in usecase.UserUpdateInput) error
	UserDelete(ctx context.Context, in usecase.UserDeleteInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Registration (OTP-gated)
	r.POST("/api/v1/auth/register", end.Register)
	r.POST("/api/v1/auth/register/verify", end.RegisterVerify)

	// Login (OTP-gated)
	r.POST("/api/v1/auth/login", end.Login)
	r.POST("/api/v1/auth/login/verify", end.LoginVerify)
	r.POST("/api/v1/auth/otp/resend", end.ResendOTP)

	// Sessions
	r.POST("/api/v1/auth/logout", end.Logout) // need authenticated
	r.POST("/api/v1/auth/refresh", end.RefreshToken)

	// User Directory (need authenticated & authorization)
	r.GET("/api/v1/users", end.UserList)
	r.GET("/api/v1/users/:id", end.UserDetail)
	r.PUT("/api/v1/users/:id", end.UserUpdate)
	r.DELETE("/api/v1/users/:id", end.UserDelete)
}
