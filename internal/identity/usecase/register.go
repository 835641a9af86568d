package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/taskgrid/taskgrid/internal/identity/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/otp"
)

type RegisterInput struct {
	SessionID       string `validate:"required"`
	Username        string `validate:"required,alphanum,min=3,max=30"`
	Email           string `validate:"required,email"`
	FirstName       string `validate:"required,alphaspace,max=50"`
	LastName        string `validate:"required,alphaspace,max=50"`
	Role            string `validate:"required,oneof=Admin Teacher Student"`
	Password        string `validate:"required,password"`
	PasswordConfirm string `validate:"required,eqfield=Password"`
}

type RegisterOutput struct {
	Email            string
	OtpExpiresInSecs int
}

// Register holds the signup as a cache ticket and mails a one-time code.
// No account exists until the code is verified. Submitting again replaces
// the previous ticket, so only the newest code is ever accepted.
func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if _, err := s.repoDB.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, goerror.NewBusiness("email already registered", goerror.CodeConflict)
	} else if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by email", "error", err)
		return nil, goerror.NewServer(err)
	}

	if _, err := s.repoDB.GetUserByUsername(ctx, in.Username); err == nil {
		return nil, goerror.NewBusiness("username already taken", goerror.CodeConflict)
	} else if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by username", "error", err)
		return nil, goerror.NewServer(err)
	}

	pwdHash, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	code, err := otp.Generate(otp.DefaultLength)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	ticket := entity.RegistrationTicket{
		Profile: entity.RegistrationProfile{
			Username:     in.Username,
			Email:        in.Email,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Role:         in.Role,
			PasswordHash: string(pwdHash),
		},
		Code:     code,
		IssuedAt: s.clock.Now(),
	}

	if err := s.tickets.SaveRegistration(ctx, in.SessionID, ticket, s.ticketTTL()); err != nil {
		slog.ErrorContext(ctx, "failed to save registration ticket", "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.sendOTPEmail(ctx, in.Email, in.FirstName, code); err != nil {
		slog.ErrorContext(ctx, "failed to send registration otp email", "error", err)

		// A ticket without a delivered code is unverifiable, drop it so the
		// user can retry cleanly.
		if derr := s.tickets.DeleteRegistration(ctx, in.SessionID); derr != nil {
			slog.ErrorContext(ctx, "failed to delete registration ticket", "error", derr)
		}

		return nil, goerror.NewServer(err)
	}

	return &RegisterOutput{
		Email:            maskEmail(in.Email),
		OtpExpiresInSecs: int(s.otpTTL().Seconds()),
	}, nil
}
