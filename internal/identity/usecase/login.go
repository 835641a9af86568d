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

type LoginInput struct {
	SessionID string `validate:"required"`
	Username  string `validate:"required"`
	Password  string `validate:"required"`
	Role      string `validate:"omitempty,oneof=Admin Teacher Student"`
}

type LoginOutput struct {
	Email            string
	OtpExpiresInSecs int
}

// Login checks the password and, on success, mails a one-time code instead
// of issuing tokens. Credential failures are reported with one generic
// message so usernames cannot be probed.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByUsername(ctx, in.Username)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "login attempt for unknown username")
		return nil, goerror.NewBusiness("invalid username or password", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by username", "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.bcrypt.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "login attempt with wrong password", "user_id", user.ID)
		return nil, goerror.NewBusiness("invalid username or password", goerror.CodeUnauthorized)
	}

	// A role mismatch gets the same generic error as bad credentials so the
	// login form never confirms which portal an account belongs to.
	if in.Role != "" && user.Role != entity.RoleFromString(in.Role) {
		slog.WarnContext(ctx, "login attempt with mismatched role", "user_id", user.ID)
		return nil, goerror.NewBusiness("invalid username or password", goerror.CodeUnauthorized)
	}

	code, err := otp.Generate(otp.DefaultLength)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()

	if p, ok := s.repoDB.(otpPersister); ok {
		if serr := p.SetUserOTP(ctx, user.ID, code, now); serr != nil {
			slog.WarnContext(ctx, "failed to persist login otp", "user_id", user.ID, "error", serr)
		}
	}

	ticket := entity.LoginTicket{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		Role:      user.Role.String(),
		Code:      code,
		IssuedAt:  now,
	}

	if err := s.tickets.SaveLogin(ctx, in.SessionID, ticket, s.ticketTTL()); err != nil {
		slog.ErrorContext(ctx, "failed to save login ticket", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	// The ticket survives a mail failure. The next login attempt overwrites
	// it with a fresh code, so an undelivered code costs nothing.
	if err := s.sendOTPEmail(ctx, user.Email, user.FirstName, code); err != nil {
		slog.ErrorContext(ctx, "failed to send login otp email", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &LoginOutput{
		Email:            maskEmail(user.Email),
		OtpExpiresInSecs: int(s.otpTTL().Seconds()),
	}, nil
}
