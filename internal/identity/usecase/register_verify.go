package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/taskgrid/taskgrid/internal/identity/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/otp"
)

type RegisterVerifyInput struct {
	SessionID string `validate:"required"`
	Code      string `validate:"required,numeric"`
}

type RegisterVerifyOutput struct {
	RedirectTo string
}

// RegisterVerify checks the mailed code against the pending registration
// ticket and creates the account on a match. Three wrong codes burn the
// ticket entirely and the user has to register again.
func (s *Usecase) RegisterVerify(ctx context.Context, in RegisterVerifyInput) (*RegisterVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "RegisterVerify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ticket, err := s.tickets.GetRegistration(ctx, in.SessionID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no pending registration for session")
		return nil, goerror.NewBusiness("no registration in progress, please register first", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to get registration ticket", "error", err)
		return nil, goerror.NewServer(err)
	}

	if otp.Expired(&ticket.IssuedAt, s.otpTTL(), s.clock.Now()) {
		if derr := s.tickets.DeleteRegistration(ctx, in.SessionID); derr != nil {
			slog.ErrorContext(ctx, "failed to delete registration ticket", "error", derr)
		}

		return nil, goerror.NewBusiness("verification code has expired, please register again", goerror.CodeUnauthorized)
	}

	if subtle.ConstantTimeCompare([]byte(ticket.Code), []byte(in.Code)) != 1 {
		ticket.Attempts++
		if ticket.Attempts >= s.otpMaxAttempts() {
			if derr := s.tickets.DeleteRegistration(ctx, in.SessionID); derr != nil {
				slog.ErrorContext(ctx, "failed to delete registration ticket", "error", derr)
			}

			slog.WarnContext(ctx, "registration otp attempt limit reached", "email", maskEmail(ticket.Profile.Email))
			return nil, goerror.NewBusiness("too many incorrect codes, please register again", goerror.CodeUnauthorized)
		}

		if serr := s.tickets.SaveRegistration(ctx, in.SessionID, *ticket, s.ticketTTL()); serr != nil {
			slog.ErrorContext(ctx, "failed to save registration ticket", "error", serr)
			return nil, goerror.NewServer(serr)
		}

		return nil, goerror.NewBusiness("incorrect verification code", goerror.CodeUnauthorized)
	}

	user := entity.NewUser{
		ID:        s.uid.Generate(),
		Username:  ticket.Profile.Username,
		Email:     ticket.Profile.Email,
		FirstName: ticket.Profile.FirstName,
		LastName:  ticket.Profile.LastName,
		Role:      entity.RoleFromString(ticket.Profile.Role),
		Password:  ticket.Profile.PasswordHash,
	}

	err = s.repoDB.CreateUser(ctx, user)
	if errors.Is(err, goerror.ErrConflict) {
		if derr := s.tickets.DeleteRegistration(ctx, in.SessionID); derr != nil {
			slog.ErrorContext(ctx, "failed to delete registration ticket", "error", derr)
		}

		return nil, goerror.NewBusiness("email or username already registered", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "error", err)
		return nil, goerror.NewServer(err)
	}

	if derr := s.tickets.DeleteRegistration(ctx, in.SessionID); derr != nil {
		slog.ErrorContext(ctx, "failed to delete registration ticket", "user_id", user.ID, "error", derr)
	}

	if perr := s.repoMessaging.PublishUserRegistered(ctx, UserRegisteredEvent{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: ticket.Profile.FirstName + " " + ticket.Profile.LastName,
		Role:     ticket.Profile.Role,
	}); perr != nil {
		slog.WarnContext(ctx, "failed to publish user registered event", "user_id", user.ID, "error", perr)
	}

	return &RegisterVerifyOutput{RedirectTo: "/login"}, nil
}
