package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/otp"
)

type ResendOTPInput struct {
	SessionID string `validate:"required"`
}

type ResendOTPOutput struct {
	Email            string
	OtpExpiresInSecs int
}

// ResendOTP issues a fresh code for whichever verification the session has
// pending, registration first. A new code always invalidates the previous
// one and resets the attempt count. Requests inside the cooldown window are
// rejected without touching the ticket.
func (s *Usecase) ResendOTP(ctx context.Context, in ResendOTPInput) (*ResendOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "ResendOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	reg, err := s.tickets.GetRegistration(ctx, in.SessionID)
	if err == nil {
		if cderr := s.checkCooldown(ctx, reg.IssuedAt); cderr != nil {
			return nil, cderr
		}

		code, gerr := otp.Generate(otp.DefaultLength)
		if gerr != nil {
			slog.ErrorContext(ctx, "failed to generate otp code", "error", gerr)
			return nil, goerror.NewServer(gerr)
		}

		reg.Code = code
		reg.IssuedAt = s.clock.Now()
		reg.Attempts = 0

		if serr := s.tickets.SaveRegistration(ctx, in.SessionID, *reg, s.ticketTTL()); serr != nil {
			slog.ErrorContext(ctx, "failed to save registration ticket", "error", serr)
			return nil, goerror.NewServer(serr)
		}

		if merr := s.sendOTPEmail(ctx, reg.Profile.Email, reg.Profile.FirstName, code); merr != nil {
			slog.ErrorContext(ctx, "failed to send registration otp email", "error", merr)
			return nil, goerror.NewServer(merr)
		}

		return &ResendOTPOutput{
			Email:            maskEmail(reg.Profile.Email),
			OtpExpiresInSecs: int(s.otpTTL().Seconds()),
		}, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to get registration ticket", "error", err)
		return nil, goerror.NewServer(err)
	}

	login, err := s.tickets.GetLogin(ctx, in.SessionID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "resend requested with no pending verification")
		return nil, goerror.NewBusiness("no verification in progress", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to get login ticket", "error", err)
		return nil, goerror.NewServer(err)
	}

	if cderr := s.checkCooldown(ctx, login.IssuedAt); cderr != nil {
		return nil, cderr
	}

	code, err := otp.Generate(otp.DefaultLength)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	login.Code = code
	login.IssuedAt = s.clock.Now()

	if p, ok := s.repoDB.(otpPersister); ok {
		if serr := p.SetUserOTP(ctx, login.UserID, code, login.IssuedAt); serr != nil {
			slog.WarnContext(ctx, "failed to persist login otp", "user_id", login.UserID, "error", serr)
		}
	}

	if serr := s.tickets.SaveLogin(ctx, in.SessionID, *login, s.ticketTTL()); serr != nil {
		slog.ErrorContext(ctx, "failed to save login ticket", "user_id", login.UserID, "error", serr)
		return nil, goerror.NewServer(serr)
	}

	if merr := s.sendOTPEmail(ctx, login.Email, login.FirstName, code); merr != nil {
		slog.ErrorContext(ctx, "failed to send login otp email", "user_id", login.UserID, "error", merr)
		return nil, goerror.NewServer(merr)
	}

	return &ResendOTPOutput{
		Email:            maskEmail(login.Email),
		OtpExpiresInSecs: int(s.otpTTL().Seconds()),
	}, nil
}

func (s *Usecase) checkCooldown(ctx context.Context, issuedAt time.Time) error {
	if elapsed := s.clock.Now().Sub(issuedAt); elapsed < s.resendCooldown() {
		slog.WarnContext(ctx, "otp resend inside cooldown window", "elapsed", elapsed)
		return goerror.NewBusiness("please wait before requesting another code", goerror.CodeTooManyRequest)
	}
	return nil
}
