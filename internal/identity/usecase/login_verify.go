package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/taskgrid/taskgrid/internal/identity/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/otp"
)

type LoginVerifyInput struct {
	SessionID string `validate:"required"`
	Code      string `validate:"required,numeric"`
}

type LoginVerifyOutput struct {
	AccessToken  string
	RefreshToken string
	RedirectTo   string
}

// LoginVerify exchanges a correct code for tokens. A wrong code leaves the
// ticket in place, only expiry or success clears it. The role routes the
// client to its dashboard.
func (s *Usecase) LoginVerify(ctx context.Context, in LoginVerifyInput) (*LoginVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginVerify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ticket, err := s.tickets.GetLogin(ctx, in.SessionID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no pending login for session")
		return nil, goerror.NewBusiness("no login in progress, please log in first", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to get login ticket", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()

	if otp.Expired(&ticket.IssuedAt, s.otpTTL(), now) {
		s.clearLoginState(ctx, in.SessionID, ticket.UserID)
		return nil, goerror.NewBusiness("verification code has expired, please log in again", goerror.CodeUnauthorized)
	}

	if !s.verifyLoginCode(ctx, ticket, in.Code, now) {
		slog.WarnContext(ctx, "login otp mismatch", "user_id", ticket.UserID)
		return nil, goerror.NewBusiness("incorrect verification code", goerror.CodeUnauthorized)
	}

	user, err := s.repoDB.GetUserByID(ctx, ticket.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		s.clearLoginState(ctx, in.SessionID, ticket.UserID)
		slog.WarnContext(ctx, "login verify for missing user", "user_id", ticket.UserID)
		return nil, goerror.NewBusiness("invalid username or password", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", ticket.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.clearLoginState(ctx, in.SessionID, user.ID)

	acToken, err := s.jwt.Generate(user.ID, user.Email, user.Role.String())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	refreshToken := s.oid.Generate()
	refreshTokenHash, err := s.hmac.Hash(refreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoDB.CreateRefreshToken(ctx, entity.RefreshToken{
		ID:        s.uid.Generate(),
		UserID:    user.ID,
		Token:     string(refreshTokenHash),
		ExpiresAt: s.clock.Now().Add(s.cfg.GetDay("modules.identity.refresh_token_ttl_days")),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create refresh token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &LoginVerifyOutput{
		AccessToken:  acToken,
		RefreshToken: refreshToken,
		RedirectTo:   user.Role.DashboardPath(),
	}, nil
}

// verifyLoginCode prefers the store's persisted check, which enforces its
// own freshness window. The session ticket is the fallback when the store
// has no OTP capability or the check itself errors.
func (s *Usecase) verifyLoginCode(ctx context.Context, ticket *entity.LoginTicket, code string, now time.Time) bool {
	if p, ok := s.repoDB.(otpPersister); ok {
		verified, err := p.VerifyUserOTP(ctx, ticket.UserID, code, now)
		if err == nil {
			return verified
		}

		slog.WarnContext(ctx, "failed to verify persisted login otp", "user_id", ticket.UserID, "error", err)
	}

	return subtle.ConstantTimeCompare([]byte(ticket.Code), []byte(code)) == 1
}

func (s *Usecase) clearLoginState(ctx context.Context, sessionID string, userID int64) {
	if err := s.tickets.DeleteLogin(ctx, sessionID); err != nil {
		slog.ErrorContext(ctx, "failed to delete login ticket", "user_id", userID, "error", err)
	}

	if p, ok := s.repoDB.(otpPersister); ok {
		if err := p.ClearUserOTP(ctx, userID); err != nil {
			slog.WarnContext(ctx, "failed to clear persisted login otp", "user_id", userID, "error", err)
		}
	}
}
