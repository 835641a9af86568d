package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/taskgrid/taskgrid/internal/identity/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/clock"
	"github.com/taskgrid/taskgrid/internal/pkg/config"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/goroutine"
	"github.com/taskgrid/taskgrid/internal/pkg/hash"
	"github.com/taskgrid/taskgrid/internal/pkg/instrument"
	"github.com/taskgrid/taskgrid/internal/pkg/jwt"
	"github.com/taskgrid/taskgrid/internal/pkg/mail"
	"github.com/taskgrid/taskgrid/internal/pkg/uid"
	"github.com/taskgrid/taskgrid/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type UserRegisteredEvent struct {
	UserID   int64
	Email    string
	FullName string
	Role     string
}

type repoMessaging interface {
	PublishUserRegistered(ctx context.Context, msg UserRegisteredEvent) error
}

type repoDB interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetUserList(ctx context.Context, filter entity.UserListFilter) ([]entity.User, int64, error)

	CreateUser(ctx context.Context, in entity.NewUser) error
	UpdateUser(ctx context.Context, in entity.UpdateUser) error
	DeleteUser(ctx context.Context, id int64) error

	CreateRefreshToken(ctx context.Context, in entity.RefreshToken) error
	GetUserRefreshToken(ctx context.Context, token string) (*entity.UserRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAllRefreshToken(ctx context.Context, userID int64) error
	RotateRefreshToken(ctx context.Context, ro entity.RotateRefreshToken) error
}

// otpPersister is an optional capability of the user store. When present,
// login codes are mirrored onto the user row so an operator can inspect the
// pending challenge. The session ticket stays authoritative either way.
type otpPersister interface {
	SetUserOTP(ctx context.Context, userID int64, code string, sentAt time.Time) error
	VerifyUserOTP(ctx context.Context, userID int64, code string, now time.Time) (bool, error)
	ClearUserOTP(ctx context.Context, userID int64) error
}

type ticketStore interface {
	SaveRegistration(ctx context.Context, sessionID string, t entity.RegistrationTicket, ttl time.Duration) error
	GetRegistration(ctx context.Context, sessionID string) (*entity.RegistrationTicket, error)
	DeleteRegistration(ctx context.Context, sessionID string) error

	SaveLogin(ctx context.Context, sessionID string, t entity.LoginTicket, ttl time.Duration) error
	GetLogin(ctx context.Context, sessionID string) (*entity.LoginTicket, error)
	DeleteLogin(ctx context.Context, sessionID string) error
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	tickets       ticketStore
	mailer        mail.Mail
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	bcrypt        hash.Hash
	uid           uid.NumberID
	oid           uid.StringID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	enforcer      *casbin.Enforcer
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Tickets       ticketStore
	Mailer        mail.Mail
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Bcrypt        hash.Hash
	UID           uid.NumberID
	OID           uid.StringID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Enforcer      *casbin.Enforcer
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		tickets:       dep.Tickets,
		mailer:        dep.Mailer,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		bcrypt:        dep.Bcrypt,
		uid:           dep.UID,
		oid:           dep.OID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	ok, err := s.enforcer.Enforce(clm.UserRole, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}

func (s *Usecase) otpTTL() time.Duration {
	if ttl := s.cfg.GetSecond("modules.identity.otp_ttl_seconds"); ttl > 0 {
		return ttl
	}
	return 5 * time.Minute
}

// ticketTTL must outlive otpTTL so an expired code is still reported as
// expired instead of falling through to "no pending verification".
func (s *Usecase) ticketTTL() time.Duration {
	if ttl := s.cfg.GetMinute("modules.identity.ticket_ttl_minutes"); ttl > s.otpTTL() {
		return ttl
	}
	return 30 * time.Minute
}

func (s *Usecase) otpMaxAttempts() int {
	if n := s.cfg.GetInt("modules.identity.otp_max_attempts"); n > 0 {
		return n
	}
	return 3
}

func (s *Usecase) resendCooldown() time.Duration {
	if cd := s.cfg.GetSecond("modules.identity.otp_resend_cooldown_seconds"); cd > 0 {
		return cd
	}
	return 30 * time.Second
}

func (s *Usecase) sendOTPEmail(ctx context.Context, to, name, code string) error {
	ttl := int(s.otpTTL() / time.Minute)
	return s.mailer.Send(ctx, mail.Message{
		From:    s.cfg.GetString("mail.from"),
		To:      []string{to},
		Subject: "Your TaskGrid verification code",
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nYour verification code is %s. It expires in %d minutes.\n\nIf you did not request this, you can ignore this email.\n",
			name, code, ttl,
		),
	})
}

// maskEmail keeps the first rune of the local part so responses never echo
// the full address back.
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 1 {
		return email
	}
	return email[:1] + strings.Repeat("*", at-1) + email[at:]
}
