package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/taskgrid/taskgrid/internal/identity/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/config"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/hash"
	"github.com/taskgrid/taskgrid/internal/pkg/instrument"
	"github.com/taskgrid/taskgrid/internal/pkg/jwt"
	"github.com/taskgrid/taskgrid/internal/pkg/mail"
	"github.com/taskgrid/taskgrid/internal/pkg/validator"
)

var errSMTPDown = errors.New("smtp: connection refused")

var testConfigYAML = []byte(`
mail:
  from: no-reply@taskgrid.test
modules:
  identity:
    otp_ttl_seconds: 300
    ticket_ttl_minutes: 30
    otp_max_attempts: 3
    otp_resend_cooldown_seconds: 30
    refresh_token_ttl_days: 30
`)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeRepo struct {
	users         map[int64]*entity.User
	refreshTokens []entity.RefreshToken
	createUserErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[int64]*entity.User{}}
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) GetUserByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) GetUserList(_ context.Context, _ entity.UserListFilter) ([]entity.User, int64, error) {
	var out []entity.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) CreateUser(_ context.Context, in entity.NewUser) error {
	if r.createUserErr != nil {
		return r.createUserErr
	}
	for _, u := range r.users {
		if u.Email == in.Email || u.Username == in.Username {
			return goerror.ErrConflict
		}
	}
	r.users[in.ID] = &entity.User{
		ID:        in.ID,
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
		Password:  in.Password,
	}
	return nil
}

func (r *fakeRepo) UpdateUser(_ context.Context, in entity.UpdateUser) error {
	u, ok := r.users[in.ID]
	if !ok {
		return goerror.ErrNotFound
	}
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	return nil
}

func (r *fakeRepo) DeleteUser(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return goerror.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeRepo) CreateRefreshToken(_ context.Context, in entity.RefreshToken) error {
	r.refreshTokens = append(r.refreshTokens, in)
	return nil
}

func (r *fakeRepo) GetUserRefreshToken(_ context.Context, token string) (*entity.UserRefreshToken, error) {
	for _, rt := range r.refreshTokens {
		if rt.Token == token {
			u := r.users[rt.UserID]
			return &entity.UserRefreshToken{
				RefreshID:        rt.ID,
				RefreshToken:     rt.Token,
				RefreshExpiresAt: rt.ExpiresAt,
				UserID:           u.ID,
				UserEmail:        u.Email,
				UserRole:         u.Role,
			}, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) RevokeRefreshToken(_ context.Context, _ string) error    { return nil }
func (r *fakeRepo) RevokeAllRefreshToken(_ context.Context, _ int64) error { return nil }

func (r *fakeRepo) RotateRefreshToken(_ context.Context, _ entity.RotateRefreshToken) error {
	return nil
}

// persistRepo adds the optional OTP columns so tests can observe the dual
// write path.
type persistRepo struct {
	*fakeRepo
	otpCode   map[int64]string
	otpSentAt map[int64]time.Time
	setCalls  int
	verifyErr error
}

func newPersistRepo() *persistRepo {
	return &persistRepo{
		fakeRepo:  newFakeRepo(),
		otpCode:   map[int64]string{},
		otpSentAt: map[int64]time.Time{},
	}
}

func (r *persistRepo) SetUserOTP(_ context.Context, userID int64, code string, sentAt time.Time) error {
	r.setCalls++
	r.otpCode[userID] = code
	r.otpSentAt[userID] = sentAt
	return nil
}

func (r *persistRepo) VerifyUserOTP(_ context.Context, userID int64, code string, now time.Time) (bool, error) {
	if r.verifyErr != nil {
		return false, r.verifyErr
	}
	stored, ok := r.otpCode[userID]
	if !ok || stored != code {
		return false, nil
	}
	return !now.After(r.otpSentAt[userID].Add(5 * time.Minute)), nil
}

func (r *persistRepo) ClearUserOTP(_ context.Context, userID int64) error {
	delete(r.otpCode, userID)
	delete(r.otpSentAt, userID)
	return nil
}

type fakeTickets struct {
	reg      map[string]entity.RegistrationTicket
	login    map[string]entity.LoginTicket
	regSaves int
}

func newFakeTickets() *fakeTickets {
	return &fakeTickets{
		reg:   map[string]entity.RegistrationTicket{},
		login: map[string]entity.LoginTicket{},
	}
}

func (f *fakeTickets) SaveRegistration(_ context.Context, sid string, t entity.RegistrationTicket, _ time.Duration) error {
	f.regSaves++
	f.reg[sid] = t
	return nil
}

func (f *fakeTickets) GetRegistration(_ context.Context, sid string) (*entity.RegistrationTicket, error) {
	t, ok := f.reg[sid]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTickets) DeleteRegistration(_ context.Context, sid string) error {
	delete(f.reg, sid)
	return nil
}

func (f *fakeTickets) SaveLogin(_ context.Context, sid string, t entity.LoginTicket, _ time.Duration) error {
	f.login[sid] = t
	return nil
}

func (f *fakeTickets) GetLogin(_ context.Context, sid string) (*entity.LoginTicket, error) {
	t, ok := f.login[sid]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTickets) DeleteLogin(_ context.Context, sid string) error {
	delete(f.login, sid)
	return nil
}

type fakeMailer struct {
	sent    []mail.Message
	sendErr error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) Close() error { return nil }

type fakeMessaging struct {
	published []UserRegisteredEvent
}

func (f *fakeMessaging) PublishUserRegistered(_ context.Context, msg UserRegisteredEvent) error {
	f.published = append(f.published, msg)
	return nil
}

type fakeJWT struct{}

func (fakeJWT) Generate(_ int64, _, role string) (string, error) { return "access-" + role, nil }

func (fakeJWT) Verify(_ string) (jwt.Claims, error) { return jwt.Claims{}, nil }

type seqNumberID struct {
	next int64
}

func (s *seqNumberID) Generate() int64 {
	s.next++
	return s.next
}

type fixedStringID string

func (s fixedStringID) Generate() string { return string(s) }

type fixture struct {
	uc      *Usecase
	clock   *stepClock
	tickets *fakeTickets
	mailer  *fakeMailer
	msg     *fakeMessaging
}

func newFixture(t *testing.T, repo repoDB) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	cfg, err := config.NewViperFromBytes("yaml", testConfigYAML)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}

	clk := &stepClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	tickets := newFakeTickets()
	mailer := &fakeMailer{}
	msg := &fakeMessaging{}

	uc := New(Dependency{
		RepoDB:        repo,
		RepoMessaging: msg,
		Tickets:       tickets,
		Mailer:        mailer,
		Validator:     v,
		Config:        cfg,
		HMAC:          hash.NewHMACSHA256("test-hmac-secret"),
		Bcrypt:        hash.NewBcrypt(4, ""),
		UID:           &seqNumberID{},
		OID:           fixedStringID(strings.Repeat("ab", 32)),
		Clock:         clk,
		JWT:           fakeJWT{},
		Instrument:    instrument.NewNoop(),
	})

	return &fixture{uc: uc, clock: clk, tickets: tickets, mailer: mailer, msg: msg}
}

// seedUser registers a verified account directly in the repo.
func seedUser(t *testing.T, repo interface {
	CreateUser(ctx context.Context, in entity.NewUser) error
}, id int64, username, email string, role entity.Role, password string,
) {
	t.Helper()

	pwd, err := hash.NewBcrypt(4, "").Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	if err := repo.CreateUser(context.Background(), entity.NewUser{
		ID:        id,
		Username:  username,
		Email:     email,
		FirstName: "Test",
		LastName:  "User" + strconv.FormatInt(id, 10),
		Role:      role,
		Password:  string(pwd),
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func assertBusinessCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()

	if err == nil {
		t.Fatal("expected error, got nil")
	}

	gerr, ok := err.(*goerror.Error)
	if !ok {
		t.Fatalf("expected *goerror.Error, got %T: %v", err, err)
	}
	if gerr.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, gerr.Code(), err)
	}
}
