package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskgrid/taskgrid/internal/notification/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/config"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/instrument"
	"github.com/taskgrid/taskgrid/internal/pkg/jwt"
	"github.com/taskgrid/taskgrid/internal/pkg/mail"
	"github.com/taskgrid/taskgrid/internal/pkg/validator"
)

var errMailDown = errors.New("smtp connection refused")

var errDBDown = errors.New("connection reset by peer")

const testConfigYAML = `
app:
  name: TaskGrid
mail:
  from: no-reply@taskgrid.dev
`

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

type seqNumberID struct{ last int64 }

func (s *seqNumberID) Generate() int64 {
	s.last += 1000
	return s.last
}

type fakeRepo struct {
	rows       []entity.CreateNotification
	items      []entity.NotificationItem
	unread     int64
	createErr  error
	listErr    error
	markedRead []int64
	markOK     bool
	readAll    int64
	deleted    []int64
	deleteOK   bool
}

func (f *fakeRepo) CreateNotification(_ context.Context, data entity.CreateNotification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.rows = append(f.rows, data)
	return nil
}

func (f *fakeRepo) ListNotifications(_ context.Context, userID int64, status entity.NotificationStatus, limit, offset int32) ([]entity.NotificationItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeRepo) CountUnreadNotifications(_ context.Context, userID int64) (int64, error) {
	return f.unread, nil
}

func (f *fakeRepo) MarkNotificationRead(_ context.Context, userID, notificationID int64) (bool, error) {
	f.markedRead = append(f.markedRead, notificationID)
	return f.markOK, nil
}

func (f *fakeRepo) MarkNotificationsReadAll(_ context.Context, userID int64) (int64, error) {
	return f.readAll, nil
}

func (f *fakeRepo) SoftDeleteNotification(_ context.Context, userID, notificationID int64) (bool, error) {
	f.deleted = append(f.deleted, notificationID)
	return f.deleteOK, nil
}

type fakeMail struct {
	sent    []mail.Message
	sendErr error
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fixture struct {
	uc   *Usecase
	repo *fakeRepo
	ml   *fakeMail
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}

	v, verr := validator.NewV10Validator()
	if verr != nil {
		t.Fatalf("failed to build validator: %v", verr)
	}

	repo := &fakeRepo{markOK: true, deleteOK: true}
	ml := &fakeMail{}

	uc := NewNotification(Dependency{
		RepoDB:     repo,
		RepoMail:   ml,
		Config:     cfg,
		UID:        &seqNumberID{},
		Clock:      fixedClock{now: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)},
		Validator:  v,
		Instrument: instrument.NewNoop(),
	})

	return &fixture{uc: uc, repo: repo, ml: ml}
}

func authCtx(userID int64) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{
		UserID:    userID,
		UserEmail: "tester@taskgrid.dev",
		UserRole:  "Student",
	})
}

func assertBusinessCode(t *testing.T, err error, want goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected goerror, got %v", err)
	}
	if gerr.Code() != want {
		t.Fatalf("expected code %s, got %s", want, gerr.Code())
	}
}
