package usecase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/taskgrid/taskgrid/internal/pkg/config"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/idempotency"
	"github.com/taskgrid/taskgrid/internal/pkg/instrument"
	"github.com/taskgrid/taskgrid/internal/pkg/jwt"
	"github.com/taskgrid/taskgrid/internal/pkg/storage"
	"github.com/taskgrid/taskgrid/internal/pkg/validator"
	"github.com/taskgrid/taskgrid/internal/shared/constant"
	"github.com/taskgrid/taskgrid/internal/task/entity"
)

var errStorageDown = errors.New("storage: connection refused")

const testConfigYAML = `
modules:
  task:
    report_bucket: "taskgrid-reports"
    notes_bucket: "taskgrid-notes"
    note_max_size_bytes: 1048576
`

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

type seqNumberID struct {
	last int64
}

func (s *seqNumberID) Generate() int64 {
	s.last++
	return s.last + 1000
}

// fakeRepo keeps tasks, people and notes in memory with the same
// not-found semantics as the SQL layer.
type fakeRepo struct {
	now    time.Time
	people map[int64]entity.Person
	tasks  map[int64]entity.Task
	notes  []entity.Note

	createErr error
	noteErr   error

	teacherDash *entity.TeacherDashboard
	studentDash *entity.StudentDashboard
	adminDash   *entity.AdminDashboard
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		people: map[int64]entity.Person{},
		tasks:  map[int64]entity.Task{},
	}
}

func (f *fakeRepo) addPerson(id int64, role, name, email string) {
	f.people[id] = entity.Person{ID: id, Email: email, FullName: name, Role: role}
}

func (f *fakeRepo) GetTaskByID(_ context.Context, id int64) (*entity.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &t, nil
}

func (f *fakeRepo) GetTaskList(_ context.Context, filter entity.TaskListFilter) ([]entity.TaskWithNames, int64, error) {
	var out []entity.TaskWithNames
	for _, t := range f.tasks {
		if filter.CreatedBy != 0 && t.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.AssignedTo != 0 && (t.AssignedTo == nil || *t.AssignedTo != filter.AssignedTo) {
			continue
		}
		if !filter.Status.IsUnknown() && t.Status != filter.Status {
			continue
		}
		out = append(out, f.withNames(t))
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) GetTasksSince(_ context.Context, since time.Time) ([]entity.TaskWithNames, error) {
	var out []entity.TaskWithNames
	for _, t := range f.tasks {
		if t.CreatedAt.Before(since) {
			continue
		}
		out = append(out, f.withNames(t))
	}
	return out, nil
}

func (f *fakeRepo) withNames(t entity.Task) entity.TaskWithNames {
	wn := entity.TaskWithNames{Task: t}
	if t.AssignedTo != nil {
		wn.AssignedToName = f.people[*t.AssignedTo].FullName
	}
	wn.CreatedByName = f.people[t.CreatedBy].FullName
	return wn
}

func (f *fakeRepo) CreateTask(_ context.Context, in entity.NewTask) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tasks[in.ID] = entity.Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		AssignedTo:  in.AssignedTo,
		CreatedBy:   in.CreatedBy,
		Status:      in.Status,
		DueDate:     in.DueDate,
		TaskType:    in.TaskType,
		CreatedAt:   f.now,
	}
	return nil
}

func (f *fakeRepo) CreateTasks(ctx context.Context, in []entity.NewTask) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, t := range in {
		if err := f.CreateTask(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRepo) UpdateTask(_ context.Context, in entity.UpdateTask) error {
	t, ok := f.tasks[in.ID]
	if !ok {
		return goerror.ErrNotFound
	}
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.AssignedTo != nil {
		t.AssignedTo = in.AssignedTo
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.TaskType != nil {
		t.TaskType = *in.TaskType
	}
	f.tasks[in.ID] = t
	return nil
}

func (f *fakeRepo) UpdateTaskStatus(_ context.Context, id, assignedTo int64, st entity.Status) error {
	t, ok := f.tasks[id]
	if !ok || t.AssignedTo == nil || *t.AssignedTo != assignedTo {
		return goerror.ErrNotFound
	}
	t.Status = st
	f.tasks[id] = t
	return nil
}

func (f *fakeRepo) DeleteTask(_ context.Context, id int64) error {
	if _, ok := f.tasks[id]; !ok {
		return goerror.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeRepo) GetPerson(_ context.Context, userID int64) (*entity.Person, error) {
	p, ok := f.people[userID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &p, nil
}

func (f *fakeRepo) GetTeacherDashboard(_ context.Context, _ int64, _ time.Time) (*entity.TeacherDashboard, error) {
	if f.teacherDash == nil {
		return &entity.TeacherDashboard{}, nil
	}
	return f.teacherDash, nil
}

func (f *fakeRepo) GetStudentDashboard(_ context.Context, _ int64, _ time.Time) (*entity.StudentDashboard, error) {
	if f.studentDash == nil {
		return &entity.StudentDashboard{}, nil
	}
	return f.studentDash, nil
}

func (f *fakeRepo) GetAdminDashboard(_ context.Context, _ time.Time) (*entity.AdminDashboard, error) {
	if f.adminDash == nil {
		return &entity.AdminDashboard{}, nil
	}
	return f.adminDash, nil
}

func (f *fakeRepo) CreateNote(_ context.Context, in entity.Note) error {
	if f.noteErr != nil {
		return f.noteErr
	}
	f.notes = append(f.notes, in)
	return nil
}

func (f *fakeRepo) GetNoteList(_ context.Context, _, _ int32) ([]entity.Note, int64, error) {
	return f.notes, int64(len(f.notes)), nil
}

type fakeMessaging struct {
	published  []TaskAssignedEvent
	publishErr error
}

func (f *fakeMessaging) PublishTaskAssigned(_ context.Context, msg TaskAssignedEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, msg)
	return nil
}

// fakeIdempotency replays the first outcome for a key the way the Redis
// tracker does.
type fakeIdempotency struct {
	done map[string]error
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{done: map[string]error{}}
}

func (f *fakeIdempotency) Acquire(_ context.Context, key string, _ time.Duration) (idempotency.State, error) {
	if _, ok := f.done[key]; ok {
		return idempotency.StateCompleted, nil
	}
	return idempotency.StateNone, nil
}

func (f *fakeIdempotency) MarkCompleted(_ context.Context, key string, _ time.Duration) error {
	f.done[key] = nil
	return nil
}

func (f *fakeIdempotency) MarkFailed(_ context.Context, key string, _ time.Duration) error {
	f.done[key] = idempotency.ErrAlreadyFailed
	return nil
}

func (f *fakeIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	if prev, ok := f.done[key]; ok {
		if prev != nil {
			return idempotency.ErrAlreadyFailed
		}
		return idempotency.ErrAlreadyCompleted
	}
	err := fn(ctx)
	f.done[key] = err
	return err
}

type storedObject struct {
	bucket string
	key    string
	data   []byte
	opts   storage.PutOptions
}

// fakeStorage records puts and deletes, optionally failing all puts.
type fakeStorage struct {
	objects []storedObject
	putErr  error
	deleted []string
}

func (f *fakeStorage) PutObject(_ context.Context, bucket, key string, r io.Reader, opts storage.PutOptions) (storage.ObjectInfo, error) {
	if f.putErr != nil {
		return storage.ObjectInfo{}, f.putErr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}

	f.objects = append(f.objects, storedObject{bucket: bucket, key: key, data: data, opts: opts})

	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (f *fakeStorage) GetObject(context.Context, string, string, storage.GetOptions) (io.ReadCloser, storage.ObjectInfo, error) {
	return nil, storage.ObjectInfo{}, goerror.ErrNotFound
}

func (f *fakeStorage) StatObject(context.Context, string, string) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{}, goerror.ErrNotFound
}

func (f *fakeStorage) DeleteObject(_ context.Context, _, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) ListObjects(context.Context, string, string, storage.ListOptions) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (f *fakeStorage) PresignGet(context.Context, string, string, time.Duration) (string, error) {
	return "", storage.ErrMissingSigner
}

func (f *fakeStorage) PresignPut(context.Context, string, string, storage.PutOptions, time.Duration) (string, error) {
	return "", storage.ErrMissingSigner
}

func (f *fakeStorage) Close() error { return nil }

func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	t.Helper()

	const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		t.Fatalf("new enforcer: %v", err)
	}

	if _, err := e.AddPolicies([][]string{
		{constant.RoleAdmin, "*", "*"},
		{constant.RoleTeacher, constant.PermissionTasks, constant.ActionRead},
		{constant.RoleTeacher, constant.PermissionTasks, constant.ActionWrite},
		{constant.RoleTeacher, constant.PermissionTasks, constant.ActionDelete},
		{constant.RoleTeacher, constant.PermissionNotes, constant.ActionRead},
		{constant.RoleTeacher, constant.PermissionNotes, constant.ActionWrite},
		{constant.RoleStudent, constant.PermissionTasks, constant.ActionRead},
		{constant.RoleStudent, constant.PermissionNotes, constant.ActionRead},
	}); err != nil {
		t.Fatalf("add policies: %v", err)
	}

	return e
}

type fixture struct {
	uc      *Usecase
	repo    *fakeRepo
	msg     *fakeMessaging
	idemp   *fakeIdempotency
	storage *fakeStorage
	clock   *stepClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	if err != nil {
		t.Fatalf("new config: %v", err)
	}

	clk := &stepClock{now: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
	repo := newFakeRepo()
	repo.now = clk.now
	msg := &fakeMessaging{}
	idemp := newFakeIdempotency()
	store := &fakeStorage{}

	uc := New(Dependency{
		RepoDB:        repo,
		RepoMessaging: msg,
		Idempotency:   idemp,
		Storage:       store,
		Validator:     v,
		Config:        cfg,
		UID:           &seqNumberID{},
		Clock:         clk,
		Instrument:    instrument.NewNoop(),
		Enforcer:      newTestEnforcer(t),
	})

	return &fixture{uc: uc, repo: repo, msg: msg, idemp: idemp, storage: store, clock: clk}
}

func authCtx(userID int64, role string) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{
		UserID:    userID,
		UserEmail: "user@example.com",
		UserRole:  role,
	})
}

func assertBusinessCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *goerror.Error, got %v", err)
	}
	if gerr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, gerr.Code())
	}
}
