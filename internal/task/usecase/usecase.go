package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/taskgrid/taskgrid/internal/pkg/clock"
	"github.com/taskgrid/taskgrid/internal/pkg/config"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/goroutine"
	"github.com/taskgrid/taskgrid/internal/pkg/idempotency"
	"github.com/taskgrid/taskgrid/internal/pkg/instrument"
	"github.com/taskgrid/taskgrid/internal/pkg/jwt"
	"github.com/taskgrid/taskgrid/internal/pkg/storage"
	"github.com/taskgrid/taskgrid/internal/pkg/uid"
	"github.com/taskgrid/taskgrid/internal/pkg/validator"
	"github.com/taskgrid/taskgrid/internal/task/entity"
	"go.opentelemetry.io/otel/trace"
)

type TaskAssignedEvent struct {
	TaskID        int64
	Title         string
	DueDate       string
	AssignedToID  int64
	AssignedEmail string
	AssignedName  string
	CreatedByName string
}

type repoMessaging interface {
	PublishTaskAssigned(ctx context.Context, msg TaskAssignedEvent) error
}

type repoDB interface {
	GetTaskByID(ctx context.Context, id int64) (*entity.Task, error)
	GetTaskList(ctx context.Context, filter entity.TaskListFilter) ([]entity.TaskWithNames, int64, error)
	GetTasksSince(ctx context.Context, since time.Time) ([]entity.TaskWithNames, error)

	CreateTask(ctx context.Context, in entity.NewTask) error
	CreateTasks(ctx context.Context, in []entity.NewTask) error
	UpdateTask(ctx context.Context, in entity.UpdateTask) error
	UpdateTaskStatus(ctx context.Context, id, assignedTo int64, st entity.Status) error
	DeleteTask(ctx context.Context, id int64) error

	GetPerson(ctx context.Context, userID int64) (*entity.Person, error)

	GetTeacherDashboard(ctx context.Context, teacherID int64, now time.Time) (*entity.TeacherDashboard, error)
	GetStudentDashboard(ctx context.Context, studentID int64, now time.Time) (*entity.StudentDashboard, error)
	GetAdminDashboard(ctx context.Context, now time.Time) (*entity.AdminDashboard, error)

	CreateNote(ctx context.Context, in entity.Note) error
	GetNoteList(ctx context.Context, limit, offset int32) ([]entity.Note, int64, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	idemp         idempotency.Idempotency
	storage       storage.Storage
	validator     validator.Validator
	cfg           config.Config
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	enforcer      *casbin.Enforcer
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Idempotency   idempotency.Idempotency
	Storage       storage.Storage
	Validator     validator.Validator
	Config        config.Config
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Enforcer      *casbin.Enforcer
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		idemp:         dep.Idempotency,
		storage:       dep.Storage,
		validator:     dep.Validator,
		cfg:           dep.Config,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("task.usecase").Start(ctx, name)
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

// resolveStudent loads the assignee and rejects anyone who is not a student.
func (s *Usecase) resolveStudent(ctx context.Context, userID int64) (*entity.Person, error) {
	p, err := s.repoDB.GetPerson(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !p.IsStudent() {
		return nil, goerror.NewBusiness("assignee must be a student", goerror.CodeInvalidInput)
	}
	return p, nil
}

func (s *Usecase) publishAssigned(ctx context.Context, task entity.NewTask, assignee *entity.Person, createdByName string) {
	due := ""
	if task.DueDate != nil {
		due = task.DueDate.Format("2006-01-02")
	}

	if err := s.repoMessaging.PublishTaskAssigned(ctx, TaskAssignedEvent{
		TaskID:        task.ID,
		Title:         task.Title,
		DueDate:       due,
		AssignedToID:  assignee.ID,
		AssignedEmail: assignee.Email,
		AssignedName:  assignee.FullName,
		CreatedByName: createdByName,
	}); err != nil {
		slog.WarnContext(ctx, "failed to publish task assigned event", "task_id", task.ID, "error", err)
	}
}
